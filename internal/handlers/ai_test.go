package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/fieldserve/internal/models"
	"github.com/fieldserve/fieldserve/internal/services/triage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTriageRouter() *gin.Engine {
	router := gin.New()
	handler := NewAIHandler(nil, nil)
	router.POST("/api/v1/ai/triage", handler.Triage)
	return router
}

func TestTriageEndpoint(t *testing.T) {
	router := newTriageRouter()

	body := `{"issue_description": "My air conditioner is not cooling at all"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/ai/triage", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result triage.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "cooling", result.SuggestedCategory)
	assert.Equal(t, models.PriorityHigh, result.SuggestedPriority)
	assert.Greater(t, result.ConfidenceScore, 0.3)
	assert.Equal(t, "v1.0", result.ModelVersion)
}

func TestTriageEndpointMissingDescription(t *testing.T) {
	router := newTriageRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/ai/triage", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "issue_description is required")
}

func TestTriageEndpointMalformedBody(t *testing.T) {
	router := newTriageRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/ai/triage", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiagnosisQuestionsEndpoint(t *testing.T) {
	router := gin.New()
	handler := NewAIHandler(nil, nil)
	router.GET("/api/v1/ai/self-diagnosis/questions", handler.DiagnosisQuestions)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/ai/self-diagnosis/questions", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Questions []struct {
			ID string `json:"id"`
		} `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Questions, 5)
}
