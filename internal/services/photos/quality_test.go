package photos

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func photoServer(t *testing.T, sizes map[string]int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		size, ok := sizes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(size))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCheckPhotoQualityGrades(t *testing.T) {
	server := photoServer(t, map[string]int{
		"/low.jpg":    10 * 1024,
		"/medium.jpg": 50 * 1024,
		"/good.jpg":   200 * 1024,
	})
	checker := NewQualityChecker()

	report := checker.CheckPhotoQuality([]string{
		server.URL + "/low.jpg",
		server.URL + "/medium.jpg",
		server.URL + "/good.jpg",
	})

	require.Len(t, report.Results, 3)
	assert.Equal(t, "low", report.Results[0].Quality)
	assert.Equal(t, "medium", report.Results[1].Quality)
	assert.Equal(t, "good", report.Results[2].Quality)

	require.NotNil(t, report.Results[0].SizeKB)
	assert.Equal(t, 10.0, *report.Results[0].SizeKB)
	assert.Contains(t, report.Results[0].Warnings, "File size is very small; image may be low quality")
	assert.Contains(t, report.Results[1].Warnings, "Image size is moderate")
	assert.Empty(t, report.Results[2].Warnings)
}

func TestCheckPhotoQualityOverallIsWorst(t *testing.T) {
	server := photoServer(t, map[string]int{
		"/medium.jpg": 50 * 1024,
		"/good.jpg":   200 * 1024,
		"/low.jpg":    5 * 1024,
	})
	checker := NewQualityChecker()

	t.Run("low wins", func(t *testing.T) {
		report := checker.CheckPhotoQuality([]string{
			server.URL + "/good.jpg",
			server.URL + "/low.jpg",
		})
		assert.Equal(t, "low", report.OverallQuality)
	})

	t.Run("medium beats good", func(t *testing.T) {
		report := checker.CheckPhotoQuality([]string{
			server.URL + "/good.jpg",
			server.URL + "/medium.jpg",
		})
		assert.Equal(t, "medium", report.OverallQuality)
	})

	t.Run("all good", func(t *testing.T) {
		report := checker.CheckPhotoQuality([]string{server.URL + "/good.jpg"})
		assert.Equal(t, "good", report.OverallQuality)
	})

	t.Run("empty list is good", func(t *testing.T) {
		report := checker.CheckPhotoQuality(nil)
		assert.Equal(t, "good", report.OverallQuality)
		assert.Empty(t, report.Results)
	})
}

func TestCheckPhotoQualityUnreachableURL(t *testing.T) {
	checker := NewQualityChecker()

	report := checker.CheckPhotoQuality([]string{"http://127.0.0.1:1/missing.jpg"})

	require.Len(t, report.Results, 1)
	assert.Equal(t, "unknown", report.Results[0].Quality)
	assert.Nil(t, report.Results[0].SizeKB)
	assert.Contains(t, report.Results[0].Warnings, "Unable to verify image metadata")
	// Unknown does not drag the overall grade down.
	assert.Equal(t, "good", report.OverallQuality)
}

func TestCheckPhotoQualityZeroContentLength(t *testing.T) {
	server := photoServer(t, map[string]int{"/empty.jpg": 0})
	checker := NewQualityChecker()

	report := checker.CheckPhotoQuality([]string{server.URL + "/empty.jpg"})

	require.Len(t, report.Results, 1)
	assert.Equal(t, "low", report.Results[0].Quality)
}
