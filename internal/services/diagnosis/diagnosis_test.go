package diagnosis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestions(t *testing.T) {
	svc := NewService()

	questions := svc.Questions("air_conditioner")

	require.Len(t, questions, 5)
	assert.Equal(t, "power_on", questions[0].ID)
	assert.Equal(t, []string{"yes", "no", "sometimes"}, questions[0].Options)
	assert.Equal(t, "display", questions[4].ID)
}

func TestAssessNoSignals(t *testing.T) {
	svc := NewService()

	result := svc.Assess(map[string]string{
		"power_on": "yes", "noise": "no", "leak": "no",
		"performance": "no", "display": "no",
	})

	assert.Equal(t, "general", result.LikelyIssue)
	assert.Equal(t, 0.4, result.Confidence)
	assert.Empty(t, result.Signals)
	assert.Equal(t, "Run basic diagnostics and inspect the device.", result.LikelyFix)
}

func TestAssessPowerDominates(t *testing.T) {
	svc := NewService()

	result := svc.Assess(map[string]string{
		"power_on": "sometimes", "noise": "yes", "leak": "yes",
		"performance": "yes", "display": "yes",
	})

	assert.Equal(t, "power_issue", result.LikelyIssue)
	assert.Equal(t, []string{"power", "noise", "leak", "performance", "display"}, result.Signals)
	assert.Equal(t, 0.9, result.Confidence)
	assert.Equal(t, "Check power supply, adapter, and internal fuse.", result.LikelyFix)
}

func TestAssessPrecedence(t *testing.T) {
	svc := NewService()
	tests := []struct {
		name    string
		answers map[string]string
		issue   string
	}{
		{"leak beats performance", map[string]string{"leak": "yes", "performance": "yes"}, "leak_issue"},
		{"performance beats display", map[string]string{"performance": "yes", "display": "yes"}, "performance_issue"},
		{"display beats noise", map[string]string{"display": "yes", "noise": "yes"}, "display_issue"},
		{"noise alone", map[string]string{"noise": "yes"}, "noise_issue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.issue, svc.Assess(tt.answers).LikelyIssue)
		})
	}
}

func TestAssessConfidenceScalesWithSignals(t *testing.T) {
	svc := NewService()

	one := svc.Assess(map[string]string{"noise": "yes"})
	two := svc.Assess(map[string]string{"noise": "yes", "leak": "yes"})

	assert.Equal(t, 0.5, one.Confidence)
	assert.Equal(t, 0.6, two.Confidence)
}

func TestSuggestParts(t *testing.T) {
	svc := NewService()

	t.Run("single signal", func(t *testing.T) {
		parts := svc.SuggestParts([]string{"leak"})
		assert.Equal(t, []string{"hose", "seal", "drain pump"}, parts)
	})

	t.Run("caps at three", func(t *testing.T) {
		parts := svc.SuggestParts([]string{"power", "leak"})
		assert.Equal(t, []string{"power cable", "power adapter", "power module"}, parts)
	})

	t.Run("dedupes across signals", func(t *testing.T) {
		// fan appears in both performance and noise lists.
		parts := svc.SuggestParts([]string{"performance", "noise"})
		assert.Equal(t, []string{"filter", "fan", "compressor"}, parts)
	})

	t.Run("unknown signal ignored", func(t *testing.T) {
		assert.Empty(t, svc.SuggestParts([]string{"mystery"}))
	})
}
