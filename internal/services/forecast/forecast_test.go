package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedService(now time.Time) *Service {
	s := NewService()
	s.now = func() time.Time { return now }
	return s
}

func TestForecastDemand(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := fixedService(now)

	result := svc.ForecastDemand(Request{PartID: 7, ForecastDays: 14})

	assert.Equal(t, int64(7), result.PartID)
	assert.Equal(t, 14, result.ForecastDays)
	assert.Len(t, result.PredictedDemand, 14)
	assert.Len(t, result.ConfidenceIntervalLower, 14)
	assert.Len(t, result.ConfidenceIntervalUpper, 14)
	assert.Equal(t, "2026-03-01T12:00:00Z", result.ForecastDate)
	assert.Equal(t, "v1.0", result.ModelVersion)
	assert.Equal(t, 0.0, result.AccuracyMAPE)
	assert.Empty(t, result.Error)
}

func TestForecastDemandDefaultsToThirtyDays(t *testing.T) {
	svc := NewService()

	result := svc.ForecastDemand(Request{PartID: 1})

	assert.Equal(t, 30, result.ForecastDays)
	assert.Len(t, result.PredictedDemand, 30)
}

func TestForecastDemandBoundsBracketPrediction(t *testing.T) {
	svc := NewService()

	result := svc.ForecastDemand(Request{PartID: 1, ForecastDays: 5})

	for i := range result.PredictedDemand {
		assert.LessOrEqual(t, result.ConfidenceIntervalLower[i], result.PredictedDemand[i])
		assert.GreaterOrEqual(t, result.ConfidenceIntervalUpper[i], result.PredictedDemand[i])
	}
}

func TestForecastMultipleParts(t *testing.T) {
	svc := NewService()
	cityID := int64(3)

	results := svc.ForecastMultipleParts([]int64{10, 11, 12}, &cityID, nil, 7)

	require.Len(t, results, 3)
	for i, partID := range []int64{10, 11, 12} {
		assert.Equal(t, partID, results[i].PartID)
		require.NotNil(t, results[i].CityID)
		assert.Equal(t, int64(3), *results[i].CityID)
		assert.Nil(t, results[i].StateID)
		assert.Equal(t, 7, results[i].ForecastDays)
	}
}
