// Package forecast predicts parts demand by region. The per-day series is a
// stub until the historical usage export feeds a real time-series model; the
// response shape and the multi-part fan-out are final.
package forecast

import (
	"log"
	"time"
)

const (
	modelVersion        = "v1.0"
	defaultForecastDays = 30
)

// Request scopes a demand forecast.
type Request struct {
	PartID       int64  `json:"part_id"`
	CityID       *int64 `json:"city_id,omitempty"`
	StateID      *int64 `json:"state_id,omitempty"`
	ForecastDays int    `json:"forecast_days"`
}

// Result is a per-day demand forecast with confidence bounds.
type Result struct {
	PartID                  int64     `json:"part_id"`
	CityID                  *int64    `json:"city_id,omitempty"`
	StateID                 *int64    `json:"state_id,omitempty"`
	ForecastDays            int       `json:"forecast_days"`
	PredictedDemand         []float64 `json:"predicted_demand"`
	ConfidenceIntervalLower []float64 `json:"confidence_interval_lower"`
	ConfidenceIntervalUpper []float64 `json:"confidence_interval_upper"`
	ForecastDate            string    `json:"forecast_date"`
	ModelVersion            string    `json:"model_version"`
	AccuracyMAPE            float64   `json:"accuracy_mape"`
	Error                   string    `json:"error,omitempty"`
}

// Service forecasts parts demand. The clock is injectable for tests.
type Service struct {
	now func() time.Time
}

// NewService returns a forecasting service using the wall clock.
func NewService() *Service {
	return &Service{now: time.Now}
}

// ForecastDemand forecasts daily demand for one part. It never fails; an
// internal error degrades to an empty forecast with the error recorded.
func (s *Service) ForecastDemand(req Request) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("forecast: recovered: %v", r)
			result = Result{
				PartID:       req.PartID,
				ForecastDate: s.now().UTC().Format(time.RFC3339),
				Error:        "internal error",
			}
		}
	}()

	days := req.ForecastDays
	if days <= 0 {
		days = defaultForecastDays
	}

	base := baseDemand(req.PartID, req.CityID, req.StateID)
	values, lower, upper := generateSeries(base, days)

	return Result{
		PartID:                  req.PartID,
		CityID:                  req.CityID,
		StateID:                 req.StateID,
		ForecastDays:            days,
		PredictedDemand:         values,
		ConfidenceIntervalLower: lower,
		ConfidenceIntervalUpper: upper,
		ForecastDate:            s.now().UTC().Format(time.RFC3339),
		ModelVersion:            modelVersion,
		AccuracyMAPE:            0.0,
	}
}

// ForecastMultipleParts forecasts each part independently.
func (s *Service) ForecastMultipleParts(partIDs []int64, cityID, stateID *int64, forecastDays int) []Result {
	results := make([]Result, 0, len(partIDs))
	for _, partID := range partIDs {
		results = append(results, s.ForecastDemand(Request{
			PartID:       partID,
			CityID:       cityID,
			StateID:      stateID,
			ForecastDays: forecastDays,
		}))
	}
	return results
}

// baseDemand is the historical average daily usage for the part in scope.
// TODO: query part usage history once the inventory transaction table lands.
func baseDemand(partID int64, cityID, stateID *int64) float64 {
	return 0.0
}

func generateSeries(base float64, days int) (values, lower, upper []float64) {
	values = make([]float64, days)
	lower = make([]float64, days)
	upper = make([]float64, days)
	for i := 0; i < days; i++ {
		values[i] = base
		lower[i] = base
		upper[i] = base
	}
	return values, lower, upper
}
