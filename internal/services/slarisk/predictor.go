// Package slarisk scores the risk that a ticket misses its SLA deadline.
package slarisk

import (
	"log"
	"math"
	"time"

	"github.com/fieldserve/fieldserve/internal/models"
)

const modelVersion = "v1.0"

// HistoricalStats carries aggregate resolution history for similar tickets.
type HistoricalStats struct {
	AvgResolutionHours float64 `json:"avg_resolution_hours"`
}

// Input describes the ticket state used for a prediction.
type Input struct {
	TicketID    int64               `json:"ticket_id"`
	Status      models.TicketStatus `json:"status"`
	SLADeadline time.Time           `json:"sla_deadline"`
	CreatedAt   time.Time           `json:"created_at"`
	AssignedAt  *time.Time          `json:"assigned_at,omitempty"`
	Historical  *HistoricalStats    `json:"historical,omitempty"`
}

// Result is a breach-risk prediction.
type Result struct {
	TicketID                     int64              `json:"ticket_id"`
	BreachRisk                   float64            `json:"breach_risk"`
	TimeRemainingHours           float64            `json:"time_remaining_hours"`
	PredictedResolutionTimeHours float64            `json:"predicted_resolution_time_hours"`
	RiskFactors                  map[string]float64 `json:"risk_factors,omitempty"`
	Recommendations              []string           `json:"recommendations,omitempty"`
	ModelVersion                 string             `json:"model_version"`
	Error                        string             `json:"error,omitempty"`
}

var statusRisks = map[models.TicketStatus]float64{
	models.StatusCreated:      0.8,
	models.StatusAssigned:     0.5,
	models.StatusInProgress:   0.3,
	models.StatusWaitingParts: 0.9,
	models.StatusResolved:     0.0,
	models.StatusClosed:       0.0,
}

var baseResolutionHours = map[models.TicketStatus]float64{
	models.StatusCreated:      12.0,
	models.StatusAssigned:     8.0,
	models.StatusInProgress:   4.0,
	models.StatusWaitingParts: 24.0,
	models.StatusResolved:     0.0,
}

// Predictor computes SLA breach risk. Stateless apart from the clock, which
// tests can pin.
type Predictor struct {
	now func() time.Time
}

// NewPredictor creates an SLA breach-risk predictor.
func NewPredictor() *Predictor {
	return &Predictor{now: time.Now}
}

// PredictBreachRisk scores the breach risk for a ticket. It never fails: an
// internal panic is logged and converted into a degraded result with a 0.5
// risk and an error marker.
func (p *Predictor) PredictBreachRisk(in Input) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("slarisk: recovered: %v", r)
			result = Result{TicketID: in.TicketID, BreachRisk: 0.5, Error: "internal error", ModelVersion: modelVersion}
		}
	}()

	timeRemaining := in.SLADeadline.Sub(p.now().UTC()).Hours()

	factors := calculateRiskFactors(in, timeRemaining)
	risk := calculateBreachRisk(factors, timeRemaining)

	return Result{
		TicketID:                     in.TicketID,
		BreachRisk:                   risk,
		TimeRemainingHours:           timeRemaining,
		PredictedResolutionTimeHours: predictResolutionTime(in.Status, in.Historical),
		RiskFactors:                  factors,
		Recommendations:              generateRecommendations(risk, factors),
		ModelVersion:                 modelVersion,
	}
}

func calculateRiskFactors(in Input, timeRemaining float64) map[string]float64 {
	factors := make(map[string]float64, 4)

	factors["time_pressure"] = clamp(1-timeRemaining/24, 0, 1)

	if risk, ok := statusRisks[in.Status]; ok {
		factors["status_risk"] = risk
	} else {
		factors["status_risk"] = 0.5
	}

	if in.AssignedAt != nil {
		delayHours := in.AssignedAt.Sub(in.CreatedAt).Hours()
		factors["assignment_delay"] = math.Min(1.0, delayHours/48)
	} else {
		// Never assigned means nobody is working on it.
		factors["assignment_delay"] = 1.0
	}

	if in.Historical != nil {
		factors["historical_risk"] = math.Min(1.0, in.Historical.AvgResolutionHours/timeRemaining)
	} else {
		factors["historical_risk"] = 0.5
	}

	return factors
}

var riskWeights = map[string]float64{
	"time_pressure":    0.3,
	"status_risk":      0.3,
	"assignment_delay": 0.2,
	"historical_risk":  0.2,
}

func calculateBreachRisk(factors map[string]float64, timeRemaining float64) float64 {
	risk := 0.0
	for factor, weight := range riskWeights {
		risk += factors[factor] * weight
	}

	if timeRemaining < 0 {
		risk = 1.0 // already breached
	} else if timeRemaining < 4 {
		risk = math.Min(1.0, risk+0.3)
	}

	return clamp(risk, 0, 1)
}

func predictResolutionTime(status models.TicketStatus, historical *HistoricalStats) float64 {
	base, ok := baseResolutionHours[status]
	if !ok {
		base = 6.0
	}
	if historical != nil {
		return (base + historical.AvgResolutionHours) / 2
	}
	return base
}

func generateRecommendations(risk float64, factors map[string]float64) []string {
	var recommendations []string

	if risk > 0.7 {
		recommendations = append(recommendations, "URGENT: High risk of SLA breach - escalate immediately")
	}
	if factors["assignment_delay"] > 0.5 {
		recommendations = append(recommendations, "Assign ticket to available engineer immediately")
	}
	if factors["status_risk"] > 0.7 {
		if factors["status_risk"] >= statusRisks[models.StatusWaitingParts] {
			recommendations = append(recommendations, "Expedite parts procurement or find alternative solution")
		} else {
			recommendations = append(recommendations, "Escalate to senior engineer or manager")
		}
	}
	if factors["time_pressure"] > 0.8 {
		recommendations = append(recommendations, "Consider extending SLA or providing customer update")
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, "Monitor ticket closely")
	}
	return recommendations
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
