// Package dispatch assigns pending tickets to engineers and plans visit
// routes. The balancer is a greedy online algorithm: every assignment updates
// the engineer's running load before the next ticket is scored, so results
// depend on the ticket order supplied by the caller.
package dispatch

import (
	"log"
	"math"

	"github.com/fieldserve/fieldserve/internal/models"
	"github.com/fieldserve/fieldserve/pkg/geo"
)

const modelVersion = "v1.0"

// PendingTicket is a ticket awaiting assignment.
type PendingTicket struct {
	ID             int64                 `json:"id"`
	Priority       models.TicketPriority `json:"priority"`
	IssueCategory  string                `json:"issue_category"`
	RequiredSkills []string              `json:"required_skills,omitempty"`
	Location       *geo.Point            `json:"location,omitempty"`
}

// Candidate is an engineer eligible for assignment.
type Candidate struct {
	ID                    int64      `json:"id"`
	CityID                *int64     `json:"city_id,omitempty"`
	Skills                []string   `json:"skills,omitempty"`
	Location              *geo.Point `json:"location,omitempty"`
	IsAvailable           bool       `json:"is_available"`
	ActiveTickets         int        `json:"active_tickets"`
	HighPriorityTickets   int        `json:"high_priority_tickets"`
	MediumPriorityTickets int        `json:"medium_priority_tickets"`
	LowPriorityTickets    int        `json:"low_priority_tickets"`
}

// Constraints are hard filters applied before any scoring.
type Constraints struct {
	RequiredCityID *int64   `json:"required_city_id,omitempty"`
	RequiredSkills []string `json:"required_skills,omitempty"`
}

// BalanceResult is the outcome of one balancing pass.
type BalanceResult struct {
	Assignments       map[int64][]int64 `json:"assignments"`
	UnassignedTickets []int64           `json:"unassigned_tickets"`
	EngineerLoads     map[int64]float64 `json:"engineer_loads"`
	BalanceScore      float64           `json:"balance_score"`
	Recommendations   []string          `json:"recommendations"`
	ModelVersion      string            `json:"model_version"`
	Error             string            `json:"error,omitempty"`
}

// Balancer distributes pending tickets across engineers.
type Balancer struct{}

// NewBalancer creates a workload balancer.
func NewBalancer() *Balancer {
	return &Balancer{}
}

// BalanceWorkload assigns tickets to engineers in the given ticket order.
// It never fails: an internal panic produces an empty assignment set with an
// error marker.
func (b *Balancer) BalanceWorkload(engineers []Candidate, tickets []PendingTicket, constraints *Constraints) (result BalanceResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("dispatch: balance recovered: %v", r)
			result = BalanceResult{
				Assignments:  map[int64][]int64{},
				Error:        "internal error",
				ModelVersion: modelVersion,
			}
		}
	}()

	// Running load per engineer, mutated as tickets are assigned and
	// discarded when the pass completes.
	loads := make(map[int64]float64, len(engineers))
	for _, eng := range engineers {
		loads[eng.ID] = currentLoad(eng)
	}

	assignments := make(map[int64][]int64)
	unassigned := []int64{}

	for _, ticket := range tickets {
		best, found := bestEngineerForTicket(ticket, engineers, loads, constraints)
		if !found {
			unassigned = append(unassigned, ticket.ID)
			continue
		}
		assignments[best] = append(assignments[best], ticket.ID)
		loads[best] += estimateTicketEffort(ticket)
	}

	return BalanceResult{
		Assignments:       assignments,
		UnassignedTickets: unassigned,
		EngineerLoads:     loads,
		BalanceScore:      balanceScore(loads),
		Recommendations:   loadRecommendations(loads),
		ModelVersion:      modelVersion,
	}
}

// currentLoad weights an engineer's open tickets by priority. Unavailable
// engineers carry a heavy penalty so they only win when nobody else can.
func currentLoad(eng Candidate) float64 {
	load := float64(eng.HighPriorityTickets)*3.0 +
		float64(eng.MediumPriorityTickets)*2.0 +
		float64(eng.LowPriorityTickets)*1.0
	if !eng.IsAvailable {
		load += 100.0
	}
	return load
}

// bestEngineerForTicket scores every eligible engineer and returns the first
// one with the highest score, so equal scores resolve to input order.
func bestEngineerForTicket(ticket PendingTicket, engineers []Candidate, loads map[int64]float64, constraints *Constraints) (int64, bool) {
	avgLoad := 0.0
	if len(loads) > 0 {
		total := 0.0
		for _, l := range loads {
			total += l
		}
		avgLoad = total / float64(len(loads))
	}

	bestID := int64(0)
	bestScore := math.Inf(-1)
	found := false

	for _, eng := range engineers {
		if !meetsConstraints(eng, constraints) {
			continue
		}

		score := 0.0

		if loads[eng.ID] < avgLoad {
			score += 50.0
		}

		if len(eng.Skills) > 0 && len(ticket.RequiredSkills) > 0 {
			score += float64(skillOverlap(eng.Skills, ticket.RequiredSkills)) * 20.0
		}

		if eng.Location != nil && ticket.Location != nil {
			distance := geo.Haversine(*eng.Location, *ticket.Location)
			score += 30.0 / (1 + distance)
		}

		if eng.IsAvailable {
			score += 20.0
		}

		if score > bestScore {
			bestScore = score
			bestID = eng.ID
			found = true
		}
	}

	return bestID, found
}

func meetsConstraints(eng Candidate, constraints *Constraints) bool {
	if constraints == nil {
		return true
	}
	if constraints.RequiredCityID != nil {
		if eng.CityID == nil || *eng.CityID != *constraints.RequiredCityID {
			return false
		}
	}
	if len(constraints.RequiredSkills) > 0 && skillOverlap(eng.Skills, constraints.RequiredSkills) == 0 {
		return false
	}
	return true
}

func skillOverlap(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	count := 0
	seen := make(map[string]struct{}, len(b))
	for _, s := range b {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, ok := set[s]; ok {
			count++
		}
	}
	return count
}

// estimateTicketEffort converts priority and category into a load unit.
func estimateTicketEffort(ticket PendingTicket) float64 {
	effort := 1.0
	switch ticket.Priority {
	case models.PriorityUrgent:
		effort *= 2.0
	case models.PriorityHigh:
		effort *= 1.5
	case models.PriorityMedium:
		effort *= 1.0
	case models.PriorityLow:
		effort *= 0.7
	}
	if ticket.IssueCategory == "complex" || ticket.IssueCategory == "multi_part" {
		effort *= 1.5
	}
	return effort
}

// balanceScore maps the coefficient of variation of the final loads to (0,1];
// a perfectly even spread scores 1.
func balanceScore(loads map[int64]float64) float64 {
	if len(loads) == 0 {
		return 0.0
	}

	total := 0.0
	for _, l := range loads {
		total += l
	}
	avg := total / float64(len(loads))
	if avg == 0 {
		return 1.0
	}

	variance := 0.0
	for _, l := range loads {
		variance += (l - avg) * (l - avg)
	}
	variance /= float64(len(loads))
	cv := math.Sqrt(variance) / avg

	return 1.0 / (1 + cv)
}

func loadRecommendations(loads map[int64]float64) []string {
	if len(loads) == 0 {
		return nil
	}

	total := 0.0
	maxLoad := math.Inf(-1)
	minLoad := math.Inf(1)
	for _, l := range loads {
		total += l
		maxLoad = math.Max(maxLoad, l)
		minLoad = math.Min(minLoad, l)
	}
	avg := total / float64(len(loads))

	var recommendations []string
	if maxLoad > avg*1.5 {
		recommendations = append(recommendations, "Some engineers are overloaded - consider reassignment")
	}
	if minLoad < avg*0.5 && maxLoad > avg {
		recommendations = append(recommendations, "Workload imbalance detected - redistribute tickets")
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, "Workload is well balanced")
	}
	return recommendations
}
