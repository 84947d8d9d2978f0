package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/fieldserve/internal/models"
	"github.com/fieldserve/fieldserve/pkg/geo"
)

func TestBalanceWorkloadTieBreak(t *testing.T) {
	// Two identical engineers: the earlier-listed one must win.
	engineers := []Candidate{
		{ID: 1, IsAvailable: true},
		{ID: 2, IsAvailable: true},
	}
	tickets := []PendingTicket{{ID: 100, Priority: models.PriorityMedium}}

	b := NewBalancer()
	result := b.BalanceWorkload(engineers, tickets, nil)

	require.Empty(t, result.Error)
	assert.Equal(t, []int64{100}, result.Assignments[1])
	assert.Empty(t, result.Assignments[2])
	assert.Empty(t, result.UnassignedTickets)
}

func TestBalanceWorkloadRunningLoadGrows(t *testing.T) {
	engineers := []Candidate{{ID: 1, IsAvailable: true}}
	tickets := []PendingTicket{
		{ID: 1, Priority: models.PriorityUrgent},
		{ID: 2, Priority: models.PriorityHigh},
		{ID: 3, Priority: models.PriorityLow},
	}

	b := NewBalancer()
	result := b.BalanceWorkload(engineers, tickets, nil)

	require.Empty(t, result.Error)
	assert.Equal(t, []int64{1, 2, 3}, result.Assignments[1])
	// 2.0 (urgent) + 1.5 (high) + 0.7 (low)
	assert.InDelta(t, 4.2, result.EngineerLoads[1], 1e-9)
}

func TestBalanceWorkloadSpreadsAcrossEngineers(t *testing.T) {
	engineers := []Candidate{
		{ID: 1, IsAvailable: true},
		{ID: 2, IsAvailable: true},
	}
	tickets := []PendingTicket{
		{ID: 1, Priority: models.PriorityMedium},
		{ID: 2, Priority: models.PriorityMedium},
	}

	b := NewBalancer()
	result := b.BalanceWorkload(engineers, tickets, nil)

	// After engineer 1 takes ticket 1 its load exceeds the average, so
	// engineer 2 earns the underloaded bonus and takes ticket 2.
	assert.Equal(t, []int64{1}, result.Assignments[1])
	assert.Equal(t, []int64{2}, result.Assignments[2])
	assert.InDelta(t, 1.0, result.BalanceScore, 1e-9)
}

func TestBalanceWorkloadConstraints(t *testing.T) {
	city1 := int64(1)
	city2 := int64(2)
	engineers := []Candidate{
		{ID: 1, CityID: &city1, Skills: []string{"hvac"}, IsAvailable: true},
		{ID: 2, CityID: &city2, Skills: []string{"plumbing"}, IsAvailable: true},
	}
	tickets := []PendingTicket{{ID: 10, Priority: models.PriorityHigh}}

	b := NewBalancer()

	t.Run("city filter", func(t *testing.T) {
		result := b.BalanceWorkload(engineers, tickets, &Constraints{RequiredCityID: &city2})
		assert.Equal(t, []int64{10}, result.Assignments[2])
	})

	t.Run("skill filter", func(t *testing.T) {
		result := b.BalanceWorkload(engineers, tickets, &Constraints{RequiredSkills: []string{"plumbing"}})
		assert.Equal(t, []int64{10}, result.Assignments[2])
	})

	t.Run("unsatisfiable constraints leave ticket unassigned", func(t *testing.T) {
		result := b.BalanceWorkload(engineers, tickets, &Constraints{RequiredSkills: []string{"welding"}})
		assert.Empty(t, result.Assignments)
		assert.Equal(t, []int64{10}, result.UnassignedTickets)
	})
}

func TestBalanceWorkloadScoringSignals(t *testing.T) {
	t.Run("skill overlap outweighs proximity bonus", func(t *testing.T) {
		near := geo.Point{Lat: 19.07, Lng: 72.87}
		far := geo.Point{Lat: 19.20, Lng: 72.99}
		engineers := []Candidate{
			{ID: 1, IsAvailable: true, Location: &near},
			{ID: 2, IsAvailable: true, Location: &far, Skills: []string{"hvac", "electrical"}},
		}
		tickets := []PendingTicket{{
			ID:             5,
			Priority:       models.PriorityHigh,
			RequiredSkills: []string{"hvac", "electrical"},
			Location:       &near,
		}}

		result := NewBalancer().BalanceWorkload(engineers, tickets, nil)
		// +40 for two matching skills beats the ~+30 proximity edge.
		assert.Equal(t, []int64{5}, result.Assignments[2])
	})

	t.Run("unavailable engineer loses to available one", func(t *testing.T) {
		engineers := []Candidate{
			{ID: 1, IsAvailable: false},
			{ID: 2, IsAvailable: true},
		}
		tickets := []PendingTicket{{ID: 6, Priority: models.PriorityMedium}}

		result := NewBalancer().BalanceWorkload(engineers, tickets, nil)
		assert.Equal(t, []int64{6}, result.Assignments[2])
	})
}

func TestEstimateTicketEffort(t *testing.T) {
	assert.InDelta(t, 2.0, estimateTicketEffort(PendingTicket{Priority: models.PriorityUrgent}), 1e-9)
	assert.InDelta(t, 1.5, estimateTicketEffort(PendingTicket{Priority: models.PriorityHigh}), 1e-9)
	assert.InDelta(t, 1.0, estimateTicketEffort(PendingTicket{Priority: models.PriorityMedium}), 1e-9)
	assert.InDelta(t, 0.7, estimateTicketEffort(PendingTicket{Priority: models.PriorityLow}), 1e-9)
	assert.InDelta(t, 3.0, estimateTicketEffort(PendingTicket{Priority: models.PriorityUrgent, IssueCategory: "multi_part"}), 1e-9)
	// Unknown priority gets the base multiplier.
	assert.InDelta(t, 1.0, estimateTicketEffort(PendingTicket{Priority: models.TicketPriority("odd")}), 1e-9)
}

func TestCurrentLoad(t *testing.T) {
	eng := Candidate{HighPriorityTickets: 2, MediumPriorityTickets: 1, LowPriorityTickets: 3, IsAvailable: true}
	assert.InDelta(t, 11.0, currentLoad(eng), 1e-9)

	eng.IsAvailable = false
	assert.InDelta(t, 111.0, currentLoad(eng), 1e-9)
}

func TestBalanceScore(t *testing.T) {
	assert.Equal(t, 0.0, balanceScore(map[int64]float64{}))
	assert.Equal(t, 1.0, balanceScore(map[int64]float64{1: 0, 2: 0}))
	assert.InDelta(t, 1.0, balanceScore(map[int64]float64{1: 2, 2: 2}), 1e-9)

	uneven := balanceScore(map[int64]float64{1: 1, 2: 9})
	even := balanceScore(map[int64]float64{1: 5, 2: 5})
	assert.Less(t, uneven, even)
}
