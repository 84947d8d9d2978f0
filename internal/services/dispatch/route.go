package dispatch

import (
	"log"

	"github.com/fieldserve/fieldserve/pkg/geo"
)

// Stop is a ticket location on a planned route. Stops keep their input order
// so distance ties resolve deterministically.
type Stop struct {
	TicketID int64     `json:"ticket_id"`
	Location geo.Point `json:"location"`
}

// RouteResult is a planned visit order for one engineer.
type RouteResult struct {
	EngineerID                  int64   `json:"engineer_id"`
	OptimizedOrder              []int64 `json:"optimized_order"`
	TotalDistanceKm             float64 `json:"total_distance_km"`
	EstimatedTravelTimeMinutes  float64 `json:"estimated_travel_time_minutes"`
	SavingsPercentage           float64 `json:"savings_percentage"`
	ModelVersion                string  `json:"model_version"`
	Error                       string  `json:"error,omitempty"`
}

// Planner builds greedy nearest-neighbor routes over haversine distance.
type Planner struct{}

// NewPlanner creates a route planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// OptimizeRoute orders an engineer's stops nearest-first from the starting
// location. It never fails: on an internal panic the stops are returned in
// input order with an error marker.
func (p *Planner) OptimizeRoute(engineerID int64, start geo.Point, stops []Stop) (result RouteResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("dispatch: route recovered: %v", r)
			order := make([]int64, len(stops))
			for i, s := range stops {
				order[i] = s.TicketID
			}
			result = RouteResult{EngineerID: engineerID, OptimizedOrder: order, Error: "internal error", ModelVersion: modelVersion}
		}
	}()

	order := nearestNeighborRoute(start, stops)
	total := totalDistance(start, order, stops)

	return RouteResult{
		EngineerID:                 engineerID,
		OptimizedOrder:             order,
		TotalDistanceKm:            total,
		EstimatedTravelTimeMinutes: geo.TravelTimeMinutes(total, 30),
		ModelVersion:               modelVersion,
	}
}

// nearestNeighborRoute repeatedly picks the closest remaining stop; ties go
// to the earliest remaining stop.
func nearestNeighborRoute(start geo.Point, stops []Stop) []int64 {
	if len(stops) == 0 {
		return []int64{}
	}

	remaining := make([]Stop, len(stops))
	copy(remaining, stops)

	route := make([]int64, 0, len(stops))
	current := start

	for len(remaining) > 0 {
		nearestIdx := 0
		nearestDist := geo.Haversine(current, remaining[0].Location)
		for i := 1; i < len(remaining); i++ {
			if d := geo.Haversine(current, remaining[i].Location); d < nearestDist {
				nearestDist = d
				nearestIdx = i
			}
		}

		nearest := remaining[nearestIdx]
		route = append(route, nearest.TicketID)
		current = nearest.Location
		remaining = append(remaining[:nearestIdx], remaining[nearestIdx+1:]...)
	}

	return route
}

func totalDistance(start geo.Point, order []int64, stops []Stop) float64 {
	if len(order) == 0 {
		return 0.0
	}

	locations := make(map[int64]geo.Point, len(stops))
	for _, s := range stops {
		locations[s.TicketID] = s.Location
	}

	total := geo.Haversine(start, locations[order[0]])
	for i := 0; i < len(order)-1; i++ {
		total += geo.Haversine(locations[order[i]], locations[order[i+1]])
	}
	return total
}
