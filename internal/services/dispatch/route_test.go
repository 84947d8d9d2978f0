package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/fieldserve/pkg/geo"
)

func TestOptimizeRouteNearestFirst(t *testing.T) {
	start := geo.Point{Lat: 19.0760, Lng: 72.8777} // Mumbai
	near := geo.Point{Lat: 19.2183, Lng: 72.9781}  // Thane
	far := geo.Point{Lat: 18.5204, Lng: 73.8567}   // Pune

	p := NewPlanner()
	result := p.OptimizeRoute(42, start, []Stop{
		{TicketID: 1, Location: far},
		{TicketID: 2, Location: near},
	})

	require.Empty(t, result.Error)
	assert.Equal(t, int64(42), result.EngineerID)
	assert.Equal(t, []int64{2, 1}, result.OptimizedOrder)

	expected := geo.Haversine(start, near) + geo.Haversine(near, far)
	assert.InDelta(t, expected, result.TotalDistanceKm, 1e-9)
	assert.InDelta(t, geo.TravelTimeMinutes(expected, 30), result.EstimatedTravelTimeMinutes, 1e-9)
}

func TestOptimizeRouteEmpty(t *testing.T) {
	p := NewPlanner()
	result := p.OptimizeRoute(1, geo.Point{}, nil)

	assert.Empty(t, result.OptimizedOrder)
	assert.Zero(t, result.TotalDistanceKm)
	assert.Zero(t, result.EstimatedTravelTimeMinutes)
}

func TestOptimizeRouteTieBreakKeepsInputOrder(t *testing.T) {
	start := geo.Point{Lat: 0, Lng: 0}
	// Two stops equidistant from the start: the first-listed one goes first.
	a := geo.Point{Lat: 0, Lng: 1}
	b := geo.Point{Lat: 0, Lng: -1}

	p := NewPlanner()
	result := p.OptimizeRoute(1, start, []Stop{
		{TicketID: 9, Location: a},
		{TicketID: 8, Location: b},
	})

	assert.Equal(t, []int64{9, 8}, result.OptimizedOrder)
}

func TestOptimizeRouteReproducible(t *testing.T) {
	start := geo.Point{Lat: 12.9716, Lng: 77.5946}
	stops := []Stop{
		{TicketID: 1, Location: geo.Point{Lat: 12.99, Lng: 77.60}},
		{TicketID: 2, Location: geo.Point{Lat: 12.90, Lng: 77.55}},
		{TicketID: 3, Location: geo.Point{Lat: 13.05, Lng: 77.65}},
	}

	p := NewPlanner()
	first := p.OptimizeRoute(1, start, stops)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, p.OptimizeRoute(1, start, stops))
	}
}
