package geo

import "math"

const earthRadiusKm = 6371

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Haversine returns the great-circle distance between two points in kilometers.
func Haversine(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lon1 := radians(a.Lng)
	lat2 := radians(b.Lat)
	lon2 := radians(b.Lng)

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	h := math.Pow(math.Sin(dlat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Asin(math.Sqrt(h))

	return earthRadiusKm * c
}

// TravelTimeMinutes estimates driving time for a distance at the given
// average speed. A zero or negative speed falls back to 30 km/h.
func TravelTimeMinutes(distanceKm, avgSpeedKmh float64) float64 {
	if avgSpeedKmh <= 0 {
		avgSpeedKmh = 30
	}
	return (distanceKm / avgSpeedKmh) * 60
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
