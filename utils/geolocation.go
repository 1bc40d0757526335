package utils

import (
	"math"
)

const (
	EarthRadiusKm = 6371.0
	DegToRad      = math.Pi / 180.0
)

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HaversineKm calculates the great-circle distance between two coordinates
// in kilometers using the haversine formula.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * DegToRad
	lat2Rad := lat2 * DegToRad

	dlat := (lat2 - lat1) * DegToRad
	dlon := (lon2 - lon1) * DegToRad

	a := math.Sin(dlat/2)*math.Sin(dlat/2) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// SpeedKmh calculates instantaneous speed in km/h between two fixes taken
// at epoch-millisecond timestamps, rounded to 2 decimal places. Returns 0
// when the elapsed time is zero or negative.
func SpeedKmh(lat1, lon1 float64, time1 int64, lat2, lon2 float64, time2 int64) float64 {
	elapsedHours := float64(time2-time1) / 1000.0 / 3600.0
	if elapsedHours <= 0 {
		return 0
	}

	speed := HaversineKm(lat1, lon1, lat2, lon2) / elapsedHours
	return math.Round(speed*100) / 100
}

// IsValidCoordinate checks if latitude and longitude values are valid
func IsValidCoordinate(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
