package models

import "time"

// LocationSample is a single position fix from the device or the dashboard
// geolocation source. Only the most recent prior sample is retained, long
// enough to compute instantaneous speed.
type LocationSample struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"` // epoch milliseconds
}

// Time returns the sample's capture time.
func (s LocationSample) Time() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// DevicePosition is the position record published to the shared store on
// every fix, with a fresh capture timestamp.
type DevicePosition struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	UpdatedAt int64   `json:"updatedAt"` // epoch milliseconds
}

// Geolocation source status values.
const (
	GeoStatusAvailable   = "available"
	GeoStatusError       = "error"
	GeoStatusUnsupported = "unsupported"
)

// GeoStatus describes the state of the position source as last reported:
// coordinates and a human-readable text on success, a reason on failure.
type GeoStatus struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Text      string  `json:"text"`
	Status    string  `json:"status"`
}

// LocationFixRequest is the HTTP/WebSocket ingest payload for a position fix.
// Timestamp is optional; the ingest time is used when absent.
type LocationFixRequest struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90" validate:"latitude"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180" validate:"longitude"`
	Timestamp int64   `json:"timestamp"`
}
