package models

import "time"

// WebSocket event types pushed to dashboard clients.
const (
	WSEventTelemetry  = "telemetry"
	WSEventLocation   = "location"
	WSEventSpeed      = "speed"
	WSEventPOIs       = "pois"
	WSEventCountdown  = "countdown"
	WSEventDispatched = "dispatched"
	WSEventAlert      = "alert"
	WSEventPresence   = "presence"
)

// WSEvent is the envelope for every frame pushed over the dashboard socket.
type WSEvent struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// WSLocationFrame is the only inbound frame the hub accepts: a position fix
// from the dashboard's geolocation source.
type WSLocationFrame struct {
	Type     string             `json:"type"`
	Location LocationFixRequest `json:"location"`
}
