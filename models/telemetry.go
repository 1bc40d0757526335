package models

import "time"

// Telemetry field defaults used when the remote store has no value yet.
const (
	TelemetryDefaultStatus  = "No data"
	TelemetryDefaultBattery = "Unknown"
)

// OnlineWindow is how recent the device heartbeat must be for the device
// to count as online. Online is derived at read time, never stored.
const OnlineWindow = 10 * time.Second

// Acceleration is the raw sensor triple reported by the device.
type Acceleration struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DeviceTelemetry mirrors the latest known state of the wearable device.
// All fields are owned by the device and mutated remotely; this service
// only reads them via store subscriptions.
type DeviceTelemetry struct {
	Status       string       `json:"status"`
	Acceleration Acceleration `json:"acceleration"`
	Battery      string       `json:"battery"`
	LastSeen     int64        `json:"lastSeen"` // epoch seconds
}

// OnlineAt reports whether the device heartbeat is recent enough, relative
// to now, for the device to count as online.
func (t DeviceTelemetry) OnlineAt(now time.Time) bool {
	if t.LastSeen == 0 {
		return false
	}
	return now.Unix()-t.LastSeen < int64(OnlineWindow/time.Second)
}

// DeviceSnapshot is the API view of the telemetry: the raw mirror plus the
// derived online flag.
type DeviceSnapshot struct {
	DeviceTelemetry
	Online bool `json:"online"`
}
