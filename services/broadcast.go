package services

import "lifeline/models"

// Broadcaster pushes events to connected dashboard clients. Implemented by
// the websocket hub; a nil-safe no-op is used in tests.
type Broadcaster interface {
	Broadcast(event models.WSEvent)
}

// NopBroadcaster discards every event.
type NopBroadcaster struct{}

func (NopBroadcaster) Broadcast(models.WSEvent) {}
