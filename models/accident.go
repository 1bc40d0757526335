package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Accident status constants. A confirmed accident keeps status "pending"
// for downstream triage; triage tooling moves it onward.
const (
	AccidentStatusPending  = "pending"
	AccidentStatusResolved = "resolved"
)

// AccidentEvent is the record written to the shared store when the trigger
// flag fires. It is provisional (Confirmed=false) while the countdown runs,
// finalized on confirmation, and deleted entirely on cancellation.
type AccidentEvent struct {
	ID        string  `json:"id" bson:"accidentId"`
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
	CreatedAt int64   `json:"createdAt" bson:"createdAt"` // epoch milliseconds
	Status    string  `json:"status" bson:"status"`
	Confirmed bool    `json:"confirmed" bson:"confirmed"`
}

// AccidentRecord is the Mongo archive document for a confirmed accident.
type AccidentRecord struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AccidentEvent `bson:",inline"`
	ArchivedAt time.Time `json:"archivedAt" bson:"archivedAt"`
}

// RescueRequest signals dispatch; it is written together with a confirmed
// AccidentEvent and never updated afterward.
type RescueRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"` // epoch milliseconds
}

// AccidentID derives the accident identifier from the trigger time.
func AccidentID(triggeredAt time.Time) string {
	return fmt.Sprintf("device-%d", triggeredAt.Unix())
}

// CountdownState is the tagged state of the accident countdown controller.
type CountdownState string

const (
	CountdownIdle     CountdownState = "idle"
	CountdownCounting CountdownState = "counting"
	CountdownCooldown CountdownState = "cooldown"
)

// CountdownStatus is the API/WebSocket view of the controller.
type CountdownStatus struct {
	State      CountdownState `json:"state"`
	Remaining  int            `json:"remaining"`
	AccidentID string         `json:"accidentId,omitempty"`
	Dispatched bool           `json:"dispatched"`
}
