package store

import (
	"context"
	"encoding/json"
	"sync"
)

// Shared store paths. These form the read/write contract with the device
// firmware and the dashboard; they are not a schema file.
const (
	PathDeviceStatus   = "device/status"
	PathDeviceAccelX   = "device/accel/x"
	PathDeviceAccelY   = "device/accel/y"
	PathDeviceAccelZ   = "device/accel/z"
	PathDeviceBattery  = "device/battery"
	PathDeviceLastSeen = "device/lastSeen"
	PathDeviceLocation = "device/location"
	PathDeviceSpeed    = "device/speed"
	PathRescueRequest  = "device/rescueRequest"
	PathTriggered      = "triggered"
)

// AccidentPath returns the store path for an accident record.
func AccidentPath(id string) string {
	return "accidents/" + id
}

// Handler receives the raw JSON value at a path. An empty string means the
// path is absent or was deleted.
type Handler func(value string)

// Store is the shared remote key-path store: the system of record for
// device and accident state. Values are JSON-encoded. Subscriptions deliver
// the current value on registration and every subsequent write; delivery
// order across paths is not guaranteed, each handler simply overwrites its
// own field with the latest value received.
type Store interface {
	// Get returns the raw JSON value at path, or "" when absent.
	Get(ctx context.Context, path string) (string, error)
	// Set JSON-encodes value and writes it at path.
	Set(ctx context.Context, path string, value interface{}) error
	// Delete removes the value at path. Deleting an absent path is not an
	// error.
	Delete(ctx context.Context, path string) error
	// Subscribe registers fn for updates at path and returns a cancel
	// function releasing the registration.
	Subscribe(ctx context.Context, path string, fn Handler) (func(), error)
}

// Decode unmarshals a raw store value into out. Absent values ("") leave
// out untouched and report false.
func Decode(raw string, out interface{}) bool {
	if raw == "" {
		return false
	}
	return json.Unmarshal([]byte(raw), out) == nil
}

// Encode marshals a value the way Set does, for handlers that need to
// compare raw payloads.
func Encode(value interface{}) string {
	b, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(b)
}

// Subscriptions is the single subscription-lifetime owner for one consumer:
// every registration a consumer opens is added here, and Close releases
// them all atomically on teardown.
type Subscriptions struct {
	mu      sync.Mutex
	cancels []func()
	closed  bool
}

// Subscribe opens a subscription on s and registers its cancel function.
// If the group is already closed the subscription is released immediately.
func (g *Subscriptions) Subscribe(ctx context.Context, s Store, path string, fn Handler) error {
	cancel, err := s.Subscribe(ctx, path, fn)
	if err != nil {
		return err
	}
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		cancel()
		return nil
	}
	g.cancels = append(g.cancels, cancel)
	g.mu.Unlock()
	return nil
}

// Close releases every registration in the group. Safe to call more than
// once.
func (g *Subscriptions) Close() {
	g.mu.Lock()
	cancels := g.cancels
	g.cancels = nil
	g.closed = true
	g.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}
