package services

import (
	"context"
	"sync"
	"time"

	"lifeline/models"
	"lifeline/store"
)

// TelemetryService mirrors the device state published by the wearable:
// status, acceleration axes, battery and the last-seen heartbeat. Each store
// subscription independently overwrites its own field with the latest value
// received; there is no cross-field ordering. Online is derived at read
// time from heartbeat recency.
type TelemetryService struct {
	store store.Store
	subs  *store.Subscriptions
	hub   Broadcaster
	now   func() time.Time

	mu        sync.RWMutex
	telemetry models.DeviceTelemetry
}

func NewTelemetryService(st store.Store, hub Broadcaster) *TelemetryService {
	if hub == nil {
		hub = NopBroadcaster{}
	}
	return &TelemetryService{
		store: st,
		subs:  &store.Subscriptions{},
		hub:   hub,
		now:   time.Now,
		telemetry: models.DeviceTelemetry{
			Status:  models.TelemetryDefaultStatus,
			Battery: models.TelemetryDefaultBattery,
		},
	}
}

// Start opens the device-path subscriptions. They stay registered until
// Stop releases them.
func (ts *TelemetryService) Start(ctx context.Context) error {
	paths := map[string]store.Handler{
		store.PathDeviceStatus: func(raw string) {
			ts.update(func(t *models.DeviceTelemetry) {
				t.Status = models.TelemetryDefaultStatus
				store.Decode(raw, &t.Status)
			})
		},
		store.PathDeviceAccelX: func(raw string) {
			ts.update(func(t *models.DeviceTelemetry) {
				t.Acceleration.X = 0
				store.Decode(raw, &t.Acceleration.X)
			})
		},
		store.PathDeviceAccelY: func(raw string) {
			ts.update(func(t *models.DeviceTelemetry) {
				t.Acceleration.Y = 0
				store.Decode(raw, &t.Acceleration.Y)
			})
		},
		store.PathDeviceAccelZ: func(raw string) {
			ts.update(func(t *models.DeviceTelemetry) {
				t.Acceleration.Z = 0
				store.Decode(raw, &t.Acceleration.Z)
			})
		},
		store.PathDeviceBattery: func(raw string) {
			ts.update(func(t *models.DeviceTelemetry) {
				t.Battery = models.TelemetryDefaultBattery
				store.Decode(raw, &t.Battery)
			})
		},
		store.PathDeviceLastSeen: func(raw string) {
			ts.update(func(t *models.DeviceTelemetry) {
				t.LastSeen = 0
				store.Decode(raw, &t.LastSeen)
			})
		},
	}

	for path, fn := range paths {
		if err := ts.subs.Subscribe(ctx, ts.store, path, fn); err != nil {
			ts.subs.Close()
			return err
		}
	}
	return nil
}

// Stop releases every device-path subscription atomically.
func (ts *TelemetryService) Stop() {
	ts.subs.Close()
}

// Snapshot returns the current telemetry with the derived online flag.
func (ts *TelemetryService) Snapshot() models.DeviceSnapshot {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return models.DeviceSnapshot{
		DeviceTelemetry: ts.telemetry,
		Online:          ts.telemetry.OnlineAt(ts.now()),
	}
}

// Online reports whether the device heartbeat is recent.
func (ts *TelemetryService) Online() bool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.telemetry.OnlineAt(ts.now())
}

func (ts *TelemetryService) update(apply func(*models.DeviceTelemetry)) {
	ts.mu.Lock()
	apply(&ts.telemetry)
	snapshot := models.DeviceSnapshot{
		DeviceTelemetry: ts.telemetry,
		Online:          ts.telemetry.OnlineAt(ts.now()),
	}
	ts.mu.Unlock()

	ts.hub.Broadcast(models.WSEvent{
		Type:      models.WSEventTelemetry,
		Data:      snapshot,
		Timestamp: time.Now(),
	})
}
