package services

import (
	"context"
	"testing"
	"time"

	"lifeline/models"
	"lifeline/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTelemetry(t *testing.T) (*TelemetryService, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	ts := NewTelemetryService(st, nil)
	require.NoError(t, ts.Start(context.Background()))
	t.Cleanup(ts.Stop)
	return ts, st
}

func TestTelemetryDefaults(t *testing.T) {
	ts, _ := newTestTelemetry(t)

	snap := ts.Snapshot()
	assert.Equal(t, models.TelemetryDefaultStatus, snap.Status)
	assert.Equal(t, models.TelemetryDefaultBattery, snap.Battery)
	assert.Zero(t, snap.Acceleration)
	assert.False(t, snap.Online)
}

func TestTelemetryMirrorsStoreUpdates(t *testing.T) {
	ts, st := newTestTelemetry(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, store.PathDeviceStatus, "Riding"))
	require.NoError(t, st.Set(ctx, store.PathDeviceAccelX, 0.12))
	require.NoError(t, st.Set(ctx, store.PathDeviceAccelY, -0.98))
	require.NoError(t, st.Set(ctx, store.PathDeviceAccelZ, 9.81))
	require.NoError(t, st.Set(ctx, store.PathDeviceBattery, "87%"))

	snap := ts.Snapshot()
	assert.Equal(t, "Riding", snap.Status)
	assert.Equal(t, "87%", snap.Battery)
	assert.Equal(t, models.Acceleration{X: 0.12, Y: -0.98, Z: 9.81}, snap.Acceleration)
}

func TestTelemetryFieldResetsOnDelete(t *testing.T) {
	ts, st := newTestTelemetry(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, store.PathDeviceStatus, "Riding"))
	require.Equal(t, "Riding", ts.Snapshot().Status)

	require.NoError(t, st.Delete(ctx, store.PathDeviceStatus))
	assert.Equal(t, models.TelemetryDefaultStatus, ts.Snapshot().Status)
}

func TestTelemetryOnlineWindow(t *testing.T) {
	ts, st := newTestTelemetry(t)
	ctx := context.Background()
	now := time.Now()
	ts.now = func() time.Time { return now }

	require.NoError(t, st.Set(ctx, store.PathDeviceLastSeen, now.Unix()-5))
	assert.True(t, ts.Online())

	require.NoError(t, st.Set(ctx, store.PathDeviceLastSeen, now.Unix()-15))
	assert.False(t, ts.Online())
}

func TestTelemetrySubscribeSeesExistingValues(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, store.PathDeviceStatus, "Parked"))

	ts := NewTelemetryService(st, nil)
	require.NoError(t, ts.Start(ctx))
	defer ts.Stop()

	assert.Equal(t, "Parked", ts.Snapshot().Status)
}

func TestTelemetryStopReleasesSubscriptions(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	ts := NewTelemetryService(st, nil)
	require.NoError(t, ts.Start(ctx))

	ts.Stop()

	require.NoError(t, st.Set(ctx, store.PathDeviceStatus, "Riding"))
	assert.Equal(t, models.TelemetryDefaultStatus, ts.Snapshot().Status)
}
