package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	require.NoError(t, ms.Set(ctx, PathDeviceSpeed, 42.5))

	raw, err := ms.Get(ctx, PathDeviceSpeed)
	require.NoError(t, err)

	var speed float64
	assert.True(t, Decode(raw, &speed))
	assert.Equal(t, 42.5, speed)

	require.NoError(t, ms.Delete(ctx, PathDeviceSpeed))
	raw, err = ms.Get(ctx, PathDeviceSpeed)
	require.NoError(t, err)
	assert.Equal(t, "", raw)
}

func TestMemoryStoreSubscribeDeliversSnapshotAndUpdates(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	require.NoError(t, ms.Set(ctx, PathDeviceStatus, "Running"))

	var mu sync.Mutex
	var got []string
	cancel, err := ms.Subscribe(ctx, PathDeviceStatus, func(raw string) {
		mu.Lock()
		got = append(got, raw)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, ms.Set(ctx, PathDeviceStatus, "Fallen"))
	require.NoError(t, ms.Delete(ctx, PathDeviceStatus))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 3)
	assert.Equal(t, `"Running"`, got[0])
	assert.Equal(t, `"Fallen"`, got[1])
	assert.Equal(t, "", got[2])
}

func TestMemoryStoreUnsubscribeStopsDelivery(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	count := 0
	cancel, err := ms.Subscribe(ctx, PathTriggered, func(string) { count++ })
	require.NoError(t, err)

	require.NoError(t, ms.Set(ctx, PathTriggered, true))
	cancel()
	require.NoError(t, ms.Set(ctx, PathTriggered, false))

	assert.Equal(t, 1, count)
}

func TestSubscriptionsCloseReleasesAll(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	group := &Subscriptions{}

	statusCount, batteryCount := 0, 0
	require.NoError(t, group.Subscribe(ctx, ms, PathDeviceStatus, func(string) { statusCount++ }))
	require.NoError(t, group.Subscribe(ctx, ms, PathDeviceBattery, func(string) { batteryCount++ }))

	require.NoError(t, ms.Set(ctx, PathDeviceStatus, "Running"))
	require.NoError(t, ms.Set(ctx, PathDeviceBattery, "80%"))

	group.Close()

	require.NoError(t, ms.Set(ctx, PathDeviceStatus, "Fallen"))
	require.NoError(t, ms.Set(ctx, PathDeviceBattery, "20%"))

	assert.Equal(t, 1, statusCount)
	assert.Equal(t, 1, batteryCount)
}

func TestSubscribeAfterCloseIsReleasedImmediately(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	group := &Subscriptions{}
	group.Close()

	count := 0
	require.NoError(t, group.Subscribe(ctx, ms, PathDeviceStatus, func(string) { count++ }))
	require.NoError(t, ms.Set(ctx, PathDeviceStatus, "Running"))

	assert.Equal(t, 0, count)
}

func TestAccidentPath(t *testing.T) {
	assert.Equal(t, "accidents/device-1700000000", AccidentPath("device-1700000000"))
}
