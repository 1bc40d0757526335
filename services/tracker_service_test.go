package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"lifeline/models"
	"lifeline/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleFixPublishesPosition(t *testing.T) {
	st := store.NewMemoryStore()
	ts := NewTrackerService(st, NewFacilityResolver("http://invalid", "http://invalid", nil), nil, TrackerConfig{
		FirstFetchDelay: time.Hour,
		RefreshInterval: time.Hour,
	})
	defer ts.Stop()

	status := ts.HandleFix(context.Background(), models.LocationFixRequest{Latitude: 21.03, Longitude: 105.85})
	assert.Equal(t, models.GeoStatusAvailable, status.Status)
	assert.Equal(t, 21.03, status.Latitude)

	var position models.DevicePosition
	require.True(t, storeValue(t, st, store.PathDeviceLocation, &position))
	assert.Equal(t, 21.03, position.Latitude)
	assert.Equal(t, 105.85, position.Longitude)
	assert.NotZero(t, position.UpdatedAt)

	current := ts.Current()
	require.NotNil(t, current)
	assert.Equal(t, 21.03, current.Latitude)
}

func TestHandleFixDerivesSpeed(t *testing.T) {
	st := store.NewMemoryStore()
	ts := NewTrackerService(st, NewFacilityResolver("http://invalid", "http://invalid", nil), nil, TrackerConfig{
		FirstFetchDelay: time.Hour,
		RefreshInterval: time.Hour,
	})
	defer ts.Stop()

	base := time.Now().UnixMilli()
	ctx := context.Background()

	ts.HandleFix(ctx, models.LocationFixRequest{Latitude: 0, Longitude: 0, Timestamp: base})

	var speed float64
	assert.False(t, storeValue(t, st, store.PathDeviceSpeed, &speed), "no speed before a second fix")

	// One degree of longitude at the equator in one hour.
	ts.HandleFix(ctx, models.LocationFixRequest{Latitude: 0, Longitude: 1, Timestamp: base + time.Hour.Milliseconds()})

	require.True(t, storeValue(t, st, store.PathDeviceSpeed, &speed))
	assert.InDelta(t, 111.19, speed, 0.1)
}

func TestFirstFixSchedulesFacilityFetch(t *testing.T) {
	var hits int32
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{"pois":[{"lat":21.0,"lon":105.8,"name":"Bach Mai"}]}`))
	}))
	defer primary.Close()

	st := store.NewMemoryStore()
	resolver := NewFacilityResolver(primary.URL, primary.URL, nil)
	ts := NewTrackerService(st, resolver, nil, TrackerConfig{
		FirstFetchDelay: 20 * time.Millisecond,
		RefreshInterval: 30 * time.Millisecond,
	})

	ts.HandleFix(context.Background(), models.LocationFixRequest{Latitude: 21.03, Longitude: 105.85})

	// First fetch after the initial delay, then again on the refresh
	// interval once each fetch completes.
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&hits) >= 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.NotEmpty(t, resolver.POIs())

	ts.Stop()
	settled := atomic.LoadInt32(&hits)
	time.Sleep(100 * time.Millisecond)
	assert.LessOrEqual(t, atomic.LoadInt32(&hits)-settled, int32(1), "at most one in-flight fetch after stop")
}

func TestReportFailure(t *testing.T) {
	st := store.NewMemoryStore()
	ts := NewTrackerService(st, NewFacilityResolver("http://invalid", "http://invalid", nil), nil, DefaultTrackerConfig())
	defer ts.Stop()

	status := ts.ReportFailure(models.GeoStatusError, "User denied Geolocation")
	assert.Equal(t, models.GeoStatusError, status.Status)
	assert.Equal(t, "User denied Geolocation", status.Text)
	assert.Equal(t, status, ts.Status())

	assert.Nil(t, ts.Current())
}
