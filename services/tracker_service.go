package services

import (
	"context"
	"sync"
	"time"

	"lifeline/models"
	"lifeline/store"
	"lifeline/utils"

	"github.com/sirupsen/logrus"
)

// TrackerConfig controls the facility-fetch schedule. The refresh interval
// is a deliberate rate limit on the facility index, not a debounce.
type TrackerConfig struct {
	FirstFetchDelay time.Duration
	RefreshInterval time.Duration
}

func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		FirstFetchDelay: 2 * time.Second,
		RefreshInterval: 300 * time.Second,
	}
}

// TrackerService ingests position fixes, derives instantaneous speed from
// consecutive fixes, and publishes both to the shared store. Only one prior
// sample is retained, long enough for the speed computation. Fixes also
// drive the facility-resolver schedule.
type TrackerService struct {
	store    store.Store
	resolver *FacilityResolver
	hub      Broadcaster
	cfg      TrackerConfig
	now      func() time.Time

	mu         sync.Mutex
	last       *models.LocationSample
	status     models.GeoStatus
	fetchTimer *time.Timer
	stopped    bool
}

func NewTrackerService(st store.Store, resolver *FacilityResolver, hub Broadcaster, cfg TrackerConfig) *TrackerService {
	if hub == nil {
		hub = NopBroadcaster{}
	}
	return &TrackerService{
		store:    st,
		resolver: resolver,
		hub:      hub,
		cfg:      cfg,
		now:      time.Now,
		status:   models.GeoStatus{Status: models.GeoStatusUnsupported, Text: "No position fix received yet"},
	}
}

// HandleFix processes a position fix: publishes the raw position with a
// fresh capture timestamp, publishes a speed sample when a prior fix
// exists, and schedules the first facility fetch. Store write failures are
// logged, never surfaced to the position source.
func (ts *TrackerService) HandleFix(ctx context.Context, fix models.LocationFixRequest) models.GeoStatus {
	now := ts.now()
	sample := models.LocationSample{
		Latitude:  fix.Latitude,
		Longitude: fix.Longitude,
		Timestamp: fix.Timestamp,
	}
	if sample.Timestamp == 0 {
		sample.Timestamp = now.UnixMilli()
	}

	ts.mu.Lock()
	prev := ts.last
	ts.last = &sample
	firstFix := prev == nil
	ts.status = models.GeoStatus{
		Latitude:  sample.Latitude,
		Longitude: sample.Longitude,
		Text:      "Position acquired",
		Status:    models.GeoStatusAvailable,
	}
	status := ts.status
	ts.mu.Unlock()

	if prev != nil {
		speed := utils.SpeedKmh(prev.Latitude, prev.Longitude, prev.Timestamp,
			sample.Latitude, sample.Longitude, sample.Timestamp)
		if err := ts.store.Set(ctx, store.PathDeviceSpeed, speed); err != nil {
			logrus.WithError(err).Warn("tracker: speed write failed")
		}
		ts.hub.Broadcast(models.WSEvent{
			Type:      models.WSEventSpeed,
			Data:      speed,
			Timestamp: now,
		})
	}

	position := models.DevicePosition{
		Latitude:  sample.Latitude,
		Longitude: sample.Longitude,
		UpdatedAt: now.UnixMilli(),
	}
	if err := ts.store.Set(ctx, store.PathDeviceLocation, position); err != nil {
		logrus.WithError(err).Warn("tracker: position write failed")
	}
	ts.hub.Broadcast(models.WSEvent{
		Type:      models.WSEventLocation,
		Data:      position,
		Timestamp: now,
	})

	if firstFix {
		ts.scheduleFetch(ts.cfg.FirstFetchDelay)
	}

	return status
}

// ReportFailure records a position-source failure: permission denial maps
// to "error", a missing geolocation capability to "unsupported". Never an
// exception, only a status the dashboard can display.
func (ts *TrackerService) ReportFailure(status, reason string) models.GeoStatus {
	ts.mu.Lock()
	ts.status = models.GeoStatus{Status: status, Text: reason}
	out := ts.status
	ts.mu.Unlock()
	return out
}

// Status returns the last reported geolocation state.
func (ts *TrackerService) Status() models.GeoStatus {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.status
}

// Current returns the most recent fix, or nil when none has arrived.
func (ts *TrackerService) Current() *models.LocationSample {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.last == nil {
		return nil
	}
	sample := *ts.last
	return &sample
}

// Stop clears the pending fetch timer.
func (ts *TrackerService) Stop() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.stopped = true
	if ts.fetchTimer != nil {
		ts.fetchTimer.Stop()
		ts.fetchTimer = nil
	}
}

func (ts *TrackerService) scheduleFetch(after time.Duration) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.stopped {
		return
	}
	if ts.fetchTimer != nil {
		ts.fetchTimer.Stop()
	}
	ts.fetchTimer = time.AfterFunc(after, ts.fetchFacilities)
}

// fetchFacilities resolves nearby facilities around the current fix and
// schedules the next fetch once this one has completed. The resolver's
// in-flight guard drops overlapping calls.
func (ts *TrackerService) fetchFacilities() {
	ts.mu.Lock()
	last := ts.last
	ts.mu.Unlock()

	if last != nil {
		ctx, cancel := context.WithTimeout(context.Background(), (OverpassQueryTimeout+10)*time.Second)
		if _, err := ts.resolver.Resolve(ctx, last.Latitude, last.Longitude, DefaultSearchRadius); err != nil {
			logrus.WithError(err).Warn("tracker: facility fetch failed")
		}
		cancel()
	}

	ts.scheduleFetch(ts.cfg.RefreshInterval)
}
