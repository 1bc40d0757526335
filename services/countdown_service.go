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

// CountdownConfig controls the confirmation window timing.
type CountdownConfig struct {
	Duration time.Duration // full countdown window
	Tick     time.Duration // countdown resolution
	Cooldown time.Duration // post-cancel trigger suppression
}

func DefaultCountdownConfig() CountdownConfig {
	return CountdownConfig{
		Duration: 30 * time.Second,
		Tick:     1 * time.Second,
		Cooldown: 5 * time.Second,
	}
}

// Locator supplies the most recent position fix, or nil when none exists.
type Locator interface {
	Current() *models.LocationSample
}

// AccidentArchive persists confirmed accidents for downstream triage.
type AccidentArchive interface {
	Create(ctx context.Context, event models.AccidentEvent) error
}

// DispatchNotifier fans a confirmed dispatch out of band (push, SMS).
type DispatchNotifier interface {
	NotifyDispatch(event models.AccidentEvent)
}

// CountdownService is the accident confirmation state machine. The remote
// trigger flag starts a cancelable countdown; expiry and explicit
// confirmation are identical, cancellation enters a cooldown during which
// new triggers are suppressed. Exactly one accident is in flight at a time:
// a trigger while counting is a no-op. Every resolution, whichever way it
// goes, resets the trigger flag, otherwise the countdown would immediately
// re-enter.
type CountdownService struct {
	store    store.Store
	subs     *store.Subscriptions
	locator  Locator
	alerter  Alerter
	hub      Broadcaster
	archive  AccidentArchive
	notifier DispatchNotifier
	cfg      CountdownConfig
	now      func() time.Time

	mu            sync.Mutex
	state         models.CountdownState
	remaining     int
	accidentID    string
	recordCreated bool
	dispatched    bool
	tickStop      chan struct{}
	cooldownTimer *time.Timer
}

func NewCountdownService(
	st store.Store,
	locator Locator,
	alerter Alerter,
	hub Broadcaster,
	archive AccidentArchive,
	notifier DispatchNotifier,
	cfg CountdownConfig,
) *CountdownService {
	if hub == nil {
		hub = NopBroadcaster{}
	}
	return &CountdownService{
		store:    st,
		subs:     &store.Subscriptions{},
		locator:  locator,
		alerter:  alerter,
		hub:      hub,
		archive:  archive,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
		state:    models.CountdownIdle,
	}
}

// Start subscribes to the trigger flag.
func (cs *CountdownService) Start(ctx context.Context) error {
	return cs.subs.Subscribe(ctx, cs.store, store.PathTriggered, cs.onTriggerValue)
}

// Stop tears the controller down: releases the trigger subscription and
// clears any running timers.
func (cs *CountdownService) Stop() {
	cs.subs.Close()

	cs.mu.Lock()
	wasCounting := cs.state == models.CountdownCounting
	cs.stopTickLocked()
	if cs.cooldownTimer != nil {
		cs.cooldownTimer.Stop()
		cs.cooldownTimer = nil
	}
	cs.state = models.CountdownIdle
	cs.mu.Unlock()

	if wasCounting {
		cs.alerter.StopAlert()
	}
}

// Status returns the controller state for the API and the dashboard.
func (cs *CountdownService) Status() models.CountdownStatus {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.statusLocked()
}

// Trigger raises the shared trigger flag; the flag subscription starts the
// countdown. This is the manual SOS path, identical to the device detector.
func (cs *CountdownService) Trigger(ctx context.Context) error {
	return cs.store.Set(ctx, store.PathTriggered, true)
}

// Confirm resolves an active countdown as a real accident. Explicit
// confirmation and countdown expiry take the same path.
func (cs *CountdownService) Confirm(ctx context.Context) (models.CountdownStatus, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.state != models.CountdownCounting {
		return cs.statusLocked(), utils.NewServiceError("NO_ACTIVE_COUNTDOWN", "no countdown is running")
	}
	cs.stopTickLocked()
	cs.confirmLocked()
	return cs.statusLocked(), nil
}

// Cancel aborts an active countdown: the provisional record is deleted and
// the controller cools down before accepting another trigger.
func (cs *CountdownService) Cancel(ctx context.Context) (models.CountdownStatus, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.state != models.CountdownCounting {
		return cs.statusLocked(), utils.NewServiceError("NO_ACTIVE_COUNTDOWN", "no countdown is running")
	}

	cs.stopTickLocked()
	cs.alerter.StopAlert()

	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// A delete failure must not block the rest of the cancellation: the
	// flag reset and the cooldown still proceed.
	if cs.recordCreated {
		if err := cs.store.Delete(writeCtx, store.AccidentPath(cs.accidentID)); err != nil {
			logrus.WithError(err).WithField("accidentId", cs.accidentID).Error("countdown: accident delete failed")
		}
	}
	if err := cs.store.Set(writeCtx, store.PathTriggered, false); err != nil {
		logrus.WithError(err).Error("countdown: trigger reset failed")
	}

	cs.accidentID = ""
	cs.recordCreated = false
	cs.remaining = 0
	cs.state = models.CountdownCooldown
	cs.cooldownTimer = time.AfterFunc(cs.cfg.Cooldown, cs.endCooldown)

	cs.broadcastLocked()
	return cs.statusLocked(), nil
}

func (cs *CountdownService) onTriggerValue(raw string) {
	var triggered bool
	if !store.Decode(raw, &triggered) || !triggered {
		return
	}
	cs.trigger()
}

func (cs *CountdownService) trigger() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	// A second trigger while counting is a no-op; during cooldown it is
	// deliberately suppressed.
	if cs.state != models.CountdownIdle {
		return
	}

	now := cs.now()
	cs.state = models.CountdownCounting
	cs.remaining = int(cs.cfg.Duration / cs.cfg.Tick)
	cs.accidentID = models.AccidentID(now)
	cs.recordCreated = false
	cs.dispatched = false

	if loc := cs.locator.Current(); loc != nil {
		writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		event := models.AccidentEvent{
			ID:        cs.accidentID,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			CreatedAt: now.UnixMilli(),
			Status:    models.AccidentStatusPending,
			Confirmed: false,
		}
		if err := cs.store.Set(writeCtx, store.AccidentPath(cs.accidentID), event); err != nil {
			logrus.WithError(err).Error("countdown: provisional accident write failed")
		} else {
			cs.recordCreated = true
		}
		cancel()
	}

	cs.alerter.StartAlert()

	stop := make(chan struct{})
	cs.tickStop = stop
	go cs.runCountdown(stop)

	cs.broadcastLocked()
}

func (cs *CountdownService) runCountdown(stop chan struct{}) {
	ticker := time.NewTicker(cs.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if cs.tick() {
				return
			}
		}
	}
}

// tick decrements the countdown once. It reports true when the countdown
// has resolved and the ticker goroutine should exit. Auto-confirmation
// fires when remaining reaches 0, after the final tick, never earlier.
func (cs *CountdownService) tick() bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.state != models.CountdownCounting {
		return true
	}

	cs.remaining--
	if cs.remaining > 0 {
		cs.broadcastLocked()
		return false
	}

	cs.tickStop = nil
	cs.confirmLocked()
	return true
}

func (cs *CountdownService) confirmLocked() {
	cs.alerter.StopAlert()

	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := cs.store.Set(writeCtx, store.PathTriggered, false); err != nil {
		logrus.WithError(err).Error("countdown: trigger reset failed")
	}

	// By this point the user-facing confirmation has been shown; store
	// write failures are logged, nothing more.
	if loc := cs.locator.Current(); loc != nil {
		now := cs.now()
		event := models.AccidentEvent{
			ID:        cs.accidentID,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			CreatedAt: now.UnixMilli(),
			Status:    models.AccidentStatusPending,
			Confirmed: true,
		}
		if err := cs.store.Set(writeCtx, store.AccidentPath(event.ID), event); err != nil {
			logrus.WithError(err).Error("countdown: accident write failed")
		}

		rescue := models.RescueRequest{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Timestamp: now.UnixMilli(),
		}
		if err := cs.store.Set(writeCtx, store.PathRescueRequest, rescue); err != nil {
			logrus.WithError(err).Error("countdown: rescue request write failed")
		}

		if cs.archive != nil {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := cs.archive.Create(ctx, event); err != nil {
					logrus.WithError(err).Error("countdown: accident archive failed")
				}
			}()
		}
		if cs.notifier != nil {
			go cs.notifier.NotifyDispatch(event)
		}

		cs.hub.Broadcast(models.WSEvent{
			Type:      models.WSEventDispatched,
			Data:      rescue,
			Timestamp: now,
		})
	} else {
		logrus.Warn("countdown: confirmed without a location fix, no records written")
	}

	cs.accidentID = ""
	cs.recordCreated = false
	cs.remaining = 0
	cs.dispatched = true
	cs.state = models.CountdownIdle

	cs.broadcastLocked()
}

func (cs *CountdownService) endCooldown() {
	cs.mu.Lock()
	if cs.state != models.CountdownCooldown {
		cs.mu.Unlock()
		return
	}
	cs.state = models.CountdownIdle
	cs.cooldownTimer = nil
	cs.broadcastLocked()
	cs.mu.Unlock()

	// A flag raised during the cooldown was suppressed; one raised after
	// must start a fresh countdown, so re-read it now.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	raw, err := cs.store.Get(ctx, store.PathTriggered)
	if err != nil {
		logrus.WithError(err).Warn("countdown: trigger re-read failed")
		return
	}
	var triggered bool
	if store.Decode(raw, &triggered) && triggered {
		cs.trigger()
	}
}

func (cs *CountdownService) stopTickLocked() {
	if cs.tickStop != nil {
		close(cs.tickStop)
		cs.tickStop = nil
	}
}

func (cs *CountdownService) statusLocked() models.CountdownStatus {
	return models.CountdownStatus{
		State:      cs.state,
		Remaining:  cs.remaining,
		AccidentID: cs.accidentID,
		Dispatched: cs.dispatched,
	}
}

func (cs *CountdownService) broadcastLocked() {
	cs.hub.Broadcast(models.WSEvent{
		Type:      models.WSEventCountdown,
		Data:      cs.statusLocked(),
		Timestamp: time.Now(),
	})
}
