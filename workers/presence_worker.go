package workers

import (
	"context"
	"sync"
	"time"

	"lifeline/models"
	"lifeline/services"

	"github.com/sirupsen/logrus"
)

// PresenceWorker re-derives the online flag on a fixed cadence and
// broadcasts transitions. Online is a pure read-time derivation from the
// heartbeat; without this worker a silent device would look online forever
// because no store update would arrive to refresh the dashboard.
type PresenceWorker struct {
	telemetry *services.TelemetryService
	hub       services.Broadcaster
	interval  time.Duration

	mu         sync.Mutex
	lastOnline *bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPresenceWorker(telemetry *services.TelemetryService, hub services.Broadcaster, interval time.Duration) *PresenceWorker {
	ctx, cancel := context.WithCancel(context.Background())
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &PresenceWorker{
		telemetry: telemetry,
		hub:       hub,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the worker loop.
func (pw *PresenceWorker) Start() {
	pw.wg.Add(1)
	go pw.run()
	logrus.Info("Presence worker started")
}

// Stop terminates the loop and waits for it to exit.
func (pw *PresenceWorker) Stop() {
	pw.cancel()
	pw.wg.Wait()
}

func (pw *PresenceWorker) run() {
	defer pw.wg.Done()

	ticker := time.NewTicker(pw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-pw.ctx.Done():
			return
		case <-ticker.C:
			pw.check()
		}
	}
}

func (pw *PresenceWorker) check() {
	online := pw.telemetry.Online()

	pw.mu.Lock()
	changed := pw.lastOnline == nil || *pw.lastOnline != online
	pw.lastOnline = &online
	pw.mu.Unlock()

	if !changed {
		return
	}

	logrus.WithField("online", online).Info("Device presence changed")
	pw.hub.Broadcast(models.WSEvent{
		Type:      models.WSEventPresence,
		Data:      map[string]bool{"online": online},
		Timestamp: time.Now(),
	})
}
