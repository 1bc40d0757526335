package services

import (
	"time"

	"lifeline/models"
)

// Alerter starts and stops the audible accident alert. The sound itself
// plays on the dashboard; the service only drives it.
type Alerter interface {
	StartAlert()
	StopAlert()
}

// AlertService drives the dashboard siren over the websocket hub.
type AlertService struct {
	hub Broadcaster
}

func NewAlertService(hub Broadcaster) *AlertService {
	if hub == nil {
		hub = NopBroadcaster{}
	}
	return &AlertService{hub: hub}
}

func (as *AlertService) StartAlert() {
	as.hub.Broadcast(models.WSEvent{
		Type:      models.WSEventAlert,
		Data:      map[string]bool{"active": true},
		Timestamp: time.Now(),
	})
}

func (as *AlertService) StopAlert() {
	as.hub.Broadcast(models.WSEvent{
		Type:      models.WSEventAlert,
		Data:      map[string]bool{"active": false},
		Timestamp: time.Now(),
	})
}
