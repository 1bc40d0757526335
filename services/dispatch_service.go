package services

import (
	"context"
	"fmt"
	"time"

	"lifeline/models"
	"lifeline/utils"

	"github.com/sirupsen/logrus"
)

// DispatchService is the out-of-band half of rescue dispatch: a push
// notification to the dashboard device and an SMS to the emergency contact.
// Both channels are best-effort; by the time this runs the user-facing
// confirmation has already been shown.
type DispatchService struct {
	notifications *utils.NotificationService
	pushToken     string
	contactNumber string
}

func NewDispatchService(notifications *utils.NotificationService, pushToken, contactNumber string) *DispatchService {
	return &DispatchService{
		notifications: notifications,
		pushToken:     pushToken,
		contactNumber: contactNumber,
	}
}

func (ds *DispatchService) NotifyDispatch(event models.AccidentEvent) {
	if ds.notifications == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	body := fmt.Sprintf("Accident confirmed at %.5f, %.5f. Rescue has been requested.",
		event.Latitude, event.Longitude)

	if ds.pushToken != "" {
		_, err := ds.notifications.SendPushNotification(ctx, ds.pushToken, utils.PushNotification{
			Title: "Rescue dispatched",
			Body:  body,
			Data: map[string]string{
				"accidentId": event.ID,
			},
		})
		if err != nil {
			logrus.WithError(err).Error("dispatch: push notification failed")
		}
	}

	if ds.contactNumber != "" {
		if _, err := ds.notifications.SendSMS(ds.contactNumber, body); err != nil {
			logrus.WithError(err).Error("dispatch: SMS failed")
		}
	}
}
