package controllers

import (
	"lifeline/services"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SOSController struct {
	countdownService *services.CountdownService
}

func NewSOSController(countdownService *services.CountdownService) *SOSController {
	return &SOSController{countdownService: countdownService}
}

// Trigger raises the shared trigger flag, the same path the device's
// detector uses. The flag subscription starts the countdown unless the
// controller is counting or cooling down.
func (sc *SOSController) Trigger(c *gin.Context) {
	if err := sc.countdownService.Trigger(c.Request.Context()); err != nil {
		logrus.Errorf("SOS trigger failed: %v", err)
		utils.InternalServerErrorResponse(c, "Failed to raise trigger")
		return
	}
	utils.AcceptedResponse(c, "Trigger raised", sc.countdownService.Status())
}

// Confirm resolves the active countdown as a real accident.
func (sc *SOSController) Confirm(c *gin.Context) {
	status, err := sc.countdownService.Confirm(c.Request.Context())
	if err != nil {
		utils.ConflictResponse(c, "No countdown is running")
		return
	}
	utils.SuccessResponse(c, "Rescue dispatched", status)
}

// Cancel aborts the active countdown and starts the cooldown.
func (sc *SOSController) Cancel(c *gin.Context) {
	status, err := sc.countdownService.Cancel(c.Request.Context())
	if err != nil {
		utils.ConflictResponse(c, "No countdown is running")
		return
	}
	utils.SuccessResponse(c, "Countdown cancelled", status)
}

// Status returns the countdown controller state.
func (sc *SOSController) Status(c *gin.Context) {
	utils.SuccessResponse(c, "Countdown status", sc.countdownService.Status())
}
