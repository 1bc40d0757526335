package controllers

import (
	"lifeline/services"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
)

type DeviceController struct {
	telemetryService *services.TelemetryService
}

func NewDeviceController(telemetryService *services.TelemetryService) *DeviceController {
	return &DeviceController{telemetryService: telemetryService}
}

// GetDevice returns the current telemetry mirror with the derived online
// flag.
func (dc *DeviceController) GetDevice(c *gin.Context) {
	utils.SuccessResponse(c, "Device telemetry", dc.telemetryService.Snapshot())
}
