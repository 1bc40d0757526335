package controllers

import (
	"lifeline/models"
	"lifeline/services"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
)

type LocationController struct {
	trackerService *services.TrackerService
}

func NewLocationController(trackerService *services.TrackerService) *LocationController {
	return &LocationController{trackerService: trackerService}
}

// IngestFix accepts a position fix from the dashboard's geolocation source.
func (lc *LocationController) IngestFix(c *gin.Context) {
	var fix models.LocationFixRequest
	if err := c.ShouldBindJSON(&fix); err != nil {
		utils.BadRequestResponse(c, "Invalid location data")
		return
	}

	if !utils.IsValidCoordinate(fix.Latitude, fix.Longitude) {
		utils.BadRequestResponse(c, "Invalid latitude or longitude coordinates")
		return
	}

	status := lc.trackerService.HandleFix(c.Request.Context(), fix)
	utils.SuccessResponse(c, "Location updated", status)
}

// ReportFailure records a geolocation failure (permission denied, no
// capability) so the dashboard status stays truthful.
func (lc *LocationController) ReportFailure(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required,oneof=error unsupported"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid failure report")
		return
	}

	status := lc.trackerService.ReportFailure(req.Status, req.Reason)
	utils.SuccessResponse(c, "Status recorded", status)
}

// Status returns the last reported geolocation state.
func (lc *LocationController) Status(c *gin.Context) {
	utils.SuccessResponse(c, "Location status", lc.trackerService.Status())
}
