package controllers

import (
	"lifeline/services"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type FacilityController struct {
	resolver       *services.FacilityResolver
	trackerService *services.TrackerService
}

func NewFacilityController(resolver *services.FacilityResolver, trackerService *services.TrackerService) *FacilityController {
	return &FacilityController{
		resolver:       resolver,
		trackerService: trackerService,
	}
}

// GetPOIs returns the last resolved facility list. With ?refresh=1 a new
// resolution runs first, around the current fix; a resolution already in
// flight makes the refresh a no-op.
func (fc *FacilityController) GetPOIs(c *gin.Context) {
	if c.Query("refresh") == "1" {
		loc := fc.trackerService.Current()
		if loc == nil {
			utils.ConflictResponse(c, "No position fix available yet")
			return
		}

		if _, err := fc.resolver.Resolve(c.Request.Context(), loc.Latitude, loc.Longitude, services.DefaultSearchRadius); err != nil {
			// Empty means "no data", not "no facilities"; the caller still
			// gets the (possibly empty) list below.
			logrus.WithError(err).Warn("facility: manual refresh failed")
		}
	}

	utils.SuccessResponse(c, "Nearby facilities", fc.resolver.POIs())
}
