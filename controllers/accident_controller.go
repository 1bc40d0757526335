package controllers

import (
	"strconv"

	"lifeline/repositories"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AccidentController struct {
	accidentRepo *repositories.AccidentRepository
}

func NewAccidentController(accidentRepo *repositories.AccidentRepository) *AccidentController {
	return &AccidentController{accidentRepo: accidentRepo}
}

// List returns archived accidents for triage, newest first.
func (ac *AccidentController) List(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	records, err := ac.accidentRepo.List(c.Request.Context(), limit)
	if err != nil {
		logrus.Errorf("Accident list failed: %v", err)
		utils.InternalServerErrorResponse(c, "Failed to list accidents")
		return
	}

	utils.SuccessResponse(c, "Archived accidents", records)
}

// Get returns one archived accident by its accident id.
func (ac *AccidentController) Get(c *gin.Context) {
	record, err := ac.accidentRepo.GetByAccidentID(c.Request.Context(), c.Param("id"))
	if err != nil {
		logrus.Errorf("Accident lookup failed: %v", err)
		utils.InternalServerErrorResponse(c, "Failed to load accident")
		return
	}
	if record == nil {
		utils.NotFoundResponse(c, "Accident")
		return
	}

	utils.SuccessResponse(c, "Archived accident", record)
}
