package controllers

import (
	"net/http"

	"databridgeapi/models"
	"databridgeapi/pkg/logger"
	"databridgeapi/repository"
	"databridgeapi/services/scheduler"
	"databridgeapi/utils"

	"github.com/gin-gonic/gin"
)

// ScheduleController handles durable schedule definitions. Every write also
// updates the in-memory trigger so the running scheduler matches the database.
type ScheduleController struct {
	scheduleRepo repository.ScheduleRepository
	transferRepo repository.TransferRepository
}

// NewScheduleController creates a new schedule controller instance.
func NewScheduleController() *ScheduleController {
	return &ScheduleController{
		scheduleRepo: repository.NewScheduleRepository(),
		transferRepo: repository.NewTransferRepository(),
	}
}

// GetSchedule returns the schedule of one transfer
// @Summary Get schedule
// @Tags Schedules
// @Produce json
// @Param id path int true "Transfer ID"
// @Success 200 {object} models.Schedule
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/transfers/{id}/schedule [get]
func (ctrl *ScheduleController) GetSchedule(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	sched, err := ctrl.scheduleRepo.GetByTransferID(nil, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	utils.JSONResponse(c, http.StatusOK, sched)
}

// UpsertSchedule installs or replaces the schedule of one transfer
// @Summary Set schedule
// @Description Persists the schedule and reinstalls the in-memory trigger
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path int true "Transfer ID"
// @Param schedule body models.Schedule true "Schedule object"
// @Success 200 {object} map[string]interface{} "Saved"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /api/transfers/{id}/schedule [put]
func (ctrl *ScheduleController) UpsertSchedule(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := ctrl.transferRepo.GetByID(nil, id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transfer not found"})
		return
	}
	var data models.Schedule
	if err := c.ShouldBindJSON(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	data.TransferID = id
	if err := utils.ValidateStruct(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	// Reject unparseable definitions before persisting anything.
	if data.Frequency != models.FrequencyManual {
		if _, err := scheduler.BuildCronSpec(&data); err != nil {
			utils.ErrorResponse(c, err)
			return
		}
	}
	if err := ctrl.scheduleRepo.Upsert(nil, &data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := scheduler.Get().RegisterSchedule(&data); err != nil {
		logger.Errorf("Failed to register schedule for transfer %d: %v", id, err)
		utils.ErrorResponse(c, err)
		return
	}
	logger.Infof("Schedule for transfer %d set to %s", id, data.Frequency)
	utils.JSONResponse(c, http.StatusOK, gin.H{"message": "Schedule was saved successfully"})
}

// SetEnabled enables or disables the schedule of one transfer
// @Summary Enable or disable schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path int true "Transfer ID"
// @Param params body object true "enabled flag"
// @Success 200 {object} map[string]interface{} "Updated"
// @Router /api/transfers/{id}/schedule/enabled [put]
func (ctrl *ScheduleController) SetEnabled(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var params struct {
		Enabled *bool `json:"enabled" validate:"required"`
	}
	if err := c.ShouldBindJSON(&params); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&params); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := ctrl.scheduleRepo.SetEnabled(nil, id, *params.Enabled); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	sched, err := ctrl.scheduleRepo.GetByTransferID(nil, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	if err := scheduler.Get().RegisterSchedule(sched); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"message": "Schedule was updated successfully"})
}

// DeleteSchedule removes the schedule of one transfer
// @Summary Delete schedule
// @Tags Schedules
// @Produce json
// @Param id path int true "Transfer ID"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Router /api/transfers/{id}/schedule [delete]
func (ctrl *ScheduleController) DeleteSchedule(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	unregisterSchedule(id)
	if err := ctrl.scheduleRepo.Delete(nil, id); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"message": "Schedule was deleted successfully"})
}

// ListSchedules lists all schedules
// @Summary List schedules
// @Tags Schedules
// @Produce json
// @Success 200 {array} models.Schedule
// @Router /api/schedules [get]
func (ctrl *ScheduleController) ListSchedules(c *gin.Context) {
	schedules, err := ctrl.scheduleRepo.GetAll(nil)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, schedules)
}

// RegisterScheduleRoutes registers schedule routes
func RegisterScheduleRoutes(rg *gin.RouterGroup) {
	ctrl := NewScheduleController()

	transfers := rg.Group("/transfers")
	{
		transfers.GET("/:id/schedule", ctrl.GetSchedule)
		transfers.PUT("/:id/schedule", ctrl.UpsertSchedule)
		transfers.PUT("/:id/schedule/enabled", ctrl.SetEnabled)
		transfers.DELETE("/:id/schedule", ctrl.DeleteSchedule)
	}
	rg.GET("/schedules", ctrl.ListSchedules)
}

// unregisterSchedule drops the in-memory trigger of a transfer, if any.
func unregisterSchedule(transferID uint) {
	scheduler.Get().Unregister(transferID)
}
