package controllers

import (
	"net/http"

	"databridgeapi/models"
	"databridgeapi/pkg/logger"
	"databridgeapi/repository"
	"databridgeapi/services/transfer"
	"databridgeapi/utils"

	"github.com/gin-gonic/gin"
)

// TransferController handles transfer definition and execution operations.
type TransferController struct {
	transferRepo repository.TransferRepository
	engine       *transfer.Engine
}

// NewTransferController creates a new transfer controller instance.
func NewTransferController() *TransferController {
	return &TransferController{
		transferRepo: repository.NewTransferRepository(),
		engine:       transfer.NewEngine(),
	}
}

// ListTransfers lists transfer definitions
// @Summary List transfers
// @Tags Transfers
// @Produce json
// @Success 200 {array} models.Transfer
// @Router /api/transfers [get]
func (ctrl *TransferController) ListTransfers(c *gin.Context) {
	transfers, err := ctrl.transferRepo.GetAll(nil)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, transfers)
}

// GetTransfer returns one transfer
// @Summary Get transfer
// @Tags Transfers
// @Produce json
// @Param id path int true "Transfer ID"
// @Success 200 {object} models.Transfer
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/transfers/{id} [get]
func (ctrl *TransferController) GetTransfer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := ctrl.transferRepo.GetByID(nil, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transfer not found"})
		return
	}
	utils.JSONResponse(c, http.StatusOK, t)
}

// CreateTransfer creates a transfer definition
// @Summary Create transfer
// @Description Binds a warehouse table to a source query with a load strategy
// @Tags Transfers
// @Accept json
// @Produce json
// @Param transfer body models.Transfer true "Transfer object"
// @Success 201 {object} map[string]interface{} "Created"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /api/transfers [post]
func (ctrl *TransferController) CreateTransfer(c *gin.Context) {
	var data models.Transfer
	if err := c.ShouldBindJSON(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if data.Strategy == models.StrategyIncremental && data.CursorColumn == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing cursor column",
			"message": "Incremental transfers need a cursor column",
		})
		return
	}
	data.Active = true

	logger.Debugf("Creating transfer %s (%s)", data.Code, data.Strategy)
	if err := ctrl.transferRepo.Create(nil, &data); err != nil {
		logger.Errorf("Failed to create transfer %s: %v", data.Code, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusCreated, gin.H{
		"message": "Transfer was created successfully",
		"id":      data.ID,
	})
}

// UpdateTransfer updates a transfer definition
// @Summary Update transfer
// @Tags Transfers
// @Accept json
// @Produce json
// @Param id path int true "Transfer ID"
// @Param transfer body models.Transfer true "Transfer object"
// @Success 200 {object} map[string]interface{} "Updated"
// @Router /api/transfers/{id} [put]
func (ctrl *TransferController) UpdateTransfer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	existing, err := ctrl.transferRepo.GetByID(nil, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transfer not found"})
		return
	}
	var data models.Transfer
	if err := c.ShouldBindJSON(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	data.ID = existing.ID
	data.CreatedAt = existing.CreatedAt
	// The cursor only moves through runs; definition edits cannot rewind it.
	data.LastCursorValue = existing.LastCursorValue
	if err := ctrl.transferRepo.Update(nil, &data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"message": "Transfer was updated successfully"})
}

// DeleteTransfer deletes a transfer and its schedule
// @Summary Delete transfer
// @Tags Transfers
// @Produce json
// @Param id path int true "Transfer ID"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Router /api/transfers/{id} [delete]
func (ctrl *TransferController) DeleteTransfer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	unregisterSchedule(id)
	if err := ctrl.transferRepo.Delete(nil, id); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"message": "Transfer was deleted successfully"})
}

// RunTransfer executes a transfer now
// @Summary Run transfer
// @Description Executes the transfer immediately; the run record carries the outcome
// @Tags Transfers
// @Produce json
// @Param id path int true "Transfer ID"
// @Success 200 {object} models.TransferRun "Run record with outcome"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/transfers/{id}/run [post]
func (ctrl *TransferController) RunTransfer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	run, err := ctrl.engine.Run(id, "manual")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, run)
}

// ListTransferRunsByID lists runs of one transfer
// @Summary List transfer runs
// @Tags Transfers
// @Produce json
// @Param id path int true "Transfer ID"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} map[string]interface{} "Paged runs"
// @Router /api/transfers/{id}/runs [get]
func (ctrl *TransferController) ListTransferRunsByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	runs, total, err := ctrl.transferRepo.ListRuns(nil, id, page, pageSize)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"runs": runs, "total": total, "page": page})
}

// ListAllTransferRuns lists runs across all transfers
// @Summary List all transfer runs
// @Tags Transfers
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} map[string]interface{} "Paged runs"
// @Router /api/transfer-runs [get]
func (ctrl *TransferController) ListAllTransferRuns(c *gin.Context) {
	page, pageSize := pageParams(c)
	runs, total, err := ctrl.transferRepo.ListAllRuns(nil, page, pageSize)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"runs": runs, "total": total, "page": page})
}

// RegisterTransferRoutes registers transfer routes
func RegisterTransferRoutes(rg *gin.RouterGroup) {
	ctrl := NewTransferController()

	transfers := rg.Group("/transfers")
	{
		transfers.GET("", ctrl.ListTransfers)
		transfers.GET("/:id", ctrl.GetTransfer)
		transfers.POST("", ctrl.CreateTransfer)
		transfers.PUT("/:id", ctrl.UpdateTransfer)
		transfers.DELETE("/:id", ctrl.DeleteTransfer)
		transfers.POST("/:id/run", ctrl.RunTransfer)
		transfers.GET("/:id/runs", ctrl.ListTransferRunsByID)
	}
	rg.GET("/transfer-runs", ctrl.ListAllTransferRuns)
}
