package controllers

import (
	"net/http"

	"databridgeapi/models"
	"databridgeapi/pkg/logger"
	"databridgeapi/repository"
	"databridgeapi/services/warehouse"
	"databridgeapi/utils"

	"github.com/gin-gonic/gin"
)

// WarehouseController handles warehouse table definition and data operations.
type WarehouseController struct {
	whRepo  repository.WarehouseRepository
	manager *warehouse.Manager
}

// NewWarehouseController creates a new warehouse controller instance.
func NewWarehouseController() *WarehouseController {
	return &WarehouseController{
		whRepo:  repository.NewWarehouseRepository(),
		manager: warehouse.NewManager(),
	}
}

// FromStagingRequest is the payload for creating a warehouse table from a
// staging schema.
type FromStagingRequest struct {
	Code         string                   `json:"code" validate:"required"`
	Name         string                   `json:"name"`
	QueryID      uint                     `json:"query_id" validate:"required"`
	ExtraColumns []models.WarehouseColumn `json:"extra_columns"`
}

// CustomTableRequest is the payload for creating a hand-defined warehouse table.
type CustomTableRequest struct {
	Code    string                   `json:"code" validate:"required"`
	Name    string                   `json:"name"`
	Columns []models.WarehouseColumn `json:"columns" validate:"required,min=1"`
}

// ListTables lists warehouse table definitions
// @Summary List warehouse tables
// @Tags Warehouse
// @Produce json
// @Success 200 {array} models.WarehouseTable
// @Router /api/warehouse [get]
func (ctrl *WarehouseController) ListTables(c *gin.Context) {
	tables, err := ctrl.whRepo.GetAll(nil)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, tables)
}

// GetTable returns one warehouse table with its columns
// @Summary Get warehouse table
// @Tags Warehouse
// @Produce json
// @Param id path int true "Table ID"
// @Success 200 {object} map[string]interface{} "Table and columns"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/warehouse/{id} [get]
func (ctrl *WarehouseController) GetTable(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	table, err := ctrl.whRepo.GetByID(nil, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Warehouse table not found"})
		return
	}
	cols, err := ctrl.whRepo.GetColumns(nil, id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"table": table, "columns": cols})
}

// CreateFromStaging defines a warehouse table from a staging schema
// @Summary Create warehouse table from staging
// @Description Copies a query's staging columns; extra columns switch the kind to staging_plus
// @Tags Warehouse
// @Accept json
// @Produce json
// @Param params body FromStagingRequest true "Creation parameters"
// @Success 201 {object} map[string]interface{} "Created"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /api/warehouse/from-staging [post]
func (ctrl *WarehouseController) CreateFromStaging(c *gin.Context) {
	var params FromStagingRequest
	if err := c.ShouldBindJSON(&params); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&params); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	table, err := ctrl.manager.CreateFromStaging(params.Code, params.Name, params.QueryID, params.ExtraColumns)
	if err != nil {
		logger.Errorf("Failed to create warehouse table %s: %v", params.Code, err)
		utils.ErrorResponse(c, err)
		return
	}
	logger.Infof("Created warehouse table %s with ID %d", table.Code, table.ID)
	utils.JSONResponse(c, http.StatusCreated, gin.H{
		"message": "Warehouse table was created successfully",
		"id":      table.ID,
	})
}

// CreateCustom defines a warehouse table from a hand-written column list
// @Summary Create custom warehouse table
// @Tags Warehouse
// @Accept json
// @Produce json
// @Param params body CustomTableRequest true "Creation parameters"
// @Success 201 {object} map[string]interface{} "Created"
// @Router /api/warehouse/custom [post]
func (ctrl *WarehouseController) CreateCustom(c *gin.Context) {
	var params CustomTableRequest
	if err := c.ShouldBindJSON(&params); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&params); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	table, err := ctrl.manager.CreateCustom(params.Code, params.Name, params.Columns)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusCreated, gin.H{
		"message": "Warehouse table was created successfully",
		"id":      table.ID,
	})
}

// UpdateColumns replaces a warehouse table's column definitions
// @Summary Replace warehouse columns
// @Tags Warehouse
// @Accept json
// @Produce json
// @Param id path int true "Table ID"
// @Param columns body []models.WarehouseColumn true "Ordered column definitions"
// @Success 200 {object} map[string]interface{} "Replaced"
// @Router /api/warehouse/{id}/columns [put]
func (ctrl *WarehouseController) UpdateColumns(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var cols []models.WarehouseColumn
	if err := c.ShouldBindJSON(&cols); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	for i := range cols {
		if err := utils.ValidateStruct(&cols[i]); err != nil {
			utils.ErrorResponse(c, err)
			return
		}
	}
	if err := ctrl.whRepo.ReplaceColumns(nil, id, cols); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"message": "Columns were updated successfully"})
}

// Materialize creates the physical backing table
// @Summary Materialize warehouse table
// @Description Creates the physical table if it does not exist; an existing table is left alone
// @Tags Warehouse
// @Produce json
// @Param id path int true "Table ID"
// @Success 200 {object} map[string]interface{} "Materialized"
// @Router /api/warehouse/{id}/create [post]
func (ctrl *WarehouseController) Materialize(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := ctrl.manager.CreatePhysicalTable(id); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"message": "Warehouse table was materialized successfully"})
}

// GetData pages through a materialized table's rows
// @Summary Get warehouse data
// @Tags Warehouse
// @Produce json
// @Param id path int true "Table ID"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} map[string]interface{} "Paged rows"
// @Router /api/warehouse/{id}/data [get]
func (ctrl *WarehouseController) GetData(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	rows, total, err := ctrl.manager.GetData(id, page, pageSize)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"rows": rows, "total": total, "page": page})
}

// GetStats summarizes a materialized table
// @Summary Get warehouse table stats
// @Tags Warehouse
// @Produce json
// @Param id path int true "Table ID"
// @Success 200 {object} warehouse.TableStats
// @Router /api/warehouse/{id}/stats [get]
func (ctrl *WarehouseController) GetStats(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	stats, err := ctrl.manager.GetStats(id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, stats)
}

// DeleteTable deletes a warehouse table definition
// @Summary Delete warehouse table
// @Description Removes the definition and columns; the physical table is kept for manual cleanup
// @Tags Warehouse
// @Produce json
// @Param id path int true "Table ID"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Router /api/warehouse/{id} [delete]
func (ctrl *WarehouseController) DeleteTable(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := ctrl.whRepo.Delete(nil, id); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"message": "Warehouse table was deleted successfully"})
}

// RegisterWarehouseRoutes registers warehouse routes
func RegisterWarehouseRoutes(rg *gin.RouterGroup) {
	ctrl := NewWarehouseController()

	wh := rg.Group("/warehouse")
	{
		wh.GET("", ctrl.ListTables)
		wh.GET("/:id", ctrl.GetTable)
		wh.POST("/from-staging", ctrl.CreateFromStaging)
		wh.POST("/custom", ctrl.CreateCustom)
		wh.PUT("/:id/columns", ctrl.UpdateColumns)
		wh.POST("/:id/create", ctrl.Materialize)
		wh.GET("/:id/data", ctrl.GetData)
		wh.GET("/:id/stats", ctrl.GetStats)
		wh.DELETE("/:id", ctrl.DeleteTable)
	}
}
