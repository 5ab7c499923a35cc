package controllers

import (
	"net/http"
	"strconv"

	"databridgeapi/models"
	"databridgeapi/pkg/logger"
	"databridgeapi/repository"
	"databridgeapi/services/mapping"
	"databridgeapi/utils"

	"github.com/gin-gonic/gin"
)

// MappingController handles field mapping definition and execution operations.
type MappingController struct {
	mappingRepo repository.MappingRepository
	engine      *mapping.Engine
}

// NewMappingController creates a new mapping controller instance.
func NewMappingController() *MappingController {
	return &MappingController{
		mappingRepo: repository.NewMappingRepository(),
		engine:      mapping.NewEngine(),
	}
}

// ListMappings lists mapping definitions
// @Summary List mappings
// @Tags Mappings
// @Produce json
// @Success 200 {array} models.Mapping
// @Router /api/mappings [get]
func (ctrl *MappingController) ListMappings(c *gin.Context) {
	mappings, err := ctrl.mappingRepo.GetAll(nil)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, mappings)
}

// GetMapping returns one mapping with its field bindings
// @Summary Get mapping
// @Tags Mappings
// @Produce json
// @Param id path int true "Mapping ID"
// @Success 200 {object} map[string]interface{} "Mapping and fields"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/mappings/{id} [get]
func (ctrl *MappingController) GetMapping(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	m, err := ctrl.mappingRepo.GetByID(nil, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Mapping not found"})
		return
	}
	fields, err := ctrl.mappingRepo.GetFields(nil, id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"mapping": m, "fields": fields})
}

// CreateMapping creates a mapping definition
// @Summary Create mapping
// @Description Binds a staging or warehouse table to one internal target shape
// @Tags Mappings
// @Accept json
// @Produce json
// @Param mapping body models.Mapping true "Mapping object"
// @Success 201 {object} map[string]interface{} "Created"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /api/mappings [post]
func (ctrl *MappingController) CreateMapping(c *gin.Context) {
	var data models.Mapping
	if err := c.ShouldBindJSON(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if needsTarget(data.TargetKind) && data.TargetID == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing target",
			"message": data.TargetKind + " mappings need a target_id",
		})
		return
	}
	data.Active = true

	logger.Debugf("Creating mapping %s (%s -> %s)", data.Code, data.SourceTable, data.TargetKind)
	if err := ctrl.mappingRepo.Create(nil, &data); err != nil {
		logger.Errorf("Failed to create mapping %s: %v", data.Code, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusCreated, gin.H{
		"message": "Mapping was created successfully",
		"id":      data.ID,
	})
}

// UpdateMapping updates a mapping definition
// @Summary Update mapping
// @Tags Mappings
// @Accept json
// @Produce json
// @Param id path int true "Mapping ID"
// @Param mapping body models.Mapping true "Mapping object"
// @Success 200 {object} map[string]interface{} "Updated"
// @Router /api/mappings/{id} [put]
func (ctrl *MappingController) UpdateMapping(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	existing, err := ctrl.mappingRepo.GetByID(nil, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Mapping not found"})
		return
	}
	var data models.Mapping
	if err := c.ShouldBindJSON(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if needsTarget(data.TargetKind) && data.TargetID == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing target",
			"message": data.TargetKind + " mappings need a target_id",
		})
		return
	}
	data.ID = existing.ID
	data.CreatedAt = existing.CreatedAt
	if err := ctrl.mappingRepo.Update(nil, &data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"message": "Mapping was updated successfully"})
}

// DeleteMapping deletes a mapping and its field bindings
// @Summary Delete mapping
// @Tags Mappings
// @Produce json
// @Param id path int true "Mapping ID"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Router /api/mappings/{id} [delete]
func (ctrl *MappingController) DeleteMapping(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := ctrl.mappingRepo.Delete(nil, id); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"message": "Mapping was deleted successfully"})
}

// GetFields returns a mapping's ordered field bindings
// @Summary Get mapping fields
// @Tags Mappings
// @Produce json
// @Param id path int true "Mapping ID"
// @Success 200 {array} models.FieldMapping
// @Router /api/mappings/{id}/fields [get]
func (ctrl *MappingController) GetFields(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	fields, err := ctrl.mappingRepo.GetFields(nil, id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, fields)
}

// ReplaceFields replaces a mapping's field bindings
// @Summary Replace mapping fields
// @Description Replaces the full ordered field list in one shot
// @Tags Mappings
// @Accept json
// @Produce json
// @Param id path int true "Mapping ID"
// @Param fields body []models.FieldMapping true "Ordered field bindings"
// @Success 200 {object} map[string]interface{} "Replaced"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /api/mappings/{id}/fields [put]
func (ctrl *MappingController) ReplaceFields(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := ctrl.mappingRepo.GetByID(nil, id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Mapping not found"})
		return
	}
	var fields []models.FieldMapping
	if err := c.ShouldBindJSON(&fields); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	for i := range fields {
		if err := utils.ValidateStruct(&fields[i]); err != nil {
			utils.ErrorResponse(c, err)
			return
		}
	}
	if err := ctrl.mappingRepo.ReplaceFields(nil, id, fields); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"message": "Fields were updated successfully"})
}

// ExecuteMapping runs a mapping against its source table
// @Summary Execute mapping
// @Description Transforms and upserts all source rows; the result carries per-row error details
// @Tags Mappings
// @Produce json
// @Param id path int true "Mapping ID"
// @Success 200 {object} mapping.Result "Execution result"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/mappings/{id}/execute [post]
func (ctrl *MappingController) ExecuteMapping(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	logger.Infof("Executing mapping %d", id)
	result, err := ctrl.engine.Execute(id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, result)
}

// PreviewMapping transforms a handful of source rows without writing
// @Summary Preview mapping
// @Tags Mappings
// @Produce json
// @Param id path int true "Mapping ID"
// @Param limit query int false "Row limit" default(10)
// @Success 200 {array} mapping.PreviewRow
// @Router /api/mappings/{id}/preview [post]
func (ctrl *MappingController) PreviewMapping(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 100 {
		limit = 10
	}
	rows, err := ctrl.engine.Preview(id, limit)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, rows)
}

// needsTarget reports whether a target kind requires a concrete target_id.
func needsTarget(kind string) bool {
	return kind == models.TargetKindEntity || kind == models.TargetKindBudget
}

// RegisterMappingRoutes registers mapping routes
func RegisterMappingRoutes(rg *gin.RouterGroup) {
	ctrl := NewMappingController()

	mappings := rg.Group("/mappings")
	{
		mappings.GET("", ctrl.ListMappings)
		mappings.GET("/:id", ctrl.GetMapping)
		mappings.POST("", ctrl.CreateMapping)
		mappings.PUT("/:id", ctrl.UpdateMapping)
		mappings.DELETE("/:id", ctrl.DeleteMapping)
		mappings.GET("/:id/fields", ctrl.GetFields)
		mappings.PUT("/:id/fields", ctrl.ReplaceFields)
		mappings.POST("/:id/execute", ctrl.ExecuteMapping)
		mappings.POST("/:id/preview", ctrl.PreviewMapping)
	}
}
