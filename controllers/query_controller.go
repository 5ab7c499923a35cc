package controllers

import (
	"io"
	"net/http"
	"strconv"

	"databridgeapi/config"
	"databridgeapi/models"
	"databridgeapi/pkg/logger"
	"databridgeapi/repository"
	syncsvc "databridgeapi/services/sync"
	"databridgeapi/utils"

	"github.com/gin-gonic/gin"
)

// QueryController handles source query definition and staging operations.
type QueryController struct {
	queryRepo repository.SourceQueryRepository
	colRepo   repository.StagingColumnRepository
	runRepo   repository.SyncRunRepository
	executor  *syncsvc.Executor
}

// NewQueryController creates a new query controller instance.
func NewQueryController() *QueryController {
	return &QueryController{
		queryRepo: repository.NewSourceQueryRepository(),
		colRepo:   repository.NewStagingColumnRepository(),
		runRepo:   repository.NewSyncRunRepository(),
		executor:  syncsvc.NewExecutor(),
	}
}

// ListQueries lists source queries, optionally by connection
// @Summary List source queries
// @Tags Queries
// @Produce json
// @Param connection_id query int false "Filter by connection"
// @Success 200 {array} models.SourceQuery
// @Router /api/queries [get]
func (ctrl *QueryController) ListQueries(c *gin.Context) {
	if connID := c.Query("connection_id"); connID != "" {
		id, err := parseUintParam(connID)
		if err != nil {
			utils.ErrorResponse(c, err)
			return
		}
		queries, err := ctrl.queryRepo.GetByConnectionID(nil, id)
		if err != nil {
			utils.ErrorResponse(c, err)
			return
		}
		utils.JSONResponse(c, http.StatusOK, queries)
		return
	}
	queries, err := ctrl.queryRepo.GetAll(nil)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, queries)
}

// GetQuery returns one source query
// @Summary Get source query
// @Tags Queries
// @Produce json
// @Param id path int true "Query ID"
// @Success 200 {object} models.SourceQuery
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/queries/{id} [get]
func (ctrl *QueryController) GetQuery(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	query, err := ctrl.queryRepo.GetByID(nil, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Query not found"})
		return
	}
	utils.JSONResponse(c, http.StatusOK, query)
}

// CreateQuery creates a source query
// @Summary Create source query
// @Tags Queries
// @Accept json
// @Produce json
// @Param query body models.SourceQuery true "Source query object"
// @Success 201 {object} map[string]interface{} "Created"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /api/queries [post]
func (ctrl *QueryController) CreateQuery(c *gin.Context) {
	var data models.SourceQuery
	if err := c.ShouldBindJSON(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	logger.Debugf("Creating source query %s for connection %d", data.Code, data.ConnectionID)
	if err := ctrl.queryRepo.Create(nil, &data); err != nil {
		logger.Errorf("Failed to create query %s: %v", data.Code, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusCreated, gin.H{
		"message": "Query was created successfully",
		"id":      data.ID,
	})
}

// UpdateQuery updates a source query definition
// @Summary Update source query
// @Tags Queries
// @Accept json
// @Produce json
// @Param id path int true "Query ID"
// @Param query body models.SourceQuery true "Source query object"
// @Success 200 {object} map[string]interface{} "Updated"
// @Router /api/queries/{id} [put]
func (ctrl *QueryController) UpdateQuery(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	existing, err := ctrl.queryRepo.GetByID(nil, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Query not found"})
		return
	}
	var data models.SourceQuery
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
	// The staging binding survives definition edits: the table name is
	// stable once assigned and the data stays until the next rebuild.
	data.StagingTable = existing.StagingTable
	data.StagingCreated = existing.StagingCreated
	data.FileData = existing.FileData
	if data.FileName == "" {
		data.FileName = existing.FileName
	}
	if err := ctrl.queryRepo.Update(nil, &data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"message": "Query was updated successfully"})
}

// DeleteQuery deletes a source query and its column definitions
// @Summary Delete source query
// @Tags Queries
// @Produce json
// @Param id path int true "Query ID"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Router /api/queries/{id} [delete]
func (ctrl *QueryController) DeleteQuery(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := ctrl.queryRepo.Delete(nil, id); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"message": "Query was deleted successfully"})
}

// UploadFile attaches an uploaded file to a file-source query
// @Summary Upload query file
// @Description Stores the uploaded data file parsed by a file-kind connection
// @Tags Queries
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Query ID"
// @Param file formData file true "Data file"
// @Success 200 {object} map[string]interface{} "Uploaded"
// @Failure 400 {object} map[string]interface{} "Upload too large or unreadable"
// @Router /api/queries/{id}/upload [post]
func (ctrl *QueryController) UploadFile(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := ctrl.queryRepo.GetByID(nil, id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Query not found"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	maxBytes := int64(config.Cfg.MaxUploadSizeMB) << 20
	if file.Size > maxBytes {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "File too large",
			"message": "Upload exceeds the configured size limit",
		})
		return
	}
	src, err := file.Open()
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := ctrl.queryRepo.SaveUpload(nil, id, file.Filename, data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	logger.Infof("Stored upload %s (%d bytes) for query %d", file.Filename, len(data), id)
	utils.JSONResponse(c, http.StatusOK, gin.H{
		"message":   "File was uploaded successfully",
		"file_name": file.Filename,
		"size":      len(data),
	})
}

// DetectColumns samples the source and infers the column schema
// @Summary Detect columns
// @Description Samples the source and overwrites the query's column definitions
// @Tags Queries
// @Produce json
// @Param id path int true "Query ID"
// @Success 200 {object} map[string]interface{} "Detected columns"
// @Failure 400 {object} map[string]interface{} "Source unreachable or empty"
// @Router /api/queries/{id}/detect [post]
func (ctrl *QueryController) DetectColumns(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	detected, err := ctrl.executor.DetectColumns(id)
	if err != nil {
		logger.Errorf("Column detection failed for query %d: %v", id, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{
		"message": "Columns detected successfully",
		"columns": detected,
	})
}

// Preview returns sample rows fetched straight from the source
// @Summary Preview source rows
// @Description Fetches a bounded sample from the source without touching staging
// @Tags Queries
// @Produce json
// @Param id path int true "Query ID"
// @Param limit query int false "Row limit" default(10)
// @Success 200 {object} map[string]interface{} "Rows and column order"
// @Failure 400 {object} map[string]interface{} "Source unreachable"
// @Router /api/queries/{id}/preview [get]
func (ctrl *QueryController) Preview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > config.Cfg.SampleRowLimit {
		limit = 10
	}
	rows, cols, err := ctrl.executor.Preview(id, limit)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"rows": rows, "columns": cols})
}

// GetColumns returns the query's column definitions
// @Summary Get query columns
// @Tags Queries
// @Produce json
// @Param id path int true "Query ID"
// @Success 200 {array} models.StagingColumn
// @Router /api/queries/{id}/columns [get]
func (ctrl *QueryController) GetColumns(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cols, err := ctrl.colRepo.GetByQueryID(nil, id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, cols)
}

// UpdateColumns replaces the query's column definitions
// @Summary Replace query columns
// @Description Overwrites the ordered column list, typically to exclude columns or adjust types
// @Tags Queries
// @Accept json
// @Produce json
// @Param id path int true "Query ID"
// @Param columns body []models.StagingColumn true "Ordered column definitions"
// @Success 200 {object} map[string]interface{} "Replaced"
// @Router /api/queries/{id}/columns [put]
func (ctrl *QueryController) UpdateColumns(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var cols []models.StagingColumn
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
	if err := ctrl.colRepo.ReplaceForQuery(nil, id, cols); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"message": "Columns were updated successfully"})
}

// RebuildStaging recreates the staging table from the column definitions
// @Summary Rebuild staging table
// @Description Drops and recreates the staging table; previously staged rows are lost
// @Tags Queries
// @Produce json
// @Param id path int true "Query ID"
// @Success 200 {object} map[string]interface{} "Rebuilt"
// @Router /api/queries/{id}/staging [post]
func (ctrl *QueryController) RebuildStaging(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := ctrl.executor.RebuildStaging(id); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"message": "Staging table was rebuilt successfully"})
}

// RunSync executes a staging refresh
// @Summary Run sync
// @Description Fetches everything the query defines and reloads the staging table
// @Tags Queries
// @Produce json
// @Param id path int true "Query ID"
// @Success 200 {object} models.SyncRun "Run record with outcome"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/queries/{id}/sync [post]
func (ctrl *QueryController) RunSync(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	run, err := ctrl.executor.RunSync(id, "manual")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, run)
}

// ListQueryRuns lists sync runs of one query
// @Summary List query sync runs
// @Tags Queries
// @Produce json
// @Param id path int true "Query ID"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} map[string]interface{} "Paged runs"
// @Router /api/queries/{id}/runs [get]
func (ctrl *QueryController) ListQueryRuns(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	runs, total, err := ctrl.runRepo.ListByQuery(nil, id, page, pageSize)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"runs": runs, "total": total, "page": page})
}

// ListSyncRuns lists sync runs across all queries
// @Summary List sync runs
// @Tags Queries
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} map[string]interface{} "Paged runs"
// @Router /api/sync-runs [get]
func (ctrl *QueryController) ListSyncRuns(c *gin.Context) {
	page, pageSize := pageParams(c)
	runs, total, err := ctrl.runRepo.List(nil, page, pageSize)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"runs": runs, "total": total, "page": page})
}

// RegisterQueryRoutes registers source query routes
func RegisterQueryRoutes(rg *gin.RouterGroup) {
	ctrl := NewQueryController()

	queries := rg.Group("/queries")
	{
		queries.GET("", ctrl.ListQueries)
		queries.GET("/:id", ctrl.GetQuery)
		queries.POST("", ctrl.CreateQuery)
		queries.PUT("/:id", ctrl.UpdateQuery)
		queries.DELETE("/:id", ctrl.DeleteQuery)
		queries.POST("/:id/upload", ctrl.UploadFile)
		queries.POST("/:id/detect", ctrl.DetectColumns)
		queries.GET("/:id/preview", ctrl.Preview)
		queries.GET("/:id/columns", ctrl.GetColumns)
		queries.PUT("/:id/columns", ctrl.UpdateColumns)
		queries.POST("/:id/staging", ctrl.RebuildStaging)
		queries.POST("/:id/sync", ctrl.RunSync)
		queries.GET("/:id/runs", ctrl.ListQueryRuns)
	}
	rg.GET("/sync-runs", ctrl.ListSyncRuns)
}
