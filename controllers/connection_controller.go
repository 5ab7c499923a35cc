package controllers

import (
	"net/http"
	"strconv"

	"databridgeapi/models"
	"databridgeapi/pkg/logger"
	"databridgeapi/repository"
	"databridgeapi/services/source"
	"databridgeapi/utils"

	"github.com/gin-gonic/gin"
)

// ConnectionController handles external source connection operations.
type ConnectionController struct {
	connRepo repository.ConnectionRepository
}

// NewConnectionController creates a new connection controller instance.
func NewConnectionController() *ConnectionController {
	return &ConnectionController{
		connRepo: repository.NewConnectionRepository(),
	}
}

// ListConnections lists all registered connections
// @Summary List connections
// @Description Returns every registered external source connection
// @Tags Connections
// @Produce json
// @Success 200 {array} models.Connection
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Router /api/connections [get]
func (ctrl *ConnectionController) ListConnections(c *gin.Context) {
	conns, err := ctrl.connRepo.GetAll(nil)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, conns)
}

// GetConnection returns one connection
// @Summary Get connection
// @Tags Connections
// @Produce json
// @Param id path int true "Connection ID"
// @Success 200 {object} models.Connection
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/connections/{id} [get]
func (ctrl *ConnectionController) GetConnection(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	conn, err := ctrl.connRepo.GetByID(nil, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Connection not found"})
		return
	}
	utils.JSONResponse(c, http.StatusOK, conn)
}

// CreateConnection registers a new connection
// @Summary Create connection
// @Description Registers an external source with kind odata, sqldb or file
// @Tags Connections
// @Accept json
// @Produce json
// @Param connection body models.Connection true "Connection object"
// @Success 201 {object} map[string]interface{} "Created"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /api/connections [post]
func (ctrl *ConnectionController) CreateConnection(c *gin.Context) {
	var data models.Connection
	if err := c.ShouldBindJSON(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	data.Active = true

	logger.Debugf("Creating connection %s (%s)", data.Code, data.Kind)
	if err := ctrl.connRepo.Create(nil, &data); err != nil {
		logger.Errorf("Failed to create connection %s: %v", data.Code, err)
		utils.ErrorResponse(c, err)
		return
	}
	logger.Infof("Created connection %s with ID %d", data.Code, data.ID)
	utils.JSONResponse(c, http.StatusCreated, gin.H{
		"message": "Connection was created successfully",
		"id":      data.ID,
	})
}

// UpdateConnection updates a connection
// @Summary Update connection
// @Tags Connections
// @Accept json
// @Produce json
// @Param id path int true "Connection ID"
// @Param connection body models.Connection true "Connection object"
// @Success 200 {object} map[string]interface{} "Updated"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /api/connections/{id} [put]
func (ctrl *ConnectionController) UpdateConnection(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	existing, err := ctrl.connRepo.GetByID(nil, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Connection not found"})
		return
	}
	var data models.Connection
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
	if data.Password == "" {
		// Empty password on update keeps the stored credential.
		data.Password = existing.Password
	}
	if err := ctrl.connRepo.Update(nil, &data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"message": "Connection was updated successfully"})
}

// DeleteConnection deletes a connection without dependent queries
// @Summary Delete connection
// @Description Deletes a connection; refused while source queries still reference it
// @Tags Connections
// @Produce json
// @Param id path int true "Connection ID"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Failure 409 {object} map[string]interface{} "Dependent queries exist"
// @Router /api/connections/{id} [delete]
func (ctrl *ConnectionController) DeleteConnection(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	count, err := ctrl.connRepo.CountQueries(nil, id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Connection has dependent queries",
			"message": strconv.FormatInt(count, 10) + " source queries still reference this connection",
		})
		return
	}
	if err := ctrl.connRepo.Delete(nil, id); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"message": "Connection was deleted successfully"})
}

// TestConnection probes a connection without transferring data
// @Summary Test connection
// @Description Probes the external source and reports success or the failure reason
// @Tags Connections
// @Produce json
// @Param id path int true "Connection ID"
// @Success 200 {object} map[string]interface{} "Test result"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/connections/test/{id} [post]
func (ctrl *ConnectionController) TestConnection(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	conn, err := ctrl.connRepo.GetByID(nil, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Connection not found"})
		return
	}

	logger.Infof("Testing connection %s", conn.Code)
	adapter, err := source.ForConnection(conn, nil)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	result := adapter.TestConnection()
	utils.JSONResponse(c, http.StatusOK, gin.H{
		"connection_id": id,
		"test_result":   result,
	})
}

// RegisterConnectionRoutes registers connection routes
func RegisterConnectionRoutes(rg *gin.RouterGroup) {
	ctrl := NewConnectionController()

	connections := rg.Group("/connections")
	{
		connections.GET("", ctrl.ListConnections)
		connections.GET("/:id", ctrl.GetConnection)
		connections.POST("", ctrl.CreateConnection)
		connections.PUT("/:id", ctrl.UpdateConnection)
		connections.DELETE("/:id", ctrl.DeleteConnection)
		connections.POST("/test/:id", ctrl.TestConnection)
	}
}
