package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"databridgeapi/pkg/logger"

	"github.com/gin-gonic/gin"
)

// pathID parses the :id path parameter, answering 400 itself on failure.
func pathID(c *gin.Context) (uint, bool) {
	idParam := c.Param("id")
	id, err := strconv.ParseUint(idParam, 10, 32)
	if err != nil {
		logger.Errorf("Invalid ID parameter: %s", idParam)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid ID",
			"message": "ID must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

func parseUintParam(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric parameter: %s", s)
	}
	return uint(v), nil
}

// pageParams reads pagination query parameters with the shared defaults.
func pageParams(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 20
	}
	return page, pageSize
}
