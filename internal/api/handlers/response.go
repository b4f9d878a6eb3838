// server/internal/api/handlers/response.go
package handlers

import (
	"errors"
	"net/http"

	"fsic-records-api-server/internal/models"
	"fsic-records-api-server/internal/service"

	"github.com/gin-gonic/gin"
)

// statusOf maps a service failure kind to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicate), errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondData(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, models.DataResponse{Success: true, Data: data})
}

// respondReadError answers a failed read with {success:false,error}.
func respondReadError(c *gin.Context, err error) {
	c.JSON(statusOf(err), models.ErrorResponse{Success: false, Error: service.Reason(err)})
}

func respondAction(c *gin.Context, status int, message string) {
	c.JSON(status, models.ActionResult{Success: true, Message: message})
}

// respondActionError answers a failed mutation with {success:false,message}.
func respondActionError(c *gin.Context, err error) {
	c.JSON(statusOf(err), models.ActionResult{Success: false, Message: service.Reason(err)})
}

// bindJSON decodes the body or answers 400.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, models.ActionResult{Success: false, Message: "Invalid request body"})
		return false
	}
	return true
}
