package handler

import (
	"net/http"

	apperrors "github.com/filerunner/backend/internal/errors"
	"github.com/filerunner/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps a service error onto its HTTP status with the
// uniform {"error": message} body.
func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.ToHTTPStatus(err), gin.H{
		"error": apperrors.GetErrorMessage(err),
	})
}

// respondBindError reports a failed request binding as a 400.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// pathUUID parses a :id style path parameter, writing the 400 itself on
// failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func clientMeta(c *gin.Context) service.ClientMeta {
	return service.ClientMeta{
		UserAgent: c.GetHeader("User-Agent"),
		IPAddress: c.ClientIP(),
	}
}
