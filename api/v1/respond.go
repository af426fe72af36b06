package v1

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/filacost/services"
	"github.com/gin-gonic/gin"
)

func respondSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{
		"status": "success",
		"data":   data,
	})
}

func respondMessage(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"status":  "error",
		"message": message,
	})
}

// respondError maps service errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	var insufficient *services.InsufficientFilamentError
	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status":    "error",
			"message":   err.Error(),
			"remaining": insufficient.Remaining,
			"required":  insufficient.Required,
		})
	case errors.Is(err, services.ErrNotFound):
		respondMessage(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrFilamentInUse),
		errors.Is(err, services.ErrRevisionConflict):
		respondMessage(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrProjectCodeNotFound),
		errors.Is(err, services.ErrProjectRequired),
		errors.Is(err, services.ErrInvalidMaterial),
		errors.Is(err, services.ErrConfirmationRequired),
		errors.Is(err, services.ErrInvalidSettings):
		respondMessage(c, http.StatusBadRequest, err.Error())
	default:
		slog.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		respondMessage(c, http.StatusInternalServerError, err.Error())
	}
}

// paramID reads a positive numeric path parameter, answering 400 otherwise
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondMessage(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// queryInt reads an integer query parameter, returning 0 when absent or malformed
func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return n
}
