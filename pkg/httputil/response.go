package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/clinic-portal/pkg/errors"
)

// Response wraps all JSON responses of the portal. The shape mirrors the
// write results the dashboards act on.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondWithFailure sends success=false with the given status and message.
func RespondWithFailure(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Success: false,
		Message: message,
	})
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		statusCode = appErr.StatusCode()
		message = appErr.Message
	} else if apiErr, ok := apperrors.IsAPIError(err); ok {
		statusCode = http.StatusBadGateway
		message = apiErr.Message
	}

	RespondWithFailure(c, statusCode, message)
}

// WantsJSON reports whether the caller asked for JSON or is one of the
// portal's own fragment requests.
func WantsJSON(c *gin.Context) bool {
	if c.GetHeader("X-Requested-With") == "fetch" {
		return true
	}
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}
