package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"eventmarket/internal/domain/shared/failure"
)

func statusFor(kind failure.Kind) int {
	switch kind {
	case failure.KindValidation, failure.KindCurrencyMismatch, failure.KindInvalidOperation:
		return http.StatusUnprocessableEntity
	case failure.KindUnauthorized:
		return http.StatusForbidden
	case failure.KindNotFound:
		return http.StatusNotFound
	case failure.KindConversionFailed:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(kind, message string) gin.H {
	return gin.H{"error": gin.H{"kind": kind, "message": message}}
}

// respondError maps err to its HTTP status. Server failures are logged and
// their details withheld from the client.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	kind := failure.KindOf(err)
	status := statusFor(kind)
	message := failure.Message(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		}
		message = "internal error"
	}
	c.JSON(status, errorBody(string(kind), message))
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorBody(string(failure.KindValidation), err.Error()))
}
