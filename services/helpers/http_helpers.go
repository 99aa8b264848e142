package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

// sentinels are checked in order; the first match names the failure in responses
var sentinels = []error{
	marketerrors.ErrAuctionNotFound,
	marketerrors.ErrNoBids,
	marketerrors.ErrUserNotFound,
	marketerrors.ErrQuestionNotFound,
	marketerrors.ErrWatchNotFound,
	marketerrors.ErrAlreadyWatching,
	marketerrors.ErrUserExists,
	marketerrors.ErrInvalidID,
	marketerrors.ErrInvalidBid,
	marketerrors.ErrBidTooLow,
	marketerrors.ErrAuctionNotActive,
	marketerrors.ErrAuctionEnded,
	marketerrors.ErrNotSeller,
	marketerrors.ErrInvalidInput,
	marketerrors.ErrConcurrentUpdate,
}

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, marketerrors.ErrValidation), errors.Is(err, marketerrors.ErrState):
		status = http.StatusBadRequest
	case errors.Is(err, marketerrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, marketerrors.ErrAuthorization):
		status = http.StatusForbidden
	case errors.Is(err, marketerrors.ErrConflict), errors.Is(err, marketerrors.ErrConcurrentUpdate):
		status = http.StatusConflict
	default:
		return status, "internal server error"
	}

	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return status, sentinel.Error()
		}
	}
	return status, http.StatusText(status)
}

// RespondError writes the mapped error response and logs the failure
func RespondError(c *gin.Context, handlerName string, err error, ctx map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, err, message)

	fields := map[string]any{"handler": handlerName, "status": status, "error": err.Error()}
	for k, v := range ctx {
		fields[k] = v
	}
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": "+message, fields)
		return
	}
	utils.Warn(handlerName+": "+message, fields)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
