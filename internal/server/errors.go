package server

import (
	"errors"
	"net/http"

	auditdomain "github.com/Thapthai/app-microservice-sub000/internal/audit/domain"
	lifecycledomain "github.com/Thapthai/app-microservice-sub000/internal/lifecycle/domain"
	reconciledomain "github.com/Thapthai/app-microservice-sub000/internal/reconcile/domain"
	"github.com/Thapthai/app-microservice-sub000/pkg/timerange"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	if qe, ok := lifecycledomain.AsQuantityExceeded(err); ok {
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "quantity_exceeded",
			Message: qe.Error(),
			Detail:  qe,
		}
	}

	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, lifecycledomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, lifecycledomain.ErrDuplicateEpisode):
		return http.StatusConflict, errorPayload{
			Type:    "duplicate_episode",
			Message: err.Error(),
		}
	case errors.Is(err, reconciledomain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "upstream source unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, lifecycledomain.ErrInvalidQuantity),
		errors.Is(err, lifecycledomain.ErrInvalidReason),
		errors.Is(err, lifecycledomain.ErrInvalidActor),
		errors.Is(err, lifecycledomain.ErrInvalidStatus),
		errors.Is(err, lifecycledomain.ErrInvalidEpisode),
		errors.Is(err, auditdomain.ErrInvalidTimeRange),
		errors.Is(err, timerange.ErrInvalidDate):
		return true
	default:
		return false
	}
}
