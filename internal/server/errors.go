package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/sceneworks/scene/internal/analytics/domain"
	checkindomain "github.com/sceneworks/scene/internal/checkin/domain"
	"github.com/sceneworks/scene/internal/identity"
	photodomain "github.com/sceneworks/scene/internal/photo/domain"
	promotiondomain "github.com/sceneworks/scene/internal/promotion/domain"
	venuedomain "github.com/sceneworks/scene/internal/venue/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

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

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	errorType := "client_error"
	if status >= http.StatusInternalServerError {
		errorType = "server_error"
	}
	return errorType, payload.Type
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   "request",
					Code:    err.Error(),
					Message: "validation error",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, identity.ErrUnauthenticated),
		errors.Is(err, identity.ErrInvalidRole):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, venuedomain.ErrForbidden),
		errors.Is(err, promotiondomain.ErrForbidden),
		errors.Is(err, analyticsdomain.ErrForbidden),
		errors.Is(err, checkindomain.ErrNotOwner):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, checkindomain.ErrAlreadyCheckedIn),
		errors.Is(err, checkindomain.ErrAlreadyCheckedOut),
		errors.Is(err, promotiondomain.ErrAlreadyRedeemed),
		errors.Is(err, venuedomain.ErrSlugTaken):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, promotiondomain.ErrNotActive):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "promotion_not_active",
			Message: "promotion not active",
		}
	case errors.Is(err, checkindomain.ErrTooFarAway):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "too_far_from_venue",
			Message: "reported position is too far from the venue",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, analyticsdomain.ErrAggregation):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, venuedomain.ErrInvalidName),
		errors.Is(err, venuedomain.ErrInvalidCapacity),
		errors.Is(err, venuedomain.ErrInvalidLocation),
		errors.Is(err, checkindomain.ErrInvalidRating),
		errors.Is(err, checkindomain.ErrInvalidEvent),
		errors.Is(err, promotiondomain.ErrInvalidTitle),
		errors.Is(err, promotiondomain.ErrInvalidWindow),
		errors.Is(err, photodomain.ErrInvalidURL):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, venuedomain.ErrVenueNotFound),
		errors.Is(err, checkindomain.ErrVenueNotFound),
		errors.Is(err, checkindomain.ErrCheckinNotFound),
		errors.Is(err, promotiondomain.ErrPromotionNotFound),
		errors.Is(err, promotiondomain.ErrVenueNotFound),
		errors.Is(err, photodomain.ErrVenueNotFound),
		errors.Is(err, analyticsdomain.ErrVenueNotFound):
		return true
	default:
		return false
	}
}
