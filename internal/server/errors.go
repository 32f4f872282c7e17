package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	ambiencedomain "github.com/smallbiznis/streetsignal/internal/ambience/domain"
	enginedomain "github.com/smallbiznis/streetsignal/internal/engine/domain"
	ratinghistorydomain "github.com/smallbiznis/streetsignal/internal/ratinghistory/domain"
	rewarddomain "github.com/smallbiznis/streetsignal/internal/reward/domain"
	signaldomain "github.com/smallbiznis/streetsignal/internal/signal/domain"
	venuedomain "github.com/smallbiznis/streetsignal/internal/venue/domain"
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
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
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

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{{Field: field, Code: code, Message: message}},
	}
}

// validationFields maps domain validation sentinels to the request field they reject.
var validationFields = map[error]string{
	ErrInvalidRequest:                    "request",
	signaldomain.ErrInvalidSignalType:    "type",
	signaldomain.ErrInvalidActor:         "actor",
	ambiencedomain.ErrRatingOutOfRange:   "ratings",
	rewarddomain.ErrInvalidAmount:        "amount",
	rewarddomain.ErrInvalidIssue:         "issue",
	ratinghistorydomain.ErrInvalidRating: "rating",
	ratinghistorydomain.ErrInvalidScore:  "score",
	enginedomain.ErrUnknownFlag:          "flag",
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
	}

	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}
	for sentinel, field := range validationFields {
		if errors.Is(err, sentinel) {
			return http.StatusBadRequest, errorPayload{
				Type:    "validation_error",
				Message: "validation error",
				Errors:  []ValidationError{{Field: field, Code: sentinel.Error(), Message: "invalid value"}},
			}
		}
	}

	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, venuedomain.ErrVenueNotFound),
		errors.Is(err, rewarddomain.ErrOfferNotFound):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: "not found"}
	case errors.Is(err, rewarddomain.ErrInsufficientBalance):
		return http.StatusConflict, errorPayload{Type: "insufficient_balance", Message: "insufficient balance"}
	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
	}
}

// classifyErrorForLog returns the error type and code logged with a failed request.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}
