package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	notificationdomain "github.com/eventick/ticketpay/internal/notification/domain"
	organizerdomain "github.com/eventick/ticketpay/internal/organizer/domain"
	payoutdomain "github.com/eventick/ticketpay/internal/payout/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
	ErrInternal       = errors.New("internal_error")
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

// mapError translates domain errors to status codes and the human-readable
// messages the UI shows directly. Unrecognized errors collapse to a generic
// internal failure.
func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, payoutdomain.ErrUnauthorized),
		errors.Is(err, organizerdomain.ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "You are not allowed to perform this action.",
		}
	case errors.Is(err, payoutdomain.ErrBankDetailsMissing):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "bank_details_missing",
			Message: "Add and verify your bank details before requesting a payout.",
		}
	case errors.Is(err, payoutdomain.ErrCooldownActive):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "cooldown_active",
			Message: "A payout was requested recently. Please wait before requesting again.",
		}
	case errors.Is(err, payoutdomain.ErrNoFundsAvailable):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "no_funds_available",
			Message: "There is no payable balance for this period.",
		}
	case errors.Is(err, payoutdomain.ErrAlreadyProcessed):
		return http.StatusConflict, errorPayload{
			Type:    "already_processed",
			Message: "This payout has already been processed.",
		}
	case errors.Is(err, payoutdomain.ErrRequestInProgress):
		return http.StatusConflict, errorPayload{
			Type:    "request_in_progress",
			Message: "Another payout request is already in progress.",
		}
	case errors.Is(err, organizerdomain.ErrVerificationFailed):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "verification_failed",
			Message: "We could not verify this bank account. Check the details and try again.",
		}
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, payoutdomain.ErrInvalidID),
		errors.Is(err, organizerdomain.ErrInvalidID),
		errors.Is(err, organizerdomain.ErrInvalidName),
		errors.Is(err, organizerdomain.ErrInvalidEmail),
		errors.Is(err, organizerdomain.ErrInvalidBankAccount),
		errors.Is(err, notificationdomain.ErrInvalidRecipient):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: "The request is invalid.",
		}
	case errors.Is(err, ErrNotFound),
		errors.Is(err, payoutdomain.ErrNotFound),
		errors.Is(err, organizerdomain.ErrNotFound),
		errors.Is(err, notificationdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "The requested resource was not found.",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "Something went wrong. Please try again.",
		}
	}
}
