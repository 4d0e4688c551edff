package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iacastillo90/petcare-booking/internal/domain/booking"
	"github.com/iacastillo90/petcare-booking/internal/domain/pricing"
)

// Respond maps a use case error to its HTTP status and stable error code.
// Unknown errors become a 500 without leaking their text.
func Respond(c *gin.Context, err error) {
	status, code, message := Classify(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	Write(c, status, code, message)
}

func Classify(err error) (status int, code, message string) {
	var (
		validation *booking.ValidationError
		notFound   *booking.NotFoundError
		denied     *booking.PermissionDeniedError
		conflict   *booking.SchedulingConflictError
		terminal   *booking.AlreadyTerminalError
		invalid    *booking.InvalidStateTransitionError
		duration   *pricing.InvalidDurationError
		feePct     *pricing.InvalidFeePercentageError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, "validation_failed", validation.Error()
	case errors.As(err, &duration), errors.As(err, &feePct):
		return http.StatusBadRequest, "validation_failed", err.Error()
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Entity + "_not_found", notFound.Error()
	case errors.As(err, &denied):
		return http.StatusForbidden, "permission_denied", denied.Error()
	case errors.As(err, &conflict):
		return http.StatusConflict, "scheduling_conflict", conflict.Error()
	case errors.As(err, &terminal):
		return http.StatusConflict, "already_terminal", terminal.Error()
	case errors.As(err, &invalid):
		return http.StatusConflict, "invalid_state_transition", invalid.Error()
	}
	return http.StatusInternalServerError, "internal_error", "Unexpected error."
}
