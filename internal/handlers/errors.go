package handlers

import (
	"errors"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/services"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/validation"
	xhttp "github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/http"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/logger"
)

const (
	MsgSubmitted        = "Message submitted successfully!"
	MsgStatusUpdated    = "Status updated successfully."
	MsgValidationFailed = "Validation failed."
	MsgInvalidBody      = "Invalid request body."
	MsgNotFound         = "Contact not found."
	MsgUnauthorized     = "Unauthorized."
	MsgInternal         = "Internal server error."
)

// ErrorResponse maps a service error to its HTTP status and body. Anything
// unrecognised is logged and reported as a bare 500.
func ErrorResponse(err error) (int, xhttp.ErrorBody) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		return xhttp.StatusBadRequest, xhttp.ErrorBody{Error: MsgValidationFailed, Details: []validation.Violation(verrs)}
	case errors.Is(err, services.ErrNotFound):
		return xhttp.StatusNotFound, xhttp.ErrorBody{Error: MsgNotFound}
	default:
		logger.Error("request failed", "error", err)
		return xhttp.StatusInternalServerError, xhttp.ErrorBody{Error: MsgInternal}
	}
}

func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	status, body := ErrorResponse(err)
	xhttp.WriteJSON(ctx, status, body)
}
