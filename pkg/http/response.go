package xhttp

import (
	"encoding/json"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/logger"
)

const contentTypeJSON = "application/json; charset=utf-8"

// ErrorBody is the envelope of every JSON error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// WriteJSON serializes v as the response body with the given status.
func WriteJSON(ctx *RequestCtx, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Error("[xhttp] failed to encode response", "error", err)
		ctx.SetStatusCode(StatusInternalServerError)
		ctx.SetContentType(contentTypeJSON)
		ctx.SetBodyString(`{"error":"Internal server error."}`)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType(contentTypeJSON)
	ctx.SetBody(b)
}

func WriteError(ctx *RequestCtx, status int, message string) {
	WriteJSON(ctx, status, ErrorBody{Error: message})
}
