package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hazyhaar/docsum/docpipe"
	"github.com/hazyhaar/docsum/shield"
	"github.com/hazyhaar/docsum/summarize"
)

// ErrMethodNotAllowed is reported for verbs an endpoint does not serve.
var ErrMethodNotAllowed = errors.New("api: method not allowed")

// Caller-facing messages.
const (
	msgNoText        = "Could not extract text from PDF. The file might be empty or image-based."
	msgParseFailed   = "Failed to parse PDF file. Please try again."
	msgSummaryFailed = "Failed to generate summary. Please try again."
	msgInternal      = "Internal server error"
	msgTooLarge      = "Request body too large"
	msgMethod        = "Method not allowed"
	msgNotFound      = "Not found"
)

type errorEnvelope struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// classify maps a pipeline error to its status and envelope. Upstream
// messages go into Details only when exposeDetails is set.
func classify(err error, exposeDetails bool) (int, errorEnvelope) {
	var (
		ve  *ValidationError
		xe  *docpipe.ExtractError
		se  *summarize.Error
		mbe *http.MaxBytesError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorEnvelope{Error: ve.Msg}
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge, errorEnvelope{Error: msgTooLarge}
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, errorEnvelope{Error: msgMethod}
	case errors.Is(err, docpipe.ErrNoText):
		return http.StatusBadRequest, errorEnvelope{Error: msgNoText}
	case errors.As(err, &xe):
		env := errorEnvelope{Error: msgParseFailed}
		if exposeDetails {
			env.Details = xe.Err.Error()
		}
		return http.StatusInternalServerError, env
	case errors.As(err, &se):
		env := errorEnvelope{Error: msgSummaryFailed}
		if exposeDetails {
			env.Details = se.Err.Error()
		}
		return http.StatusInternalServerError, env
	default:
		return http.StatusInternalServerError, errorEnvelope{Error: msgInternal}
	}
}

// writeFailure writes exactly one error envelope for err and logs it on
// the request logger.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, env := classify(err, h.opts.ExposeDetails)
	logger := shield.GetLogger(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Info("request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, env)
}
