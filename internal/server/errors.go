package server

import (
	"net/http"

	"github.com/goccy/go-json"

	dagerrors "github.com/matzehuels/taskdag/pkg/errors"
	"github.com/matzehuels/taskdag/pkg/guard"
)

type errorResponse struct {
	Error  string         `json:"error"`
	Code   dagerrors.Code `json:"code,omitempty"`
	Reason guard.Reason   `json:"reason,omitempty"`
}

type errorOption func(*errorResponse)

func withReason(r guard.Reason) errorOption {
	return func(e *errorResponse) { e.Reason = r }
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch dagerrors.GetCode(err) {
	case dagerrors.ErrCodeMalformedPayload, dagerrors.ErrCodeInvalidInput, dagerrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case dagerrors.ErrCodeNotFound, dagerrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case dagerrors.ErrCodeEdgeRejected:
		return http.StatusConflict
	case dagerrors.ErrCodeDataIntegrity, dagerrors.ErrCodeGraphCycle:
		return http.StatusUnprocessableEntity
	case dagerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, opts ...errorOption) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", requestIDFrom(r.Context()), "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeErrorStatus(w, status, err, opts...)
}

func writeErrorStatus(w http.ResponseWriter, status int, err error, opts ...errorOption) {
	resp := errorResponse{
		Error: dagerrors.UserMessage(err),
		Code:  dagerrors.GetCode(err),
	}
	for _, opt := range opts {
		opt(&resp)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
