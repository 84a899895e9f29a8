package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"eventdriver/internal/boundary"
	"eventdriver/internal/driver"
	"eventdriver/pkg/types"
)

// statusFor maps a dispatch error to an HTTP status code.
func statusFor(err error) int {
	var de *driver.DispatchError
	if errors.As(err, &de) {
		for _, f := range de.Failures {
			if !driver.IsNotImplemented(f) {
				return statusFor(f)
			}
		}
		return http.StatusNotImplemented
	}
	switch {
	case driver.IsNotImplemented(err):
		return http.StatusNotImplemented
	case driver.IsPanic(err):
		return http.StatusInternalServerError
	case errors.Is(err, boundary.ErrReplyTimeout):
		return http.StatusGatewayTimeout
	case boundary.IsRemote(err), errors.Is(err, boundary.ErrProcessExited), errors.Is(err, boundary.ErrClosed):
		return http.StatusBadGateway
	}
	var he *driver.HandlerError
	if errors.As(err, &he) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
