package respond

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Error kinds carried in failure envelopes.
const (
	KindUnauthenticated = "Unauthenticated"
	KindValidation      = "ValidationError"
	KindNotFound        = "NotFound"
	KindStorage         = "StorageError"
	KindConflict        = "Conflict"
)

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorKind string `json:"errorKind,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// JSON writes a success or informational response using the common envelope.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Code: status, Message: message, Data: data})
}

// Error writes a failure response tagged with kind.
func Error(w http.ResponseWriter, status int, kind, message string) {
	write(w, status, Envelope{Code: status, Message: message, ErrorKind: kind})
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.S().Warnw("respond: encode payload failed", "error", err)
	}
}
