package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sundayezeilo/videorecords/internal/errx"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "status", status, "error", err)
	}
}

// WriteError writes an ErrorResponse.
func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	WriteJSON(w, status, ErrorResponse{
		Error:   code,
		Message: message,
		Details: details,
	})
}

// WriteFieldErrors writes a 400 whose message is the first field failure and
// whose details map every failed field to its message. fe must not be empty.
func WriteFieldErrors(w http.ResponseWriter, fe errx.FieldErrors) {
	WriteError(w, http.StatusBadRequest, "validation_failed", fe[0].Message, fe.Map())
}

// WriteNoContent writes an empty 204 response.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
