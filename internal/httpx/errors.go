package httpx

import (
	"net/http"

	"github.com/sundayezeilo/videorecords/internal/errx"
)

// kindResponse is how an errx.Kind is rendered on the wire.
type kindResponse struct {
	status int
	code   string
}

var kindResponses = map[errx.Kind]kindResponse{
	errx.NotFound:    {http.StatusNotFound, "not_found"},
	errx.Conflict:    {http.StatusConflict, "conflict"},
	errx.Invalid:     {http.StatusBadRequest, "invalid_input"},
	errx.Unavailable: {http.StatusServiceUnavailable, "unavailable"},
}

// Unknown and Internal, and anything unmapped, never reveal more than a 500.
var fallbackResponse = kindResponse{http.StatusInternalServerError, "internal_error"}

func responseFor(kind errx.Kind) kindResponse {
	if r, ok := kindResponses[kind]; ok {
		return r
	}
	return fallbackResponse
}

// ErrorKindToStatus maps errx.Kind to HTTP status codes.
func ErrorKindToStatus(kind errx.Kind) int {
	return responseFor(kind).status
}

// ErrorKindToCode maps errx.Kind to the error code carried in JSON responses.
func ErrorKindToCode(kind errx.Kind) string {
	return responseFor(kind).code
}

// WriteKindError writes an error response whose status and code follow kind.
func WriteKindError(w http.ResponseWriter, kind errx.Kind, message string) {
	r := responseFor(kind)
	WriteError(w, r.status, r.code, message, nil)
}
