package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sundayezeilo/videorecords/internal/errx"
)

const (
	// MaxRequestBodySize is the maximum allowed request body size (1MB).
	MaxRequestBodySize = 1 << 20
)

// ErrEmptyBody is returned by DecodeJSON when the request carries no body.
var ErrEmptyBody = errors.New("request body is empty")

// DecodeOption adjusts how a request body is decoded.
type DecodeOption func(*decodeOptions)

type decodeOptions struct {
	allowEmpty   bool
	allowUnknown bool
}

// AllowUnknownFields makes the decoder skip object keys that T does not declare.
func AllowUnknownFields() DecodeOption {
	return func(o *decodeOptions) {
		o.allowUnknown = true
	}
}

// DecodeJSON decodes a single JSON object from the request body.
// Unknown fields are rejected unless AllowUnknownFields is given, and trailing
// data is always rejected. A value of the wrong type is reported as
// errx.FieldErrors naming the offending field.
func DecodeJSON[T any](r *http.Request, opts ...DecodeOption) (T, error) {
	return decode[T](r, decodeOptions{}, opts)
}

// DecodeOptionalJSON behaves like DecodeJSON but treats an empty body as a
// zero-value T instead of an error.
func DecodeOptionalJSON[T any](r *http.Request, opts ...DecodeOption) (T, error) {
	return decode[T](r, decodeOptions{allowEmpty: true}, opts)
}

func decode[T any](r *http.Request, o decodeOptions, opts []DecodeOption) (T, error) {
	var zeroValue T

	for _, opt := range opts {
		opt(&o)
	}

	if r.Body == nil {
		if o.allowEmpty {
			return zeroValue, nil
		}
		return zeroValue, ErrEmptyBody
	}

	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)
	defer func() {
		_ = r.Body.Close()
	}()

	decoder := json.NewDecoder(r.Body)
	if !o.allowUnknown {
		decoder.DisallowUnknownFields()
	}

	var v T
	if err := decoder.Decode(&v); err != nil {
		var syntaxErr *json.SyntaxError
		var unmarshalErr *json.UnmarshalTypeError
		var maxBytesErr *http.MaxBytesError

		switch {
		case errors.Is(err, io.EOF):
			if o.allowEmpty {
				return zeroValue, nil
			}
			return zeroValue, ErrEmptyBody
		case errors.As(err, &syntaxErr):
			return zeroValue, fmt.Errorf("malformed JSON at position %d", syntaxErr.Offset)
		case errors.As(err, &unmarshalErr):
			if unmarshalErr.Field == "" {
				return zeroValue, errors.New("request body must be a JSON object")
			}
			var fe errx.FieldErrors
			fe.Add(unmarshalErr.Field, fmt.Sprintf("invalid value for field %q", unmarshalErr.Field))
			return zeroValue, fe
		case errors.As(err, &maxBytesErr):
			return zeroValue, fmt.Errorf("request body too large (max %d bytes)", MaxRequestBodySize)
		case strings.HasPrefix(err.Error(), "json: unknown field"):
			return zeroValue, fmt.Errorf("unknown field %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
		default:
			return zeroValue, fmt.Errorf("failed to decode JSON: %w", err)
		}
	}

	if decoder.More() {
		return zeroValue, errors.New("request body contains multiple JSON objects")
	}

	return v, nil
}
