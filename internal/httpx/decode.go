package httpx

import (
	"errors"
	"io"
	"net/http"

	"bookcatalog/internal/apperr"
)

// DecodeJSON reads the request body into dst and validates it.
// Malformed, oversized, trailing or invalid bodies are reported as bad input.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.Validation("request body is empty")
		case errors.As(err, &maxErr):
			return apperr.Validation("request body too large")
		default:
			return apperr.Validation("invalid request body")
		}
	}
	if dec.More() {
		return apperr.Validation("request body must contain a single JSON object")
	}
	if fields := ValidateStruct(dst); len(fields) > 0 {
		return apperr.ValidationFields("invalid request body", fields)
	}
	return nil
}
