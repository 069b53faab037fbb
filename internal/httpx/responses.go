package httpx

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"bookcatalog/internal/apperr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorResponse is the envelope written for every failed request.
type ErrorResponse struct {
	Error      bool                `json:"error"`
	Message    string              `json:"message"`
	StatusCode int                 `json:"status_code"`
	Details    []apperr.FieldError `json:"details,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func JSONCreated(w http.ResponseWriter, v any) {
	JSON(w, http.StatusCreated, v)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// JSONError writes the error envelope.
func JSONError(w http.ResponseWriter, statusCode int, message string, details []apperr.FieldError) {
	JSON(w, statusCode, ErrorResponse{
		Error:      true,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	})
}
