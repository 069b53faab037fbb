package httpx

import (
	"net/http"

	"go.uber.org/zap"

	"bookcatalog/internal/apperr"
)

// InternalErrorMessage is the only text callers see for internal failures.
const InternalErrorMessage = "Internal server error"

// HandlerFunc is an HTTP handler that reports failure by returning an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ErrorHandler is the single place where returned errors become responses.
type ErrorHandler struct {
	log *zap.Logger
}

func NewErrorHandler(log *zap.Logger) *ErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ErrorHandler{log: log}
}

// Wrap adapts fn to http.Handler. Successful responses pass through untouched.
// The writer handed to fn records whether a status line went out, so a late
// error never triggers a second WriteHeader.
func (h *ErrorHandler) Wrap(fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw, ok := w.(*responseWriter)
		if !ok {
			rw = &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		}
		if err := fn(rw, r); err != nil {
			h.Write(rw, r, err)
		}
	})
}

// Write translates err into the error envelope.
func (h *ErrorHandler) Write(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind == apperr.KindInternal {
		h.log.Error("request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFrom(r)),
		)
		if !headerWritten(w) {
			JSONError(w, http.StatusInternalServerError, InternalErrorMessage, nil)
		}
		return
	}

	if headerWritten(w) {
		h.log.Warn("error after response started",
			zap.Error(err),
			zap.String("request_id", RequestIDFrom(r)),
		)
		return
	}
	JSONError(w, appErr.Kind.HTTPStatus(), appErr.Message, appErr.Fields)
}

func headerWritten(w http.ResponseWriter) bool {
	if rw, ok := w.(*responseWriter); ok {
		return rw.wroteHeader()
	}
	return false
}
