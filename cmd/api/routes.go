package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/httpx"
)

// apiPrefix is the versioned mount point. Routes are also served unprefixed.
const apiPrefix = "/api/v1"

// readinessFunc reports whether the backing store can serve requests.
type readinessFunc func(ctx context.Context) error

func newRouter(ctx context.Context, cfg config.Config, scope book.Scope, ready readinessFunc, log *zap.Logger) http.Handler {
	router := http.NewServeMux()
	eh := httpx.NewErrorHandler(log)

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				log.Warn("readiness check failed", zap.Error(err))
				httpx.JSONError(w, http.StatusServiceUnavailable, "Store not ready", nil)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	books := book.NewHTTPHandler(scope)
	books.Routes(router, "", eh)
	books.Routes(router, apiPrefix, eh)

	limiter := httpx.NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(log),
		httpx.RecoveryMiddleware(log),
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.CORSAllowedOrigins),
		limiter.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	)
}
