// Package middleware holds request middleware that modules bind to routes.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jdholdren/cattery/internal/logger"
)

const RequestIDHeader = "X-Request-ID"

// Logger tags the request with an id and logs that it came in.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, reqID)

		ctx := logger.Ctx(r.Context(),
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		slog.InfoContext(ctx, "incoming request")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
