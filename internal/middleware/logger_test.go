package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jdholdren/cattery/internal/logger"
)

func TestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	prev := slog.Default()
	slog.SetDefault(logger.New(buf, "text", slog.LevelInfo))
	t.Cleanup(func() { slog.SetDefault(prev) })

	var sawAttrs bool
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAttrs = len(logger.Attrs(r.Context())) == 3
	}))

	req := httptest.NewRequest(http.MethodGet, "/cats", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, sawAttrs)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `msg="incoming request"`)
	assert.Contains(t, buf.String(), "request_id=req-123")
	assert.Contains(t, buf.String(), "path=/cats")
}

func TestLogger_GeneratesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	Logger(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cats", nil))

	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}
