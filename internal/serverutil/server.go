package serverutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	caterrs "github.com/jdholdren/cattery/internal/errors"
)

func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("error encoding json response: %s", err)
	}

	return nil
}

// Validator is a surface that can validate itself and return an error
// if something is wrong.
type Validator interface {
	Validate() error
}

// DecodeValid decodes a request and then validates it.
//
// Decoding failures come back as a 400, validation errors are returned as-is.
func DecodeValid[V Validator](r io.Reader) (V, error) {
	var v V
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return v, caterrs.E(fmt.Errorf("error decoding request: %w", err), http.StatusBadRequest)
	}
	if err := v.Validate(); err != nil {
		return v, err
	}

	return v, nil
}

// AccessLogMessage is the message of the access log line written for every request.
const AccessLogMessage = "http access"

// AccessLogMiddleware writes one access log line per request once it's served.
func AccessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		writer := &respCodeWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(writer, r)

		slog.InfoContext(r.Context(), AccessLogMessage,
			"method", r.Method,
			"url", r.URL.String(),
			"duration", time.Since(start),
			"status_code", writer.code,
		)
	})
}

// To trap the response status code for logging later.
type respCodeWriter struct {
	http.ResponseWriter
	code int
}

func (w *respCodeWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// HandlerFuncE is a modified type of [http.HandlerFunc] that returns an error.
type HandlerFuncE func(w http.ResponseWriter, r *http.Request) error

func (f HandlerFuncE) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := f(w, r)
	if err == nil {
		return
	}

	// Either it's already a structured error, or coerce it to one
	cErr := &caterrs.Error{}
	if !errors.As(err, &cErr) {
		slog.ErrorContext(r.Context(), "unstructured error", "err", err)
		cErr = caterrs.E(http.StatusInternalServerError, "internal server error")
	}

	if err := WriteJSON(w, cErr.Status, cErr); err != nil {
		slog.ErrorContext(r.Context(), "error writing response", "error", err)
	}
}

// NotFound answers every request with a JSON 404.
var NotFound = HandlerFuncE(func(w http.ResponseWriter, r *http.Request) error {
	return caterrs.E("not found", http.StatusNotFound)
})

// MethodNotAllowed answers every request with a JSON 405.
var MethodNotAllowed = HandlerFuncE(func(w http.ResponseWriter, r *http.Request) error {
	return caterrs.E("method not allowed", http.StatusMethodNotAllowed)
})

// ErrRouter is a newtype around a mux router that allows attaching handlers that return errors.
type ErrRouter struct {
	*mux.Router
}

func (r ErrRouter) HandleFuncE(path string, f HandlerFuncE) *mux.Route {
	return r.Handle(path, f)
}
