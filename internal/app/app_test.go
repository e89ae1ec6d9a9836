package app

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/jdholdren/cattery/internal/cats"
	"github.com/jdholdren/cattery/internal/logger"
	"github.com/jdholdren/cattery/internal/module"
	"github.com/jdholdren/cattery/internal/server"
	"github.com/jdholdren/cattery/internal/sqlite"
)

// Keeps the log attributes the cats handler's context carried into the store.
type attrRecordingStore struct {
	cats.Store

	mu    sync.Mutex
	attrs []slog.Attr
}

func (s *attrRecordingStore) Cats(ctx context.Context, limit, offset int) ([]cats.Cat, error) {
	s.mu.Lock()
	s.attrs = logger.Attrs(ctx)
	s.mu.Unlock()

	return s.Store.Cats(ctx, limit, offset)
}

func (s *attrRecordingStore) seen(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.attrs {
		if a.Key == key {
			return a.Value.String()
		}
	}
	return ""
}

// Wires the whole application against an in-memory database and a temporary
// public directory. Logs land in the returned buffer.
func newTestApp(t *testing.T) (http.Handler, *bytes.Buffer) {
	h, logs, _ := newRecordingTestApp(t)
	return h, logs
}

func newRecordingTestApp(t *testing.T) (http.Handler, *bytes.Buffer, *attrRecordingStore) {
	t.Helper()

	logs := &bytes.Buffer{}
	prev := slog.Default()
	slog.SetDefault(logger.New(logs, "json", slog.LevelInfo))
	t.Cleanup(func() { slog.SetDefault(prev) })

	dbx, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { dbx.Close() })

	public := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(public, "hello.txt"), []byte("meow"), 0o644))

	var (
		store = &attrRecordingStore{Store: sqlite.New(dbx)}
		srv   server.Server
	)
	fxtest.New(t,
		fx.Supply(
			server.Config{},
			fx.Annotate(store, fx.As(new(cats.Store))),
		),
		Module(Config{StaticRoot: public}),
		fx.Provide(server.New),
		fx.Populate(&srv),
	)

	return srv.Handler, logs, store
}

// Counts how many times the request logger ran.
func loggerCalls(t *testing.T, logs *bytes.Buffer) int {
	t.Helper()

	var n int
	scanner := bufio.NewScanner(strings.NewReader(logs.String()))
	for scanner.Scan() {
		var line struct {
			Msg string `json:"msg"`
		}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		if line.Msg == "incoming request" {
			n++
		}
	}

	return n
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestRoot_ActivatesOnlyDeclaredModules(t *testing.T) {
	root := Root(Config{StaticRoot: t.TempDir()})

	var imports []string
	for _, imp := range root.Imports {
		imports = append(imports, imp.Name)
	}
	assert.Equal(t, []string{"cats", "static"}, imports)
	assert.Equal(t, []string{"cats", "static", "app"}, module.Names(root))
}

func TestRoot_BindsLoggerToGetCatsOnly(t *testing.T) {
	c := &module.Consumer{}
	Root(Config{StaticRoot: t.TempDir()}).Configure(c)

	bindings := c.Pipeline().Bindings()
	require.Len(t, bindings, 1)
	assert.Equal(t, []module.RouteInfo{{Path: "cats", Method: http.MethodGet}}, bindings[0].Routes)
}

func TestApp_LoggerRunsOnceForGetCats(t *testing.T) {
	h, logs, store := newRecordingTestApp(t)

	rec := do(h, http.MethodGet, "/cats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, loggerCalls(t, logs))

	// The logger ran before the handler: its request id reached the store call
	reqID := rec.Header().Get("X-Request-ID")
	require.NotEmpty(t, reqID)
	assert.Equal(t, reqID, store.seen("request_id"))
	assert.Equal(t, "/cats", store.seen("path"))
}

func TestApp_LoggerRunsForGetCatsWithTrailingSlash(t *testing.T) {
	h, logs, store := newRecordingTestApp(t)

	rec := do(h, http.MethodGet, "/cats/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, loggerCalls(t, logs))
	assert.Equal(t, rec.Header().Get("X-Request-ID"), store.seen("request_id"))
}

func TestApp_LoggerSkipsOtherRoutes(t *testing.T) {
	h, logs := newTestApp(t)

	rec := do(h, http.MethodPost, "/cats", `{"name":"Luna","age":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var cat cats.Cat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/cats/"+cat.ID, "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/hello.txt", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodHead, "/cats", "").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/nothing-here", "").Code)
	assert.Equal(t, http.StatusNoContent, do(h, http.MethodDelete, "/cats/"+cat.ID, "").Code)

	assert.Equal(t, 0, loggerCalls(t, logs))
}

func TestApp_Hello(t *testing.T) {
	h, _ := newTestApp(t)

	rec := do(h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello World!", rec.Body.String())
}

func TestApp_StaticFiles(t *testing.T) {
	h, _ := newTestApp(t)

	rec := do(h, http.MethodGet, "/hello.txt", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "meow", rec.Body.String())

	rec = do(h, http.MethodGet, "/missing.txt", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticRootDefaultsNextToExecutable(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(exe), "..", "public"), staticRoot(Config{}))
	assert.Equal(t, "/srv/public", staticRoot(Config{StaticRoot: "/srv/public"}))
}
