// Package static serves files from a directory for requests no controller
// route handled.
package static

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/fx"

	caterrs "github.com/jdholdren/cattery/internal/errors"
	"github.com/jdholdren/cattery/internal/module"
	"github.com/jdholdren/cattery/internal/serverutil"
)

const indexFile = "index.html"

// Options configures what gets served and where.
type Options struct {
	// Directory the files are read from.
	RootPath string
	// URL prefix the files are mounted at, "/" when empty.
	ServeRoot string
	// URL prefixes that are never served from disk.
	Exclude []string
	// Serve the root index.html for missing files instead of a 404.
	IndexFallback bool
}

// ForRoot builds the static module. Its handler becomes the server's
// not-found handler.
func ForRoot(opts Options) module.Definition {
	return module.Definition{
		Name: "static",
		Providers: []any{
			fx.Annotate(
				func() http.Handler { return NewHandler(opts) },
				fx.ResultTags(`name:"notfound"`),
			),
		},
	}
}

// ResolveRoot joins the running executable's directory with elem.
func ResolveRoot(elem ...string) (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("error locating executable: %s", err)
	}

	return filepath.Join(append([]string{filepath.Dir(exe)}, elem...)...), nil
}

// Handler serves GET and HEAD requests out of a directory.
type Handler struct {
	fsys          fs.FS
	serveRoot     string
	exclude       []string
	indexFallback bool
}

func NewHandler(opts Options) Handler {
	if info, err := os.Stat(opts.RootPath); err != nil || !info.IsDir() {
		slog.Warn("static root is not a readable directory", "root", opts.RootPath, "error", err)
	}

	exclude := make([]string, 0, len(opts.Exclude))
	for _, ex := range opts.Exclude {
		exclude = append(exclude, cleanURLPath(ex))
	}

	return Handler{
		fsys:          os.DirFS(opts.RootPath),
		serveRoot:     cleanURLPath(opts.ServeRoot),
		exclude:       exclude,
		indexFallback: opts.IndexFallback,
	}
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serverutil.HandlerFuncE(h.serve).ServeHTTP(w, r)
}

func (h Handler) serve(w http.ResponseWriter, r *http.Request) error {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return caterrs.E("not found", http.StatusNotFound)
	}

	name, ok := h.resolve(r.URL.Path)
	if !ok {
		return caterrs.E("not found", http.StatusNotFound)
	}

	f, info, err := h.open(name)
	if errors.Is(err, fs.ErrNotExist) && h.indexFallback {
		f, info, err = h.open(indexFile)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return caterrs.E("not found", http.StatusNotFound)
	}
	if err != nil {
		return fmt.Errorf("error opening static file: %s", err)
	}
	defer f.Close()

	rs, ok := f.(io.ReadSeeker)
	if !ok {
		return fmt.Errorf("static file %s is not seekable", name)
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), rs)

	return nil
}

// Opens the file, or the index.html inside of it if it's a directory.
func (h Handler) open(name string) (fs.File, fs.FileInfo, error) {
	info, err := fs.Stat(h.fsys, name)
	if err != nil {
		return nil, nil, err
	}
	if info.IsDir() {
		name = path.Join(name, indexFile)
		if info, err = fs.Stat(h.fsys, name); err != nil {
			return nil, nil, err
		}
		if info.IsDir() {
			return nil, nil, fs.ErrNotExist
		}
	}

	f, err := h.fsys.Open(name)
	if err != nil {
		return nil, nil, err
	}

	return f, info, nil
}

// Maps a URL path to a name inside of the root.
func (h Handler) resolve(urlPath string) (string, bool) {
	p := cleanURLPath(urlPath)

	for _, ex := range h.exclude {
		if hasPathPrefix(p, ex) {
			return "", false
		}
	}
	if !hasPathPrefix(p, h.serveRoot) {
		return "", false
	}

	name := strings.TrimPrefix(strings.TrimPrefix(p, h.serveRoot), "/")
	if name == "" {
		return ".", true
	}

	// Dotfiles stay hidden
	for _, seg := range strings.Split(name, "/") {
		if strings.HasPrefix(seg, ".") {
			return "", false
		}
	}

	return name, fs.ValidPath(name)
}

func cleanURLPath(p string) string {
	return path.Clean("/" + p)
}

func hasPathPrefix(p, prefix string) bool {
	if prefix == "/" {
		return true
	}

	return p == prefix || strings.HasPrefix(p, prefix+"/")
}
