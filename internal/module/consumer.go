package module

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jdholdren/cattery/internal/serverutil"
)

// MethodAll matches a route regardless of the request method.
const MethodAll = ""

// RouteInfo selects requests by path pattern and method.
//
// Paths use the mux template syntax, e.g. "cats/{id}". A leading slash is
// optional and a trailing slash on the request is ignored.
type RouteInfo struct {
	Path   string
	Method string
}

func (ri RouteInfo) matcher() *mux.Route {
	path := "/" + strings.TrimPrefix(ri.Path, "/")

	route := mux.NewRouter().NewRoute().Path(path)
	if ri.Method != MethodAll {
		route = route.Methods(ri.Method)
	}

	return route
}

// Binding is a middleware and the routes it applies to.
type Binding struct {
	Middleware mux.MiddlewareFunc
	Routes     []RouteInfo
	Excluded   []RouteInfo

	routes   []*mux.Route
	excluded []*mux.Route
}

func (b Binding) matches(r *http.Request) bool {
	r = serverutil.WithoutTrailingSlash(r)

	for _, ex := range b.excluded {
		if ex.Match(r, &mux.RouteMatch{}) {
			return false
		}
	}
	for _, route := range b.routes {
		if route.Match(r, &mux.RouteMatch{}) {
			return true
		}
	}

	return false
}

// Consumer collects middleware bindings while modules are configured.
type Consumer struct {
	bindings []Binding
}

// MiddlewareConfig is the pending half of an Apply(...).ForRoutes(...) chain.
type MiddlewareConfig struct {
	consumer   *Consumer
	middleware []mux.MiddlewareFunc
	excluded   []RouteInfo
}

// Apply starts binding the middleware, in the given order.
func (c *Consumer) Apply(mw ...mux.MiddlewareFunc) *MiddlewareConfig {
	return &MiddlewareConfig{consumer: c, middleware: mw}
}

// Exclude keeps the middleware off of requests matching any of the routes.
func (m *MiddlewareConfig) Exclude(routes ...RouteInfo) *MiddlewareConfig {
	m.excluded = append(m.excluded, routes...)
	return m
}

// ForRoutes finishes the binding. The consumer is returned to chain another Apply.
func (m *MiddlewareConfig) ForRoutes(routes ...RouteInfo) *Consumer {
	var (
		matchers = make([]*mux.Route, 0, len(routes))
		excluded = make([]*mux.Route, 0, len(m.excluded))
	)
	for _, ri := range routes {
		matchers = append(matchers, ri.matcher())
	}
	for _, ri := range m.excluded {
		excluded = append(excluded, ri.matcher())
	}

	for _, mw := range m.middleware {
		m.consumer.bindings = append(m.consumer.bindings, Binding{
			Middleware: mw,
			Routes:     routes,
			Excluded:   m.excluded,
			routes:     matchers,
			excluded:   excluded,
		})
	}

	return m.consumer
}

// Pipeline returns the bindings collected so far.
func (c *Consumer) Pipeline() Pipeline {
	return Pipeline{bindings: append([]Binding(nil), c.bindings...)}
}

// Pipeline is the ordered list of middleware bindings for the application.
type Pipeline struct {
	bindings []Binding
}

// Bindings returns the bindings in the order they were declared.
func (p Pipeline) Bindings() []Binding {
	return p.bindings
}

// Wrap runs every binding matching the request, in declaration order, before next.
func (p Pipeline) Wrap(next http.Handler) http.Handler {
	if len(p.bindings) == 0 {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := next
		for i := len(p.bindings) - 1; i >= 0; i-- {
			if b := p.bindings[i]; b.matches(r) {
				h = b.Middleware(h)
			}
		}

		h.ServeHTTP(w, r)
	})
}
