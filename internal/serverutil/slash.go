package serverutil

import (
	"net/http"
	"strings"
)

// WithoutTrailingSlash returns r with any trailing slash dropped from its path,
// so "/cats/" routes the same as "/cats". The root path is left alone.
func WithoutTrailingSlash(r *http.Request) *http.Request {
	p := r.URL.Path
	if len(p) <= 1 || !strings.HasSuffix(p, "/") {
		return r
	}

	u := *r.URL
	u.Path = strings.TrimRight(p, "/")
	if u.Path == "" {
		u.Path = "/"
	}
	u.RawPath = ""

	r2 := new(http.Request)
	*r2 = *r
	r2.URL = &u
	return r2
}

// NonStrictSlash routes every request without its trailing slash.
func NonStrictSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, WithoutTrailingSlash(r))
	})
}
