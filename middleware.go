package styc

import (
	"io/fs"
	"net/http"
	"strings"
)

// NewMiddleware creates an HTTP middleware that compiles stylesheet
// files to CSS on the fly. It intercepts requests for files ending in
// sourceExtension under basePath, compiles them, and returns the
// resulting CSS with the appropriate Content-Type header; any other
// request passes through to next.
func NewMiddleware(basePath string, fileSystem fs.FS) func(http.Handler) http.Handler {
	handler := NewHandler(fileSystem, basePath)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			if !strings.HasPrefix(r.URL.Path, basePath) {
				next.ServeHTTP(w, r)
				return
			}

			if !strings.HasSuffix(r.URL.Path, sourceExtension) {
				next.ServeHTTP(w, r)
				return
			}

			handler.ServeHTTP(w, r)
		})
	}
}
