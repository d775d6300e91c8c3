package styc

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"
)

// Error types for compilation and serving.
var (
	ErrNotFound          = errors.New("not found")
	ErrCompilationFailed = errors.New("compilation failed")
)

// Handler compiles stylesheet files on request and serves the resulting
// CSS. fileSystem is where to read source files from; pathPrefix is the
// URL path prefix to match and strip (e.g. "/assets/css").
type Handler struct {
	pathPrefix string
	fileSystem fs.FS
	compressed bool
}

// NewHandler creates a stylesheet compilation handler.
func NewHandler(fileSystem fs.FS, pathPrefix string) http.Handler {
	return &Handler{pathPrefix: pathPrefix, fileSystem: fileSystem}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.pathPrefix != "" && !strings.HasPrefix(r.URL.Path, h.pathPrefix) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if !strings.HasSuffix(r.URL.Path, sourceExtension) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	relPath := strings.TrimPrefix(r.URL.Path, h.pathPrefix)
	if h.pathPrefix != "/" {
		relPath = strings.TrimPrefix(relPath, "/")
	}

	info, err := fs.Stat(h.fileSystem, relPath)
	if err != nil || info.IsDir() {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	css, err := CompileFS(h.fileSystem, relPath, CompileOptions{Compressed: h.compressed})
	if err != nil {
		http.Error(w, "Compilation Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if r.Method != http.MethodHead {
		w.Write([]byte(css))
	}
}
