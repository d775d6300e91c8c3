package styc_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/styc-lang/styc"
)

func TestMiddlewarePassthrough(t *testing.T) {
	mockFS := fstest.MapFS{
		"style.styc": &fstest.MapFile{Data: []byte("body { color: red; }")},
	}

	middleware := styc.NewMiddleware("/assets/css", mockFS)

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("next handler"))
	})

	handler := middleware(next)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "non-.styc file should pass through",
			method:     http.MethodGet,
			path:       "/assets/css/style.css",
			wantStatus: http.StatusTeapot,
			wantBody:   "next handler",
		},
		{
			name:       "request without basePath should pass through",
			method:     http.MethodGet,
			path:       "/other/style.styc",
			wantStatus: http.StatusTeapot,
			wantBody:   "next handler",
		},
		{
			name:       "POST request should pass through",
			method:     http.MethodPost,
			path:       "/assets/css/style.styc",
			wantStatus: http.StatusTeapot,
			wantBody:   "next handler",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled = false
			req := httptest.NewRequest(tt.method, tt.path, nil)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			require.True(t, nextCalled, "next handler should be called")
			require.Equal(t, tt.wantStatus, w.Code)
			require.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestMiddlewareCompilation(t *testing.T) {
	mockFS := fstest.MapFS{
		"style.styc": &fstest.MapFile{Data: []byte(`
$primary: #0066cc;
body {
  color: $primary;
}
`)},
	}

	middleware := styc.NewMiddleware("/assets/css", mockFS)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	handler := middleware(next)

	req := httptest.NewRequest(http.MethodGet, "/assets/css/style.styc", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/css; charset=utf-8", w.Header().Get("Content-Type"))
	require.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
	require.Contains(t, w.Body.String(), "color: #0066cc")
	require.Contains(t, w.Body.String(), "body")
}

func TestMiddlewareNotFound(t *testing.T) {
	mockFS := fstest.MapFS{}

	middleware := styc.NewMiddleware("/assets/css", mockFS)

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusNotFound)
	})
	handler := middleware(next)

	req := httptest.NewRequest(http.MethodGet, "/assets/css/nonexistent.styc", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.False(t, nextCalled)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMiddlewareHEADRequest(t *testing.T) {
	mockFS := fstest.MapFS{
		"style.styc": &fstest.MapFile{Data: []byte("body { color: red; }")},
	}

	middleware := styc.NewMiddleware("/assets/css", mockFS)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	handler := middleware(next)

	req := httptest.NewRequest(http.MethodHead, "/assets/css/style.styc", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/css; charset=utf-8", w.Header().Get("Content-Type"))
	require.Equal(t, "", w.Body.String())
}

func TestMiddlewareNesting(t *testing.T) {
	mockFS := fstest.MapFS{
		"nested.styc": &fstest.MapFile{Data: []byte(`
.container {
  background: white;

  .header {
    color: blue;

    h1 {
      font-size: 24px;
    }
  }
}
`)},
	}

	middleware := styc.NewMiddleware("/assets/css", mockFS)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	handler := middleware(next)

	req := httptest.NewRequest(http.MethodGet, "/assets/css/nested.styc", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	css := w.Body.String()
	require.Contains(t, css, ".container {")
	require.Contains(t, css, ".container .header {")
	require.Contains(t, css, ".container .header h1 {")
}

func TestMiddlewareNestedDirectory(t *testing.T) {
	mockFS := fstest.MapFS{
		"components/button.styc": &fstest.MapFile{Data: []byte(`
.btn {
  color: blue;
  padding: 10px;
}
`)},
	}

	middleware := styc.NewMiddleware("/css", mockFS)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	handler := middleware(next)

	req := httptest.NewRequest(http.MethodGet, "/css/components/button.styc", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	css := w.Body.String()
	require.NotEmpty(t, css)
	require.Contains(t, css, ".btn {")
}
