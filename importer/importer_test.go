package importer_test

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/styc-lang/styc/importer"
	"github.com/styc-lang/styc/token"
)

func TestResolveExactPath(t *testing.T) {
	fsys := fstest.MapFS{
		"_vars.styc": &fstest.MapFile{Data: []byte("$a: 1px;")},
	}
	imp := importer.New(fsys)

	canonical, toks, err := imp.Resolve("_vars.styc", "main.styc")
	require.NoError(t, err)
	require.Equal(t, "_vars.styc", canonical)
	require.NotEmpty(t, toks)
	require.Equal(t, token.EOF, toks[len(toks)-1].Type)
}

func TestResolveExtensionlessAppendsDefault(t *testing.T) {
	fsys := fstest.MapFS{
		"vars.styc": &fstest.MapFile{Data: []byte("$a: 1px;")},
	}
	imp := importer.New(fsys)

	canonical, _, err := imp.Resolve("vars", "main.styc")
	require.NoError(t, err)
	require.Equal(t, "vars.styc", canonical)
}

func TestResolveRelativeToContainingDir(t *testing.T) {
	fsys := fstest.MapFS{
		"partials/_colors.styc": &fstest.MapFile{Data: []byte("$c: red;")},
	}
	imp := importer.New(fsys)

	canonical, _, err := imp.Resolve("_colors.styc", "partials/main.styc")
	require.NoError(t, err)
	require.Equal(t, "partials/_colors.styc", canonical)
}

func TestResolveNotFound(t *testing.T) {
	imp := importer.New(fstest.MapFS{})
	_, _, err := imp.Resolve("missing", "main.styc")
	require.Error(t, err)
}

func TestResolveCachesByCanonicalPath(t *testing.T) {
	calls := 0
	fsys := countingFS{
		MapFS: fstest.MapFS{"vars.styc": &fstest.MapFile{Data: []byte("$a: 1px;")}},
		calls: &calls,
	}
	imp := importer.New(fsys)

	_, first, err := imp.Resolve("vars.styc", "a.styc")
	require.NoError(t, err)
	_, second, err := imp.Resolve("vars.styc", "b.styc")
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 1, calls)
}

// countingFS wraps fstest.MapFS to count real file reads (Open and
// ReadFile, which fs.ReadFile prefers when present), so the test can
// assert the second Resolve of the same canonical path hits the cache
// instead of re-reading the file.
type countingFS struct {
	fstest.MapFS
	calls *int
}

func (c countingFS) Open(name string) (fs.File, error) {
	*c.calls++
	return c.MapFS.Open(name)
}

func (c countingFS) ReadFile(name string) ([]byte, error) {
	*c.calls++
	return c.MapFS.ReadFile(name)
}
