// Package importer implements eval.Importer against an fs.FS, resolving
// `@import` requests to a canonical path plus a fresh token stream for
// the requested file.
package importer

import (
	"fmt"
	"io/fs"
	"path"
	"sync"

	"github.com/styc-lang/styc/token"
)

// Extension is appended to an extension-less import request when the
// literal path doesn't exist, so `@import "foo"` can mean
// `@import "foo.styc"`.
const Extension = ".styc"

// FS resolves imports against an fs.FS rooted at the stylesheet's own
// directory (or any other root the caller chooses). Token streams are
// cached by canonical path, so a file `@import`-ed from two different
// rulesets is only read and lexed once.
type FS struct {
	fsys      fs.FS
	loadPaths []fs.FS

	mu    sync.Mutex
	cache map[string][]token.Token
}

// New creates an Importer rooted at fsys. Typical callers pass
// os.DirFS(filepath.Dir(entryFile)) so import paths are resolved relative
// to the file being compiled. Additional loadPaths are tried, in order,
// as extra roots once relative resolution against fsys fails.
func New(fsys fs.FS, loadPaths ...fs.FS) *FS {
	return &FS{fsys: fsys, loadPaths: loadPaths, cache: map[string][]token.Token{}}
}

// Resolve implements eval.Importer. containing is the path of the file
// whose `@import` is being resolved (relative to fsys); requested is the
// literal text between the quotes. Resolution tries, in order: the
// requested path joined against containing's directory (with Extension
// appended if the request itself has none), then the same extension
// handling applied to requested directly against each load path root.
func (f *FS) Resolve(requested, containing string) (string, []token.Token, error) {
	type attempt struct {
		root fs.FS
		path string
	}
	var attempts []attempt
	for _, p := range candidatePaths(requested, containing) {
		attempts = append(attempts, attempt{f.fsys, p})
	}
	for _, root := range f.loadPaths {
		for _, p := range candidatePaths(requested, "") {
			attempts = append(attempts, attempt{root, p})
		}
	}

	for _, a := range attempts {
		if toks, ok := f.cached(a.path); ok {
			return a.path, toks, nil
		}
		data, err := fs.ReadFile(a.root, a.path)
		if err != nil {
			continue
		}
		toks := token.New(string(data)).Tokenize()
		f.store(a.path, toks)
		return a.path, toks, nil
	}
	return "", nil, fmt.Errorf("importer: %q not found relative to %q", requested, containing)
}

func (f *FS) cached(canonical string) ([]token.Token, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	toks, ok := f.cache[canonical]
	return toks, ok
}

func (f *FS) store(canonical string, toks []token.Token) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache[canonical] = toks
}

// candidatePaths builds the ordered list of fs.FS paths to try for a
// single import request.
func candidatePaths(requested, containing string) []string {
	dir := path.Dir(containing)
	if dir == "." {
		dir = ""
	}
	base := path.Clean(path.Join(dir, requested))

	if path.Ext(base) != "" {
		return []string{base}
	}
	return []string{base + Extension, base}
}
