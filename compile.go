// Package styc compiles the styc stylesheet language (variables, nested
// rulesets, mixins, functions, control flow, first-class colors and
// numbers, lists and maps, string interpolation) to plain CSS. The
// semantic front end lives in the ast/eval/expr/scope/value packages;
// this file wires them together into the small surface an embedding
// application needs: compile a file from an fs.FS, or serve compiled
// CSS over HTTP via Handler/Middleware.
package styc

import (
	"fmt"
	"io/fs"

	"github.com/styc-lang/styc/ast"
	"github.com/styc-lang/styc/eval"
	"github.com/styc-lang/styc/functions"
	"github.com/styc-lang/styc/importer"
	"github.com/styc-lang/styc/render"
	"github.com/styc-lang/styc/scope"
)

// CompileOptions configures a single in-process compile: Compressed
// selects the output mode, Quiet suppresses @debug/@warn.
type CompileOptions struct {
	Compressed bool
	Quiet      bool
}

// CompileFS compiles relPath, read from fileSystem, to CSS text.
// `@import` requests resolve against fileSystem relative to relPath's own
// directory via the importer package.
func CompileFS(fileSystem fs.FS, relPath string, opts CompileOptions) (string, error) {
	src, err := fs.ReadFile(fileSystem, relPath)
	if err != nil {
		return "", fmt.Errorf("styc: %w", err)
	}

	sheet, err := ast.Parse(string(src))
	if err != nil {
		return "", fmt.Errorf("styc: parse %q: %w", relPath, err)
	}

	ev := eval.New(functions.Default())
	ev.Importer = importer.New(fileSystem)
	ev.File = relPath
	ev.Quiet = opts.Quiet

	out, err := ev.EvalStylesheet(sheet, scope.New())
	if err != nil {
		return "", fmt.Errorf("styc: compile %q: %w", relPath, err)
	}

	return render.Render(out, render.Options{Compressed: opts.Compressed}), nil
}

// sourceExtension is the file suffix CompileFS-backed HTTP serving
// recognizes, mirroring importer.Extension's default for extensionless
// @import requests.
const sourceExtension = importer.Extension
