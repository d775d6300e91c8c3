package cmd

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/styc-lang/styc/ast"
	"github.com/styc-lang/styc/eval"
	"github.com/styc-lang/styc/functions"
	"github.com/styc-lang/styc/importer"
	"github.com/styc-lang/styc/render"
	"github.com/styc-lang/styc/scope"
)

var (
	compileOutput     string
	compileCompressed bool
	compileQuiet      bool
	compileLoadPaths  []string
)

var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Compile a stylesheet to CSS",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "output file (default: stdout)")
	compileCmd.Flags().BoolVar(&compileCompressed, "compressed", false, "emit Compressed-mode CSS instead of Expanded")
	compileCmd.Flags().BoolVarP(&compileQuiet, "quiet", "q", false, "suppress @debug/@warn output")
	compileCmd.Flags().StringArrayVar(&compileLoadPaths, "load-path", nil, "additional directory to search for @import (repeatable)")
}

func runCompile(_ *cobra.Command, args []string) error {
	css, err := compileFile(args[0], compileCompressed, compileQuiet, compileLoadPaths)
	if err != nil {
		return err
	}
	if compileOutput == "" {
		_, err := os.Stdout.WriteString(css)
		return err
	}
	return os.WriteFile(compileOutput, []byte(css), 0o644)
}

// compileFile runs the full compile pipeline for a single entry file:
// lex, parse into a statement tree, evaluate against a fresh root scope
// with the builtin function registry and an fs-backed importer rooted at
// the file's own directory, then serialize. Used by the compile
// subcommand; the root package's HTTP handler compiles through CompileFS.
func compileFile(path string, compressed, quiet bool, loadPaths []string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	sheet, err := ast.Parse(string(src))
	if err != nil {
		return "", err
	}

	imp := importer.New(os.DirFS(filepath.Dir(path)), dirFSAll(loadPaths)...)

	ev := eval.New(functions.Default())
	ev.Importer = imp
	ev.File = filepath.Base(path)
	ev.Quiet = quiet

	out, err := ev.EvalStylesheet(sheet, scope.New())
	if err != nil {
		return "", err
	}

	return render.Render(out, render.Options{Compressed: compressed}), nil
}

// dirFSAll converts a list of directory paths into fs.FS roots for the
// importer's Options.load_paths support.
func dirFSAll(paths []string) []fs.FS {
	roots := make([]fs.FS, len(paths))
	for i, p := range paths {
		roots[i] = os.DirFS(p)
	}
	return roots
}
