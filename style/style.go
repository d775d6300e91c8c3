// Package style folds nested property-group shorthand
// (`font: { size: 1em; weight: bold }`) into the flat hyphenated
// declarations a stylesheet actually emits (`font-size`, `font-weight`).
package style

import (
	"github.com/styc-lang/styc/ast"
	"github.com/styc-lang/styc/token"
)

// Decl is one fully-resolved declaration name paired with its still-raw
// value tokens, ready for expression evaluation.
type Decl struct {
	Name      string
	Value     []token.Token
	Important bool
}

// ResolveName turns a property token run (which may contain `#{}`
// interpolation) into its string name; the evaluator supplies the real
// implementation since only it has a scope to resolve interpolation
// against.
type ResolveName func([]token.Token) (string, error)

// Fold flattens a Style node, recursively prefixing nested property names
// with their parent's name and a hyphen. A group with no value of its own
// contributes no declaration for its own name, only for its descendants.
func Fold(prefix string, node *ast.Style, resolve ResolveName) ([]Decl, error) {
	var out []Decl

	if len(node.Value) > 0 || node.Nested == nil {
		out = append(out, Decl{Name: prefix, Value: node.Value, Important: node.Important})
	}

	for _, child := range node.Nested {
		childStyle, ok := child.(*ast.Style)
		if !ok {
			continue
		}
		childName, err := resolve(childStyle.Property)
		if err != nil {
			return nil, err
		}
		sub, err := Fold(prefix+"-"+childName, childStyle, resolve)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}
