// Package scope implements the lexical environment threaded through
// evaluation: three parallel namespaces (variables, mixins, functions) each
// resolved by walking up a parent chain, plus the `!default`/`!global`
// assignment modifiers.
package scope

import (
	"strings"

	"github.com/styc-lang/styc/value"
)

// Scope is one lexical frame. Mixin and function entries are stored as
// opaque `any` so this package does not import the evaluator (which in
// turn imports scope) — the evaluator type-asserts its own descriptor type
// back out.
type Scope struct {
	parent *Scope

	vars      map[string]value.Value
	mixins    map[string]any
	functions map[string]any
}

// New creates a root scope with no parent — the global scope of a
// stylesheet.
func New() *Scope {
	return &Scope{
		vars:      map[string]value.Value{},
		mixins:    map[string]any{},
		functions: map[string]any{},
	}
}

// Child creates a new lexical frame nested under s, as entered by a rule
// body, mixin call, function call, or control-flow block.
func (s *Scope) Child() *Scope {
	return &Scope{
		parent:    s,
		vars:      map[string]value.Value{},
		mixins:    map[string]any{},
		functions: map[string]any{},
	}
}

// normalize treats `$foo-bar` and `$foo_bar` as the same name: hyphen
// and underscore are interchangeable in identifiers.
func normalize(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

// GetVar resolves a variable by walking from s up through parents.
func (s *Scope) GetVar(name string) (value.Value, bool) {
	name = normalize(name)
	for f := s; f != nil; f = f.parent {
		if v, ok := f.vars[name]; ok {
			return v, true
		}
	}
	return value.Null, false
}

// SetVar assigns name in the frame where it is already visible, or in s
// itself if it isn't bound anywhere in the chain yet — ordinary (non-flag)
// assignment.
func (s *Scope) SetVar(name string, v value.Value) {
	name = normalize(name)
	for f := s; f != nil; f = f.parent {
		if _, ok := f.vars[name]; ok {
			f.vars[name] = v
			return
		}
	}
	s.vars[name] = v
}

// SetVarDefault implements `!default`: assigns only if name is unset, or
// set to null, anywhere in the visible chain.
func (s *Scope) SetVarDefault(name string, v value.Value) {
	name = normalize(name)
	if existing, ok := s.GetVar(name); ok && !existing.IsNull() {
		return
	}
	s.SetVar(name, v)
}

// SetVarGlobal implements `!global`: assigns in the outermost (root) frame
// regardless of current nesting depth.
func (s *Scope) SetVarGlobal(name string, v value.Value) {
	name = normalize(name)
	root := s
	for root.parent != nil {
		root = root.parent
	}
	root.vars[name] = v
}

// SetVarLocal binds name in s's own frame, shadowing any outer binding —
// used for mixin/function parameter binding, `@each`/`@for` loop variables.
func (s *Scope) SetVarLocal(name string, v value.Value) {
	s.vars[normalize(name)] = v
}

// GetMixin resolves a mixin definition by walking up the parent chain.
func (s *Scope) GetMixin(name string) (any, bool) {
	name = normalize(name)
	for f := s; f != nil; f = f.parent {
		if m, ok := f.mixins[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// SetMixin defines a mixin in s's own frame.
func (s *Scope) SetMixin(name string, def any) {
	s.mixins[normalize(name)] = def
}

// GetFunction resolves a user-defined function by walking up the parent
// chain. The evaluator falls back to the builtin registry when this
// returns false.
func (s *Scope) GetFunction(name string) (any, bool) {
	name = normalize(name)
	for f := s; f != nil; f = f.parent {
		if fn, ok := f.functions[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// SetFunction defines a function in s's own frame.
func (s *Scope) SetFunction(name string, def any) {
	s.functions[normalize(name)] = def
}

// Fork produces an independent copy of s's own frame (not the chain above
// it) for speculative evaluation that must not leak bindings back into s
// on failure — e.g. a mixin call body that throws partway through.
func (s *Scope) Fork() *Scope {
	f := &Scope{
		parent:    s.parent,
		vars:      make(map[string]value.Value, len(s.vars)),
		mixins:    make(map[string]any, len(s.mixins)),
		functions: make(map[string]any, len(s.functions)),
	}
	for k, v := range s.vars {
		f.vars[k] = v
	}
	for k, v := range s.mixins {
		f.mixins[k] = v
	}
	for k, v := range s.functions {
		f.functions[k] = v
	}
	return f
}

// Merge copies another frame's own bindings into s, overwriting on
// conflict — used to commit a successful Fork back into its origin.
func (s *Scope) Merge(other *Scope) {
	for k, v := range other.vars {
		s.vars[k] = v
	}
	for k, v := range other.mixins {
		s.mixins[k] = v
	}
	for k, v := range other.functions {
		s.functions[k] = v
	}
}

// Parent returns the enclosing scope, or nil at the root.
func (s *Scope) Parent() *Scope { return s.parent }
