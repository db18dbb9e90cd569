package compiler

import (
	"regexp"

	"github.com/llehouerou/gqlselect/selection"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// fragmentCall inlines a fragment at the current selection root.
func (c *compiler) fragmentCall(n *selection.FragmentCall, sc *scope) (string, bool) {
	if n.Receiver != sc.root {
		return c.fail(n, ScopeViolation, "fragment %s is not applied to the current selection root %s", n.Fragment, sc.root)
	}
	f, ok := c.fragments[n.Fragment]
	if !ok || f == nil {
		return c.fail(n, FragmentWithoutSource, "fragment %s is not defined", n.Fragment)
	}
	if len(n.Arguments) > len(f.Parameters) {
		return c.fail(n, UnresolvedMember, "fragment %s takes %d arguments, got %d", f.ID, len(f.Parameters), len(n.Arguments))
	}
	if len(n.Arguments) < len(f.Parameters) {
		return c.fail(n, MissingRequiredArgument, "fragment %s requires argument %s", f.ID, f.Parameters[len(n.Arguments)])
	}
	switch {
	case f.Body != nil:
		return c.inlineFragment(n, f, sc)
	case f.Template != "":
		return c.substituteTemplate(n, f, sc)
	}
	return c.fail(n, FragmentWithoutSource, "fragment %s has neither a selection tree nor a template", f.ID)
}

// inlineFragment resolves the fragment body in a child scope whose root
// parameter is rebound to the current root. Supplied arguments stay
// unresolved until used, so they are lowered against the type expected at
// the use site, in the caller's scope.
func (c *compiler) inlineFragment(n *selection.FragmentCall, f *selection.Fragment, sc *scope) (string, bool) {
	if c.inlining[f.ID] {
		return c.fail(n, UnresolvedMember, "fragment %s includes itself", f.ID)
	}
	c.inlining[f.ID] = true
	defer delete(c.inlining, f.ID)

	child := &scope{
		root:     f.RootParameter,
		rootType: sc.rootType,
		params:   map[string]bool{f.RootParameter: true},
		bindings: make(map[string]binding, len(f.Parameters)),
		fragment: f.ID,
	}
	for i, p := range f.Parameters {
		child.bindings[p] = binding{node: n.Arguments[i], scope: sc}
		if lit, ok := n.Arguments[i].(*selection.Literal); ok {
			c.binder.constant(f.ID, p, literalType(lit))
		}
	}
	if ref, ok := f.Body.(*selection.VariableReference); ok && ref.Name == f.RootParameter {
		return c.fail(n, OpenSelection, "fragment %s returns the bare parameter %s", f.ID, ref.Name)
	}

	text, ok := c.selectionMember(f.Body, child)
	if child.narrowed {
		sc.narrowed = true
	}
	if child.typename {
		sc.typename = true
	}
	return text, ok
}

// substituteTemplate fills {{parameter}} placeholders with the fully
// resolved supplied arguments.
func (c *compiler) substituteTemplate(n *selection.FragmentCall, f *selection.Fragment, sc *scope) (string, bool) {
	resolved := make(map[string]string, len(f.Parameters))
	ok := true
	for i, p := range f.Parameters {
		text, aok := c.value(n.Arguments[i], sc, nil)
		if !aok {
			ok = false
			continue
		}
		resolved[p] = text
		if lit, isLit := n.Arguments[i].(*selection.Literal); isLit {
			c.binder.constant(f.ID, p, literalType(lit))
		}
	}
	if !ok {
		return "", false
	}

	var missing string
	out := placeholderRe.ReplaceAllStringFunc(f.Template, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		v, found := resolved[name]
		if !found {
			if missing == "" {
				missing = name
			}
			return m
		}
		return v
	})
	if missing != "" {
		return c.fail(n, MissingRequiredArgument, "fragment %s template uses undeclared parameter %s", f.ID, missing)
	}
	return out, true
}
