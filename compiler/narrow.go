package compiler

import (
	"strings"

	"github.com/llehouerou/gqlselect/schema"
	"github.com/llehouerou/gqlselect/selection"
	"github.com/llehouerou/gqlselect/types"
)

// unionNarrow renders a type-conditional selection, "... on Dog { barks }".
// The candidate must be a possible type of the current root.
func (c *compiler) unionNarrow(n *selection.UnionNarrow, sc *scope) (string, bool) {
	if n.Receiver != sc.root {
		return c.fail(n, ScopeViolation, "%s is narrowed outside the current selection root %s", n.Receiver, sc.root)
	}
	candidate, ok := c.schema.Type(n.Candidate)
	if !ok {
		return c.fail(n, InvalidUnionNarrowing, "cannot narrow %s to unknown type %s", sc.rootType, n.Candidate)
	}
	if !c.schema.IsPossibleType(sc.rootType, candidate.Name) {
		expected := sc.rootType
		if possible := c.schema.PossibleTypes(sc.rootType); len(possible) > 0 {
			expected += " (" + strings.Join(possible, ", ") + ")"
		}
		return c.fail(n, InvalidUnionNarrowing, "%s is not a possible type of %s", candidate.Name, expected)
	}
	if n.Selection == nil {
		return c.fail(n, OpenSelection, "narrowing to %s requires an explicit selection", candidate.Name)
	}
	inner, ok := c.selector(n.Selection, sc, candidate.Name)
	if !ok {
		return "", false
	}
	if c.needsTypename(sc.rootType, candidate) {
		sc.narrowed = true
	}
	return types.FragmentOnPrefix + candidate.Name + " { " + inner + " }", true
}

// needsTypename reports whether the client must be told the concrete type
// of results at a position: the position is abstract or the candidate is a
// union member.
func (c *compiler) needsTypename(rootType string, candidate *schema.Type) bool {
	if t, ok := c.schema.Type(rootType); ok && t.IsAbstract() {
		return true
	}
	return c.schema.InUnion(candidate.Name)
}
