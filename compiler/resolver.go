package compiler

import (
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/llehouerou/gqlselect/schema"
	"github.com/llehouerou/gqlselect/selection"
	"github.com/llehouerou/gqlselect/types"
)

// selectionSet lowers n into selection set text on sc.rootType.
func (c *compiler) selectionSet(n selection.Node, sc *scope) (string, bool) {
	text, ok := c.selectionMember(n, sc)
	if ok && sc.narrowed && !sc.typename {
		sc.typename = true
		text += " " + types.TypenameField
	}
	return text, ok
}

// selectionMember lowers one member of a selection set.
func (c *compiler) selectionMember(n selection.Node, sc *scope) (string, bool) {
	switch n := n.(type) {
	case *selection.FieldAccess:
		return c.fieldAccess(n, sc)
	case *selection.FieldSelectorCall:
		return c.fieldSelectorCall(n, sc)
	case *selection.FragmentCall:
		return c.fragmentCall(n, sc)
	case *selection.ObjectConstruction:
		return c.objectConstruction(n, sc)
	case *selection.UnionNarrow:
		return c.unionNarrow(n, sc)
	case *selection.VariableReference:
		if n.Symbol == selection.SymbolParameter && n.Name == sc.root {
			return c.fail(n, OpenSelection,
				"selection of %s returns the bare parameter %s; list the fields to select", sc.rootType, n.Name)
		}
		return c.fail(n, UnresolvedMember, "only field selectors and fragments are allowed, got reference to %s", qualified(n))
	case *selection.Invocation:
		return c.fail(n, UnresolvedMember, "only field selectors and fragments are allowed, got call to %s", n.Method)
	case nil:
		return "", false
	}
	return c.fail(n, UnresolvedMember, "only field selectors and fragments are allowed, got %s", n.Kind())
}

func (c *compiler) objectConstruction(n *selection.ObjectConstruction, sc *scope) (string, bool) {
	var parts []string
	seen := make(map[string]bool, len(n.Members))
	ok := true
	for _, m := range n.Members {
		text, mok := c.selectionMember(m, sc)
		if !mok {
			ok = false
			continue
		}
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		parts = append(parts, text)
	}
	return strings.Join(parts, " "), ok
}

// lookupField resolves a host member on the current root.
func (c *compiler) lookupField(n selection.Node, sc *scope, receiver, member string) (*schema.Field, bool) {
	if receiver != sc.root {
		c.fail(n, ScopeViolation, "%s.%s is not selected from the current selection root %s", receiver, member, sc.root)
		return nil, false
	}
	f, ok := c.schema.LookupField(sc.rootType, member)
	if !ok {
		c.fail(n, UnresolvedMember, "%s has no field selector %s", sc.rootType, member)
		return nil, false
	}
	return f, true
}

func (c *compiler) fieldAccess(n *selection.FieldAccess, sc *scope) (string, bool) {
	if n.Field == types.TypenameField {
		sc.typename = true
		return types.TypenameField, true
	}
	f, ok := c.lookupField(n, sc, n.Receiver, n.Field)
	if !ok {
		return "", false
	}
	if c.isComposite(f.Type) {
		return c.fail(n, OpenSelection, "field %s of type %s requires an explicit selection", f.Name, f.Type)
	}
	args, ok := c.arguments(n, f, nil, sc)
	if !ok {
		return "", false
	}
	return f.Name + args, true
}

func (c *compiler) fieldSelectorCall(n *selection.FieldSelectorCall, sc *scope) (string, bool) {
	f, ok := c.lookupField(n, sc, n.Receiver, n.Field)
	if !ok {
		return "", false
	}
	// Arguments and selection are resolved independently so both report.
	args, argsOK := c.arguments(n, f, n.Arguments, sc)

	composite := c.isComposite(f.Type)
	switch {
	case composite && n.Selection == nil:
		return c.fail(n, OpenSelection, "field %s of type %s requires an explicit selection", f.Name, f.Type)
	case !composite && n.Selection != nil:
		return c.fail(n, OpenSelection, "field %s of type %s cannot have a selection", f.Name, f.Type)
	case !composite:
		return f.Name + args, argsOK
	}

	inner, selOK := c.selector(n.Selection, sc, f.Type.NamedType())
	if !argsOK || !selOK {
		return "", false
	}
	return f.Name + args + " { " + inner + " }", true
}

// selector lowers a lambda whose parameter is rooted at typeName.
func (c *compiler) selector(sel *selection.Selector, sc *scope, typeName string) (string, bool) {
	child := sc.nested(sel.Parameter, typeName)
	if ref, ok := sel.Body.(*selection.VariableReference); ok && ref.Name == sel.Parameter {
		return c.fail(sel, OpenSelection,
			"selection of %s returns the bare parameter %s; list the fields to select", typeName, sel.Parameter)
	}
	if sel.Body == nil {
		return c.fail(sel, OpenSelection, "selection of %s is empty", typeName)
	}
	return c.selectionSet(sel.Body, child)
}

func (c *compiler) isComposite(ref *schema.TypeRef) bool {
	t, ok := c.schema.Type(ref.NamedType())
	return ok && t.IsComposite()
}

// arguments binds supplied arguments to the field's declared arguments and
// renders them in declaration order.
func (c *compiler) arguments(n selection.Node, f *schema.Field, supplied []selection.Argument, sc *scope) (string, bool) {
	values := make(map[string]selection.Node, len(supplied))
	ok := true
	for i, a := range supplied {
		var decl *schema.InputValue
		if a.Name != "" {
			decl = lookupArgument(f, a.Name)
			if decl == nil {
				c.fail(n, UnresolvedMember, "field %s has no argument %s", f.Name, a.Name)
				ok = false
				continue
			}
		} else {
			if i >= len(f.Arguments) {
				c.fail(n, UnresolvedMember, "field %s takes %d arguments, got %d", f.Name, len(f.Arguments), len(supplied))
				ok = false
				continue
			}
			decl = f.Arguments[i]
		}
		values[decl.Name] = a.Value
	}

	var parts []string
	for _, decl := range f.Arguments {
		v, present := values[decl.Name]
		if !present || isNullLiteral(v) {
			if decl.Type.NonNull {
				c.fail(n, MissingRequiredArgument, "field %s requires argument %s of type %s", f.Name, decl.Name, decl.Type)
				ok = false
				continue
			}
			if !present {
				continue
			}
		}
		text, vok := c.value(v, sc, decl.Type)
		if !vok {
			ok = false
			continue
		}
		parts = append(parts, decl.Name+": "+text)
	}
	if !ok {
		return "", false
	}
	if len(parts) == 0 {
		return "", true
	}
	return "(" + strings.Join(parts, ", ") + ")", true
}

func lookupArgument(f *schema.Field, name string) *schema.InputValue {
	if a, ok := f.Argument(name); ok {
		return a
	}
	if a, ok := f.Argument(strcase.ToLowerCamel(name)); ok {
		return a
	}
	for _, a := range f.Arguments {
		if strings.EqualFold(a.Name, name) {
			return a
		}
	}
	return nil
}

func isNullLiteral(n selection.Node) bool {
	l, ok := n.(*selection.Literal)
	return ok && l.Type == selection.LiteralNull
}

// value lowers an argument value. expected is the type of the position,
// nil when unknown.
func (c *compiler) value(n selection.Node, sc *scope, expected *schema.TypeRef) (string, bool) {
	switch n := n.(type) {
	case *selection.Literal:
		return literal(n), true
	case *selection.EnumValue:
		return c.enumValue(n, expected)
	case *selection.VariableReference:
		if n.Symbol == selection.SymbolParameter {
			if b, ok := sc.bindings[n.Name]; ok {
				return c.value(b.node, b.scope, expected)
			}
		}
		return c.bind(n, sc, expected)
	case *selection.ObjectCreation:
		return c.fail(n, VariableExpected,
			"new %s cannot be sent inline; bind the whole value as a member of the arguments parameter", n.Type)
	case *selection.ObjectConstruction:
		return c.fail(n, VariableExpected,
			"an object literal cannot be sent inline; bind the whole value as a member of the arguments parameter")
	case nil:
		return c.fail(&selection.Literal{}, UnresolvedMember, "missing argument value")
	}
	return c.fail(n, UnresolvedMember, "%s cannot be used as an argument value", n.Kind())
}

func (c *compiler) enumValue(n *selection.EnumValue, expected *schema.TypeRef) (string, bool) {
	rendered := strcase.ToScreamingSnake(n.Member)
	typeName := n.Type
	t, ok := c.schema.Type(typeName)
	if (!ok || t.Kind != schema.KindEnum) && expected != nil {
		t, ok = c.schema.Type(expected.NamedType())
	}
	if !ok || t.Kind != schema.KindEnum || len(t.EnumValues) == 0 {
		return rendered, true
	}
	for _, v := range t.EnumValues {
		if v == rendered || v == n.Member {
			return v, true
		}
	}
	return c.fail(n, InvalidEnumValue, "%s is not a value of enum %s", n.Member, t.Name)
}

// literal renders a constant in GraphQL syntax.
func literal(n *selection.Literal) string {
	switch n.Type {
	case selection.LiteralString:
		return quote(n.Text)
	case selection.LiteralNull:
		return "null"
	}
	return n.Text
}

// quote renders s as a GraphQL string value.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 {
				const hex = "0123456789abcdef"
				b.WriteString(`\u00`)
				b.WriteByte(hex[r>>4])
				b.WriteByte(hex[r&0xf])
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
