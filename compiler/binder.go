package compiler

import (
	"fmt"

	"github.com/iancoleman/strcase"

	"github.com/llehouerou/gqlselect/document"
	"github.com/llehouerou/gqlselect/schema"
	"github.com/llehouerou/gqlselect/selection"
)

// scope is the lexical environment of one selection set.
type scope struct {
	// root is the parameter bound to the object being selected from.
	root     string
	rootType string
	// params are selector parameters of enclosing levels. They denote
	// objects, never values.
	params map[string]bool
	// arguments is the operation's arguments parameter; empty inside
	// fragment bodies.
	arguments string
	// bindings maps fragment parameters to the argument nodes supplied by
	// the caller, resolved in the caller's scope.
	bindings map[string]binding
	fragment string
	// narrowed and typename track whether the set needs a synthetic
	// __typename.
	narrowed bool
	typename bool
}

type binding struct {
	node  selection.Node
	scope *scope
}

func rootScope(r *selection.Root, rootType string) *scope {
	return &scope{
		root:      r.Parameter,
		rootType:  rootType,
		params:    map[string]bool{r.Parameter: true},
		arguments: r.ArgumentsParameter,
	}
}

// nested returns the scope of a sub-selection rooted at param.
func (sc *scope) nested(param, typeName string) *scope {
	params := make(map[string]bool, len(sc.params)+1)
	for p := range sc.params {
		params[p] = true
	}
	params[param] = true
	return &scope{
		root:      param,
		rootType:  typeName,
		params:    params,
		arguments: sc.arguments,
		bindings:  sc.bindings,
		fragment:  sc.fragment,
	}
}

// binder promotes references to values outside the selection into
// operation variables.
type binder struct {
	locals    map[string]*schema.TypeRef
	vars      []document.Variable
	bySymbol  map[string]int
	byName    map[string]string
	constants map[string]bool
}

func newBinder(locals map[string]*schema.TypeRef) *binder {
	return &binder{
		locals:    locals,
		bySymbol:  make(map[string]int),
		byName:    make(map[string]string),
		constants: make(map[string]bool),
	}
}

// bind returns the "$name" token of the variable for ref, creating the
// binding on first use. expected is the type of the position the
// reference appears in.
func (c *compiler) bind(ref *selection.VariableReference, sc *scope, expected *schema.TypeRef) (string, bool) {
	var (
		key    string
		name   string
		source document.Source
		typ    = ref.Type
	)

	switch ref.Symbol {
	case selection.SymbolInstance:
		return c.fail(ref, ScopeViolation,
			"captured instance state %s cannot become an operation variable; pass it through the arguments parameter",
			qualified(ref))
	case selection.SymbolMemberOfParameter:
		if sc.arguments == "" || ref.Name != sc.arguments {
			return c.fail(ref, ScopeViolation, "%s is not a member of the arguments parameter", qualified(ref))
		}
		key = "member:" + ref.Member
		name = strcase.ToLowerCamel(ref.Member)
		source = document.SourceMember
	case selection.SymbolParameter:
		if sc.params[ref.Name] {
			return c.fail(ref, ScopeViolation, "selection parameter %s cannot be used as a value", ref.Name)
		}
		if sc.arguments == "" || ref.Name != sc.arguments {
			return c.fail(ref, ScopeViolation, "parameter %s is not in scope", ref.Name)
		}
		key = "arguments:" + ref.Name
		name = strcase.ToLowerCamel(ref.Name)
		source = document.SourceArguments
	case selection.SymbolLocal:
		key = "local:" + ref.Name
		name = strcase.ToLowerCamel(ref.Name)
		source = document.SourceLocal
		if typ == nil {
			typ = c.binder.locals[ref.Name]
		}
	default:
		return c.fail(ref, ScopeViolation, "unknown symbol kind %q for %s", ref.Symbol, ref.Name)
	}

	b := c.binder
	if i, ok := b.bySymbol[key]; ok {
		bound := b.vars[i]
		if expected != nil && !usableAt(bound.Type, expected) {
			return c.fail(ref, VariableConflict, "$%s of type %s is used where %s is expected",
				bound.GraphQLName, bound.Type, expected)
		}
		return "$" + bound.GraphQLName, true
	}
	if owner, ok := b.byName[name]; ok && owner != key {
		return c.fail(ref, VariableConflict, "%s and %s both map to variable $%s", owner, key, name)
	}
	if typ == nil {
		typ = expected
	}
	if typ == nil {
		return c.fail(ref, UnresolvedMember, "cannot infer the type of %s; declare it", qualified(ref))
	}

	srcName := ref.Name
	if source == document.SourceMember {
		srcName = ref.Member
	}
	b.bySymbol[key] = len(b.vars)
	b.byName[name] = key
	b.vars = append(b.vars, document.Variable{
		Name:        srcName,
		GraphQLName: name,
		Type:        typ,
		Source:      source,
	})
	return "$" + name, true
}

// constant records a fragment parameter substituted with a literal.
func (b *binder) constant(fragment, param string, typ *schema.TypeRef) {
	key := fragment + "." + param
	if b.constants[key] {
		return
	}
	b.constants[key] = true
	b.vars = append(b.vars, document.Variable{
		Name:        key,
		GraphQLName: strcase.ToLowerCamel(param),
		Type:        typ,
		IsConstant:  true,
	})
}

// usableAt reports whether a variable of type v may appear at a position
// of type pos. A non-null variable fits a nullable position, not the
// reverse.
func usableAt(v, pos *schema.TypeRef) bool {
	if pos.NonNull && !v.NonNull {
		return false
	}
	switch {
	case v.IsList() && pos.IsList():
		return usableAt(v.Elem, pos.Elem)
	case v.IsList() || pos.IsList():
		return false
	}
	return v.Name == pos.Name
}

func qualified(ref *selection.VariableReference) string {
	if ref.Member == "" {
		return ref.Name
	}
	return fmt.Sprintf("%s.%s", ref.Name, ref.Member)
}
