package selection

import (
	"strconv"

	"github.com/llehouerou/gqlselect/schema"
)

// The functions below form a small fluent front end for building selections
// in Go code. They mirror the host expression shapes one to one:
//
//	// (i, q) => q.User(i.Id, o => o.FirstName)
//	root := selection.NewQuery("q",
//		selection.Call("q", "User",
//			selection.Args(selection.Member("i", "Id")),
//			selection.Select("o", selection.Field("o", "FirstName")),
//		),
//	).WithArguments("i", struct{ Id int }{})

// NewQuery returns a query root whose root parameter is param.
func NewQuery(param string, body Node) *Root {
	return &Root{Operation: Query, Parameter: param, Body: body}
}

// NewMutation returns a mutation root whose root parameter is param.
func NewMutation(param string, body Node) *Root {
	return &Root{Operation: Mutation, Parameter: param, Body: body}
}

// WithArguments declares the arguments parameter. When args is non-nil its
// members' GraphQL types are inferred from their Go types and stamped onto
// the untyped member references of the body.
func (r *Root) WithArguments(param string, args any) *Root {
	r.ArgumentsParameter = param
	if args != nil {
		types := InferMembers(args)
		Walk(r.Body, func(n Node) bool {
			ref, ok := n.(*VariableReference)
			if ok && ref.Symbol == SymbolMemberOfParameter && ref.Name == param && ref.Type == nil {
				if t, ok := lookupMemberType(types, ref.Member); ok {
					ref.Type = t
				}
			}
			return true
		})
	}
	return r
}

// WithLocal declares a typed local variable visible to the selection.
func (r *Root) WithLocal(name string, t *schema.TypeRef) *Root {
	if r.Locals == nil {
		r.Locals = make(map[string]*schema.TypeRef)
	}
	r.Locals[name] = t
	return r
}

// WithSource records the front end's source text for cache keying.
func (r *Root) WithSource(source string) *Root {
	r.Source = source
	return r
}

// Field accesses a scalar or enum field.
func Field(receiver, name string) *FieldAccess {
	return &FieldAccess{Receiver: receiver, Field: name}
}

// Call selects a field with arguments and an optional nested selection.
func Call(receiver, name string, args []Argument, sel *Selector) *FieldSelectorCall {
	return &FieldSelectorCall{Receiver: receiver, Field: name, Arguments: args, Selection: sel}
}

// Nested selects an object field without arguments.
func Nested(receiver, name string, sel *Selector) *FieldSelectorCall {
	return Call(receiver, name, nil, sel)
}

// Select builds a selector lambda. Several members are wrapped in an
// anonymous aggregate.
func Select(param string, members ...Node) *Selector {
	s := &Selector{Parameter: param}
	if len(members) == 1 {
		s.Body = members[0]
	} else {
		s.Body = Pick(members...)
	}
	return s
}

// Pick builds an anonymous aggregate.
func Pick(members ...Node) *ObjectConstruction {
	return &ObjectConstruction{Members: members}
}

// Args builds positional arguments.
func Args(values ...Node) []Argument {
	out := make([]Argument, len(values))
	for i, v := range values {
		out[i] = Argument{Value: v}
	}
	return out
}

// Arg builds a named argument.
func Arg(name string, value Node) Argument {
	return Argument{Name: name, Value: value}
}

// Param references a parameter of the selection.
func Param(name string) *VariableReference {
	return &VariableReference{Symbol: SymbolParameter, Name: name}
}

// Member references a member of the arguments parameter.
func Member(param, member string) *VariableReference {
	return &VariableReference{Symbol: SymbolMemberOfParameter, Name: param, Member: member}
}

// Local references a local variable.
func Local(name string) *VariableReference {
	return &VariableReference{Symbol: SymbolLocal, Name: name}
}

// This references captured instance state.
func This(member string) *VariableReference {
	return &VariableReference{Symbol: SymbolInstance, Name: "this", Member: member}
}

// Typed sets the declared type of a reference.
func (n *VariableReference) Typed(t *schema.TypeRef) *VariableReference {
	n.Type = t
	return n
}

// String is a string literal.
func String(s string) *Literal {
	return &Literal{Type: LiteralString, Text: s}
}

// Int is an integer literal.
func Int(i int64) *Literal {
	return &Literal{Type: LiteralNumber, Text: strconv.FormatInt(i, 10)}
}

// Float is a float literal.
func Float(f float64) *Literal {
	return &Literal{Type: LiteralNumber, Text: strconv.FormatFloat(f, 'g', -1, 64)}
}

// Bool is a boolean literal.
func Bool(b bool) *Literal {
	return &Literal{Type: LiteralBool, Text: strconv.FormatBool(b)}
}

// Null is the null literal.
func Null() *Literal {
	return &Literal{Type: LiteralNull, Text: "null"}
}

// Enum references an enum member.
func Enum(typeName, member string) *EnumValue {
	return &EnumValue{Type: typeName, Member: member}
}

// On narrows receiver to candidate.
func On(receiver, candidate string, sel *Selector) *UnionNarrow {
	return &UnionNarrow{Receiver: receiver, Candidate: candidate, Selection: sel}
}

// Spread invokes a fragment.
func Spread(receiver, fragment string, args ...Node) *FragmentCall {
	return &FragmentCall{Receiver: receiver, Fragment: fragment, Arguments: args}
}

// New constructs a host object.
func New(typeName string, members ...Node) *ObjectCreation {
	return &ObjectCreation{Type: typeName, Members: members}
}

// Invoke calls a member that is not marked as selectable.
func Invoke(receiver, method string, args ...Node) *Invocation {
	return &Invocation{Receiver: receiver, Method: method, Arguments: args}
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n := n.(type) {
	case *FieldSelectorCall:
		for _, a := range n.Arguments {
			Walk(a.Value, fn)
		}
		if n.Selection != nil {
			Walk(n.Selection, fn)
		}
	case *FragmentCall:
		for _, a := range n.Arguments {
			Walk(a, fn)
		}
	case *ObjectConstruction:
		for _, m := range n.Members {
			Walk(m, fn)
		}
	case *UnionNarrow:
		if n.Selection != nil {
			Walk(n.Selection, fn)
		}
	case *ObjectCreation:
		for _, m := range n.Members {
			Walk(m, fn)
		}
	case *Invocation:
		for _, a := range n.Arguments {
			Walk(a, fn)
		}
	case *Selector:
		Walk(n.Body, fn)
	}
}
