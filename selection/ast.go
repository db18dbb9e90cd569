// Package selection defines the Selection AST: a standalone, serializable
// expression tree describing a GraphQL selection over a schema-shaped object
// model. Front ends (the fluent Builder in this package, code generators,
// or other processes speaking the JSON encoding) produce it; the compiler
// consumes it read-only.
package selection

import (
	"fmt"

	"github.com/llehouerou/gqlselect/schema"
)

// Kind tags a node variant.
type Kind string

const (
	KindFieldAccess        Kind = "fieldAccess"
	KindFieldSelectorCall  Kind = "fieldSelectorCall"
	KindFragmentCall       Kind = "fragmentCall"
	KindObjectConstruction Kind = "objectConstruction"
	KindVariableReference  Kind = "variableReference"
	KindLiteral            Kind = "literal"
	KindUnionNarrow        Kind = "unionNarrow"
	KindEnumValue          Kind = "enumValue"
	KindObjectCreation     Kind = "objectCreation"
	KindInvocation         Kind = "invocation"
	KindSelector           Kind = "selector"
)

// Pos is the location of a node in the front end's source.
type Pos struct {
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`
}

func (p Pos) String() string {
	if p.Line == 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Node is a Selection AST node.
type Node interface {
	Kind() Kind
	Position() Pos
}

// FieldAccess accesses a schema field on Receiver, which must be the current
// selection root parameter.
type FieldAccess struct {
	Pos      Pos
	Receiver string
	Field    string
}

// Argument is a field argument. An empty Name binds positionally against
// the schema field's declared arguments.
type Argument struct {
	Name  string
	Value Node
}

// FieldSelectorCall selects a field that takes arguments and/or a nested
// selection. Selection is nil only for scalar and enum fields.
type FieldSelectorCall struct {
	Pos       Pos
	Receiver  string
	Field     string
	Arguments []Argument
	Selection *Selector
}

// FragmentCall invokes a reusable fragment with supplied arguments.
type FragmentCall struct {
	Pos       Pos
	Receiver  string
	Fragment  string
	Arguments []Node
}

// ObjectConstruction is an anonymous aggregate whose members become sibling
// sub-selections.
type ObjectConstruction struct {
	Pos     Pos
	Members []Node
}

// SymbolKind classifies what a variable reference points at.
type SymbolKind string

const (
	SymbolLocal             SymbolKind = "local"
	SymbolParameter         SymbolKind = "parameter"
	SymbolMemberOfParameter SymbolKind = "memberOfParameter"
	// SymbolInstance is captured instance state (this.Field). It can never
	// become an operation variable.
	SymbolInstance SymbolKind = "instance"
)

// VariableReference refers to a value outside the selection root. For
// SymbolMemberOfParameter, Name is the parameter and Member the accessed
// member. Type is optional; the expected type of the position is used
// when it is absent.
type VariableReference struct {
	Pos    Pos
	Symbol SymbolKind
	Name   string
	Member string
	Type   *schema.TypeRef
}

// LiteralKind classifies literals.
type LiteralKind string

const (
	LiteralString LiteralKind = "string"
	LiteralNumber LiteralKind = "number"
	LiteralBool   LiteralKind = "bool"
	LiteralNull   LiteralKind = "null"
)

// Literal is a constant value. Text holds the unquoted source text.
type Literal struct {
	Pos  Pos
	Type LiteralKind
	Text string
}

// UnionNarrow selects fields conditionally on the concrete type Candidate.
type UnionNarrow struct {
	Pos       Pos
	Receiver  string
	Candidate string
	Selection *Selector
}

// EnumValue references an enum member by its host-side name.
type EnumValue struct {
	Pos    Pos
	Type   string
	Member string
}

// ObjectCreation constructs a host object (new T(...)). It cannot be placed
// where a variable is required.
type ObjectCreation struct {
	Pos     Pos
	Type    string
	Members []Node
}

// Invocation calls a member that is neither a field selector nor a
// fragment.
type Invocation struct {
	Pos       Pos
	Receiver  string
	Method    string
	Arguments []Node
}

// Selector is a lambda whose parameter is the root of a nested selection.
type Selector struct {
	Pos       Pos
	Parameter string
	Body      Node
}

func (n *FieldAccess) Kind() Kind        { return KindFieldAccess }
func (n *FieldSelectorCall) Kind() Kind  { return KindFieldSelectorCall }
func (n *FragmentCall) Kind() Kind       { return KindFragmentCall }
func (n *ObjectConstruction) Kind() Kind { return KindObjectConstruction }
func (n *VariableReference) Kind() Kind  { return KindVariableReference }
func (n *Literal) Kind() Kind            { return KindLiteral }
func (n *UnionNarrow) Kind() Kind        { return KindUnionNarrow }
func (n *EnumValue) Kind() Kind          { return KindEnumValue }
func (n *ObjectCreation) Kind() Kind     { return KindObjectCreation }
func (n *Invocation) Kind() Kind         { return KindInvocation }
func (n *Selector) Kind() Kind           { return KindSelector }

func (n *FieldAccess) Position() Pos        { return n.Pos }
func (n *FieldSelectorCall) Position() Pos  { return n.Pos }
func (n *FragmentCall) Position() Pos       { return n.Pos }
func (n *ObjectConstruction) Position() Pos { return n.Pos }
func (n *VariableReference) Position() Pos  { return n.Pos }
func (n *Literal) Position() Pos            { return n.Pos }
func (n *UnionNarrow) Position() Pos        { return n.Pos }
func (n *EnumValue) Position() Pos          { return n.Pos }
func (n *ObjectCreation) Position() Pos     { return n.Pos }
func (n *Invocation) Position() Pos         { return n.Pos }
func (n *Selector) Position() Pos           { return n.Pos }

// OperationKind is the kind of operation a root compiles into.
type OperationKind string

const (
	Query    OperationKind = "query"
	Mutation OperationKind = "mutation"
)

// Root is a complete selection with its lexical scope: the root parameter
// bound to the operation root type, an optional arguments parameter whose
// members may be referenced as variables, and typed locals.
type Root struct {
	Operation          OperationKind
	ArgumentsParameter string
	Parameter          string
	Body               Node
	Locals             map[string]*schema.TypeRef
	// Source is the front end's source text of the expression, used for
	// the cache key when present.
	Source string
}

// Fragment is a reusable selection template. Body is the inlinable AST;
// Template is the precompiled selection text with {{parameter}}
// placeholders, used when no AST is available.
type Fragment struct {
	ID            string
	RootParameter string
	Parameters    []string
	Body          Node
	Template      string
}

// Fragments indexes fragments by id.
type Fragments map[string]*Fragment

// Add registers f and returns the set for chaining.
func (fs Fragments) Add(f *Fragment) Fragments {
	fs[f.ID] = f
	return fs
}
