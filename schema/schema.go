// Package schema holds the type table the selection compiler resolves
// against: named types, their fields and arguments, input object members,
// abstract type membership and the upload marker scalar.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/llehouerou/gqlselect/types"
)

// Kind classifies a named type.
type Kind string

const (
	KindScalar      Kind = "SCALAR"
	KindObject      Kind = "OBJECT"
	KindInterface   Kind = "INTERFACE"
	KindUnion       Kind = "UNION"
	KindEnum        Kind = "ENUM"
	KindInputObject Kind = "INPUT_OBJECT"
)

// TypeRef references a type as used at a position: a named type, optionally
// wrapped in lists and non-null markers. A list has Elem set and no Name.
type TypeRef struct {
	Name    string   `json:"name,omitempty"`
	Elem    *TypeRef `json:"elem,omitempty"`
	NonNull bool     `json:"nonNull,omitempty"`
}

// Named returns a nullable reference to the named type.
func Named(name string) *TypeRef {
	return &TypeRef{Name: name}
}

// NonNull returns a non-null copy of t.
func NonNull(t *TypeRef) *TypeRef {
	c := *t
	c.NonNull = true
	return &c
}

// ListOf returns a nullable list of elem.
func ListOf(elem *TypeRef) *TypeRef {
	return &TypeRef{Elem: elem}
}

// IsList reports whether t is a list type.
func (t *TypeRef) IsList() bool {
	return t != nil && t.Elem != nil
}

// NamedType returns the innermost named type.
func (t *TypeRef) NamedType() string {
	for t != nil && t.Elem != nil {
		t = t.Elem
	}
	if t == nil {
		return ""
	}
	return t.Name
}

// String renders the GraphQL wire form of t, e.g. "[Int!]!".
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *TypeRef) write(b *strings.Builder) {
	if t.Elem != nil {
		b.WriteByte('[')
		t.Elem.write(b)
		b.WriteByte(']')
	} else {
		b.WriteString(t.Name)
	}
	if t.NonNull {
		b.WriteByte('!')
	}
}

// Equal reports whether t and o render identically.
func (t *TypeRef) Equal(o *TypeRef) bool {
	return t.String() == o.String()
}

// InputValue is a field argument or an input object member.
type InputValue struct {
	Name string
	Type *TypeRef
}

// Field is an output field of an object or interface type.
type Field struct {
	Name      string
	Arguments []*InputValue
	Type      *TypeRef
}

// Argument returns the argument named name.
func (f *Field) Argument(name string) (*InputValue, bool) {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// Type is a named type of the schema. Fields and InputFields keep their
// declaration order.
type Type struct {
	Name        string
	Kind        Kind
	Fields      []*Field
	InputFields []*InputValue
	Interfaces  []string
	Members     []string // union members
	EnumValues  []string
}

// IsComposite reports whether selecting a field of this type requires a
// sub-selection.
func (t *Type) IsComposite() bool {
	switch t.Kind {
	case KindObject, KindInterface, KindUnion:
		return true
	}
	return false
}

// IsAbstract reports whether t is an interface or a union.
func (t *Type) IsAbstract() bool {
	return t.Kind == KindInterface || t.Kind == KindUnion
}

// Field returns the output field named name.
func (t *Type) Field(name string) (*Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// InputField returns the input member named name.
func (t *Type) InputField(name string) (*InputValue, bool) {
	for _, f := range t.InputFields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Schema is the type table.
type Schema struct {
	types    map[string]*Type
	query    string
	mutation string
	upload   string
}

// New creates a schema from the given named types. Built-in scalars are
// always present.
func New(defs ...*Type) *Schema {
	s := &Schema{
		types:    make(map[string]*Type, len(defs)+len(builtinScalars)),
		query:    "Query",
		mutation: "Mutation",
		upload:   types.UploadScalar,
	}
	for _, name := range builtinScalars {
		s.types[name] = &Type{Name: name, Kind: KindScalar}
	}
	for _, def := range defs {
		s.types[def.Name] = def
	}
	return s
}

var builtinScalars = []string{"Int", "Float", "String", "Boolean", "ID"}

// WithRoots overrides the root operation type names.
func (s *Schema) WithRoots(query, mutation string) *Schema {
	s.query = query
	s.mutation = mutation
	return s
}

// Clone returns a copy of s sharing its type definitions. The root and
// upload names of the copy can be changed independently.
func (s *Schema) Clone() *Schema {
	c := *s
	return &c
}

// WithUploadScalar overrides the name of the upload marker type.
func (s *Schema) WithUploadScalar(name string) *Schema {
	s.upload = name
	return s
}

// QueryType returns the query root type name.
func (s *Schema) QueryType() string { return s.query }

// MutationType returns the mutation root type name.
func (s *Schema) MutationType() string { return s.mutation }

// UploadScalar returns the name of the upload marker type.
func (s *Schema) UploadScalar() string { return s.upload }

// IsUpload reports whether name is the upload marker type.
func (s *Schema) IsUpload(name string) bool {
	return name == s.upload
}

// Type returns the named type.
func (s *Schema) Type(name string) (*Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// TypeNames returns all type names in sorted order.
func (s *Schema) TypeNames() []string {
	names := make([]string, 0, len(s.types))
	for name := range s.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupField resolves a host-side member name on typeName to the schema
// field. The schema name is tried first, then the lowerCamelCase form of
// the host name, then a case-insensitive match.
func (s *Schema) LookupField(typeName, member string) (*Field, bool) {
	t, ok := s.types[typeName]
	if !ok {
		return nil, false
	}
	if f, ok := t.Field(member); ok {
		return f, true
	}
	if f, ok := t.Field(strcase.ToLowerCamel(member)); ok {
		return f, true
	}
	for _, f := range t.Fields {
		if strings.EqualFold(f.Name, member) {
			return f, true
		}
	}
	return nil, false
}

// LookupInputField resolves a host-side member name on an input object.
func (s *Schema) LookupInputField(typeName, member string) (*InputValue, bool) {
	t, ok := s.types[typeName]
	if !ok {
		return nil, false
	}
	if f, ok := t.InputField(member); ok {
		return f, true
	}
	if f, ok := t.InputField(strcase.ToLowerCamel(member)); ok {
		return f, true
	}
	for _, f := range t.InputFields {
		if strings.EqualFold(f.Name, member) {
			return f, true
		}
	}
	return nil, false
}

// PossibleTypes lists the object types that may appear at a position of
// type name: union members, interface implementors, or the object itself.
func (s *Schema) PossibleTypes(name string) []string {
	t, ok := s.types[name]
	if !ok {
		return nil
	}
	switch t.Kind {
	case KindUnion:
		return append([]string(nil), t.Members...)
	case KindInterface:
		var out []string
		for _, n := range s.TypeNames() {
			candidate := s.types[n]
			if candidate.Kind != KindObject && candidate.Kind != KindInterface {
				continue
			}
			for _, i := range candidate.Interfaces {
				if i == name {
					out = append(out, n)
					break
				}
			}
		}
		return out
	case KindObject:
		return []string{name}
	}
	return nil
}

// IsPossibleType reports whether candidate may be narrowed to at a
// position of type abstract.
func (s *Schema) IsPossibleType(abstract, candidate string) bool {
	for _, n := range s.PossibleTypes(abstract) {
		if n == candidate {
			return true
		}
	}
	return false
}

// InUnion reports whether typeName is a member of any union.
func (s *Schema) InUnion(typeName string) bool {
	for _, t := range s.types {
		if t.Kind != KindUnion {
			continue
		}
		for _, m := range t.Members {
			if m == typeName {
				return true
			}
		}
	}
	return false
}

// Validate checks that every type reference resolves.
func (s *Schema) Validate() error {
	check := func(owner, member string, ref *TypeRef) error {
		if _, ok := s.types[ref.NamedType()]; !ok {
			return fmt.Errorf("%s.%s: unknown type %q", owner, member, ref.NamedType())
		}
		return nil
	}
	for _, name := range s.TypeNames() {
		t := s.types[name]
		for _, f := range t.Fields {
			if err := check(name, f.Name, f.Type); err != nil {
				return err
			}
			for _, a := range f.Arguments {
				if err := check(name, f.Name+"("+a.Name+")", a.Type); err != nil {
					return err
				}
			}
		}
		for _, f := range t.InputFields {
			if err := check(name, f.Name, f.Type); err != nil {
				return err
			}
		}
	}
	return nil
}
