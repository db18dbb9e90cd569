package schema

import (
	"fmt"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// LoadSDL builds a type table from schema definition language source.
// Parsing and validation are delegated to gqlparser; only the parts the
// compiler needs are carried over.
func LoadSDL(name, sdl string) (*Schema, error) {
	doc, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: sdl})
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", name, err)
	}
	return FromAST(doc), nil
}

// FromAST converts a gqlparser schema.
func FromAST(doc *ast.Schema) *Schema {
	var defs []*Type
	for _, def := range doc.Types {
		if def.BuiltIn && def.Kind != ast.Scalar {
			continue
		}
		defs = append(defs, convertDefinition(def))
	}
	s := New(defs...)
	if doc.Query != nil {
		s.query = doc.Query.Name
	}
	if doc.Mutation != nil {
		s.mutation = doc.Mutation.Name
	}
	return s
}

func convertDefinition(def *ast.Definition) *Type {
	t := &Type{
		Name:       def.Name,
		Kind:       Kind(def.Kind),
		Interfaces: append([]string(nil), def.Interfaces...),
		Members:    append([]string(nil), def.Types...),
	}
	for _, v := range def.EnumValues {
		t.EnumValues = append(t.EnumValues, v.Name)
	}
	for _, f := range def.Fields {
		if def.Kind == ast.InputObject {
			t.InputFields = append(t.InputFields, &InputValue{Name: f.Name, Type: convertType(f.Type)})
			continue
		}
		// introspection fields are resolved by name, not declared
		if len(f.Name) > 1 && f.Name[:2] == "__" {
			continue
		}
		field := &Field{Name: f.Name, Type: convertType(f.Type)}
		for _, a := range f.Arguments {
			field.Arguments = append(field.Arguments, &InputValue{Name: a.Name, Type: convertType(a.Type)})
		}
		t.Fields = append(t.Fields, field)
	}
	return t
}

func convertType(t *ast.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.Elem != nil {
		return &TypeRef{Elem: convertType(t.Elem), NonNull: t.NonNull}
	}
	return &TypeRef{Name: t.NamedType, NonNull: t.NonNull}
}
