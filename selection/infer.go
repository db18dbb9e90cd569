package selection

import (
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/llehouerou/gqlselect/internal/reflectutil"
	"github.com/llehouerou/gqlselect/schema"
)

// InferMembers infers the GraphQL type of each member of an arguments
// value (a struct or a map with string keys), keyed by member name.
//
// E.g., struct{ Id int; Name *string } -> {"Id": Int!, "Name": String}.
func InferMembers(args any) map[string]*schema.TypeRef {
	members := reflectutil.Members(reflect.ValueOf(args))
	out := make(map[string]*schema.TypeRef, len(members))
	for _, m := range members {
		// nil map entries carry no type information.
		if m.Type == nil || m.Type.Kind() == reflect.Interface {
			continue
		}
		out[m.Name] = InferType(m.Type)
	}
	return out
}

// InferType maps a Go type to a GraphQL type reference. Non-pointer values
// are non-null, pointers are nullable, slices and arrays become lists.
// Types implementing types.GraphQLType name themselves; structs use their
// Go type name as the input object name.
func InferType(t reflect.Type) *schema.TypeRef {
	return inferType(t, true)
}

func inferType(t reflect.Type, value bool) *schema.TypeRef {
	if reflectutil.ImplementsGraphQLType(t) {
		if name, ok := reflectutil.GetGraphQLTypeFromType(t); ok {
			ref := schema.Named(name)
			ref.NonNull = t.Kind() != reflect.Ptr
			return ref
		}
	}

	if t.Kind() == reflect.Ptr {
		// Pointer is an optional type.
		return inferType(t.Elem(), false)
	}

	var ref *schema.TypeRef
	if reflectutil.IsIntegerKind(t.Kind()) {
		ref = schema.Named("Int")
	} else {
		switch t.Kind() {
		case reflect.Slice, reflect.Array:
			ref = schema.ListOf(inferType(t.Elem(), true))
		case reflect.Float32, reflect.Float64:
			ref = schema.Named("Float")
		case reflect.Bool:
			ref = schema.Named("Boolean")
		case reflect.String:
			ref = schema.Named("String")
		default:
			ref = schema.Named(t.Name())
		}
	}
	ref.NonNull = value
	return ref
}

// lookupMemberType finds the inferred type of member, trying the exact
// name, then its lowerCamel and UpperCamel forms, then a case-insensitive
// match.
func lookupMemberType(types map[string]*schema.TypeRef, member string) (*schema.TypeRef, bool) {
	for _, name := range []string{member, strcase.ToLowerCamel(member), strcase.ToCamel(member)} {
		if t, ok := types[name]; ok {
			return t, true
		}
	}
	for name, t := range types {
		if strings.EqualFold(name, member) {
			return t, true
		}
	}
	return nil, false
}
