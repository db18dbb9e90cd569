package reflectutil

import (
	"reflect"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/llehouerou/gqlselect/internal/tagparser"
	"github.com/llehouerou/gqlselect/types"
)

// ImplementsGraphQLType reports whether the given type implements the GraphQLType interface.
// This checks if the type provides a custom GraphQL type name via GetGraphQLType().
func ImplementsGraphQLType(t reflect.Type) bool {
	return t.Implements(types.GraphqlTypeInterface)
}

// GetGraphQLTypeFromType extracts the GraphQL type name from a type (not value).
// This creates a zero value or pointer to call GetGraphQLType().
func GetGraphQLTypeFromType(t reflect.Type) (string, bool) {
	if !ImplementsGraphQLType(t) {
		return "", false
	}

	var graphqlType types.GraphQLType
	var ok bool

	if t.Kind() == reflect.Ptr {
		graphqlType, ok = reflect.New(t.Elem()).Interface().(types.GraphQLType)
	} else {
		graphqlType, ok = reflect.Zero(t).Interface().(types.GraphQLType)
	}

	if !ok {
		return "", false
	}

	return graphqlType.GetGraphQLType(), true
}

// Member is a named member of a named-field map.
type Member struct {
	Name  string
	Type  reflect.Type
	Value reflect.Value
}

// Members lists the members of a named-field map: struct fields in
// declaration order, or map entries in sorted key order. Other values have
// no members.
func Members(v reflect.Value) []Member {
	v = UnwrapToConcreteValue(v)
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Struct:
		typ := v.Type()
		var out []Member
		for i := 0; i < typ.NumField(); i++ {
			f := typ.Field(i)
			name, ok := tagparser.MemberName(f)
			if !ok {
				continue
			}
			out = append(out, Member{Name: name, Type: f.Type, Value: v.Field(i)})
		}
		return out
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil
		}
		keys := v.MapKeys()
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		sort.Strings(names)
		out := make([]Member, 0, len(names))
		for _, name := range names {
			mv := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
			mt := v.Type().Elem()
			if mv.Kind() == reflect.Interface && !mv.IsNil() {
				mt = mv.Elem().Type()
			}
			out = append(out, Member{Name: name, Type: mt, Value: mv})
		}
		return out
	}
	return nil
}

// LookupMember finds a member of a named-field map by name. The exact name
// is tried first, then the lowerCamelCase and UpperCamelCase forms, then a
// case-insensitive match.
func LookupMember(v reflect.Value, name string) (reflect.Value, bool) {
	members := Members(v)
	if len(members) == 0 {
		return reflect.Value{}, false
	}
	candidates := []string{name, strcase.ToLowerCamel(name), strcase.ToCamel(name)}
	for _, c := range candidates {
		for _, m := range members {
			if m.Name == c {
				return m.Value, true
			}
		}
	}
	for _, m := range members {
		if strings.EqualFold(m.Name, name) {
			return m.Value, true
		}
	}
	return reflect.Value{}, false
}
