package document

import (
	"fmt"
	"reflect"

	"github.com/llehouerou/gqlselect/internal/reflectutil"
)

// Values builds the request variables object of d from the live arguments
// value and locals. Members are looked up by name on structs (graphql or
// json tag, then field name) and maps. Missing members are an error
// unless the variable is nullable, in which case it is omitted.
//
// E.g., struct{ Id int }{-431} -> {"id": -431}.
func (d *Document) Values(args any, locals map[string]any) (map[string]any, error) {
	declared := d.Declared()
	if len(declared) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(declared))
	for _, v := range declared {
		switch v.Source {
		case SourceArguments:
			out[v.GraphQLName] = args
		case SourceLocal:
			value, ok := locals[v.Name]
			if !ok {
				return nil, fmt.Errorf("variable $%s: local %q not supplied", v.GraphQLName, v.Name)
			}
			out[v.GraphQLName] = value
		default:
			value, ok := reflectutil.LookupMember(reflect.ValueOf(args), v.Name)
			if !ok {
				// an absent nullable variable is left out of the request
				if !v.Type.NonNull {
					continue
				}
				if args == nil {
					return nil, fmt.Errorf("variable $%s: no arguments supplied", v.GraphQLName)
				}
				return nil, fmt.Errorf("variable $%s: member %q not found in %T", v.GraphQLName, v.Name, args)
			}
			if value.IsValid() && value.CanInterface() {
				out[v.GraphQLName] = value.Interface()
			} else {
				out[v.GraphQLName] = nil
			}
		}
	}
	return out, nil
}
