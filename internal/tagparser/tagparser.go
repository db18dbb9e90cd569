package tagparser

import (
	"reflect"
	"strings"

	"github.com/llehouerou/gqlselect/types"
)

// ParsedTag represents a parsed member naming tag.
type ParsedTag struct {
	// Name is the member name, empty when the tag only carries options.
	Name string
	// Skip is set for "-".
	Skip bool
	// OmitEmpty is set when the omitempty option is present.
	OmitEmpty bool
}

// Parse parses a graphql or json struct tag value.
// Examples:
//   - "avatar" -> {Name: "avatar"}
//   - "avatar,omitempty" -> {Name: "avatar", OmitEmpty: true}
//   - ",omitempty" -> {OmitEmpty: true}
//   - "-" -> {Skip: true}
func Parse(tag string) ParsedTag {
	tag = strings.TrimSpace(tag)

	var parsed ParsedTag
	if tag == "" {
		return parsed
	}
	if tag == "-" {
		parsed.Skip = true
		return parsed
	}

	name, opts, _ := strings.Cut(tag, ",")
	parsed.Name = strings.TrimSpace(name)
	for _, opt := range strings.Split(opts, ",") {
		if strings.TrimSpace(opt) == "omitempty" {
			parsed.OmitEmpty = true
		}
	}
	return parsed
}

// MemberName returns the name a struct field is known by in a named-field
// map: the graphql tag, then the json tag, then the Go field name.
// Unexported and skipped fields report ok == false.
func MemberName(f reflect.StructField) (name string, ok bool) {
	if f.PkgPath != "" {
		return "", false
	}
	for _, key := range []string{types.GraphQLTag, types.JSONTag} {
		raw, present := f.Tag.Lookup(key)
		if !present {
			continue
		}
		parsed := Parse(raw)
		if parsed.Skip {
			return "", false
		}
		if parsed.Name != "" {
			return parsed.Name, true
		}
	}
	return f.Name, true
}
