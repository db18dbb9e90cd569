// Package document assembles compiled selections into GraphQL operation
// documents and computes their hashes.
package document

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/llehouerou/gqlselect/schema"
	"github.com/llehouerou/gqlselect/uploads"
)

// OperationKind is the GraphQL operation type.
type OperationKind string

const (
	Query    OperationKind = "query"
	Mutation OperationKind = "mutation"
)

// Source tells where the request value of a variable comes from.
type Source string

const (
	// SourceMember is a member of the arguments value.
	SourceMember Source = "member"
	// SourceArguments is the arguments value itself.
	SourceArguments Source = "arguments"
	// SourceLocal is a local variable supplied alongside the arguments.
	SourceLocal Source = "local"
)

// Variable is an operation variable extracted from a selection.
type Variable struct {
	// Name is the source identifier: the member name for SourceMember,
	// the parameter or local name otherwise.
	Name        string
	GraphQLName string
	Type        *schema.TypeRef
	Source      Source
	// IsConstant marks fragment parameters substituted as literals. They
	// are never declared on the operation.
	IsConstant bool
}

// WireType is the declared GraphQL type, e.g. "[Int!]!".
func (v Variable) WireType() string {
	return v.Type.String()
}

// Document is a compiled operation. It is immutable once assembled.
type Document struct {
	Kind       OperationKind
	Name       string
	Directives []string
	Variables  []Variable
	// Body is the selection set text without the enclosing braces.
	Body string
	// Text is the full, normalized operation text sent to servers.
	Text          string
	NormalizedKey string
	ContentHash   string
	Uploads       *uploads.Plan
}

// Assemble builds the operation text around body and hashes it.
//
// E.g., query ($id: Int!) { user(id: $id) { firstName } }.
func Assemble(kind OperationKind, name string, directives []string, vars []Variable, body string) *Document {
	var b strings.Builder
	b.WriteString(string(kind))
	if name != "" {
		b.WriteByte(' ')
		b.WriteString(name)
	}
	if decls := declarations(vars); decls != "" {
		if name == "" {
			b.WriteByte(' ')
		}
		b.WriteByte('(')
		b.WriteString(decls)
		b.WriteByte(')')
	}
	for _, d := range directives {
		b.WriteByte(' ')
		b.WriteString(d)
	}
	b.WriteString(" { ")
	b.WriteString(body)
	b.WriteString(" }")

	text := Normalize(b.String())
	return &Document{
		Kind:        kind,
		Name:        name,
		Directives:  directives,
		Variables:   vars,
		Body:        Normalize(body),
		Text:        text,
		ContentHash: ContentHash(text),
	}
}

func declarations(vars []Variable) string {
	var parts []string
	for _, v := range vars {
		if v.IsConstant {
			continue
		}
		parts = append(parts, "$"+v.GraphQLName+": "+v.WireType())
	}
	return strings.Join(parts, ", ")
}

// Declared returns the variables declared on the operation.
func (d *Document) Declared() []Variable {
	var out []Variable
	for _, v := range d.Variables {
		if !v.IsConstant {
			out = append(out, v)
		}
	}
	return out
}

// HasUploads reports whether requests for d may need a multipart body.
func (d *Document) HasUploads() bool {
	return d.Uploads != nil
}

// Normalize collapses runs of whitespace outside string values to single
// spaces and trims.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space, inString := false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			b.WriteByte(ch)
			switch ch {
			case '\\':
				if i+1 < len(s) {
					i++
					b.WriteByte(s[i])
				}
			case '"':
				inString = false
			}
			continue
		}
		if isSpace(ch) {
			space = b.Len() > 0
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteByte(ch)
		if ch == '"' {
			inString = true
		}
	}
	return b.String()
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// ContentHash returns the SHA-256 hex digest of the normalized text.
func ContentHash(text string) string {
	return sha256Hex([]byte(Normalize(text)))
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
