// Package generate emits Go source for persisted document manifests.
//
// A manifest declares every compiled document of a client with its content
// hash and text, plus a typed variables struct per document. The first line
// of the output is the schema checksum line, so that unchanged inputs can
// skip regeneration (see document.UpToDate).
package generate

import (
	"bytes"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/iancoleman/strcase"

	"github.com/llehouerou/gqlselect/document"
	"github.com/llehouerou/gqlselect/schema"
)

const typesPackage = "github.com/llehouerou/gqlselect/types"

const (
	VisibilityPublic   = "public"
	VisibilityInternal = "internal"
)

// Options configure the emitted manifest. The embedded generator options
// take part in the schema checksum.
type Options struct {
	document.GeneratorOptions
	// Package is the package clause. It defaults to the last segment of
	// Namespace.
	Package string
}

func (o Options) packageName() string {
	if o.Package != "" {
		return o.Package
	}
	if o.Namespace != "" {
		name := strings.ToLower(path.Base(strings.ReplaceAll(o.Namespace, ".", "/")))
		return strcase.ToSnake(name)
	}
	return "documents"
}

type generator struct {
	schema *schema.Schema
	opts   Options
}

// ident applies the configured visibility to an identifier.
func (g *generator) ident(name string) string {
	name = strcase.ToCamel(name)
	if g.opts.Visibility == VisibilityInternal {
		return strcase.ToLowerCamel(name)
	}
	return name
}

// Manifest renders the manifest of docs, keyed by operation name.
func Manifest(s *schema.Schema, schemaSource []byte, docs map[string]*document.Document, opts Options) ([]byte, error) {
	switch opts.Visibility {
	case "", VisibilityPublic, VisibilityInternal:
	default:
		return nil, fmt.Errorf("manifest: unknown visibility %q", opts.Visibility)
	}
	sum, err := document.SchemaChecksum(schemaSource, opts.GeneratorOptions)
	if err != nil {
		return nil, err
	}
	g := &generator{schema: s, opts: opts}

	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)

	f := jen.NewFile(opts.packageName())
	f.HeaderComment(document.ChecksumLine(sum))
	f.HeaderComment("Code generated by gqlselect. DO NOT EDIT.")

	documentType := g.ident("Document")
	f.Comment(documentType + " is a persisted GraphQL operation.")
	f.Type().Id(documentType).Struct(
		jen.Id("Name").String(),
		jen.Id("Kind").String(),
		jen.Id("Hash").String(),
		jen.Id("Text").String(),
	)

	for _, name := range names {
		g.variablesStruct(f, name, docs[name])
	}

	var hashes []jen.Code
	for _, name := range names {
		hashes = append(hashes, jen.Id(g.ident(name+"Hash")).Op("=").Lit(docs[name].ContentHash))
	}
	if len(hashes) > 0 {
		f.Const().Defs(hashes...)
	}

	indexName := g.ident(g.opts.ClientName + "Documents")
	f.Commentf("%s indexes the persisted documents by hash.", indexName)
	f.Var().Id(indexName).Op("=").Map(jen.String()).Id(documentType).Values(jen.DictFunc(func(d jen.Dict) {
		seen := make(map[string]bool, len(names))
		for _, name := range names {
			doc := docs[name]
			// identical documents share one entry
			if seen[doc.ContentHash] {
				continue
			}
			seen[doc.ContentHash] = true
			d[jen.Id(g.ident(name+"Hash"))] = jen.Values(jen.Dict{
				jen.Id("Name"): jen.Lit(name),
				jen.Id("Kind"): jen.Lit(string(doc.Kind)),
				jen.Id("Hash"): jen.Id(g.ident(name + "Hash")),
				jen.Id("Text"): jen.Lit(doc.Text),
			})
		}
	}))

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *generator) variablesStruct(f *jen.File, name string, doc *document.Document) {
	declared := doc.Declared()
	typeName := g.ident(name + "Variables")
	f.Commentf("%s are the variables of %s.", typeName, name)
	fields := make([]jen.Code, 0, len(declared))
	for _, v := range declared {
		fields = append(fields, jen.Id(strcase.ToCamel(v.GraphQLName)).
			Add(g.goType(v.Type)).
			Tag(map[string]string{"json": v.GraphQLName}))
	}
	f.Type().Id(typeName).Struct(fields...)
}

// goType maps a GraphQL type reference to the Go type of its variable
// value: lists become slices and nullable positions pointers.
func (g *generator) goType(t *schema.TypeRef) *jen.Statement {
	var base *jen.Statement
	if t.IsList() {
		base = jen.Index().Add(g.goType(t.Elem))
	} else {
		base = g.namedType(t.Name)
	}
	if t.NonNull || t.IsList() {
		return base
	}
	return jen.Op("*").Add(base)
}

func (g *generator) namedType(name string) *jen.Statement {
	if override, ok := g.opts.ScalarOverrides[name]; ok {
		return qualified(override)
	}
	if g.schema.IsUpload(name) {
		return jen.Qual(typesPackage, "Upload")
	}
	switch name {
	case "Int":
		return jen.Int()
	case "Float":
		return jen.Float64()
	case "String", "ID":
		return jen.String()
	case "Boolean":
		return jen.Bool()
	}
	if t, ok := g.schema.Type(name); ok {
		switch t.Kind {
		case schema.KindEnum:
			return jen.String()
		case schema.KindInputObject:
			return jen.Map(jen.String()).Any()
		}
	}
	return jen.Any()
}

// qualified turns "time.Time" or "github.com/shopspring/decimal.Decimal"
// into a qualified identifier, and a bare name into an identifier.
func qualified(goType string) *jen.Statement {
	i := strings.LastIndex(goType, ".")
	if i < 0 {
		return jen.Id(goType)
	}
	return jen.Qual(goType[:i], goType[i+1:])
}
