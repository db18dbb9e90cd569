// Package compiler lowers Selection ASTs into GraphQL operation documents.
//
// Compilation is a pure function of the schema, the selection root and the
// fragment set. Variable binding and field/fragment resolution run together
// in one recursive descent; upload paths are planned afterwards from the
// declared variable types. Errors are collected per node, so one pass
// reports every problem it can find.
package compiler

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/gqlselect/document"
	"github.com/llehouerou/gqlselect/schema"
	"github.com/llehouerou/gqlselect/selection"
	"github.com/llehouerou/gqlselect/uploads"
)

type compiler struct {
	schema    *schema.Schema
	fragments selection.Fragments
	binder    *binder
	inlining  map[string]bool
	diags     Diagnostics
}

// fail records a diagnostic for n and reports failure to the caller.
func (c *compiler) fail(n selection.Node, code Code, format string, args ...any) (string, bool) {
	c.diags = append(c.diags, &Diagnostic{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Kind:    n.Kind(),
		Pos:     n.Position(),
	})
	return "", false
}

// Compile compiles root against s. Compile errors are returned as
// Diagnostics.
func Compile(s *schema.Schema, root *selection.Root, fragments selection.Fragments, options ...Option) (*document.Document, error) {
	if root == nil {
		return nil, fmt.Errorf("compile: nil selection root")
	}
	opts, err := constructOptions(options)
	if err != nil {
		return nil, err
	}
	key, err := Key(root, options...)
	if err != nil {
		return nil, err
	}

	kind := document.Query
	rootType := s.QueryType()
	if root.Operation == selection.Mutation {
		kind = document.Mutation
		rootType = s.MutationType()
	}
	if _, ok := s.Type(rootType); !ok {
		return nil, fmt.Errorf("compile: schema has no %s root type %q", kind, rootType)
	}

	c := &compiler{
		schema:    s,
		fragments: fragments,
		binder:    newBinder(root.Locals),
		inlining:  make(map[string]bool),
	}
	sc := rootScope(root, rootType)
	var body string
	if root.Body == nil {
		c.diags = append(c.diags, &Diagnostic{
			Code:    OpenSelection,
			Message: fmt.Sprintf("selection of %s is empty", rootType),
			Kind:    selection.KindSelector,
		})
	} else {
		body, _ = c.selectionSet(root.Body, sc)
	}
	if len(c.diags) > 0 {
		return nil, c.diags
	}

	doc := document.Assemble(kind, opts.operationName, opts.operationDirectives, c.binder.vars, body)
	doc.NormalizedKey = key
	doc.Uploads = uploads.NewResolver(s).Plan(uploadVariables(doc.Declared()))
	return doc, nil
}

// Key returns the normalized key of the document Compile produces for root
// and options: the selection key followed by the rendered options.
func Key(root *selection.Root, options ...Option) (string, error) {
	key, err := selection.Key(root)
	if err != nil {
		return "", err
	}
	for _, o := range options {
		key += " |" + string(o.Type()) + ":" + o.String()
	}
	return key, nil
}

func uploadVariables(vars []document.Variable) []uploads.Variable {
	out := make([]uploads.Variable, len(vars))
	for i, v := range vars {
		out[i] = uploads.Variable{Name: v.GraphQLName, Type: v.Type}
	}
	return out
}

var operationNameRe = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

// CompileAll compiles independent roots in parallel. Results are keyed like
// roots, and keys that are valid GraphQL names become the operation name
// unless an OperationName option is given. The first failure cancels the
// batch and is returned prefixed with the root's name.
func CompileAll(
	ctx context.Context,
	s *schema.Schema,
	roots map[string]*selection.Root,
	fragments selection.Fragments,
	options ...Option,
) (map[string]*document.Document, error) {
	names := make([]string, 0, len(roots))
	for name := range roots {
		names = append(names, name)
	}
	sort.Strings(names)

	docs := make([]*document.Document, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			opts := options
			if !hasOperationName(options) && operationNameRe.MatchString(name) {
				opts = append(append([]Option(nil), options...), OperationName(name))
			}
			doc, err := Compile(s, roots[name], fragments, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*document.Document, len(names))
	for i, name := range names {
		out[name] = docs[i]
	}
	return out, nil
}

func hasOperationName(options []Option) bool {
	for _, o := range options {
		if o.Type() == OptionTypeOperationName {
			return true
		}
	}
	return false
}

// literalType is the type a literal constant substitutes for.
func literalType(l *selection.Literal) *schema.TypeRef {
	switch l.Type {
	case selection.LiteralString:
		return schema.NonNull(schema.Named("String"))
	case selection.LiteralBool:
		return schema.NonNull(schema.Named("Boolean"))
	case selection.LiteralNumber:
		if strings.ContainsAny(l.Text, ".eE") {
			return schema.NonNull(schema.Named("Float"))
		}
		return schema.NonNull(schema.Named("Int"))
	}
	return nil
}
