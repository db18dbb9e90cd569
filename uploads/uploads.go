// Package uploads finds binary upload positions in operation variables.
//
// A Plan is computed once per compiled document from the declared variable
// types: it records, for every input object reachable from the variables,
// which members lead to the upload scalar. At request time the plan walks
// the live argument values and produces one Entry per upload, in a single
// deterministic order (variable order, declared member order, then element
// order), with paths in the multipart request format, e.g.
// "variables.users.0.avatar".
package uploads

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/llehouerou/gqlselect/internal/reflectutil"
	"github.com/llehouerou/gqlselect/schema"
	"github.com/llehouerou/gqlselect/types"
)

// Variable is an operation variable as seen by the resolver.
type Variable struct {
	Name string
	Type *schema.TypeRef
}

// member is an upload-bearing input field or variable.
type member struct {
	name string
	typ  *schema.TypeRef
}

// Resolver computes upload plans against a schema. It memoizes which input
// types contain uploads, so one resolver should be reused across documents
// of the same schema. A Resolver is not safe for concurrent use.
type Resolver struct {
	schema   *schema.Schema
	contains map[string]bool
}

// NewResolver returns a resolver for s.
func NewResolver(s *schema.Schema) *Resolver {
	return &Resolver{schema: s, contains: make(map[string]bool)}
}

// Plan is the static upload layout of a set of variables.
type Plan struct {
	roots []member
	types map[string][]member
}

// Plan builds the upload plan for vars. It returns nil when no variable can
// carry an upload.
func (r *Resolver) Plan(vars []Variable) *Plan {
	p := &Plan{types: make(map[string][]member)}
	for _, v := range vars {
		if v.Type == nil || !r.containsUpload(v.Type.NamedType(), make(map[string]bool)) {
			continue
		}
		p.roots = append(p.roots, member{name: v.Name, typ: v.Type})
		r.expand(p, v.Type.NamedType())
	}
	if len(p.roots) == 0 {
		return nil
	}
	return p
}

// expand records the upload-bearing members of typeName and of every input
// type below them. Types already in the plan are not revisited.
func (r *Resolver) expand(p *Plan, typeName string) {
	if r.schema.IsUpload(typeName) {
		return
	}
	if _, done := p.types[typeName]; done {
		return
	}
	t, ok := r.schema.Type(typeName)
	if !ok || t.Kind != schema.KindInputObject {
		return
	}
	p.types[typeName] = nil
	var members []member
	for _, f := range t.InputFields {
		if !r.containsUpload(f.Type.NamedType(), make(map[string]bool)) {
			continue
		}
		members = append(members, member{name: f.Name, typ: f.Type})
	}
	p.types[typeName] = members
	for _, m := range members {
		r.expand(p, m.typ.NamedType())
	}
}

// containsUpload reports whether typeName is the upload scalar or an input
// object that transitively contains it. Positive answers are always
// memoized; negative answers only when no type on the current path was
// still being visited.
func (r *Resolver) containsUpload(typeName string, visiting map[string]bool) bool {
	if r.schema.IsUpload(typeName) {
		return true
	}
	if found, ok := r.contains[typeName]; ok {
		return found
	}
	t, ok := r.schema.Type(typeName)
	if !ok || t.Kind != schema.KindInputObject {
		r.contains[typeName] = false
		return false
	}
	if visiting[typeName] {
		return false
	}
	visiting[typeName] = true
	defer delete(visiting, typeName)

	for _, f := range t.InputFields {
		if r.containsUpload(f.Type.NamedType(), visiting) {
			r.contains[typeName] = true
			return true
		}
	}
	if len(visiting) == 1 {
		r.contains[typeName] = false
	}
	return false
}

// Paths lists the static path templates of the plan, with "[]" standing
// for a list index, e.g. "variables.users.[].avatar". Recursive input types
// are expanded once.
func (p *Plan) Paths() []string {
	if p == nil {
		return nil
	}
	var out []string
	for _, root := range p.roots {
		p.templates(root.typ, []string{types.VariablesRoot, root.name}, map[string]bool{}, &out)
	}
	return out
}

func (p *Plan) templates(typ *schema.TypeRef, path []string, onPath map[string]bool, out *[]string) {
	if typ.IsList() {
		p.templates(typ.Elem, append(path, "[]"), onPath, out)
		return
	}
	members, ok := p.types[typ.Name]
	if !ok {
		*out = append(*out, strings.Join(path, "."))
		return
	}
	if onPath[typ.Name] {
		return
	}
	onPath[typ.Name] = true
	defer delete(onPath, typ.Name)
	for _, m := range members {
		p.templates(m.typ, append(path[:len(path):len(path)], m.name), onPath, out)
	}
}

// Entry is one upload found in the live variables.
type Entry struct {
	Index       int
	Path        string
	Filename    string
	ContentType string
	// Open returns the upload stream. It is called once, when the multipart
	// body is written.
	Open func() (io.Reader, error)
}

// Collect walks the live variables (keyed by GraphQL variable name) along
// the plan and returns the uploads found, indexed from 0 in walk order.
// Absent and null positions are skipped.
func (p *Plan) Collect(variables map[string]any) ([]Entry, error) {
	if p == nil {
		return nil, nil
	}
	c := &collector{plan: p}
	for _, root := range p.roots {
		value, ok := variables[root.name]
		if !ok {
			continue
		}
		c.path = c.path[:0]
		c.pushObjectPath(types.VariablesRoot)
		c.pushObjectPath(root.name)
		if err := c.traverse(reflect.ValueOf(value), root.typ); err != nil {
			return nil, err
		}
	}
	return c.entries, nil
}

type pathItemKind int

const (
	pathItemKindObject pathItemKind = iota
	pathItemKindArray
)

type pathItem struct {
	kind       pathItemKind
	name       string
	arrayIndex int
}

type collector struct {
	plan    *Plan
	path    []pathItem
	entries []Entry
}

func (c *collector) pushObjectPath(name string) {
	c.path = append(c.path, pathItem{kind: pathItemKindObject, name: name})
}

func (c *collector) pushArrayPath(index int) {
	c.path = append(c.path, pathItem{kind: pathItemKindArray, arrayIndex: index})
}

func (c *collector) popPath() {
	c.path = c.path[:len(c.path)-1]
}

func (c *collector) renderPath() string {
	var b strings.Builder
	for i, item := range c.path {
		if i > 0 {
			b.WriteByte('.')
		}
		if item.kind == pathItemKindArray {
			b.WriteString(strconv.Itoa(item.arrayIndex))
			continue
		}
		b.WriteString(item.name)
	}
	return b.String()
}

func (c *collector) traverse(value reflect.Value, typ *schema.TypeRef) error {
	if reflectutil.IsNilValue(value) {
		return nil
	}

	if typ.IsList() {
		v := reflectutil.UnwrapToConcreteValue(value)
		if !v.IsValid() {
			return nil
		}
		if !reflectutil.IsSequence(v.Kind()) {
			return fmt.Errorf("%s: expected a list, got %s", c.renderPath(), v.Type())
		}
		for i := 0; i < v.Len(); i++ {
			c.pushArrayPath(i)
			err := c.traverse(reflectutil.IndexSafe(v, i), typ.Elem)
			c.popPath()
			if err != nil {
				return err
			}
		}
		return nil
	}

	members, ok := c.plan.types[typ.Name]
	if !ok {
		return c.addUpload(value)
	}
	for _, m := range members {
		mv, found := reflectutil.LookupMember(value, m.name)
		if !found {
			continue
		}
		c.pushObjectPath(m.name)
		err := c.traverse(mv, m.typ)
		c.popPath()
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *collector) addUpload(value reflect.Value) error {
	entry := Entry{Index: len(c.entries), Path: c.renderPath()}
	switch u := value.Interface().(type) {
	case types.Upload:
		entry.Filename, entry.ContentType = u.Filename, u.ContentType
		entry.Open = u.Open
	case *types.Upload:
		entry.Filename, entry.ContentType = u.Filename, u.ContentType
		entry.Open = u.Open
	case io.Reader:
		entry.Open = func() (io.Reader, error) { return u, nil }
	default:
		return fmt.Errorf("%s: expected an upload, got %T", entry.Path, u)
	}
	if entry.Filename == "" {
		entry.Filename = strconv.Itoa(entry.Index)
	}
	c.entries = append(c.entries, entry)
	return nil
}
