package uploads

import (
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/llehouerou/gqlselect/schema"
	"github.com/llehouerou/gqlselect/types"
)

func testSchema() *schema.Schema {
	return schema.New(
		&schema.Type{Name: "Upload", Kind: schema.KindScalar},
		&schema.Type{Name: "UserInput", Kind: schema.KindInputObject, InputFields: []*schema.InputValue{
			{Name: "name", Type: schema.NonNull(schema.Named("String"))},
			{Name: "avatar", Type: schema.Named("Upload")},
			{Name: "address", Type: schema.Named("AddressInput")},
			{Name: "manager", Type: schema.Named("UserInput")},
		}},
		&schema.Type{Name: "AddressInput", Kind: schema.KindInputObject, InputFields: []*schema.InputValue{
			{Name: "street", Type: schema.Named("String")},
		}},
		&schema.Type{Name: "Node", Kind: schema.KindInputObject, InputFields: []*schema.InputValue{
			{Name: "next", Type: schema.Named("Node")},
			{Name: "label", Type: schema.Named("String")},
		}},
	)
}

func usersVariable() Variable {
	return Variable{
		Name: "users",
		Type: schema.NonNull(schema.ListOf(schema.NonNull(schema.Named("UserInput")))),
	}
}

func TestPlan_NoUploads(t *testing.T) {
	r := NewResolver(testSchema())

	p := r.Plan([]Variable{
		{Name: "id", Type: schema.NonNull(schema.Named("Int"))},
		{Name: "node", Type: schema.Named("Node")},
	})
	if p != nil {
		t.Errorf("expected no plan, got paths %v", p.Paths())
	}
}

func TestPlan_Paths(t *testing.T) {
	r := NewResolver(testSchema())

	p := r.Plan([]Variable{
		{Name: "id", Type: schema.NonNull(schema.Named("Int"))},
		usersVariable(),
		{Name: "file", Type: schema.NonNull(schema.Named("Upload"))},
	})

	want := []string{
		"variables.users.[].avatar",
		"variables.file",
	}
	if diff := cmp.Diff(want, p.Paths()); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}

type userInput struct {
	Name    string        `json:"name"`
	Avatar  *types.Upload `json:"avatar"`
	Manager *userInput    `json:"manager,omitempty"`
}

func TestCollect_ListOfStructs(t *testing.T) {
	r := NewResolver(testSchema())
	p := r.Plan([]Variable{usersVariable()})

	entries, err := p.Collect(map[string]any{
		"users": []userInput{
			{Name: "a", Avatar: &types.Upload{Filename: "a.png", Reader: strings.NewReader("A")}},
			{Name: "b"},
			{Name: "c", Avatar: &types.Upload{Filename: "c.png", Reader: strings.NewReader("C")},
				Manager: &userInput{Avatar: &types.Upload{Filename: "m.png", Reader: strings.NewReader("M")}}},
		},
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	var got []string
	for i, e := range entries {
		if e.Index != i {
			t.Errorf("entry %d has index %d", i, e.Index)
		}
		got = append(got, e.Path+"="+e.Filename)
	}
	want := []string{
		"variables.users.0.avatar=a.png",
		"variables.users.2.avatar=c.png",
		"variables.users.2.manager.avatar=m.png",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	rd, err := entries[2].Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	content, _ := io.ReadAll(rd)
	if string(content) != "M" {
		t.Errorf("expected content M, got %q", content)
	}
}

func TestCollect_NamedFieldMap(t *testing.T) {
	r := NewResolver(testSchema())
	p := r.Plan([]Variable{usersVariable()})

	entries, err := p.Collect(map[string]any{
		"users": []any{
			map[string]any{"Avatar": types.Upload{Filename: "x.png", Reader: strings.NewReader("x")}},
			map[string]any{"avatar": strings.NewReader("raw")},
		},
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Path != "variables.users.0.avatar" || entries[0].Filename != "x.png" {
		t.Errorf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Path != "variables.users.1.avatar" || entries[1].Filename != "1" {
		t.Errorf("unexpected second entry %+v", entries[1])
	}
}

func TestCollect_Deterministic(t *testing.T) {
	r := NewResolver(testSchema())
	p := r.Plan([]Variable{usersVariable()})
	vars := map[string]any{
		"users": []userInput{
			{Avatar: &types.Upload{Filename: "0"}},
			{Avatar: &types.Upload{Filename: "1"}},
		},
	}

	first, err := p.Collect(vars)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := p.Collect(vars)
		if err != nil {
			t.Fatal(err)
		}
		for j := range first {
			if first[j].Path != again[j].Path || first[j].Index != again[j].Index {
				t.Fatalf("run %d differs at %d: %+v vs %+v", i, j, first[j], again[j])
			}
		}
	}
}

func TestCollect_WrongShape(t *testing.T) {
	r := NewResolver(testSchema())
	p := r.Plan([]Variable{usersVariable()})

	_, err := p.Collect(map[string]any{"users": userInput{}})
	if err == nil {
		t.Fatal("expected error for non-list value")
	}

	_, err = p.Collect(map[string]any{"users": []any{map[string]any{"avatar": 42}}})
	if err == nil {
		t.Fatal("expected error for non-upload leaf")
	}
}

func TestCollect_NilPlan(t *testing.T) {
	var p *Plan
	entries, err := p.Collect(map[string]any{"x": 1})
	if err != nil || entries != nil {
		t.Errorf("expected no entries and no error, got %v, %v", entries, err)
	}
}

func TestUploadOpen_Empty(t *testing.T) {
	r := NewResolver(testSchema())
	p := r.Plan([]Variable{{Name: "file", Type: schema.Named("Upload")}})

	entries, err := p.Collect(map[string]any{"file": types.Upload{Filename: "empty"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := entries[0].Open(); err != types.ErrEmptyUpload {
		t.Errorf("expected ErrEmptyUpload, got %v", err)
	}
}
