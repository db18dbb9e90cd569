package document

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/llehouerou/gqlselect/schema"
)

func intVar(name string) Variable {
	return Variable{Name: name, GraphQLName: name, Type: schema.NonNull(schema.Named("Int")), Source: SourceMember}
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name       string
		kind       OperationKind
		opName     string
		directives []string
		vars       []Variable
		body       string
		want       string
	}{
		{
			name: "no variables",
			kind: Query,
			body: "me { firstName }",
			want: "query { me { firstName } }",
		},
		{
			name: "anonymous with variables",
			kind: Query,
			vars: []Variable{intVar("id")},
			body: "user(id: $id) { firstName }",
			want: "query ($id: Int!) { user(id: $id) { firstName } }",
		},
		{
			name:   "named",
			kind:   Query,
			opName: "GetUser",
			vars:   []Variable{intVar("id")},
			body:   "user(id: $id) { firstName }",
			want:   "query GetUser($id: Int!) { user(id: $id) { firstName } }",
		},
		{
			name:       "mutation with directive and constant",
			kind:       Mutation,
			opName:     "Rename",
			directives: []string{"@cached(ttl: 60)"},
			vars: []Variable{
				intVar("id"),
				{Name: "prefix", GraphQLName: "prefix", Type: schema.Named("String"), IsConstant: true},
				{Name: "tags", GraphQLName: "tags", Type: schema.NonNull(schema.ListOf(schema.NonNull(schema.Named("String"))))},
			},
			body: "rename(id: $id,\n\t tags: $tags) { id }",
			want: "mutation Rename($id: Int!, $tags: [String!]!) @cached(ttl: 60) { rename(id: $id, tags: $tags) { id } }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Assemble(tt.kind, tt.opName, tt.directives, tt.vars, tt.body)
			if doc.Text != tt.want {
				t.Errorf("expected %q, got %q", tt.want, doc.Text)
			}
			if doc.ContentHash != ContentHash(tt.want) {
				t.Errorf("hash does not match text")
			}
		})
	}
}

func TestContentHash(t *testing.T) {
	text := "query { me { firstName } }"
	sum := sha256.Sum256([]byte(text))
	want := hex.EncodeToString(sum[:])

	if got := ContentHash(text); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if got := ContentHash("query {\n  me {\n\tfirstName\n  }\n}\n"); got != want {
		t.Errorf("expected whitespace-insensitive hash, got %s", got)
	}
	if ContentHash("query { me { lastName } }") == want {
		t.Errorf("expected different hash for different text")
	}
}

func TestSchemaChecksum(t *testing.T) {
	schemaSource := []byte("type Query { me: User }")
	opts := GeneratorOptions{
		Namespace:       "api",
		ClientName:      "Client",
		Visibility:      "public",
		ScalarOverrides: map[string]string{"DateTime": "time.Time", "Decimal": "string", "Any": "any"},
	}

	a, err := SchemaChecksum(schemaSource, opts)
	if err != nil {
		t.Fatal(err)
	}
	reordered := opts
	reordered.ScalarOverrides = map[string]string{"Any": "any", "Decimal": "string", "DateTime": "time.Time"}
	b, err := SchemaChecksum(schemaSource, reordered)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("expected equal checksums for equal options")
	}

	changed := opts
	changed.Visibility = "internal"
	c, _ := SchemaChecksum(schemaSource, changed)
	if c == a {
		t.Errorf("expected options change to change checksum")
	}
	d, _ := SchemaChecksum([]byte("type Query { me: User! }"), opts)
	if d == a {
		t.Errorf("expected schema change to change checksum")
	}
}

func TestReadChecksum(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "checksum line", input: ChecksumLine("abc") + "\npackage api\n", want: "abc", wantOK: true},
		{name: "no checksum", input: "package api\n", wantOK: false},
		{name: "empty checksum", input: ChecksumPrefix + "\n", wantOK: false},
		{name: "empty file", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ReadChecksum([]byte(tt.input))
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("expected (%q, %v), got (%q, %v)", tt.want, tt.wantOK, got, ok)
			}
		})
	}
}

func TestUpToDate(t *testing.T) {
	src := []byte("type Query { a: Int }")
	opts := GeneratorOptions{Namespace: "x"}
	sum, err := SchemaChecksum(src, opts)
	if err != nil {
		t.Fatal(err)
	}
	generated := []byte(ChecksumLine(sum) + "\n\npackage x\n")

	ok, err := UpToDate(generated, src, opts)
	if err != nil || !ok {
		t.Errorf("expected up to date, got %v, %v", ok, err)
	}
	ok, _ = UpToDate(generated, []byte("type Query { a: String }"), opts)
	if ok {
		t.Errorf("expected stale output")
	}
}

func TestValues(t *testing.T) {
	doc := Assemble(Query, "", nil, []Variable{
		{Name: "Id", GraphQLName: "id", Type: schema.NonNull(schema.Named("Int")), Source: SourceMember},
		{Name: "limit", GraphQLName: "limit", Type: schema.Named("Int"), Source: SourceLocal},
		{Name: "prefix", GraphQLName: "prefix", IsConstant: true},
	}, "user(id: $id) { friends(first: $limit) { id } }")

	type args struct {
		Id int `json:"id"`
	}
	got, err := doc.Values(args{Id: -431}, map[string]any{"limit": 5})
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	want := map[string]any{"id": -431, "limit": 5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	if _, err := doc.Values(args{Id: 1}, nil); err == nil {
		t.Errorf("expected error for missing local")
	}
	if _, err := doc.Values(struct{ Other int }{}, map[string]any{"limit": 1}); err == nil {
		t.Errorf("expected error for missing member")
	}
}

func TestValues_MissingNullableMember(t *testing.T) {
	doc := Assemble(Query, "", nil, []Variable{
		{Name: "Id", GraphQLName: "id", Type: schema.NonNull(schema.Named("Int")), Source: SourceMember},
		{Name: "First", GraphQLName: "first", Type: schema.Named("Int"), Source: SourceMember},
	}, "user(id: $id) { friends(first: $first) { id } }")

	got, err := doc.Values(map[string]any{"id": 7}, nil)
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"id": 7}, got); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	if _, err := doc.Values(map[string]any{"first": 1}, nil); err == nil {
		t.Errorf("expected error for missing non-null member")
	}
	if _, err := doc.Values(nil, nil); err == nil {
		t.Errorf("expected error for missing arguments")
	}
}

func TestValues_WholeArguments(t *testing.T) {
	doc := Assemble(Mutation, "", nil, []Variable{
		{Name: "input", GraphQLName: "input", Type: schema.NonNull(schema.Named("UserInput")), Source: SourceArguments},
	}, "createUser(input: $input) { id }")

	input := map[string]any{"name": "x"}
	got, err := doc.Values(input, nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]any{"input": input}, got); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}
