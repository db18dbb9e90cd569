package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/gqlselect/document"
	"github.com/llehouerou/gqlselect/selection"
)

const testSDL = `
type User {
  id: Int!
  firstName: String!
}

type Query {
  me: User!
  users: [User!]!
}
`

type fixture struct {
	dir    string
	config string
	bundle string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:    dir,
		config: filepath.Join(dir, "gqlselect.yaml"),
		bundle: filepath.Join(dir, "bundle.json"),
	}
	schemaPath := filepath.Join(dir, "schema.graphql")
	require.NoError(t, os.WriteFile(schemaPath, []byte(testSDL), 0o644))
	require.NoError(t, os.WriteFile(f.config, []byte(`schema: `+schemaPath+`
namespace: github.com/acme/users
clientName: Users
scalars:
  - graphql: DateTime
    go: time.Time
`), 0o644))

	bundle := selection.Bundle{Operations: map[string]*selection.Root{
		"Me": selection.NewQuery("q",
			selection.Nested("q", "Me", selection.Select("o", selection.Field("o", "FirstName"))),
		),
		"Users": selection.NewQuery("q",
			selection.Nested("q", "Users", selection.Select("o", selection.Field("o", "Id"))),
		),
	}}
	data, err := json.Marshal(bundle)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(f.bundle, data, 0o644))
	return f
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCompile(t *testing.T) {
	f := newFixture(t)

	out, _, err := run(t, "compile", "--config", f.config, f.bundle)
	require.NoError(t, err)
	assert.Contains(t, out, "# Me (query) ")
	assert.Contains(t, out, "query Me { me { firstName } }\n")
	assert.Contains(t, out, "query Users { users { id } }\n")
	assert.Less(t, strings.Index(out, "# Me"), strings.Index(out, "# Users"))
}

func TestCompile_json(t *testing.T) {
	f := newFixture(t)

	out, _, err := run(t, "compile", "--config", f.config, "--output", "json", f.bundle)
	require.NoError(t, err)

	var docs []compiledDocument
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 2)
	assert.Equal(t, "Me", docs[0].Name)
	assert.Equal(t, "query", docs[0].Kind)
	assert.Equal(t, document.ContentHash(docs[0].Text), docs[0].Hash)
	assert.Empty(t, docs[0].Variables)
}

func TestCompile_diagnostics(t *testing.T) {
	f := newFixture(t)
	bad := selection.Bundle{Operations: map[string]*selection.Root{
		"Broken": selection.NewQuery("q",
			selection.Nested("q", "Me", selection.Select("o", selection.Field("o", "LastName"))),
		),
	}}
	data, err := json.Marshal(bad)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(f.bundle, data, 0o644))

	_, stderr, err := run(t, "compile", "--config", f.config, f.bundle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Broken")
	assert.Contains(t, stderr, "LastName")
}

func TestCompile_unknownOutput(t *testing.T) {
	f := newFixture(t)
	_, _, err := run(t, "compile", "--config", f.config, "--output", "yaml", f.bundle)
	assert.Error(t, err)
}

func TestCompile_noSchema(t *testing.T) {
	f := newFixture(t)
	empty := filepath.Join(f.dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("clientName: Users\n"), 0o644))

	_, _, err := run(t, "compile", "--config", empty, f.bundle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no schema")
}

func TestChecksum(t *testing.T) {
	f := newFixture(t)

	out, _, err := run(t, "checksum", "--config", f.config)
	require.NoError(t, err)
	want, err := document.SchemaChecksum([]byte(testSDL), document.GeneratorOptions{
		Namespace:       "github.com/acme/users",
		ClientName:      "Users",
		ScalarOverrides: map[string]string{"DateTime": "time.Time"},
	})
	require.NoError(t, err)
	assert.Equal(t, want+"\n", out)

	out, _, err = run(t, "checksum", "--config", f.config, "--scalar", "JSON=encoding/json.RawMessage")
	require.NoError(t, err)
	assert.NotEqual(t, want+"\n", out)
}

func TestManifest(t *testing.T) {
	f := newFixture(t)
	target := filepath.Join(f.dir, "gen", "documents.go")

	_, _, err := run(t, "manifest", "--config", f.config, "--out", target, f.bundle)
	require.NoError(t, err)
	code, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(code), "package users")
	assert.Contains(t, string(code), "var UsersDocuments = map[string]Document{")

	out, _, err := run(t, "check", "--config", f.config, target)
	require.NoError(t, err)
	assert.Contains(t, out, "is up to date")

	// an up to date file is left alone unless forced
	edited := append(code, []byte("\n// edited\n")...)
	require.NoError(t, os.WriteFile(target, edited, 0o644))
	_, _, err = run(t, "manifest", "--config", f.config, "--out", target, f.bundle)
	require.NoError(t, err)
	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, string(edited), string(got))

	_, _, err = run(t, "manifest", "--config", f.config, "--out", target, "--force", f.bundle)
	require.NoError(t, err)
	got, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, string(code), string(got))
}

func TestCheck_staleAfterEnvOverride(t *testing.T) {
	f := newFixture(t)
	target := filepath.Join(f.dir, "documents.go")

	_, _, err := run(t, "manifest", "--config", f.config, "--out", target, f.bundle)
	require.NoError(t, err)

	t.Setenv("GQLSELECT_CLIENTNAME", "Accounts")
	_, _, err = run(t, "check", "--config", f.config, target)
	require.Error(t, err)
	assert.ErrorIs(t, err, errStale)
}

func TestCheck_missingFile(t *testing.T) {
	f := newFixture(t)
	_, _, err := run(t, "check", "--config", f.config, filepath.Join(f.dir, "missing.go"))
	assert.ErrorIs(t, err, errStale)
}
