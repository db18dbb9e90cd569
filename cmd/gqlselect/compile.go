package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jensneuse/abstractlogger"
	"github.com/spf13/cobra"

	"github.com/llehouerou/gqlselect/compiler"
	"github.com/llehouerou/gqlselect/document"
	"github.com/llehouerou/gqlselect/schema"
)

const (
	outputText = "text"
	outputJSON = "json"
)

type compiledVariable struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Source string `json:"source"`
}

type compiledDocument struct {
	Name      string             `json:"name"`
	Kind      string             `json:"kind"`
	Hash      string             `json:"hash"`
	Text      string             `json:"text"`
	Variables []compiledVariable `json:"variables,omitempty"`
	Uploads   bool               `json:"uploads,omitempty"`
}

func newCompileCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "compile <bundle.json>",
		Short: "Compile the operations of a bundle and print the documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != outputText && output != outputJSON {
				return fmt.Errorf("unknown output %q", output)
			}
			s, _, err := a.loadSchema()
			if err != nil {
				return err
			}
			docs, err := a.compileBundle(cmd, s, args[0])
			if err != nil {
				return err
			}

			out := make([]compiledDocument, 0, len(docs))
			for _, name := range sortedNames(docs) {
				out = append(out, newCompiledDocument(name, docs[name]))
			}
			if output == outputJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			for _, d := range out {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s (%s) %s\n%s\n", d.Name, d.Kind, d.Hash, d.Text)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format (text or json)")
	return cmd
}

// compileBundle compiles every operation of the bundle at path. Compile
// diagnostics are listed on stderr before the error is returned.
func (a *app) compileBundle(cmd *cobra.Command, s *schema.Schema, path string) (map[string]*document.Document, error) {
	bundle, err := loadBundle(path)
	if err != nil {
		return nil, err
	}
	docs, err := compiler.CompileAll(cmd.Context(), s, bundle.Operations, bundle.FragmentSet())
	if err != nil {
		var diags compiler.Diagnostics
		if errors.As(err, &diags) {
			for _, d := range diags {
				fmt.Fprintln(cmd.ErrOrStderr(), d.Error())
			}
		}
		return nil, err
	}
	a.logger.Debug("bundle compiled",
		abstractlogger.String("file", path),
		abstractlogger.Int("documents", len(docs)),
	)
	return docs, nil
}

func newCompiledDocument(name string, doc *document.Document) compiledDocument {
	d := compiledDocument{
		Name:    name,
		Kind:    string(doc.Kind),
		Hash:    doc.ContentHash,
		Text:    doc.Text,
		Uploads: doc.HasUploads(),
	}
	for _, v := range doc.Declared() {
		d.Variables = append(d.Variables, compiledVariable{
			Name:   v.GraphQLName,
			Type:   v.WireType(),
			Source: string(v.Source),
		})
	}
	return d
}
