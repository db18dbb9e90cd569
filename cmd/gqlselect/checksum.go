package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jensneuse/abstractlogger"
	"github.com/spf13/cobra"

	"github.com/llehouerou/gqlselect/document"
)

func newChecksumCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "checksum",
		Short: "Print the checksum of the schema and generator options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sum, err := a.checksum()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sum)
			return nil
		},
	}
}

func (a *app) checksum() (string, error) {
	_, source, err := a.loadSchema()
	if err != nil {
		return "", err
	}
	opts, err := a.generatorOptions()
	if err != nil {
		return "", err
	}
	return document.SchemaChecksum(source, opts)
}

var errStale = errors.New("generated file is stale")

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <generated.go>",
		Short: "Fail when a generated file does not match the schema and options",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			upToDate, err := a.upToDate(args[0])
			if err != nil {
				return err
			}
			if !upToDate {
				return fmt.Errorf("%s: %w", args[0], errStale)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date\n", args[0])
			return nil
		},
	}
}

// upToDate reports whether the generated file at path carries the current
// checksum. A missing file is stale.
func (a *app) upToDate(path string) (bool, error) {
	generated, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read generated file: %w", err)
	}
	_, source, err := a.loadSchema()
	if err != nil {
		return false, err
	}
	opts, err := a.generatorOptions()
	if err != nil {
		return false, err
	}
	ok, err := document.UpToDate(generated, source, opts)
	if err != nil {
		return false, err
	}
	if !ok {
		a.logger.Debug("checksum mismatch", abstractlogger.String("file", path))
	}
	return ok, nil
}
