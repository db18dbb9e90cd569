package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jensneuse/abstractlogger"
	"github.com/spf13/cobra"

	"github.com/llehouerou/gqlselect/generate"
)

func newManifestCmd(a *app) *cobra.Command {
	var (
		out   string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "manifest <bundle.json>",
		Short: "Generate the Go manifest of persisted documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			if !force {
				upToDate, err := a.upToDate(out)
				if err != nil {
					return err
				}
				if upToDate {
					a.logger.Info("manifest up to date, skipping", abstractlogger.String("file", out))
					return nil
				}
			}

			s, source, err := a.loadSchema()
			if err != nil {
				return err
			}
			docs, err := a.compileBundle(cmd, s, args[0])
			if err != nil {
				return err
			}
			opts, err := a.manifestOptions()
			if err != nil {
				return err
			}
			code, err := generate.Manifest(s, source, docs, opts)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			if err := os.WriteFile(out, code, 0o644); err != nil {
				return fmt.Errorf("write manifest: %w", err)
			}
			a.logger.Info("manifest written",
				abstractlogger.String("file", out),
				abstractlogger.Int("documents", len(docs)),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output Go file")
	cmd.Flags().BoolVar(&force, "force", false, "regenerate even when the checksum matches")
	return cmd
}
