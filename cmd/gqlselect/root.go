package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jensneuse/abstractlogger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/llehouerou/gqlselect/document"
	"github.com/llehouerou/gqlselect/generate"
	"github.com/llehouerou/gqlselect/schema"
	"github.com/llehouerou/gqlselect/selection"
)

const envPrefix = "GQLSELECT"

// scalarOverride maps a GraphQL scalar onto a Go type in gqlselect.yaml.
// It is a list entry rather than a map key because config keys are case
// insensitive.
type scalarOverride struct {
	GraphQL string `mapstructure:"graphql"`
	Go      string `mapstructure:"go"`
}

type app struct {
	v       *viper.Viper
	cfgFile string
	debug   bool
	scalars map[string]string

	zap    *zap.Logger
	logger abstractlogger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: abstractlogger.NoopLogger}

	root := &cobra.Command{
		Use:          "gqlselect",
		Short:        "Compile selection bundles into GraphQL documents",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a.zap != nil {
				_ = a.zap.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default ./gqlselect.yaml)")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	flags.String("schema", "", "GraphQL SDL schema file")
	flags.String("namespace", "", "namespace of the generated code")
	flags.String("client-name", "", "client name of the generated code")
	flags.String("visibility", "", "visibility of the generated identifiers (public or internal)")
	flags.String("package", "", "package clause of the generated code")
	flags.String("upload-scalar", "", "name of the upload scalar (default Upload)")
	flags.StringToStringVar(&a.scalars, "scalar", nil, "scalar override GraphQLName=go/pkg.Type, repeatable")

	for key, flag := range map[string]string{
		"schema":       "schema",
		"namespace":    "namespace",
		"clientName":   "client-name",
		"visibility":   "visibility",
		"package":      "package",
		"uploadScalar": "upload-scalar",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newCompileCmd(a),
		newChecksumCmd(a),
		newCheckCmd(a),
		newManifestCmd(a),
	)
	return root
}

// init reads the config file and environment and builds the logger.
func (a *app) init() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.SetConfigName("gqlselect")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
	}
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	a.v.AutomaticEnv()
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	var (
		logger *zap.Logger
		level  = abstractlogger.InfoLevel
		err    error
	)
	if a.debug {
		logger, err = zap.NewDevelopmentConfig().Build()
		level = abstractlogger.DebugLevel
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.zap = logger
	a.logger = abstractlogger.NewZapLogger(logger, level)
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("config loaded", abstractlogger.String("file", used))
	}
	return nil
}

func (a *app) generatorOptions() (document.GeneratorOptions, error) {
	opts := document.GeneratorOptions{
		Namespace:  a.v.GetString("namespace"),
		ClientName: a.v.GetString("clientName"),
		Visibility: a.v.GetString("visibility"),
	}
	var overrides []scalarOverride
	if err := a.v.UnmarshalKey("scalars", &overrides); err != nil {
		return opts, fmt.Errorf("config scalars: %w", err)
	}
	if len(overrides) > 0 || len(a.scalars) > 0 {
		opts.ScalarOverrides = make(map[string]string, len(overrides)+len(a.scalars))
	}
	for _, o := range overrides {
		if o.GraphQL == "" || o.Go == "" {
			return opts, fmt.Errorf("config scalars: entries need graphql and go")
		}
		opts.ScalarOverrides[o.GraphQL] = o.Go
	}
	for name, goType := range a.scalars {
		opts.ScalarOverrides[name] = goType
	}
	return opts, nil
}

func (a *app) manifestOptions() (generate.Options, error) {
	opts, err := a.generatorOptions()
	if err != nil {
		return generate.Options{}, err
	}
	return generate.Options{GeneratorOptions: opts, Package: a.v.GetString("package")}, nil
}

// loadSchema returns the parsed schema and its raw source.
func (a *app) loadSchema() (*schema.Schema, []byte, error) {
	path := a.v.GetString("schema")
	if path == "" {
		return nil, nil, errors.New("no schema: set --schema or schema in gqlselect.yaml")
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read schema: %w", err)
	}
	s, err := schema.LoadSDL(path, string(source))
	if err != nil {
		return nil, nil, err
	}
	if upload := a.v.GetString("uploadScalar"); upload != "" {
		s.WithUploadScalar(upload)
	}
	a.logger.Debug("schema loaded",
		abstractlogger.String("file", path),
		abstractlogger.Int("types", len(s.TypeNames())),
	)
	return s, source, nil
}

func loadBundle(path string) (*selection.Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	var b selection.Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode bundle %s: %w", path, err)
	}
	if len(b.Operations) == 0 {
		return nil, fmt.Errorf("bundle %s has no operations", path)
	}
	return &b, nil
}

func sortedNames[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
