// Package commands implements the navigator CLI.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ritualgrammar/navigator/internal/app"
	"github.com/ritualgrammar/navigator/internal/config"
	"github.com/ritualgrammar/navigator/internal/engine"
)

// options holds the global flags.
type options struct {
	configFile string
	ontology   string
	format     string
	jq         string
	verbose    bool
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the command tree. Each call returns independent flag
// state.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "navigator",
		Short: "Browse the ritual grammar ontology from the terminal",
		Long: `navigator - command line access to the ritual grammar ontology.

The ontology and its collaborators are configured exactly like the web
server: NAVIGATOR_* environment variables over an optional YAML file.

Examples:
  # Part-whole hierarchy with inferred relations
  navigator tree --inferred

  # Labels of the top-level nodes as JSON lines
  navigator tree --jq '.nodes[].label'

  # Properties of one node
  navigator details https://ritualgrammar.org/ontology#Wedding -o yaml

  # Materialize the inferred graph to object storage
  navigator export s3://ontologies/ritualgrammar-inferred.nt --inferred`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "YAML config file (default: $NAVIGATOR_CONFIG_FILE)")
	flags.StringVar(&opts.ontology, "ontology", "", "ontology source, overriding the configured one")
	flags.StringVarP(&opts.format, "output", "o", "text", "output format: text, json or yaml")
	flags.StringVar(&opts.jq, "jq", "", "jq expression applied to the JSON form of the result")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		newTreeCmd(opts),
		newEventsCmd(opts),
		newDetailsCmd(opts),
		newQueryCmd(opts),
		newExportCmd(opts),
		newVersionCmd(opts),
	)
	return rootCmd
}

// loadConfig reads configuration and applies flag overrides. CLI logging
// goes to stderr and is quiet unless verbose.
func (o *options) loadConfig(stderr io.Writer) (*config.Config, error) {
	path := o.configFile
	if path == "" {
		path = os.Getenv("NAVIGATOR_CONFIG_FILE")
	}
	cfg, err := config.LoadConfigFrom(path)
	if err != nil {
		return nil, err
	}
	if o.ontology != "" {
		cfg.Ontology.Source = o.ontology
	}

	logCfg := cfg.Log
	if !o.verbose {
		logCfg.Level = "warn"
	}
	setLogger(app.NewLogger(logCfg, stderr))
	return cfg, nil
}

// navigator builds a navigator for one command run. The caller closes the
// returned cache.
func (o *options) navigator(cmd *cobra.Command) (*config.Config, *engine.Navigator, error) {
	cfg, err := o.loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	nav, err := app.NewNavigator(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, nav, nil
}
