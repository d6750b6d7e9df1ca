// Package cli implements the stickyparam command line.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/soochol/stickyparam/internal/config"
	"github.com/soochol/stickyparam/internal/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
}

func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "stickyparam",
		Short:         "Job parameter service with sticky boolean defaults",
		Long:          "stickyparam stores job parameter definitions and run history, and pre-fills each new run with the values the previous run used.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "override log.format (text, json, terminal)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(opts),
		newMigrateCmd(opts),
	)

	return rootCmd
}

// load reads the configuration and installs the default logger.
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}

	w := cmd.ErrOrStderr()
	if w == nil {
		w = os.Stderr
	}
	if err := logging.Setup(w, cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}
