package main

import (
	"fmt"

	"github.com/ckiev5/family-chart/infrastructure/config"
	"github.com/ckiev5/family-chart/infrastructure/observability"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time.
var Version = "dev"

type globalOptions struct {
	configDir string
	env       string
	logLevel  string

	loader *config.Loader
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "famtree",
		Short:         "Edit family tree datasets from the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initialize(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&opts.configDir, "config-dir", "c", "config", "directory holding base/<env>/local configuration files")
	root.PersistentFlags().StringVar(&opts.env, "env", "", "environment (development, production, test); defaults to FAMTREE_ENV")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(newEditCmd(opts))
	root.AddCommand(newCheckCmd(opts))
	return root
}

// initialize loads the configuration and builds the logger.
func (o *globalOptions) initialize(cmd *cobra.Command) error {
	if o.env != "" {
		o.loader = config.NewLoader(o.configDir, config.Environment(o.env))
	} else {
		o.loader = config.NewLoaderFromEnv(o.configDir)
	}

	cfg, err := o.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	o.cfg = cfg

	logger, err := observability.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	o.logger = logger
	logger.Debug("configuration loaded",
		zap.String("environment", string(cfg.Environment)),
		zap.Strings("sources", cfg.LoadedFrom),
	)
	return nil
}
