package main

import (
	"fmt"

	"github.com/rmera/goaltbc/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is set at build time.
var Version = "dev"

type rootOptions struct {
	verbose bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "altbc",
		Short:         "Angular-limited three-body correlations",
		Long:          "altbc finds, for each atom, the pairs of neighbors that form an almost straight angle\nwith it, and collects the two bond lengths of each such triplet over a structure or trajectory.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every frame analyzed")
	cmd.AddCommand(newAnalyzeCommand(opts), newExampleConfigCommand())
	return cmd
}

func newExampleConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "example-config",
		Short: "Print an example configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.ExampleConfig)
			return err
		},
	}
}

// newLogger returns a console logger writing to stderr at the given level.
func newLogger(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
