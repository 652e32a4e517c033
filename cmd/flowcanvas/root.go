package main

import (
	"fmt"
	"os"

	"flowcanvas/internal/config"
	"flowcanvas/internal/observability"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app carries state shared by subcommands after PersistentPreRunE
type app struct {
	cfgFile string
	cfgPath string
	cfg     *config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "flowcanvas",
		Short:         "Flow editor backend and pipeline validator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default searches ./flowcanvas.yaml and the user config dir)")

	root.AddCommand(
		newServeCmd(a),
		newAnalyzeCmd(a),
		newKindsCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup loads configuration and sets up logging
func (a *app) setup(cmd *cobra.Command) error {
	v := config.NewViper()
	path, err := config.Load(v, a.cfgFile)
	if err != nil {
		return err
	}
	if f := cmd.Flags().Lookup("addr"); f != nil && f.Changed {
		v.Set("server.addr", f.Value.String())
	}

	cfg, err := config.NewConfigFromViper(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.cfgPath = path

	// Logs go to stderr so command output stays clean
	observability.Initialize(cfg.Logger, zapcore.Lock(os.Stderr))
	a.logger = observability.GetLogger()
	if path != "" {
		a.logger.Debug("configuration loaded", zap.String("path", path))
	}
	return nil
}
