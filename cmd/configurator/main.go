package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"configurator/internal/app"
	"configurator/internal/config"
	"configurator/internal/logger"
)

type rootFlags struct {
	config string
	prefs  string
	model  string
	watch  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f rootFlags
	root := &cobra.Command{
		Use:          "configurator",
		Short:        "Interactive 3D product color configurator",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			log := logger.New(cfg.LogFile)
			log.SetEcho(os.Stderr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.New(cfg, log, f.prefs).Run(ctx)
		},
	}
	root.PersistentFlags().StringVarP(&f.config, "config", "c", config.DefaultPath, "configuration file")
	root.PersistentFlags().StringVar(&f.prefs, "prefs", config.PrefsPath, "saved overlay preferences")
	root.PersistentFlags().StringVarP(&f.model, "model", "m", "", "model path or URL (overrides model_path)")
	root.Flags().BoolVarP(&f.watch, "watch", "w", false, "reload the model when its file changes")

	root.AddCommand(newInspectCmd(&f))
	return root
}

func loadConfig(cmd *cobra.Command, f rootFlags) (*config.Config, error) {
	cfg, err := config.Load(config.Options{Path: f.config, PrefsPath: f.prefs})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if f.model != "" {
		cfg.ModelPath = f.model
	}
	if flag := cmd.Flags().Lookup("watch"); flag != nil && flag.Changed {
		cfg.Watch = f.watch
	}
	return cfg, nil
}
