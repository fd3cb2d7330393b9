package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/kilianp07/sprintplan/app"
	"github.com/kilianp07/sprintplan/config"
	"github.com/kilianp07/sprintplan/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "sprintplan",
	Short:         "Capacity-aware sprint and phase planner",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads cfgPath. A missing default file yields the built-in
// defaults; a missing file named on the command line is an error.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.Default(), nil
	}
	return nil, fmt.Errorf("load config: %w", err)
}

// withService builds the service from the configuration, starts its event
// consumers and closes it once fn returns.
func withService(ctx context.Context, cmd *cobra.Command, fn func(*app.Service) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	svc.Start(ctx)
	return fn(svc)
}

