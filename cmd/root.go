package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stonk0105/volleysched/api/schedules"
	"github.com/stonk0105/volleysched/app"
	"github.com/stonk0105/volleysched/config"
	"github.com/stonk0105/volleysched/core/monitoring"
	"github.com/stonk0105/volleysched/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "volleysched",
	Short:        "Volleyball tournament scheduler",
	Long:         "Draws groups, schedules round-robin matches on fields and referees, and serves the results over HTTP.",
	RunE:         serve,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the configuration file. The default file is optional.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := cfgPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newService(cmd *cobra.Command) (*app.Service, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

func closeService(svc *app.Service) {
	if err := svc.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
}

func serve(cmd *cobra.Command, args []string) error {
	defer monitoring.Recover(map[string]string{"command": "serve"})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, cfg, err := newService(cmd)
	if err != nil {
		return err
	}
	defer closeService(svc)
	router := schedules.NewRouter(svc, schedules.Options{Token: cfg.Server.Token, CORSOrigins: cfg.Server.CORSOrigins})
	return svc.Serve(ctx, cfg.Server.Addr, cfg.Metrics.PrometheusAddr, router)
}
