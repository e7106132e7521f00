package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/DarlingInSteam/compressrank-admin/api"
	"github.com/DarlingInSteam/compressrank-admin/config"
	"github.com/DarlingInSteam/compressrank-admin/engine"
	"github.com/DarlingInSteam/compressrank-admin/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin gateway",
	Long:  `Start the admin gateway to serve the CompressRank admin panel API.`,
	Example: `compressrank-admin serve --config config.yml
compressrank-admin serve -c /path/to/config.yml --log-level debug
`,
	Run: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if rootCmdPersistentFlags.LogLevel == "" && cfg.LogLevel != "" {
		setLogLevel(cfg.LogLevel)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	eng, err := engine.New(cfg)
	if err != nil {
		log.Fatalf("failed to create engine: %v", err)
	}
	defer eng.Close() //nolint:errcheck

	sched, err := scheduler.New()
	if err != nil {
		log.Fatalf("failed to create scheduler: %v", err)
	}
	if err := eng.RegisterJobs(sched); err != nil {
		log.Fatalf("failed to register jobs: %v", err)
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Error("failed to stop scheduler", "error", err)
		}
	}()

	server, err := api.New(ctx, cfg, eng, sched)
	if err != nil {
		log.Fatalf("failed to create API server: %v", err)
	}

	log.Info("compressrank-admin started successfully")
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("API server error", "error", err)
	}
	log.Info("shutting down gracefully...")
}
