package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"campaign-server/internal/campaign"
	"campaign-server/internal/server"
	"campaign-server/internal/shared/config"
	"campaign-server/internal/shared/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// cliActor runs maintenance commands with admin rights.
var cliActor = campaign.Actor{ID: "cli", Name: "campaignctl", Admin: true}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "campaignctl",
		Short: "Inspect and administer the campaign state",
		Long: `campaignctl works directly on the persisted campaign document, using
the same environment configuration as the server (STATE_BACKEND, STATE_FILE,
DB_*, REDIS_*).`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newPhaseCmd(),
		newClosePhaseCmd(),
		newFactionsCmd(),
		newSystemCmd(),
		newPlanetCmd(),
		newExportCmd(),
		newSeedCmd(),
		newTokenCmd(),
		newRevisionsCmd(),
	)
	return rootCmd
}

// loadConfig reads the environment and an optional .env file. The
// server-only checks are skipped so read commands work without a JWT secret.
func loadConfig() (*config.Config, *slog.Logger, error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.Logging, os.Stderr), nil
}

// withState opens the configured state backend for the duration of fn.
func withState(ctx context.Context, fn func(st *server.State) error) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := server.OpenState(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
