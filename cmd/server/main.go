package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/AnshRaj112/feedback-tracker/internal/config"
	"github.com/AnshRaj112/feedback-tracker/internal/logging"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "feedbackd",
		Short:         "Feedback Tracker API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			return serve(cmd.Context(), cfg, logger)
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Upgrade persisted feedback to the current format and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			return migrate(cmd.Context(), cfg, logger)
		},
	})

	return root
}

// bootstrap loads .env and the environment and builds the logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	envErr := godotenv.Load()
	cfg := config.Load()

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	if envErr != nil {
		logger.Info("No .env file found")
	}
	return cfg, logger, nil
}
