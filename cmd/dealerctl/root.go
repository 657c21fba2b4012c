package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/angelmondragon/dealerdesk-backend/internal/app"
	"github.com/angelmondragon/dealerdesk-backend/pkg/config"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "dealerctl",
	Short: "Operator tooling for the dealership back office",
	Long: `dealerctl runs one-off maintenance against the dealership database.

It reads the same DEALER_* environment as the API (a .env file in the working
directory is loaded when present).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "Log at debug level")
}

// runtime bundles the clients a command needs. Close releases all of them.
type runtime struct {
	cfg      *config.Config
	logg     *logger.Logger
	db       *db.Client
	services *app.Services
	closers  []func() error
}

func (r *runtime) Close() error {
	var err error
	for i := len(r.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, r.closers[i]())
	}
	return err
}

func bootstrap(ctx context.Context, cmd *cobra.Command) (*runtime, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Service.Kind = "dealerctl"

	level := cfg.App.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	logg := logger.New(logger.Options{
		ServiceName: "dealerctl",
		Level:       logger.ParseLevel(level),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	rt := &runtime{cfg: cfg, logg: logg, db: dbClient, closers: []func() error{dbClient.Close}}

	services, err := app.Build(app.Params{Config: cfg, Logger: logg, DB: dbClient})
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("build services: %w", err), rt.Close())
	}
	rt.services = services
	return rt, nil
}
