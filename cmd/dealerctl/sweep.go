package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/dealerdesk-backend/internal/cron"
	"github.com/angelmondragon/dealerdesk-backend/pkg/redis"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a scheduled job once",
}

const jobAnnotation = "job"

// sweepJobCmd binds one subcommand to one registered cron job.
func sweepJobCmd(use, short, job string) *cobra.Command {
	return &cobra.Command{
		Use:         use,
		Short:       short,
		Example:     "  dealerctl sweep " + use,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{jobAnnotation: job},
		RunE:        runSweep,
	}
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.AddCommand(
		sweepJobCmd("overdue", "Mark pending installments past their due date as overdue", "installments_overdue"),
		sweepJobCmd("outbox-retention", "Prune published outbox events and old dead letters", "outbox_retention"),
	)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	rt, err := bootstrap(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	// The cron lock lives in redis so a manual sweep never overlaps the worker.
	redisClient, err := redis.New(ctx, rt.cfg.Redis, rt.logg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	rt.closers = append(rt.closers, redisClient.Close)

	service, err := cron.Build(cron.BuildParams{
		Config: rt.cfg,
		Logger: rt.logg,
		DB:     rt.db,
		Redis:  redisClient,
	})
	if err != nil {
		return fmt.Errorf("build cron service: %w", err)
	}

	job := cmd.Annotations[jobAnnotation]
	if err := service.RunJob(ctx, job); err != nil {
		if errors.Is(err, cron.ErrLockHeld) {
			return fmt.Errorf("%s: another worker is running the schedule, retry later", job)
		}
		return fmt.Errorf("run %s: %w", job, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: done\n", job)
	return nil
}
