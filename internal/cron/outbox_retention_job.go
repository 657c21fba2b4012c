package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/pkg/logger"
)

const (
	defaultEventRetention = 30 * 24 * time.Hour
	defaultDLQRetention   = 90 * 24 * time.Hour
	defaultMinAttempts    = 5
)

type eventPruner interface {
	DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time, minAttemptCount int) (int64, error)
}

type deadLetterPruner interface {
	DeleteFailedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type OutboxRetentionJobParams struct {
	Logger *logger.Logger
	DB     txRunner
	Events eventPruner
	// DeadLetters is optional; without it only delivered events are pruned.
	DeadLetters   deadLetterPruner
	RetentionDays int
	DLQDays       int
	MinAttempts   int
}

// NewOutboxRetentionJob prunes contract and payment events that were delivered
// (or exhausted their attempts) plus dead letters past their own window.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	switch {
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	case params.DB == nil:
		return nil, fmt.Errorf("db runner required")
	case params.Events == nil:
		return nil, fmt.Errorf("outbox repository required")
	}
	job := &outboxRetentionJob{
		logg:        params.Logger,
		db:          params.DB,
		events:      params.Events,
		deadLetters: params.DeadLetters,
		keepEvents:  days(params.RetentionDays, defaultEventRetention),
		keepDLQ:     days(params.DLQDays, defaultDLQRetention),
		minAttempts: params.MinAttempts,
		now:         time.Now,
	}
	if job.minAttempts <= 0 {
		job.minAttempts = defaultMinAttempts
	}
	return job, nil
}

func days(n int, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * 24 * time.Hour
}

type outboxRetentionJob struct {
	logg        *logger.Logger
	db          txRunner
	events      eventPruner
	deadLetters deadLetterPruner
	keepEvents  time.Duration
	keepDLQ     time.Duration
	minAttempts int
	now         func() time.Time
}

func (j *outboxRetentionJob) Name() string { return "outbox_retention" }

// Run prunes both tables in separate transactions so a DLQ failure never
// rolls back the event cleanup.
func (j *outboxRetentionJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	eventCutoff := now.Add(-j.keepEvents)
	dlqCutoff := now.Add(-j.keepDLQ)

	var eventsDeleted, dlqDeleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := j.events.DeletePublishedBefore(ctx, tx, eventCutoff, j.minAttempts)
		eventsDeleted = n
		return err
	})
	if err != nil {
		err = fmt.Errorf("prune outbox events: %w", err)
	}
	if j.deadLetters != nil {
		dlqErr := j.db.WithTx(ctx, func(tx *gorm.DB) error {
			n, err := j.deadLetters.DeleteFailedBefore(ctx, tx, dlqCutoff)
			dlqDeleted = n
			return err
		})
		if dlqErr != nil {
			err = multierr.Append(err, fmt.Errorf("prune dead letters: %w", dlqErr))
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"event_cutoff":   eventCutoff,
		"dlq_cutoff":     dlqCutoff,
		"min_attempts":   j.minAttempts,
		"events_deleted": eventsDeleted,
		"dlq_deleted":    dlqDeleted,
	})
	if err != nil {
		j.logg.Error(logCtx, "outbox retention incomplete", err)
		return err
	}
	j.logg.Info(logCtx, "outbox retention complete")
	return nil
}
