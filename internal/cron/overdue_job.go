package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type overdueMarker interface {
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

type OverdueJobParams struct {
	Logger       *logger.Logger
	Installments overdueMarker
}

// NewOverdueJob flips Pending installments whose due date has passed to
// Overdue. The cutoff is the start of the current UTC day, so an installment
// due today stays Pending until tomorrow.
func NewOverdueJob(params OverdueJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Installments == nil {
		return nil, fmt.Errorf("installments service required")
	}
	return &overdueJob{
		logg:         params.Logger,
		installments: params.Installments,
		now:          time.Now,
	}, nil
}

type overdueJob struct {
	logg         *logger.Logger
	installments overdueMarker
	now          func() time.Time
}

func (j *overdueJob) Name() string { return "installments_overdue" }

func (j *overdueJob) Run(ctx context.Context) error {
	asOf := j.now().UTC().Truncate(24 * time.Hour)
	marked, err := j.installments.MarkOverdue(ctx, asOf)
	if err != nil {
		return fmt.Errorf("mark overdue: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"as_of":          asOf.Format("2006-01-02"),
		"marked_overdue": marked,
	})
	j.logg.Info(logCtx, "overdue sweep complete")
	return nil
}
