package cron

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/dealerdesk-backend/internal/installments"
	"github.com/angelmondragon/dealerdesk-backend/pkg/config"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/logger"
	"github.com/angelmondragon/dealerdesk-backend/pkg/metrics"
	"github.com/angelmondragon/dealerdesk-backend/pkg/outbox"
)

// LockBackend is the Redis surface the worker lock needs.
type LockBackend interface {
	redisStore
	LockKey(name string) string
}

type BuildParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         *db.Client
	Redis      LockBackend
	Registerer prometheus.Registerer
}

// Build wires the production job set: the overdue sweep followed by outbox
// retention. Both the worker and the operator CLI use it.
func Build(params BuildParams) (*Service, error) {
	if params.Config == nil || params.Logger == nil || params.DB == nil || params.Redis == nil {
		return nil, fmt.Errorf("config, logger, db and redis are required")
	}
	cfg := params.Config
	conn := params.DB.DB()
	outboxRepo := outbox.NewRepository(conn)

	installmentSvc, err := installments.NewService(installments.ServiceParams{
		DB:      params.DB,
		Repo:    installments.NewRepository(conn),
		Outbox:  outbox.NewService(outboxRepo, params.Logger),
		Metrics: metrics.NewContractMetrics(params.Registerer),
		Logger:  params.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("installments service: %w", err)
	}

	overdue, err := NewOverdueJob(OverdueJobParams{
		Logger:       params.Logger,
		Installments: installmentSvc,
	})
	if err != nil {
		return nil, err
	}
	retention, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:        params.Logger,
		DB:            params.DB,
		Events:        outboxRepo,
		DeadLetters:   outbox.NewDLQRepository(conn),
		RetentionDays: cfg.Cron.RetentionDays,
		DLQDays:       cfg.Cron.DLQRetentionDays,
		MinAttempts:   cfg.Outbox.MaxAttempts,
	})
	if err != nil {
		return nil, err
	}

	env := cfg.App.Env
	if env == "" {
		env = "local"
	}
	lock, err := NewRedisLock(params.Redis, params.Redis.LockKey("cron-worker:"+env), cfg.Cron.LockTTL)
	if err != nil {
		return nil, err
	}

	return NewService(ServiceParams{
		Logger:   params.Logger,
		Registry: NewRegistry(overdue, retention),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(params.Registerer),
		Interval: cfg.Cron.Interval,
	})
}
