// Package publisher drains outbox_events to Pub/Sub. Contract and payment
// events are written in the same transaction as the ledger change; this
// package is the only place they leave the database.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
	"github.com/angelmondragon/dealerdesk-backend/pkg/enums"
	"github.com/angelmondragon/dealerdesk-backend/pkg/logger"
	"github.com/angelmondragon/dealerdesk-backend/pkg/metrics"
	"github.com/angelmondragon/dealerdesk-backend/pkg/outbox/registry"
)

const (
	defaultBatchSize   = 50
	defaultPoll        = 500 * time.Millisecond
	defaultMaxAttempts = 10
	defaultConcurrency = 8
	sendTimeout        = 15 * time.Second
	maxIdleBackoff     = 10 * time.Second
)

type database interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type eventStore interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type deadLetterStore interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type resolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type Params struct {
	Logger      *logger.Logger
	DB          database
	Events      eventStore
	DeadLetters deadLetterStore
	Resolver    resolver
	Sender      Sender
	Metrics     *metrics.OutboxMetrics
	// Ready is checked once before the loop starts; nil skips the check.
	Ready        func(context.Context) error
	BatchSize    int
	MaxAttempts  int
	Concurrency  int
	PollInterval time.Duration
}

type Publisher struct {
	logg        *logger.Logger
	db          database
	events      eventStore
	deadLetters deadLetterStore
	resolver    resolver
	sender      Sender
	metrics     *metrics.OutboxMetrics
	ready       func(context.Context) error
	batchSize   int
	maxAttempts int
	concurrency int
	poll        time.Duration
	now         func() time.Time
}

func New(p Params) (*Publisher, error) {
	switch {
	case p.Logger == nil:
		return nil, errors.New("logger is required")
	case p.DB == nil:
		return nil, errors.New("database is required")
	case p.Events == nil:
		return nil, errors.New("outbox repository is required")
	case p.DeadLetters == nil:
		return nil, errors.New("dlq repository is required")
	case p.Resolver == nil:
		return nil, errors.New("event registry is required")
	case p.Sender == nil:
		return nil, errors.New("sender is required")
	}
	return &Publisher{
		logg:        p.Logger,
		db:          p.DB,
		events:      p.Events,
		deadLetters: p.DeadLetters,
		resolver:    p.Resolver,
		sender:      p.Sender,
		metrics:     p.Metrics,
		ready:       p.Ready,
		batchSize:   orDefault(p.BatchSize, defaultBatchSize),
		maxAttempts: orDefault(p.MaxAttempts, defaultMaxAttempts),
		concurrency: orDefault(p.Concurrency, defaultConcurrency),
		poll:        durationOr(p.PollInterval, defaultPoll),
		now:         time.Now,
	}, nil
}

func orDefault(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}

// Run polls until ctx is done. A full batch is followed immediately by the
// next one; an empty or failed batch waits, doubling up to maxIdleBackoff on
// consecutive errors.
func (p *Publisher) Run(ctx context.Context) error {
	if err := p.db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	if p.ready != nil {
		if err := p.ready(ctx); err != nil {
			return fmt.Errorf("pubsub ping: %w", err)
		}
	}

	wait := p.poll
	for {
		n, err := p.Drain(ctx)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			p.logg.Error(ctx, "outbox batch failed", err)
			wait = min(wait*2, maxIdleBackoff)
		case n == p.batchSize:
			wait = p.poll
			continue
		default:
			wait = p.poll
		}
		if err := sleep(ctx, jitter(wait)); err != nil {
			return err
		}
	}
}

type result int

const (
	resultPublished result = iota
	resultRetry
	resultDeadLetter
)

type delivery struct {
	event  models.OutboxEvent
	topic  string
	msg    *gcppubsub.Message
	result result
	reason enums.OutboxDLQErrorReason
	err    error
}

// Drain claims one batch, sends it and records every outcome in the same
// transaction that holds the row locks. It returns how many rows it claimed.
func (p *Publisher) Drain(ctx context.Context) (int, error) {
	claimed := 0
	err := p.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := p.events.FetchUnpublishedForPublish(tx, p.batchSize, p.maxAttempts)
		if err != nil {
			return fmt.Errorf("fetch outbox batch: %w", err)
		}
		claimed = len(rows)

		deliveries := make([]*delivery, len(rows))
		for i, row := range rows {
			deliveries[i] = p.prepare(row)
		}
		p.sendAll(ctx, deliveries)

		for _, d := range deliveries {
			if err := p.record(ctx, tx, d); err != nil {
				return err
			}
		}
		return nil
	})
	return claimed, err
}

func (p *Publisher) prepare(row models.OutboxEvent) *delivery {
	d := &delivery{event: row}
	resolved, err := p.resolver.Resolve(row)
	if err != nil {
		d.result, d.reason, d.err = resultDeadLetter, enums.OutboxDLQReasonNonRetryable, err
		return d
	}
	d.topic = resolved.Descriptor.Topic
	d.msg = &gcppubsub.Message{Data: row.Payload, Attributes: attributes(row, resolved)}
	return d
}

// sendAll publishes the resolvable deliveries with bounded concurrency. Send
// errors are stored on each delivery rather than cancelling the group.
func (p *Publisher) sendAll(ctx context.Context, deliveries []*delivery) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for _, d := range deliveries {
		if d.msg == nil {
			continue
		}
		g.Go(func() error {
			sendCtx, cancel := context.WithTimeout(gctx, sendTimeout)
			defer cancel()
			d.err = p.sender.Send(sendCtx, d.topic, d.msg)
			d.result = p.classify(d)
			return nil
		})
	}
	_ = g.Wait()
}

func (p *Publisher) classify(d *delivery) result {
	switch {
	case d.err == nil:
		return resultPublished
	case isPermanent(d.err) || isNonRetryable(d.err):
		d.reason = enums.OutboxDLQReasonNonRetryable
		return resultDeadLetter
	case d.event.AttemptCount+1 >= p.maxAttempts:
		d.reason = enums.OutboxDLQReasonMaxAttempts
		d.err = fmt.Errorf("gave up after %d attempts: %w", d.event.AttemptCount+1, d.err)
		return resultDeadLetter
	}
	return resultRetry
}

func isNonRetryable(err error) bool {
	var nr registry.NonRetryableError
	return errors.As(err, &nr)
}

func (p *Publisher) record(ctx context.Context, tx *gorm.DB, d *delivery) error {
	eventType := string(d.event.EventType)
	logCtx := p.logg.WithFields(ctx, map[string]any{
		"outbox_id":      d.event.ID.String(),
		"event_type":     eventType,
		"aggregate_type": d.event.AggregateType,
		"aggregate_id":   d.event.AggregateID,
		"topic":          d.topic,
		"attempt_count":  d.event.AttemptCount + 1,
	})

	switch d.result {
	case resultPublished:
		if err := p.events.MarkPublishedTx(tx, d.event.ID); err != nil {
			return fmt.Errorf("mark published %s: %w", d.event.ID, err)
		}
		p.metrics.IncPublished(eventType)
		p.logg.Debug(logCtx, "outbox event published")
	case resultRetry:
		if err := p.events.MarkFailedTx(tx, d.event.ID, d.err); err != nil {
			return fmt.Errorf("mark failed %s: %w", d.event.ID, err)
		}
		p.metrics.IncFailed(eventType)
		p.logg.Warn(p.logg.WithField(logCtx, "error", d.err.Error()), "outbox publish failed, will retry")
	case resultDeadLetter:
		message := d.err.Error()
		entry := models.OutboxDLQ{
			EventID:       d.event.ID,
			EventType:     d.event.EventType,
			AggregateType: d.event.AggregateType,
			AggregateID:   d.event.AggregateID,
			Payload:       d.event.Payload,
			ErrorReason:   d.reason,
			ErrorMessage:  &message,
			AttemptCount:  d.event.AttemptCount + 1,
			FailedAt:      p.now().UTC(),
		}
		if err := p.deadLetters.InsertTx(tx, entry); err != nil {
			return fmt.Errorf("insert dlq %s: %w", d.event.ID, err)
		}
		if err := p.events.MarkTerminalTx(tx, d.event.ID, d.err, p.maxAttempts); err != nil {
			return fmt.Errorf("mark terminal %s: %w", d.event.ID, err)
		}
		p.metrics.IncDeadLettered(eventType, string(d.reason))
		p.logg.Error(p.logg.WithField(logCtx, "error_reason", d.reason), "outbox event dead-lettered", d.err)
	}
	return nil
}

// attributes let subscribers filter and route without decoding the payload.
// Installment aggregate ids are "{contractId}_{n}", so contract_id is derived.
func attributes(row models.OutboxEvent, resolved *registry.ResolvedEvent) map[string]string {
	attrs := map[string]string{
		"event_id":       resolved.Envelope.EventID,
		"event_type":     string(row.EventType),
		"aggregate_type": string(row.AggregateType),
		"aggregate_id":   row.AggregateID,
		"created_at":     row.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if contractID := contractIDOf(row); contractID != "" {
		attrs["contract_id"] = contractID
	}
	if actor := resolved.Envelope.Actor; actor != nil && actor.UserID != uuid.Nil {
		attrs["actor_id"] = actor.UserID.String()
	}
	return attrs
}

func contractIDOf(row models.OutboxEvent) string {
	switch row.AggregateType {
	case enums.AggregateContract:
		return row.AggregateID
	case enums.AggregateInstallment:
		if idx := strings.LastIndex(row.AggregateID, "_"); idx > 0 {
			return row.AggregateID[:idx]
		}
	}
	return ""
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// jitter spreads several publisher replicas by up to a quarter of d.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(d/4+1)
}
