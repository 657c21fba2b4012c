package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/pkg/config"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
	"github.com/angelmondragon/dealerdesk-backend/pkg/enums"
	"github.com/angelmondragon/dealerdesk-backend/pkg/logger"
	"github.com/angelmondragon/dealerdesk-backend/pkg/outbox"
	"github.com/angelmondragon/dealerdesk-backend/pkg/outbox/registry"
)

type noTxDB struct{}

func (noTxDB) Ping(context.Context) error { return nil }
func (noTxDB) WithTx(_ context.Context, fn func(*gorm.DB) error) error {
	return fn(nil)
}

type memEvents struct {
	rows      []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	terminal  []uuid.UUID
}

func (m *memEvents) FetchUnpublishedForPublish(_ *gorm.DB, limit, _ int) ([]models.OutboxEvent, error) {
	if len(m.rows) > limit {
		return m.rows[:limit], nil
	}
	return m.rows, nil
}

func (m *memEvents) MarkPublishedTx(_ *gorm.DB, id uuid.UUID) error {
	m.published = append(m.published, id)
	return nil
}

func (m *memEvents) MarkFailedTx(_ *gorm.DB, id uuid.UUID, _ error) error {
	m.failed = append(m.failed, id)
	return nil
}

func (m *memEvents) MarkTerminalTx(_ *gorm.DB, id uuid.UUID, _ error, _ int) error {
	m.terminal = append(m.terminal, id)
	return nil
}

type memDLQ struct{ entries []models.OutboxDLQ }

func (m *memDLQ) InsertTx(_ *gorm.DB, entry models.OutboxDLQ) error {
	m.entries = append(m.entries, entry)
	return nil
}

// scriptedSender fails sends whose aggregate_id has a scripted error.
type scriptedSender struct {
	mu       sync.Mutex
	failures map[string]error
	sent     map[string]*gcppubsub.Message
	topics   map[string]string
}

func newScriptedSender(failures map[string]error) *scriptedSender {
	return &scriptedSender{failures: failures, sent: map[string]*gcppubsub.Message{}, topics: map[string]string{}}
}

func (s *scriptedSender) Send(_ context.Context, topic string, msg *gcppubsub.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := msg.Attributes["aggregate_id"]
	if err := s.failures[id]; err != nil {
		return err
	}
	s.sent[id] = msg
	s.topics[id] = topic
	return nil
}

func envelope(t *testing.T, data any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Actor:      &outbox.ActorRef{UserID: uuid.MustParse("7f1c3c5e-2b7a-4d43-9d2a-1c0f5c1b7e11")},
		Data:       raw,
	})
	require.NoError(t, err)
	return payload
}

func contractRow(t *testing.T, contractID string, attempts int) models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventContractCreated,
		AggregateType: enums.AggregateContract,
		AggregateID:   contractID,
		Payload:       envelope(t, map[string]any{"contract_id": contractID, "payment_mode": "installment"}),
		AttemptCount:  attempts,
	}
}

func paidRow(t *testing.T, installmentID string) models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventInstallmentPaid,
		AggregateType: enums.AggregateInstallment,
		AggregateID:   installmentID,
		Payload:       envelope(t, map[string]any{"installment_id": installmentID, "amount": "1000"}),
	}
}

func newTestPublisher(t *testing.T, events *memEvents, dlq *memDLQ, sender Sender) *Publisher {
	t.Helper()
	reg, err := registry.NewEventRegistry(config.PubSubConfig{ContractsTopic: "contracts", PaymentsTopic: "payments"})
	require.NoError(t, err)
	p, err := New(Params{
		Logger:      logger.Nop(),
		DB:          noTxDB{},
		Events:      events,
		DeadLetters: dlq,
		Resolver:    reg,
		Sender:      sender,
		MaxAttempts: 3,
		Concurrency: 2,
	})
	require.NoError(t, err)
	p.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return p
}

func TestDrainRoutesEventsAndSetsAttributes(t *testing.T) {
	events := &memEvents{rows: []models.OutboxEvent{
		contractRow(t, "01JNCONTRACT", 0),
		paidRow(t, "01JNCONTRACT_3"),
	}}
	sender := newScriptedSender(nil)
	p := newTestPublisher(t, events, &memDLQ{}, sender)

	n, err := p.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, events.published, 2)

	assert.Equal(t, "contracts", sender.topics["01JNCONTRACT"])
	assert.Equal(t, "payments", sender.topics["01JNCONTRACT_3"])
	attrs := sender.sent["01JNCONTRACT_3"].Attributes
	assert.Equal(t, "installment_paid", attrs["event_type"])
	assert.Equal(t, "01JNCONTRACT", attrs["contract_id"])
	assert.Equal(t, "7f1c3c5e-2b7a-4d43-9d2a-1c0f5c1b7e11", attrs["actor_id"])
}

func TestDrainRetriesTransientFailureWithoutBlockingOthers(t *testing.T) {
	failing := contractRow(t, "01JNFAIL", 0)
	ok := contractRow(t, "01JNOK", 0)
	events := &memEvents{rows: []models.OutboxEvent{failing, ok}}
	sender := newScriptedSender(map[string]error{"01JNFAIL": errors.New("unavailable")})
	dlq := &memDLQ{}
	p := newTestPublisher(t, events, dlq, sender)

	_, err := p.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{failing.ID}, events.failed)
	assert.Equal(t, []uuid.UUID{ok.ID}, events.published)
	assert.Empty(t, dlq.entries)
}

func TestDrainDeadLettersAfterMaxAttempts(t *testing.T) {
	row := contractRow(t, "01JNTIRED", 2)
	events := &memEvents{rows: []models.OutboxEvent{row}}
	sender := newScriptedSender(map[string]error{"01JNTIRED": errors.New("unavailable")})
	dlq := &memDLQ{}
	p := newTestPublisher(t, events, dlq, sender)

	_, err := p.Drain(context.Background())
	require.NoError(t, err)
	require.Len(t, dlq.entries, 1)
	assert.Equal(t, enums.OutboxDLQReasonMaxAttempts, dlq.entries[0].ErrorReason)
	assert.Equal(t, 3, dlq.entries[0].AttemptCount)
	assert.Equal(t, []uuid.UUID{row.ID}, events.terminal)
	assert.Empty(t, events.failed)
}

func TestDrainDeadLettersUnresolvableRows(t *testing.T) {
	bad := contractRow(t, "01JNBAD", 0)
	bad.AggregateType = enums.AggregateInstallment
	events := &memEvents{rows: []models.OutboxEvent{bad}}
	sender := newScriptedSender(nil)
	dlq := &memDLQ{}
	p := newTestPublisher(t, events, dlq, sender)

	_, err := p.Drain(context.Background())
	require.NoError(t, err)
	require.Len(t, dlq.entries, 1)
	assert.Equal(t, enums.OutboxDLQReasonNonRetryable, dlq.entries[0].ErrorReason)
	assert.Empty(t, sender.sent)
}

func TestDrainDeadLettersPermanentSendErrors(t *testing.T) {
	row := contractRow(t, "01JNNOTOPIC", 0)
	events := &memEvents{rows: []models.OutboxEvent{row}}
	sender := newScriptedSender(map[string]error{"01JNNOTOPIC": permanent(errors.New("no publisher"))})
	dlq := &memDLQ{}
	p := newTestPublisher(t, events, dlq, sender)

	_, err := p.Drain(context.Background())
	require.NoError(t, err)
	require.Len(t, dlq.entries, 1)
	assert.Equal(t, enums.OutboxDLQReasonNonRetryable, dlq.entries[0].ErrorReason)
}

func TestContractIDOf(t *testing.T) {
	cases := []struct {
		row  models.OutboxEvent
		want string
	}{
		{models.OutboxEvent{AggregateType: enums.AggregateContract, AggregateID: "01JN"}, "01JN"},
		{models.OutboxEvent{AggregateType: enums.AggregateInstallment, AggregateID: "01JN_12"}, "01JN"},
		{models.OutboxEvent{AggregateType: enums.AggregateInstallment, AggregateID: "overdue-sweep:2025-03-01"}, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, contractIDOf(tc.row))
	}
}

func TestJitterStaysWithinQuarter(t *testing.T) {
	for range 50 {
		got := jitter(400 * time.Millisecond)
		require.GreaterOrEqual(t, got, 400*time.Millisecond)
		require.LessOrEqual(t, got, 500*time.Millisecond)
	}
	require.Zero(t, jitter(0))
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Params{Logger: logger.Nop()})
	require.Error(t, err)
}
