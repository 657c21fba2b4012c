package installments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
	"github.com/angelmondragon/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealerdesk-backend/pkg/errors"
	"github.com/angelmondragon/dealerdesk-backend/pkg/logger"
	"github.com/angelmondragon/dealerdesk-backend/pkg/metrics"
	"github.com/angelmondragon/dealerdesk-backend/pkg/outbox"
	"github.com/angelmondragon/dealerdesk-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records collections against the schedule.
//
// Paying an installment does not credit the funding investor; investors are
// settled outside this system.
type Service interface {
	ListByContract(ctx context.Context, contractID string) ([]models.Installment, error)
	ListAll(ctx context.Context, status string) ([]models.Installment, error)
	Pay(ctx context.Context, id string, actor *outbox.ActorRef) (*models.Installment, error)
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

type ServiceParams struct {
	DB      txRunner
	Repo    Repository
	Outbox  outbox.Emitter
	Metrics *metrics.ContractMetrics
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	db      txRunner
	repo    Repository
	outbox  outbox.Emitter
	metrics *metrics.ContractMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("installment repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		db:      params.DB,
		repo:    params.Repo,
		outbox:  params.Outbox,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     now,
	}, nil
}

func (s *service) ListByContract(ctx context.Context, contractID string) ([]models.Installment, error) {
	if strings.TrimSpace(contractID) == "" {
		return nil, pkgerrors.FieldErrors("invalid request", map[string]string{"contractId": "is required"})
	}
	items, err := s.repo.ListByContract(ctx, contractID)
	if err != nil {
		return nil, db.Classify(err, "list installments")
	}
	return items, nil
}

// ListAll returns every installment, optionally narrowed to one status.
func (s *service) ListAll(ctx context.Context, status string) ([]models.Installment, error) {
	var filter *enums.InstallmentStatus
	if strings.TrimSpace(status) != "" {
		parsed, err := enums.ParseInstallmentStatus(strings.TrimSpace(status))
		if err != nil {
			return nil, pkgerrors.FieldErrors("invalid filter", map[string]string{"status": "must be Pending, Paid or Overdue"})
		}
		filter = &parsed
	}
	items, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, db.Classify(err, "list installments")
	}
	return items, nil
}

// Pay marks the installment Paid at the current time. Paying twice keeps it
// Paid and moves the paid date to the latest call.
func (s *service) Pay(ctx context.Context, id string, actor *outbox.ActorRef) (*models.Installment, error) {
	paidAt := s.now().UTC()
	var paid *models.Installment

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		affected, err := repo.MarkPaid(ctx, id, paidAt)
		if err != nil {
			return db.Classify(err, "mark installment paid")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "installment not found")
		}

		paid, err = repo.FindByID(ctx, id)
		if err != nil {
			return db.Classify(err, "reload installment")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInstallmentPaid,
			AggregateType: enums.AggregateInstallment,
			AggregateID:   paid.ID,
			Actor:         actor,
			OccurredAt:    paidAt,
			Data: payloads.InstallmentPaidEvent{
				InstallmentID: paid.ID,
				ContractID:    paid.ContractID,
				Amount:        paid.Amount,
				PaidAt:        paidAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncInstallmentPaid()
	if s.logg != nil {
		logCtx := s.logg.WithContractID(ctx, paid.ContractID)
		s.logg.Info(s.logg.WithField(logCtx, "installment_id", paid.ID), "installment paid")
	}
	return paid, nil
}

// MarkOverdue flips every Pending installment due before asOf to Overdue.
func (s *service) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	asOf = asOf.UTC()
	var marked int64

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		marked, err = s.repo.WithTx(tx).MarkOverdue(ctx, asOf)
		if err != nil {
			return db.Classify(err, "mark installments overdue")
		}
		if marked == 0 {
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInstallmentsOverdue,
			AggregateType: enums.AggregateInstallment,
			AggregateID:   "overdue-sweep:" + asOf.Format("2006-01-02"),
			Data: payloads.InstallmentsOverdueEvent{
				AsOf:          asOf,
				MarkedOverdue: marked,
			},
		})
	})
	if err != nil {
		return 0, err
	}

	s.metrics.AddOverdue(marked)
	return marked, nil
}
