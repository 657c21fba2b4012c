package investors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dealerdesk-backend/pkg/errors"
	"github.com/angelmondragon/dealerdesk-backend/pkg/ids"
	"github.com/angelmondragon/dealerdesk-backend/pkg/logger"
)

const placeholder = "-"

// Service is the investor directory plus the balance ledger.
//
// Balances only ever move down through AdjustBalance when a contract is
// funded. Installment payments do not credit anything back.
type Service interface {
	List(ctx context.Context) ([]models.Investor, error)
	Get(ctx context.Context, id string) (*models.Investor, error)
	Create(ctx context.Context, input CreateInput) (*models.Investor, error)
	GetBalance(ctx context.Context, id string) (decimal.Decimal, error)
	SetBalance(ctx context.Context, id string, balance decimal.Decimal) error
	AdjustBalance(ctx context.Context, tx *gorm.DB, id string, delta decimal.Decimal) error
}

type CreateInput struct {
	Name     string          `json:"name" validate:"required"`
	IDNumber string          `json:"idNumber"`
	IDExpiry *time.Time      `json:"idExpiry"`
	Phone    string          `json:"phone"`
	Email    *string         `json:"email" validate:"omitempty,email"`
	Balance  decimal.Decimal `json:"balance"`
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("investor repository required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

func (s *service) List(ctx context.Context) ([]models.Investor, error) {
	investors, err := s.repo.List(ctx)
	if err != nil {
		return nil, db.Classify(err, "list investors")
	}
	return investors, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Investor, error) {
	investor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "load investor")
	}
	return investor, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Investor, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.FieldErrors("invalid investor", map[string]string{"name": "is required"})
	}

	investor := &models.Investor{
		ID:        ids.New(),
		Name:      strings.TrimSpace(input.Name),
		IDNumber:  orPlaceholder(input.IDNumber),
		IDExpiry:  input.IDExpiry,
		Phone:     orPlaceholder(input.Phone),
		Email:     trimmedOrNil(input.Email),
		Balance:   input.Balance,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, investor); err != nil {
		return nil, db.Classify(err, "create investor")
	}
	return investor, nil
}

func (s *service) GetBalance(ctx context.Context, id string) (decimal.Decimal, error) {
	balance, err := s.repo.GetBalance(ctx, id)
	if err != nil {
		return decimal.Zero, notFoundOr(err, "load investor balance")
	}
	return balance, nil
}

// SetBalance overwrites the balance. It exists for manual corrections only.
func (s *service) SetBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	affected, err := s.repo.SetBalance(ctx, id, balance)
	if err != nil {
		return db.Classify(err, "set investor balance")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "investor not found")
	}
	if s.logg != nil {
		logCtx := s.logg.WithInvestorID(ctx, id)
		s.logg.Info(s.logg.WithField(logCtx, "balance", balance.String()), "investor balance overwritten")
	}
	return nil
}

// AdjustBalance debits delta from the investor. A nil tx runs outside any
// transaction.
func (s *service) AdjustBalance(ctx context.Context, tx *gorm.DB, id string, delta decimal.Decimal) error {
	affected, err := s.repo.WithTx(tx).DecrementBalance(ctx, id, delta)
	if err != nil {
		return db.Classify(err, "debit investor balance")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "investor not found")
	}
	return nil
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "investor not found")
	}
	return db.Classify(err, message)
}

func orPlaceholder(value string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return placeholder
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
