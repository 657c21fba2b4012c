// Package contracts issues installment and credit contracts. Issuing a
// contract sells its assets and debits the funding investor in the same
// transaction that writes the schedule.
package contracts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/internal/assets"
	"github.com/angelmondragon/dealerdesk-backend/internal/buyers"
	"github.com/angelmondragon/dealerdesk-backend/internal/installments"
	"github.com/angelmondragon/dealerdesk-backend/internal/investors"
	"github.com/angelmondragon/dealerdesk-backend/internal/schedule"
	"github.com/angelmondragon/dealerdesk-backend/internal/settings"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/dealerdesk-backend/pkg/db/types"
	"github.com/angelmondragon/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealerdesk-backend/pkg/errors"
	"github.com/angelmondragon/dealerdesk-backend/pkg/ids"
	"github.com/angelmondragon/dealerdesk-backend/pkg/logger"
	"github.com/angelmondragon/dealerdesk-backend/pkg/metrics"
	"github.com/angelmondragon/dealerdesk-backend/pkg/outbox"
	"github.com/angelmondragon/dealerdesk-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ledger debits investors. investors.Service satisfies it.
type ledger interface {
	AdjustBalance(ctx context.Context, tx *gorm.DB, id string, delta decimal.Decimal) error
}

// Draft is a contract as submitted by the sales desk.
type Draft struct {
	ManualID      string
	Type          string
	BuyerID       string
	GuarantorID   string
	InvestorID    string
	AssetIDs      []string
	ServiceFee    decimal.Decimal
	PaymentMode   string
	Months        int
	CreditDueDate string
	Notes         string
	Actor         *outbox.ActorRef
}

type ContractWithInstallments struct {
	Contract     models.Contract      `json:"contract"`
	Installments []models.Installment `json:"installments"`
}

type ContractWithDetails struct {
	Contract     models.Contract      `json:"contract"`
	Installments []models.Installment `json:"installments"`
	Buyer        *models.Buyer        `json:"buyer,omitempty"`
	Guarantor    *models.Buyer        `json:"guarantor,omitempty"`
	Investor     *models.Investor     `json:"investor,omitempty"`
}

type Service interface {
	Create(ctx context.Context, draft Draft) (*ContractWithInstallments, error)
	List(ctx context.Context) ([]models.Contract, error)
	Get(ctx context.Context, id string) (*ContractWithDetails, error)
	Document(ctx context.Context, id string, letterhead settings.Letterhead) (*Document, error)
}

type ServiceParams struct {
	DB           txRunner
	Contracts    Repository
	Installments installments.Repository
	Assets       assets.Registry
	Buyers       buyers.Repository
	Investors    investors.Repository
	Ledger       ledger
	Outbox       outbox.Emitter
	Metrics      *metrics.ContractMetrics
	Logger       *logger.Logger
	Now          func() time.Time
}

type service struct {
	db           txRunner
	contracts    Repository
	installments installments.Repository
	assets       assets.Registry
	buyers       buyers.Repository
	investors    investors.Repository
	ledger       ledger
	outbox       outbox.Emitter
	metrics      *metrics.ContractMetrics
	logg         *logger.Logger
	now          func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.DB == nil:
		return nil, fmt.Errorf("db client required")
	case params.Contracts == nil:
		return nil, fmt.Errorf("contract repository required")
	case params.Installments == nil:
		return nil, fmt.Errorf("installment repository required")
	case params.Assets == nil:
		return nil, fmt.Errorf("asset registry required")
	case params.Buyers == nil:
		return nil, fmt.Errorf("buyer repository required")
	case params.Investors == nil:
		return nil, fmt.Errorf("investor repository required")
	case params.Ledger == nil:
		return nil, fmt.Errorf("investor ledger required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox emitter required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		db:           params.DB,
		contracts:    params.Contracts,
		installments: params.Installments,
		assets:       params.Assets,
		buyers:       params.Buyers,
		investors:    params.Investors,
		ledger:       params.Ledger,
		outbox:       params.Outbox,
		metrics:      params.Metrics,
		logg:         params.Logger,
		now:          now,
	}, nil
}

type validDraft struct {
	Draft
	contractType enums.ContractType
	mode         enums.PaymentMode
	assetIDs     []string
}

func validate(draft Draft) (validDraft, error) {
	fields := map[string]string{}
	out := validDraft{Draft: draft}

	out.BuyerID = strings.TrimSpace(draft.BuyerID)
	if out.BuyerID == "" {
		fields["buyerId"] = "is required"
	}
	out.InvestorID = strings.TrimSpace(draft.InvestorID)
	if out.InvestorID == "" {
		fields["investorId"] = "is required"
	}
	out.GuarantorID = strings.TrimSpace(draft.GuarantorID)

	seen := make(map[string]struct{}, len(draft.AssetIDs))
	for _, raw := range draft.AssetIDs {
		id := strings.TrimSpace(raw)
		if id == "" {
			fields["assetIds"] = "must not contain blank ids"
			continue
		}
		if _, dup := seen[id]; dup {
			fields["assetIds"] = "must not contain duplicates"
			continue
		}
		seen[id] = struct{}{}
		out.assetIDs = append(out.assetIDs, id)
	}
	if len(draft.AssetIDs) == 0 {
		fields["assetIds"] = "at least one asset is required"
	}

	if draft.ServiceFee.IsNegative() {
		fields["serviceFee"] = "must be zero or greater"
	}

	if strings.TrimSpace(draft.Type) == "" {
		out.contractType = enums.ContractTypeDirectInstallment
	} else if parsed, err := enums.ParseContractType(strings.TrimSpace(draft.Type)); err == nil {
		out.contractType = parsed
	} else {
		fields["type"] = "must be trust_receipt, direct_installment or bank_cheques"
	}

	mode, err := enums.ParsePaymentMode(strings.TrimSpace(draft.PaymentMode))
	if err != nil {
		fields["paymentMode"] = "must be installment or credit"
	} else {
		out.mode = mode
		switch mode {
		case enums.PaymentModeInstallment:
			if draft.Months <= 0 || draft.Months > schedule.MaxMonths {
				fields["months"] = fmt.Sprintf("must be between 1 and %d", schedule.MaxMonths)
			}
		case enums.PaymentModeCredit:
			if _, err := schedule.ParseDueDate(draft.CreditDueDate); err != nil {
				fields["creditDueDate"] = "must be a date (YYYY-MM-DD)"
			}
		}
	}

	if len(fields) > 0 {
		return validDraft{}, pkgerrors.FieldErrors("invalid contract", fields)
	}
	return out, nil
}

// Create validates the draft and then, in one transaction, writes the
// contract and its schedule, marks every asset sold, debits the investor by
// the item value and records a contract_created event. Any failure leaves
// nothing behind.
func (s *service) Create(ctx context.Context, draft Draft) (*ContractWithInstallments, error) {
	valid, err := validate(draft)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	contractID := ids.New()
	var result ContractWithInstallments

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		buyerRepo := s.buyers.WithTx(tx)
		if _, err := buyerRepo.FindByID(ctx, valid.BuyerID); err != nil {
			return notFoundOr(err, "buyer not found", "load buyer")
		}
		if valid.GuarantorID != "" {
			if _, err := buyerRepo.FindByID(ctx, valid.GuarantorID); err != nil {
				return notFoundOr(err, "guarantor not found", "load guarantor")
			}
		}
		if _, err := s.investors.WithTx(tx).FindByID(ctx, valid.InvestorID); err != nil {
			return notFoundOr(err, "investor not found", "load investor")
		}

		registry := s.assets.WithTx(tx)
		itemValue := decimal.Zero
		for _, id := range valid.assetIDs {
			asset, err := registry.Lookup(ctx, id, true)
			if err != nil {
				if errors.Is(err, assets.ErrAssetNotFound) {
					return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "asset not found").
						WithDetails(map[string]any{"assetId": id})
				}
				return err
			}
			if !asset.Available() {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "asset is no longer available").
					WithDetails(map[string]any{"assetId": id, "kind": asset.Kind})
			}
			itemValue = itemValue.Add(asset.Price())
		}
		totalAmount := itemValue.Add(valid.ServiceFee)

		items, err := schedule.Generate(schedule.Input{
			Principal:     itemValue,
			Fee:           valid.ServiceFee,
			Mode:          valid.mode,
			Months:        valid.Months,
			CreditDueDate: valid.CreditDueDate,
		}, now)
		if err != nil {
			return err
		}

		contract := models.Contract{
			ID:             contractID,
			ManualID:       strings.TrimSpace(valid.ManualID),
			Type:           valid.contractType,
			PaymentMode:    valid.mode,
			CreatedAt:      now,
			BuyerID:        valid.BuyerID,
			GuarantorID:    optional(valid.GuarantorID),
			InvestorID:     valid.InvestorID,
			AssetIDs:       dbtypes.StringArray(valid.assetIDs),
			TotalItemValue: itemValue,
			ServiceFee:     valid.ServiceFee,
			TotalAmount:    totalAmount,
			Status:         enums.ContractStatusActive,
			Notes:          optional(valid.Notes),
		}
		if err := s.contracts.WithTx(tx).Create(ctx, &contract); err != nil {
			return db.Classify(err, "insert contract")
		}

		rows := make([]models.Installment, 0, len(items))
		for _, item := range items {
			rows = append(rows, models.Installment{
				ID:         schedule.InstallmentID(contractID, item.Sequence),
				ContractID: contractID,
				DueDate:    item.DueDate,
				Amount:     item.Amount,
				Status:     item.Status,
			})
		}
		if err := s.installments.WithTx(tx).CreateBatch(ctx, rows); err != nil {
			return db.Classify(err, "insert installments")
		}

		for _, id := range valid.assetIDs {
			if err := registry.SetStatus(ctx, id, enums.AssetStatusSold); err != nil {
				return err
			}
		}

		if err := s.ledger.AdjustBalance(ctx, tx, valid.InvestorID, itemValue); err != nil {
			return err
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventContractCreated,
			AggregateType: enums.AggregateContract,
			AggregateID:   contractID,
			Actor:         valid.Actor,
			OccurredAt:    now,
			Data: payloads.ContractCreatedEvent{
				ContractID:       contractID,
				ManualID:         contract.ManualID,
				BuyerID:          contract.BuyerID,
				InvestorID:       contract.InvestorID,
				AssetIDs:         valid.assetIDs,
				PaymentMode:      string(valid.mode),
				TotalItemValue:   itemValue,
				ServiceFee:       valid.ServiceFee,
				TotalAmount:      totalAmount,
				InstallmentCount: len(rows),
				InvestorDebit:    itemValue,
			},
		}); err != nil {
			return err
		}

		result = ContractWithInstallments{Contract: contract, Installments: rows}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveContract(string(valid.mode), result.Contract.TotalItemValue)
	if s.logg != nil {
		logCtx := s.logg.WithContractID(ctx, contractID)
		logCtx = s.logg.WithFields(logCtx, map[string]any{
			"investor_id":  valid.InvestorID,
			"assets":       len(valid.assetIDs),
			"total_amount": result.Contract.TotalAmount.String(),
		})
		s.logg.Info(logCtx, "contract created")
	}
	return &result, nil
}

func (s *service) List(ctx context.Context) ([]models.Contract, error) {
	contracts, err := s.contracts.List(ctx)
	if err != nil {
		return nil, db.Classify(err, "list contracts")
	}
	return contracts, nil
}

// Get loads the contract with its schedule and parties. Parties that can no
// longer be found are left nil.
func (s *service) Get(ctx context.Context, id string) (*ContractWithDetails, error) {
	contract, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "contract not found", "load contract")
	}
	rows, err := s.installments.ListByContract(ctx, contract.ID)
	if err != nil {
		return nil, db.Classify(err, "list installments")
	}

	out := &ContractWithDetails{Contract: *contract, Installments: rows}
	if out.Buyer, err = optionalFind(ctx, s.buyers.FindByID, contract.BuyerID); err != nil {
		return nil, db.Classify(err, "load buyer")
	}
	if contract.GuarantorID != nil {
		if out.Guarantor, err = optionalFind(ctx, s.buyers.FindByID, *contract.GuarantorID); err != nil {
			return nil, db.Classify(err, "load guarantor")
		}
	}
	if out.Investor, err = optionalFind(ctx, s.investors.FindByID, contract.InvestorID); err != nil {
		return nil, db.Classify(err, "load investor")
	}
	return out, nil
}

func optionalFind[T any](ctx context.Context, find func(context.Context, string) (*T, error), id string) (*T, error) {
	found, err := find(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return found, err
}

func notFoundOr(err error, notFound, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return db.Classify(err, message)
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
