package showroom

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
	"github.com/angelmondragon/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealerdesk-backend/pkg/errors"
	"github.com/angelmondragon/dealerdesk-backend/pkg/ids"
)

const placeholder = "-"

type Service interface {
	List(ctx context.Context) ([]models.ShowroomItem, error)
	Create(ctx context.Context, input CreateInput) (*models.ShowroomItem, error)
	UpdateStatus(ctx context.Context, id string, status enums.ShowroomStatus) error
}

// CreateInput registers a car left with the dealership by its owner.
// PreviousPrice is what the owner is paid out on sale.
type CreateInput struct {
	OwnerName     string          `json:"ownerName" validate:"required"`
	OwnerPhone    string          `json:"ownerPhone"`
	Type          string          `json:"type" validate:"required"`
	PlateNumber   string          `json:"plateNumber" validate:"required"`
	PreviousPrice decimal.Decimal `json:"previousPrice"`
	SellingPrice  decimal.Decimal `json:"sellingPrice"`
	Condition     string          `json:"condition"`
	EntryDate     *time.Time      `json:"entryDate"`
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("showroom repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) List(ctx context.Context) ([]models.ShowroomItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, db.Classify(err, "list showroom")
	}
	return items, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.ShowroomItem, error) {
	fields := map[string]string{}
	if strings.TrimSpace(input.OwnerName) == "" {
		fields["ownerName"] = "is required"
	}
	if strings.TrimSpace(input.Type) == "" {
		fields["type"] = "is required"
	}
	if strings.TrimSpace(input.PlateNumber) == "" {
		fields["plateNumber"] = "is required"
	}
	if !input.SellingPrice.IsPositive() {
		fields["sellingPrice"] = "must be greater than zero"
	}
	if input.PreviousPrice.IsNegative() {
		fields["previousPrice"] = "must not be negative"
	}
	if len(fields) > 0 {
		return nil, pkgerrors.FieldErrors("invalid showroom item", fields)
	}

	entry := s.now().UTC()
	if input.EntryDate != nil && !input.EntryDate.IsZero() {
		entry = input.EntryDate.UTC()
	}

	item := &models.ShowroomItem{
		ID:            ids.New(),
		OwnerName:     strings.TrimSpace(input.OwnerName),
		OwnerPhone:    orPlaceholder(input.OwnerPhone),
		Type:          strings.TrimSpace(input.Type),
		PlateNumber:   strings.TrimSpace(input.PlateNumber),
		PreviousPrice: input.PreviousPrice,
		SellingPrice:  input.SellingPrice,
		Condition:     orPlaceholder(input.Condition),
		Status:        enums.ShowroomStatusReceived,
		EntryDate:     entry,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, db.Classify(err, "create showroom item")
	}
	return item, nil
}

// UpdateStatus is also how a consigned car is handed back (returned).
func (s *service) UpdateStatus(ctx context.Context, id string, status enums.ShowroomStatus) error {
	if !status.IsValid() {
		return pkgerrors.FieldErrors("invalid status", map[string]string{"status": "must be received, sold or returned"})
	}
	affected, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return db.Classify(err, "update showroom status")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "showroom item not found")
	}
	return nil
}

func orPlaceholder(value string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return placeholder
}
