package inventory

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

// Placeholders stored when optional identity fields are left blank.
const (
	defaultModel = "-"
	defaultPlate = "new"
	defaultVIN   = "-"
)

type Service interface {
	List(ctx context.Context) ([]models.InventoryItem, error)
	Create(ctx context.Context, input CreateInput) (*models.InventoryItem, error)
	UpdateStatus(ctx context.Context, id string, status enums.InventoryStatus) error
}

// CreateInput is a manual lot entry.
type CreateInput struct {
	Type        string          `json:"type" validate:"required"`
	Model       string          `json:"model"`
	PlateNumber string          `json:"plateNumber"`
	VIN         string          `json:"vin"`
	Price       decimal.Decimal `json:"price"`
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) List(ctx context.Context) ([]models.InventoryItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, db.Classify(err, "list inventory")
	}
	return items, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.InventoryItem, error) {
	fields := map[string]string{}
	if strings.TrimSpace(input.Type) == "" {
		fields["type"] = "is required"
	}
	if input.Price.IsNegative() {
		fields["price"] = "must not be negative"
	}
	if len(fields) > 0 {
		return nil, pkgerrors.FieldErrors("invalid inventory item", fields)
	}

	item := &models.InventoryItem{
		ID:          ids.New(),
		Type:        strings.TrimSpace(input.Type),
		Model:       orDefault(input.Model, defaultModel),
		PlateNumber: orDefault(input.PlateNumber, defaultPlate),
		VIN:         orDefault(input.VIN, defaultVIN),
		Price:       input.Price,
		Status:      enums.InventoryStatusAvailable,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, db.Classify(err, "create inventory item")
	}
	return item, nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, status enums.InventoryStatus) error {
	if !status.IsValid() {
		return pkgerrors.FieldErrors("invalid status", map[string]string{"status": "must be available or sold"})
	}
	affected, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return db.Classify(err, "update inventory status")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
	}
	return nil
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
