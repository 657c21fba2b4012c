// Package titletransfers records one-shot ownership transfer contracts. They
// never touch inventory, showroom or investor balances.
package titletransfers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dealerdesk-backend/pkg/errors"
	"github.com/angelmondragon/dealerdesk-backend/pkg/ids"
)

type Service interface {
	List(ctx context.Context) ([]models.TitleTransfer, error)
	Create(ctx context.Context, input CreateInput) (*models.TitleTransfer, error)
}

type CreateInput struct {
	ManualID       string          `json:"manualId"`
	SellerName     string          `json:"sellerName" validate:"required"`
	SellerIDNumber string          `json:"sellerIdNumber"`
	BuyerName      string          `json:"buyerName" validate:"required"`
	BuyerIDNumber  string          `json:"buyerIdNumber"`
	VehicleType    string          `json:"vehicleType" validate:"required"`
	VehicleModel   string          `json:"vehicleModel"`
	PlateNumber    string          `json:"plateNumber"`
	VIN            string          `json:"vin"`
	Price          decimal.Decimal `json:"price"`
	ServiceFees    decimal.Decimal `json:"serviceFees"`
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("title transfer repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) List(ctx context.Context) ([]models.TitleTransfer, error) {
	transfers, err := s.repo.List(ctx)
	if err != nil {
		return nil, db.Classify(err, "list title transfers")
	}
	return transfers, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.TitleTransfer, error) {
	fields := map[string]string{}
	required := map[string]string{
		"sellerName":  input.SellerName,
		"buyerName":   input.BuyerName,
		"vehicleType": input.VehicleType,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			fields[field] = "is required"
		}
	}
	if input.Price.IsNegative() {
		fields["price"] = "must not be negative"
	}
	if input.ServiceFees.IsNegative() {
		fields["serviceFees"] = "must not be negative"
	}
	if len(fields) > 0 {
		return nil, pkgerrors.FieldErrors("invalid title transfer", fields)
	}

	transfer := &models.TitleTransfer{
		ID:             ids.New(),
		ManualID:       strings.TrimSpace(input.ManualID),
		CreatedAt:      s.now().UTC(),
		SellerName:     strings.TrimSpace(input.SellerName),
		SellerIDNumber: strings.TrimSpace(input.SellerIDNumber),
		BuyerName:      strings.TrimSpace(input.BuyerName),
		BuyerIDNumber:  strings.TrimSpace(input.BuyerIDNumber),
		VehicleType:    strings.TrimSpace(input.VehicleType),
		VehicleModel:   strings.TrimSpace(input.VehicleModel),
		PlateNumber:    strings.TrimSpace(input.PlateNumber),
		VIN:            strings.TrimSpace(input.VIN),
		Price:          input.Price,
		ServiceFees:    input.ServiceFees,
	}
	if err := s.repo.Create(ctx, transfer); err != nil {
		return nil, db.Classify(err, "create title transfer")
	}
	return transfer, nil
}
