package buyers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dealerdesk-backend/pkg/errors"
	"github.com/angelmondragon/dealerdesk-backend/pkg/ids"
)

type Service interface {
	List(ctx context.Context) ([]models.Buyer, error)
	Get(ctx context.Context, id string) (*models.Buyer, error)
	Create(ctx context.Context, input CreateInput) (*models.Buyer, error)
}

type CreateInput struct {
	Name     string     `json:"name" validate:"required"`
	IDNumber string     `json:"idNumber"`
	IDExpiry *time.Time `json:"idExpiry"`
	Phone    string     `json:"phone" validate:"required"`
	Job      string     `json:"job"`
	Address  string     `json:"address"`
	Email    *string    `json:"email" validate:"omitempty,email"`
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("buyer repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) List(ctx context.Context) ([]models.Buyer, error) {
	buyers, err := s.repo.List(ctx)
	if err != nil {
		return nil, db.Classify(err, "list buyers")
	}
	return buyers, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Buyer, error) {
	buyer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
		}
		return nil, db.Classify(err, "load buyer")
	}
	return buyer, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Buyer, error) {
	fields := map[string]string{}
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = "is required"
	}
	if strings.TrimSpace(input.Phone) == "" {
		fields["phone"] = "is required"
	}
	if len(fields) > 0 {
		return nil, pkgerrors.FieldErrors("invalid buyer", fields)
	}

	var email *string
	if input.Email != nil && strings.TrimSpace(*input.Email) != "" {
		trimmed := strings.TrimSpace(*input.Email)
		email = &trimmed
	}

	buyer := &models.Buyer{
		ID:        ids.New(),
		Name:      strings.TrimSpace(input.Name),
		IDNumber:  strings.TrimSpace(input.IDNumber),
		IDExpiry:  input.IDExpiry,
		Phone:     strings.TrimSpace(input.Phone),
		Job:       strings.TrimSpace(input.Job),
		Address:   strings.TrimSpace(input.Address),
		Email:     email,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, buyer); err != nil {
		return nil, db.Classify(err, "create buyer")
	}
	return buyer, nil
}
