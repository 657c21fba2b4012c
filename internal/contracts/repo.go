package contracts

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
	"github.com/angelmondragon/dealerdesk-backend/pkg/enums"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.Contract, error)
	FindByID(ctx context.Context, id string) (*models.Contract, error)
	Create(ctx context.Context, contract *models.Contract) error
	CountByStatus(ctx context.Context, status enums.ContractStatus) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// List returns contracts newest first.
func (r *repository) List(ctx context.Context) ([]models.Contract, error) {
	contracts := []models.Contract{}
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&contracts).Error
	if err != nil {
		if db.IsUndefinedTable(err) {
			return []models.Contract{}, nil
		}
		return nil, err
	}
	return contracts, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.Contract, error) {
	var contract models.Contract
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&contract).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *repository) Create(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *repository) CountByStatus(ctx context.Context, status enums.ContractStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		if db.IsUndefinedTable(err) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}
