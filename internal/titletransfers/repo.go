package titletransfers

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.TitleTransfer, error)
	Create(ctx context.Context, transfer *models.TitleTransfer) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) List(ctx context.Context) ([]models.TitleTransfer, error) {
	transfers := []models.TitleTransfer{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&transfers).Error; err != nil {
		if db.IsUndefinedTable(err) {
			return []models.TitleTransfer{}, nil
		}
		return nil, err
	}
	return transfers, nil
}

func (r *repository) Create(ctx context.Context, transfer *models.TitleTransfer) error {
	return r.db.WithContext(ctx).Create(transfer).Error
}
