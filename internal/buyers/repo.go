package buyers

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
)

// Repository persists buyers. There is no update path.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.Buyer, error)
	FindByID(ctx context.Context, id string) (*models.Buyer, error)
	Create(ctx context.Context, buyer *models.Buyer) error
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

func (r *repository) List(ctx context.Context) ([]models.Buyer, error) {
	buyers := []models.Buyer{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&buyers).Error; err != nil {
		if db.IsUndefinedTable(err) {
			return []models.Buyer{}, nil
		}
		return nil, err
	}
	return buyers, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.Buyer, error) {
	var buyer models.Buyer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&buyer).Error; err != nil {
		return nil, err
	}
	return &buyer, nil
}

func (r *repository) Create(ctx context.Context, buyer *models.Buyer) error {
	return r.db.WithContext(ctx).Create(buyer).Error
}
