package inventory

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
	"github.com/angelmondragon/dealerdesk-backend/pkg/enums"
)

// Repository persists dealership-owned vehicles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.InventoryItem, error)
	FindByID(ctx context.Context, id string, forUpdate bool) (*models.InventoryItem, error)
	Create(ctx context.Context, item *models.InventoryItem) error
	UpdateStatus(ctx context.Context, id string, status enums.InventoryStatus) (int64, error)
	CountByStatus(ctx context.Context, status enums.InventoryStatus) (int64, error)
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

// List returns newest first. A missing table yields an empty list.
func (r *repository) List(ctx context.Context) ([]models.InventoryItem, error) {
	items := []models.InventoryItem{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		if db.IsUndefinedTable(err) {
			return []models.InventoryItem{}, nil
		}
		return nil, err
	}
	return items, nil
}

func (r *repository) FindByID(ctx context.Context, id string, forUpdate bool) (*models.InventoryItem, error) {
	query := r.db.WithContext(ctx)
	if forUpdate {
		query = db.ForUpdate(query)
	}
	var item models.InventoryItem
	if err := query.Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status enums.InventoryStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", id).
		Update("status", status)
	return res.RowsAffected, res.Error
}

func (r *repository) CountByStatus(ctx context.Context, status enums.InventoryStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InventoryItem{}).Where("status = ?", status).Count(&count).Error
	if err != nil && db.IsUndefinedTable(err) {
		return 0, nil
	}
	return count, err
}
