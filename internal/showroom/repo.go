package showroom

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
	"github.com/angelmondragon/dealerdesk-backend/pkg/enums"
)

// Repository persists consigned vehicles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.ShowroomItem, error)
	FindByID(ctx context.Context, id string, forUpdate bool) (*models.ShowroomItem, error)
	Create(ctx context.Context, item *models.ShowroomItem) error
	UpdateStatus(ctx context.Context, id string, status enums.ShowroomStatus) (int64, error)
	Count(ctx context.Context) (int64, error)
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

func (r *repository) List(ctx context.Context) ([]models.ShowroomItem, error) {
	items := []models.ShowroomItem{}
	if err := r.db.WithContext(ctx).Order("entry_date DESC").Find(&items).Error; err != nil {
		if db.IsUndefinedTable(err) {
			return []models.ShowroomItem{}, nil
		}
		return nil, err
	}
	return items, nil
}

func (r *repository) FindByID(ctx context.Context, id string, forUpdate bool) (*models.ShowroomItem, error) {
	query := r.db.WithContext(ctx)
	if forUpdate {
		query = db.ForUpdate(query)
	}
	var item models.ShowroomItem
	if err := query.Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) Create(ctx context.Context, item *models.ShowroomItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status enums.ShowroomStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ShowroomItem{}).
		Where("id = ?", id).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// Count includes sold and returned cars; the dashboard reports every
// consignment the showroom has taken in.
func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ShowroomItem{}).Count(&count).Error
	if err != nil && db.IsUndefinedTable(err) {
		return 0, nil
	}
	return count, err
}
