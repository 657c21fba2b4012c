package installments

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
	"github.com/angelmondragon/dealerdesk-backend/pkg/enums"
)

// StatusTotals aggregates installments sharing one status.
type StatusTotals struct {
	Status enums.InstallmentStatus
	Count  int64
	Total  decimal.Decimal
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByContract(ctx context.Context, contractID string) ([]models.Installment, error)
	ListAll(ctx context.Context, status *enums.InstallmentStatus) ([]models.Installment, error)
	FindByID(ctx context.Context, id string) (*models.Installment, error)
	CreateBatch(ctx context.Context, items []models.Installment) error
	MarkPaid(ctx context.Context, id string, paidAt time.Time) (int64, error)
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
	TotalsByStatus(ctx context.Context) ([]StatusTotals, error)
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

func (r *repository) ListByContract(ctx context.Context, contractID string) ([]models.Installment, error) {
	items := []models.Installment{}
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("due_date ASC").
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		if db.IsUndefinedTable(err) {
			return []models.Installment{}, nil
		}
		return nil, err
	}
	return items, nil
}

func (r *repository) ListAll(ctx context.Context, status *enums.InstallmentStatus) ([]models.Installment, error) {
	query := r.db.WithContext(ctx).Order("due_date ASC").Order("id ASC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	items := []models.Installment{}
	if err := query.Find(&items).Error; err != nil {
		if db.IsUndefinedTable(err) {
			return []models.Installment{}, nil
		}
		return nil, err
	}
	return items, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.Installment, error) {
	var item models.Installment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) CreateBatch(ctx context.Context, items []models.Installment) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(items, 100).Error
}

// MarkPaid overwrites status and paid date whatever the current state is.
func (r *repository) MarkPaid(ctx context.Context, id string, paidAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Installment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":    enums.InstallmentStatusPaid,
			"paid_date": paidAt,
		})
	return res.RowsAffected, res.Error
}

// MarkOverdue flips Pending rows due before asOf. Paid rows are never touched.
func (r *repository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Installment{}).
		Where("status = ? AND due_date < ?", enums.InstallmentStatusPending, asOf).
		Update("status", enums.InstallmentStatusOverdue)
	return res.RowsAffected, res.Error
}

func (r *repository) TotalsByStatus(ctx context.Context) ([]StatusTotals, error) {
	var rows []StatusTotals
	err := r.db.WithContext(ctx).
		Model(&models.Installment{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		if db.IsUndefinedTable(err) {
			return []StatusTotals{}, nil
		}
		return nil, err
	}
	return rows, nil
}
