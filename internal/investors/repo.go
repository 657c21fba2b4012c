package investors

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
)

// Repository persists investors and their running balance.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.Investor, error)
	FindByID(ctx context.Context, id string) (*models.Investor, error)
	Create(ctx context.Context, investor *models.Investor) error
	GetBalance(ctx context.Context, id string) (decimal.Decimal, error)
	SetBalance(ctx context.Context, id string, balance decimal.Decimal) (int64, error)
	DecrementBalance(ctx context.Context, id string, delta decimal.Decimal) (int64, error)
	SumBalances(ctx context.Context) (decimal.Decimal, error)
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

func (r *repository) List(ctx context.Context) ([]models.Investor, error) {
	investors := []models.Investor{}
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&investors).Error; err != nil {
		if db.IsUndefinedTable(err) {
			return []models.Investor{}, nil
		}
		return nil, err
	}
	return investors, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.Investor, error) {
	var investor models.Investor
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&investor).Error; err != nil {
		return nil, err
	}
	return &investor, nil
}

func (r *repository) Create(ctx context.Context, investor *models.Investor) error {
	return r.db.WithContext(ctx).Create(investor).Error
}

func (r *repository) GetBalance(ctx context.Context, id string) (decimal.Decimal, error) {
	var investor models.Investor
	err := r.db.WithContext(ctx).Select("id", "balance").Where("id = ?", id).First(&investor).Error
	if err != nil {
		return decimal.Zero, err
	}
	return investor.Balance, nil
}

func (r *repository) SetBalance(ctx context.Context, id string, balance decimal.Decimal) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Investor{}).
		Where("id = ?", id).
		Update("balance", balance)
	return res.RowsAffected, res.Error
}

// DecrementBalance subtracts delta in a single statement so concurrent
// debits against one investor all land.
func (r *repository) DecrementBalance(ctx context.Context, id string, delta decimal.Decimal) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Investor{}).
		Where("id = ?", id).
		Update("balance", gorm.Expr("balance - ?", delta))
	return res.RowsAffected, res.Error
}

func (r *repository) SumBalances(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	row := r.db.WithContext(ctx).
		Model(&models.Investor{}).
		Select("COALESCE(SUM(balance), 0)").
		Row()
	if err := row.Scan(&total); err != nil {
		if db.IsUndefinedTable(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return total.Decimal, nil
}
