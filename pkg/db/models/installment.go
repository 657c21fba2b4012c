package models

import (
	"time"

	"github.com/angelmondragon/dealerdesk-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Installment is one scheduled payment of a contract. PaidDate is set only
// while Status is Paid.
type Installment struct {
	ID         string                  `gorm:"column:id;primaryKey" json:"id"`
	ContractID string                  `gorm:"column:contract_id;not null;index" json:"contractId"`
	DueDate    time.Time               `gorm:"column:due_date;not null" json:"dueDate"`
	Amount     decimal.Decimal         `gorm:"column:amount;type:numeric(14,2);not null" json:"amount"`
	Status     enums.InstallmentStatus `gorm:"column:status;not null" json:"status"`
	PaidDate   *time.Time              `gorm:"column:paid_date" json:"paidDate,omitempty"`
}
