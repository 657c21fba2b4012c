package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investor provides the capital behind financed contracts. Balance is signed.
type Investor struct {
	ID        string          `gorm:"column:id;primaryKey" json:"id"`
	Name      string          `gorm:"column:name;not null" json:"name"`
	IDNumber  string          `gorm:"column:id_number;not null" json:"idNumber"`
	IDExpiry  *time.Time      `gorm:"column:id_expiry" json:"idExpiry,omitempty"`
	Phone     string          `gorm:"column:phone;not null" json:"phone"`
	Email     *string         `gorm:"column:email" json:"email,omitempty"`
	Balance   decimal.Decimal `gorm:"column:balance;type:numeric(14,2);not null" json:"balance"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
