package models

import (
	"time"

	"github.com/angelmondragon/dealerdesk-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// InventoryItem is a dealership-owned vehicle on the lot.
type InventoryItem struct {
	ID          string                `gorm:"column:id;primaryKey" json:"id"`
	Type        string                `gorm:"column:type;not null" json:"type"`
	Model       string                `gorm:"column:model;not null" json:"model"`
	PlateNumber string                `gorm:"column:plate_number;not null" json:"plateNumber"`
	VIN         string                `gorm:"column:vin;not null" json:"vin"`
	Price       decimal.Decimal       `gorm:"column:price;type:numeric(14,2);not null" json:"price"`
	Status      enums.InventoryStatus `gorm:"column:status;not null" json:"status"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (InventoryItem) TableName() string { return "inventory" }
