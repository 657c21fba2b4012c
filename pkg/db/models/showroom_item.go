package models

import (
	"time"

	"github.com/angelmondragon/dealerdesk-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// ShowroomItem is a consigned vehicle sold on behalf of its owner.
type ShowroomItem struct {
	ID            string               `gorm:"column:id;primaryKey" json:"id"`
	OwnerName     string               `gorm:"column:owner_name;not null" json:"ownerName"`
	OwnerPhone    string               `gorm:"column:owner_phone;not null" json:"ownerPhone"`
	Type          string               `gorm:"column:type;not null" json:"type"`
	PlateNumber   string               `gorm:"column:plate_number;not null" json:"plateNumber"`
	PreviousPrice decimal.Decimal      `gorm:"column:previous_price;type:numeric(14,2);not null" json:"previousPrice"`
	SellingPrice  decimal.Decimal      `gorm:"column:selling_price;type:numeric(14,2);not null" json:"sellingPrice"`
	Condition     string               `gorm:"column:condition;not null" json:"condition"`
	Status        enums.ShowroomStatus `gorm:"column:status;not null" json:"status"`
	EntryDate     time.Time            `gorm:"column:entry_date;not null" json:"entryDate"`
}

func (ShowroomItem) TableName() string { return "showroom" }
