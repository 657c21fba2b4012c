package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TitleTransfer records a one-shot ownership transfer. It has no effect on
// inventory or investor balances.
type TitleTransfer struct {
	ID             string          `gorm:"column:id;primaryKey" json:"id"`
	ManualID       string          `gorm:"column:manual_id;not null" json:"manualId"`
	CreatedAt      time.Time       `gorm:"column:created_at;not null" json:"createdAt"`
	SellerName     string          `gorm:"column:seller_name;not null" json:"sellerName"`
	SellerIDNumber string          `gorm:"column:seller_id_number;not null" json:"sellerIdNumber"`
	BuyerName      string          `gorm:"column:buyer_name;not null" json:"buyerName"`
	BuyerIDNumber  string          `gorm:"column:buyer_id_number;not null" json:"buyerIdNumber"`
	VehicleType    string          `gorm:"column:vehicle_type;not null" json:"vehicleType"`
	VehicleModel   string          `gorm:"column:vehicle_model;not null" json:"vehicleModel"`
	PlateNumber    string          `gorm:"column:plate_number;not null" json:"plateNumber"`
	VIN            string          `gorm:"column:vin;not null" json:"vin"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(14,2);not null" json:"price"`
	ServiceFees    decimal.Decimal `gorm:"column:service_fees;type:numeric(14,2);not null" json:"serviceFees"`
}
