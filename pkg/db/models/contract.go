package models

import (
	"time"

	dbtypes "github.com/angelmondragon/dealerdesk-backend/pkg/db/types"
	"github.com/angelmondragon/dealerdesk-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Contract is an installment or credit financing agreement.
type Contract struct {
	ID             string               `gorm:"column:id;primaryKey" json:"id"`
	ManualID       string               `gorm:"column:manual_id;not null" json:"manualId"`
	Type           enums.ContractType   `gorm:"column:type;not null" json:"type"`
	PaymentMode    enums.PaymentMode    `gorm:"column:payment_mode;not null" json:"paymentMode"`
	CreatedAt      time.Time            `gorm:"column:created_at;not null" json:"createdAt"`
	BuyerID        string               `gorm:"column:buyer_id;not null" json:"buyerId"`
	GuarantorID    *string              `gorm:"column:guarantor_id" json:"guarantorId,omitempty"`
	InvestorID     string               `gorm:"column:investor_id;not null" json:"investorId"`
	AssetIDs       dbtypes.StringArray  `gorm:"column:asset_ids;not null" json:"assetIds"`
	TotalItemValue decimal.Decimal      `gorm:"column:total_item_value;type:numeric(14,2);not null" json:"totalItemValue"`
	ServiceFee     decimal.Decimal      `gorm:"column:service_fee;type:numeric(14,2);not null" json:"serviceFee"`
	TotalAmount    decimal.Decimal      `gorm:"column:total_amount;type:numeric(14,2);not null" json:"totalAmount"`
	Status         enums.ContractStatus `gorm:"column:status;not null" json:"status"`
	Notes          *string              `gorm:"column:notes" json:"notes,omitempty"`
}
