package payloads

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractCreatedEvent is emitted once a contract and its schedule commit.
type ContractCreatedEvent struct {
	ContractID       string          `json:"contract_id"`
	ManualID         string          `json:"manual_id"`
	BuyerID          string          `json:"buyer_id"`
	InvestorID       string          `json:"investor_id"`
	AssetIDs         []string        `json:"asset_ids"`
	PaymentMode      string          `json:"payment_mode"`
	TotalItemValue   decimal.Decimal `json:"total_item_value"`
	ServiceFee       decimal.Decimal `json:"service_fee"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	InstallmentCount int             `json:"installment_count"`
	InvestorDebit    decimal.Decimal `json:"investor_debit"`
}

// InstallmentPaidEvent is emitted for every payment, including repeats.
type InstallmentPaidEvent struct {
	InstallmentID string          `json:"installment_id"`
	ContractID    string          `json:"contract_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAt        time.Time       `json:"paid_at"`
}

// InstallmentsOverdueEvent summarizes one overdue sweep.
type InstallmentsOverdueEvent struct {
	AsOf          time.Time `json:"as_of"`
	MarkedOverdue int64     `json:"marked_overdue"`
}
