// Package schedule turns a financed amount into the installments a buyer owes.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealerdesk-backend/pkg/errors"
)

// Input describes one financing request.
type Input struct {
	Principal     decimal.Decimal
	Fee           decimal.Decimal
	Mode          enums.PaymentMode
	Months        int
	CreditDueDate string
}

// Item is one generated installment before it is bound to a contract id.
type Item struct {
	Sequence int
	DueDate  time.Time
	Amount   decimal.Decimal
	Status   enums.InstallmentStatus
}

// MaxMonths caps an installment plan at fifty years.
const MaxMonths = 600

var dueDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
}

// Generate produces the installments for in. Installment-mode due dates are
// computed from now; credit mode ignores now.
func Generate(in Input, now time.Time) ([]Item, error) {
	total := in.Principal.Add(in.Fee)

	switch in.Mode {
	case enums.PaymentModeCredit:
		due, err := ParseDueDate(in.CreditDueDate)
		if err != nil {
			return nil, err
		}
		return []Item{{
			Sequence: 1,
			DueDate:  due,
			Amount:   total,
			Status:   enums.InstallmentStatusPending,
		}}, nil

	case enums.PaymentModeInstallment:
		if in.Months <= 0 || in.Months > MaxMonths {
			return nil, pkgerrors.FieldErrors("invalid schedule", map[string]string{
				"months": fmt.Sprintf("must be between 1 and %d", MaxMonths),
			})
		}
		monthly := MonthlyAmount(total, in.Months)
		items := make([]Item, 0, in.Months)
		for i := 1; i <= in.Months; i++ {
			items = append(items, Item{
				Sequence: i,
				DueDate:  AddMonths(now, i),
				Amount:   monthly,
				Status:   enums.InstallmentStatusPending,
			})
		}
		return items, nil

	default:
		return nil, pkgerrors.FieldErrors("invalid schedule", map[string]string{
			"paymentMode": fmt.Sprintf("unsupported mode %q", in.Mode),
		})
	}
}

// MonthlyAmount is ceil(total / months) in whole currency units. The sum of
// the instalments may exceed total by less than months units; no remainder
// is folded back into the last row.
func MonthlyAmount(total decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return total
	}
	return total.Div(decimal.NewFromInt(int64(months))).Ceil()
}

// AddMonths adds n calendar months. Days past the end of the target month
// roll into the following month (Jan 31 + 1 month = Mar 3 in a common year).
func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}

// ParseDueDate accepts a calendar date or an RFC 3339 timestamp.
func ParseDueDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, pkgerrors.FieldErrors("invalid schedule", map[string]string{
			"creditDueDate": "required for credit contracts",
		})
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, pkgerrors.FieldErrors("invalid schedule", map[string]string{
		"creditDueDate": "must be a date like 2025-03-01",
	})
}

// InstallmentID builds the public id of the n-th installment of a contract.
func InstallmentID(contractID string, n int) string {
	return fmt.Sprintf("%s_%d", contractID, n)
}

// Total sums the amounts of items.
func Total(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Amount)
	}
	return sum
}
