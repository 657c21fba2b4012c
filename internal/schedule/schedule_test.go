package schedule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealerdesk-backend/pkg/errors"
)

var fixedNow = time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestGenerateInstallmentScenarios(t *testing.T) {
	cases := []struct {
		name      string
		principal int64
		fee       int64
		months    int
		monthly   int64
		sum       int64
	}{
		{name: "even split", principal: 12000, fee: 0, months: 12, monthly: 1000, sum: 12000},
		{name: "fee divides evenly", principal: 10000, fee: 500, months: 3, monthly: 3500, sum: 10500},
		{name: "rounding surplus", principal: 10000, fee: 1, months: 3, monthly: 3334, sum: 10002},
		{name: "single month", principal: 999, fee: 1, months: 1, monthly: 1000, sum: 1000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := Generate(Input{
				Principal: dec(tc.principal),
				Fee:       dec(tc.fee),
				Mode:      enums.PaymentModeInstallment,
				Months:    tc.months,
			}, fixedNow)
			require.NoError(t, err)
			require.Len(t, items, tc.months)

			for i, item := range items {
				assert.Equal(t, i+1, item.Sequence)
				assert.True(t, item.Amount.Equal(dec(tc.monthly)), "amount %s", item.Amount)
				assert.Equal(t, enums.InstallmentStatusPending, item.Status)
				assert.Equal(t, fixedNow.AddDate(0, i+1, 0), item.DueDate)
			}
			assert.True(t, Total(items).Equal(dec(tc.sum)), "sum %s", Total(items))

			total := dec(tc.principal + tc.fee)
			surplus := Total(items).Sub(total)
			assert.False(t, surplus.IsNegative())
			assert.True(t, surplus.LessThan(dec(int64(tc.months))))
		})
	}
}

func TestGenerateDueDatesStrictlyIncrease(t *testing.T) {
	items, err := Generate(Input{
		Principal: dec(36000),
		Mode:      enums.PaymentModeInstallment,
		Months:    36,
	}, fixedNow)
	require.NoError(t, err)
	for i := 1; i < len(items); i++ {
		require.True(t, items[i].DueDate.After(items[i-1].DueDate))
	}
}

func TestGenerateMonthEndRollsOver(t *testing.T) {
	jan31 := time.Date(2025, time.January, 31, 9, 0, 0, 0, time.UTC)
	items, err := Generate(Input{
		Principal: dec(300),
		Mode:      enums.PaymentModeInstallment,
		Months:    2,
	}, jan31)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC), items[0].DueDate)
	assert.Equal(t, time.Date(2025, time.March, 31, 9, 0, 0, 0, time.UTC), items[1].DueDate)
}

func TestGenerateCreditMode(t *testing.T) {
	items, err := Generate(Input{
		Principal:     dec(5000),
		Fee:           dec(200),
		Mode:          enums.PaymentModeCredit,
		Months:        12,
		CreditDueDate: "2025-03-01",
	}, fixedNow)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Amount.Equal(dec(5200)))
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), items[0].DueDate)
	assert.Equal(t, enums.InstallmentStatusPending, items[0].Status)
}

func TestGenerateCreditModeAcceptsTimestamp(t *testing.T) {
	items, err := Generate(Input{
		Principal:     dec(100),
		Mode:          enums.PaymentModeCredit,
		CreditDueDate: "2025-03-01T12:30:00+02:00",
	}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 1, 10, 30, 0, 0, time.UTC), items[0].DueDate)
}

func TestGenerateValidation(t *testing.T) {
	cases := map[string]Input{
		"zero months":      {Principal: dec(100), Mode: enums.PaymentModeInstallment, Months: 0},
		"negative months":  {Principal: dec(100), Mode: enums.PaymentModeInstallment, Months: -3},
		"too many months":  {Principal: dec(100), Mode: enums.PaymentModeInstallment, Months: MaxMonths + 1},
		"credit no date":   {Principal: dec(100), Mode: enums.PaymentModeCredit},
		"credit bad date":  {Principal: dec(100), Mode: enums.PaymentModeCredit, CreditDueDate: "next friday"},
		"unsupported mode": {Principal: dec(100), Mode: enums.PaymentMode("barter"), Months: 3},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			items, err := Generate(in, fixedNow)
			require.Error(t, err)
			require.Nil(t, items)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		})
	}
}

func TestMonthlyAmountFractionalTotal(t *testing.T) {
	total := decimal.RequireFromString("1000.50")
	assert.True(t, MonthlyAmount(total, 2).Equal(dec(501)))
}

func TestInstallmentID(t *testing.T) {
	assert.Equal(t, "01J0ABC_1", InstallmentID("01J0ABC", 1))
	assert.Equal(t, "01J0ABC_12", InstallmentID("01J0ABC", 12))
}
