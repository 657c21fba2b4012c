package installments

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/dbtest"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
	"github.com/angelmondragon/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealerdesk-backend/pkg/errors"
	"github.com/angelmondragon/dealerdesk-backend/pkg/outbox"
)

type clock struct{ at time.Time }

func (c *clock) now() time.Time { return c.at }

func newTestService(t *testing.T) (Service, *gorm.DB, *clock) {
	t.Helper()
	conn := dbtest.Open(t)
	c := &clock{at: time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)}
	svc, err := NewService(ServiceParams{
		DB:     db.FromConn(conn),
		Repo:   NewRepository(conn),
		Outbox: outbox.NewService(outbox.NewRepository(conn), nil),
		Now:    c.now,
	})
	require.NoError(t, err)
	return svc, conn, c
}

func seedSchedule(t *testing.T, conn *gorm.DB) {
	t.Helper()
	due := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.Installment{
		{ID: "c1_1", ContractID: "c1", DueDate: due, Amount: decimal.NewFromInt(500), Status: enums.InstallmentStatusPending},
		{ID: "c1_2", ContractID: "c1", DueDate: due.AddDate(0, 1, 0), Amount: decimal.NewFromInt(500), Status: enums.InstallmentStatusPending},
		{ID: "c1_3", ContractID: "c1", DueDate: due.AddDate(0, 2, 0), Amount: decimal.NewFromInt(500), Status: enums.InstallmentStatusPending},
		{ID: "c2_1", ContractID: "c2", DueDate: due.AddDate(0, -1, 0), Amount: decimal.NewFromInt(900), Status: enums.InstallmentStatusPending},
	}
	require.NoError(t, NewRepository(conn).CreateBatch(context.Background(), rows))
}

func countEvents(t *testing.T, conn *gorm.DB, eventType enums.OutboxEventType) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Where("event_type = ?", eventType).Count(&n).Error)
	return n
}

func TestPaySetsPaidDateAndEmits(t *testing.T) {
	svc, conn, _ := newTestService(t)
	seedSchedule(t, conn)

	paid, err := svc.Pay(context.Background(), "c1_1", nil)
	require.NoError(t, err)
	assert.Equal(t, enums.InstallmentStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidDate)
	assert.True(t, paid.PaidDate.Equal(time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)))
	assert.EqualValues(t, 1, countEvents(t, conn, enums.EventInstallmentPaid))
}

func TestPayTwiceOverwritesPaidDate(t *testing.T) {
	svc, conn, c := newTestService(t)
	seedSchedule(t, conn)
	ctx := context.Background()

	_, err := svc.Pay(ctx, "c1_2", nil)
	require.NoError(t, err)

	c.at = c.at.Add(48 * time.Hour)
	again, err := svc.Pay(ctx, "c1_2", nil)
	require.NoError(t, err)
	assert.Equal(t, enums.InstallmentStatusPaid, again.Status)
	assert.True(t, again.PaidDate.Equal(c.at))
	assert.EqualValues(t, 2, countEvents(t, conn, enums.EventInstallmentPaid))
}

func TestPayUnknownInstallment(t *testing.T) {
	svc, conn, _ := newTestService(t)
	_, err := svc.Pay(context.Background(), "nope_1", nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Zero(t, countEvents(t, conn, enums.EventInstallmentPaid))
}

func TestListsOrderedAndFiltered(t *testing.T) {
	svc, conn, _ := newTestService(t)
	seedSchedule(t, conn)
	ctx := context.Background()

	byContract, err := svc.ListByContract(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, byContract, 3)
	assert.Equal(t, []string{"c1_1", "c1_2", "c1_3"}, []string{byContract[0].ID, byContract[1].ID, byContract[2].ID})

	_, err = svc.Pay(ctx, "c1_3", nil)
	require.NoError(t, err)

	paid, err := svc.ListAll(ctx, "Paid")
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, "c1_3", paid[0].ID)

	all, err := svc.ListAll(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "c2_1", all[0].ID)

	_, err = svc.ListAll(ctx, "Settled")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestMarkOverdueSkipsPaidAndFuture(t *testing.T) {
	svc, conn, _ := newTestService(t)
	seedSchedule(t, conn)
	ctx := context.Background()

	_, err := svc.Pay(ctx, "c2_1", nil)
	require.NoError(t, err)

	marked, err := svc.MarkOverdue(ctx, time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 2, marked)

	overdue, err := svc.ListAll(ctx, "Overdue")
	require.NoError(t, err)
	require.Len(t, overdue, 2)
	for _, item := range overdue {
		assert.Nil(t, item.PaidDate)
	}

	paid, err := svc.ListAll(ctx, "Paid")
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.NotNil(t, paid[0].PaidDate)
	assert.EqualValues(t, 1, countEvents(t, conn, enums.EventInstallmentsOverdue))

	marked, err = svc.MarkOverdue(ctx, time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, marked)
	assert.EqualValues(t, 1, countEvents(t, conn, enums.EventInstallmentsOverdue))
}

func TestTotalsByStatus(t *testing.T) {
	svc, conn, _ := newTestService(t)
	seedSchedule(t, conn)
	_, err := svc.Pay(context.Background(), "c2_1", nil)
	require.NoError(t, err)

	totals, err := NewRepository(conn).TotalsByStatus(context.Background())
	require.NoError(t, err)
	byStatus := map[enums.InstallmentStatus]StatusTotals{}
	for _, row := range totals {
		byStatus[row.Status] = row
	}
	assert.EqualValues(t, 3, byStatus[enums.InstallmentStatusPending].Count)
	assert.True(t, byStatus[enums.InstallmentStatusPending].Total.Equal(decimal.NewFromInt(1500)))
	assert.True(t, byStatus[enums.InstallmentStatusPaid].Total.Equal(decimal.NewFromInt(900)))
}
