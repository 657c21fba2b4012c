package contracts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/internal/assets"
	"github.com/angelmondragon/dealerdesk-backend/internal/buyers"
	"github.com/angelmondragon/dealerdesk-backend/internal/installments"
	"github.com/angelmondragon/dealerdesk-backend/internal/inventory"
	"github.com/angelmondragon/dealerdesk-backend/internal/investors"
	"github.com/angelmondragon/dealerdesk-backend/internal/settings"
	"github.com/angelmondragon/dealerdesk-backend/internal/showroom"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/dbtest"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
	"github.com/angelmondragon/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealerdesk-backend/pkg/errors"
	"github.com/angelmondragon/dealerdesk-backend/pkg/outbox"
)

var issuedAt = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

type emitterFunc func(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error

func (f emitterFunc) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	return f(ctx, tx, event)
}

func newTestService(t *testing.T, emitter outbox.Emitter) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	if emitter == nil {
		emitter = outbox.NewService(outbox.NewRepository(conn), nil)
	}
	registry, err := assets.NewRegistry(inventory.NewRepository(conn), showroom.NewRepository(conn))
	require.NoError(t, err)
	investorRepo := investors.NewRepository(conn)
	ledger, err := investors.NewService(investorRepo, nil)
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		DB:           db.FromConn(conn),
		Contracts:    NewRepository(conn),
		Installments: installments.NewRepository(conn),
		Assets:       registry,
		Buyers:       buyers.NewRepository(conn),
		Investors:    investorRepo,
		Ledger:       ledger,
		Outbox:       emitter,
		Now:          func() time.Time { return issuedAt },
	})
	require.NoError(t, err)
	seed(t, conn)
	return svc, conn
}

func seed(t *testing.T, conn *gorm.DB) {
	t.Helper()
	require.NoError(t, conn.Create(&models.InventoryItem{
		ID: "car-1", Type: "Sedan", Model: "2020", PlateNumber: "ABC 123", VIN: "-",
		Price: decimal.NewFromInt(10000), Status: enums.InventoryStatusAvailable,
	}).Error)
	require.NoError(t, conn.Create(&models.ShowroomItem{
		ID: "con-1", OwnerName: "Samir", OwnerPhone: "-", Type: "Pickup", PlateNumber: "XYZ 9",
		PreviousPrice: decimal.NewFromInt(4000), SellingPrice: decimal.NewFromInt(5000),
		Condition: "-", Status: enums.ShowroomStatusReceived, EntryDate: issuedAt,
	}).Error)
	require.NoError(t, conn.Create(&models.Buyer{ID: "buyer-1", Name: "Karim", IDNumber: "-", Phone: "0100", Job: "-", Address: "-"}).Error)
	require.NoError(t, conn.Create(&models.Buyer{ID: "buyer-2", Name: "Hany", IDNumber: "-", Phone: "0111", Job: "-", Address: "-"}).Error)
	require.NoError(t, conn.Create(&models.Investor{ID: "inv-1", Name: "Fund", IDNumber: "-", Phone: "-", Balance: decimal.NewFromInt(50000)}).Error)
}

func baseDraft() Draft {
	return Draft{
		ManualID:    "P-17",
		BuyerID:     "buyer-1",
		InvestorID:  "inv-1",
		AssetIDs:    []string{"car-1", "con-1"},
		ServiceFee:  decimal.NewFromInt(1000),
		PaymentMode: "installment",
		Months:      12,
	}
}

type snapshot struct {
	contracts, installments, events int64
	carStatus                       enums.InventoryStatus
	consignedStatus                 enums.ShowroomStatus
	balance                         decimal.Decimal
}

func take(t *testing.T, conn *gorm.DB) snapshot {
	t.Helper()
	var s snapshot
	require.NoError(t, conn.Model(&models.Contract{}).Count(&s.contracts).Error)
	require.NoError(t, conn.Model(&models.Installment{}).Count(&s.installments).Error)
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Count(&s.events).Error)

	var car models.InventoryItem
	require.NoError(t, conn.First(&car, "id = ?", "car-1").Error)
	s.carStatus = car.Status
	var consigned models.ShowroomItem
	require.NoError(t, conn.First(&consigned, "id = ?", "con-1").Error)
	s.consignedStatus = consigned.Status
	var investor models.Investor
	require.NoError(t, conn.First(&investor, "id = ?", "inv-1").Error)
	s.balance = investor.Balance
	return s
}

func TestCreateIssuesContractAcrossBothAssetKinds(t *testing.T) {
	svc, conn := newTestService(t, nil)

	out, err := svc.Create(context.Background(), baseDraft())
	require.NoError(t, err)

	c := out.Contract
	assert.True(t, c.TotalItemValue.Equal(decimal.NewFromInt(15000)))
	assert.True(t, c.ServiceFee.Equal(decimal.NewFromInt(1000)))
	assert.True(t, c.TotalAmount.Equal(c.TotalItemValue.Add(c.ServiceFee)))
	assert.Equal(t, enums.ContractTypeDirectInstallment, c.Type)
	assert.Equal(t, enums.ContractStatusActive, c.Status)
	assert.Equal(t, []string{"car-1", "con-1"}, []string(c.AssetIDs))

	require.Len(t, out.Installments, 12)
	sum := decimal.Zero
	for i, inst := range out.Installments {
		assert.Equal(t, c.ID+"_"+itoa(i+1), inst.ID)
		assert.True(t, inst.Amount.Equal(decimal.NewFromInt(1334)))
		assert.Equal(t, enums.InstallmentStatusPending, inst.Status)
		sum = sum.Add(inst.Amount)
	}
	assert.True(t, sum.GreaterThanOrEqual(c.TotalAmount))
	assert.True(t, sum.Sub(c.TotalAmount).LessThan(decimal.NewFromInt(12)))

	after := take(t, conn)
	assert.EqualValues(t, 1, after.contracts)
	assert.EqualValues(t, 12, after.installments)
	assert.EqualValues(t, 1, after.events)
	assert.Equal(t, enums.InventoryStatusSold, after.carStatus)
	assert.Equal(t, enums.ShowroomStatusSold, after.consignedStatus)
	assert.True(t, after.balance.Equal(decimal.NewFromInt(35000)), "investor debited by item value, got %s", after.balance)
}

func TestCreateCreditModeSingleInstallment(t *testing.T) {
	svc, _ := newTestService(t, nil)
	draft := baseDraft()
	draft.PaymentMode = "credit"
	draft.Months = 0
	draft.CreditDueDate = "2025-09-01"
	draft.Type = "شيكات بنكية"

	out, err := svc.Create(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, enums.ContractTypeBankCheques, out.Contract.Type)
	require.Len(t, out.Installments, 1)
	assert.True(t, out.Installments[0].Amount.Equal(decimal.NewFromInt(16000)))
	assert.Equal(t, "2025-09-01", out.Installments[0].DueDate.Format("2006-01-02"))
}

func TestCreateUnknownAssetChangesNothing(t *testing.T) {
	svc, conn := newTestService(t, nil)
	before := take(t, conn)

	draft := baseDraft()
	draft.AssetIDs = []string{"car-1", "ghost"}
	_, err := svc.Create(context.Background(), draft)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, "asset not found", pkgerrors.As(err).Message())
	assert.ErrorIs(t, err, assets.ErrAssetNotFound)

	assert.Equal(t, before, take(t, conn))
}

func TestCreateRollsBackWhenLateStepFails(t *testing.T) {
	boom := errors.New("outbox down")
	svc, conn := newTestService(t, emitterFunc(func(context.Context, *gorm.DB, outbox.DomainEvent) error {
		return boom
	}))
	before := take(t, conn)

	_, err := svc.Create(context.Background(), baseDraft())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, before, take(t, conn))
}

func TestCreateRejectsSoldAsset(t *testing.T) {
	svc, conn := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, baseDraft())
	require.NoError(t, err)
	afterFirst := take(t, conn)

	draft := baseDraft()
	draft.AssetIDs = []string{"car-1"}
	_, err = svc.Create(ctx, draft)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.Equal(t, afterFirst, take(t, conn))
}

func TestCreateValidatesBeforeWriting(t *testing.T) {
	svc, conn := newTestService(t, nil)
	before := take(t, conn)

	cases := map[string]struct {
		mutate func(*Draft)
		field  string
	}{
		"missing buyer":      {func(d *Draft) { d.BuyerID = " " }, "buyerId"},
		"missing investor":   {func(d *Draft) { d.InvestorID = "" }, "investorId"},
		"no assets":          {func(d *Draft) { d.AssetIDs = nil }, "assetIds"},
		"duplicate assets":   {func(d *Draft) { d.AssetIDs = []string{"car-1", "car-1"} }, "assetIds"},
		"negative fee":       {func(d *Draft) { d.ServiceFee = decimal.NewFromInt(-1) }, "serviceFee"},
		"zero months":        {func(d *Draft) { d.Months = 0 }, "months"},
		"huge months":        {func(d *Draft) { d.Months = 10_000_000 }, "months"},
		"bad mode":           {func(d *Draft) { d.PaymentMode = "barter" }, "paymentMode"},
		"bad type":           {func(d *Draft) { d.Type = "lease" }, "type"},
		"credit without due": {func(d *Draft) { d.PaymentMode = "credit" }, "creditDueDate"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			draft := baseDraft()
			tc.mutate(&draft)
			_, err := svc.Create(context.Background(), draft)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
			details, ok := pkgerrors.As(err).Details().(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tc.field)
		})
	}
	assert.Equal(t, before, take(t, conn))
}

func TestCreateMissingPartiesAreNotFound(t *testing.T) {
	svc, conn := newTestService(t, nil)
	before := take(t, conn)

	for _, mutate := range []func(*Draft){
		func(d *Draft) { d.BuyerID = "nobody" },
		func(d *Draft) { d.GuarantorID = "nobody" },
		func(d *Draft) { d.InvestorID = "nobody" },
	} {
		draft := baseDraft()
		mutate(&draft)
		_, err := svc.Create(context.Background(), draft)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
	}
	assert.Equal(t, before, take(t, conn))
}

func TestGetAndDocument(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	draft := baseDraft()
	draft.GuarantorID = "buyer-2"
	draft.ManualID = ""
	created, err := svc.Create(ctx, draft)
	require.NoError(t, err)

	details, err := svc.Get(ctx, created.Contract.ID)
	require.NoError(t, err)
	require.NotNil(t, details.Buyer)
	require.NotNil(t, details.Guarantor)
	require.NotNil(t, details.Investor)
	assert.Equal(t, "Hany", details.Guarantor.Name)
	assert.Len(t, details.Installments, 12)

	letterhead := settings.Letterhead{CompanyName: "Delta Cars", Phone: "0100", ShowName: true}
	doc, err := svc.Document(ctx, created.Contract.ID, letterhead)
	require.NoError(t, err)
	assert.Equal(t, created.Contract.ID, doc.Reference)
	assert.Equal(t, enums.ContractTypeDirectInstallment.Label(), doc.TypeLabel)
	assert.Len(t, doc.Assets, 2)
	assert.Equal(t, "Delta Cars", doc.Letterhead.CompanyName)
	assert.Empty(t, doc.Letterhead.Phone)
	assert.Contains(t, doc.AmountWords, "sixteen thousand")

	_, err = svc.Get(ctx, "missing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListNewestFirst(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	empty, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = svc.Create(ctx, baseDraft())
	require.NoError(t, err)
	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAmountInWords(t *testing.T) {
	assert.Equal(t, "twelve and 05/100", AmountInWords(decimal.RequireFromString("12.05")))
	assert.Equal(t, "zero and 00/100", AmountInWords(decimal.Zero))
}

func itoa(n int) string {
	return decimal.NewFromInt(int64(n)).String()
}
