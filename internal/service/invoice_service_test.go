package service

import (
	"context"
	"strings"
	"testing"

	"bhms-backend/internal/billing"
	"bhms-backend/internal/model"
	"bhms-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceCreate_HappyPath(t *testing.T) {
	env := newBillingEnv(t)
	room, result := seedBilledRoom(t, env)

	inv := result.Invoice
	assert.True(t, strings.HasPrefix(inv.InvoiceNo, "INV-"))
	assert.Equal(t, model.InvoicePending, inv.Status)
	assert.Equal(t, 100.0, inv.ElectricReadingBefore)
	assert.Equal(t, 150.0, inv.ElectricReadingAfter)
	assert.Equal(t, 50.0, inv.WaterReadingBefore)
	assert.Equal(t, 60.0, inv.WaterReadingAfter)
	// 50 kWh * 3500 and 10 m3 * 8000
	assert.Equal(t, "175000.00", inv.ElectricCost)
	assert.Equal(t, "80000.00", inv.WaterCost)
	assert.Equal(t, "100000.00", inv.ServiceCost)
	// 2000000 + 175000 + 80000 + 100000
	assert.Equal(t, "2355000.00", inv.TotalAmount)

	// Meters closed the period: confirmed reading is the new baseline, the
	// out-of-band columns are cleared.
	fresh := reloadRoom(t, env.db, room.ID)
	assert.Equal(t, 150.0, fresh.ElectricMeterNow)
	assert.Equal(t, 60.0, fresh.WaterMeterNow)
	assert.Nil(t, fresh.ElectricMeterAfter)
	assert.Nil(t, fresh.WaterMeterAfter)

	// Tenant was mailed and the creation was audited.
	assert.True(t, result.Notified)
	require.Len(t, env.notifier.Sent, 1)
	assert.Equal(t, inv.InvoiceNo, env.notifier.Sent[0].InvoiceNo)
	assert.Contains(t, env.notifier.Sent[0].PaymentURL, inv.ID)
	assert.EqualValues(t, 1, auditCount(t, env.db, model.ActionCreateInvoice))
}

func TestInvoiceCreate_AfterReadingWinsAsBaseline(t *testing.T) {
	env := newBillingEnv(t)
	room := seedRoom(t, env.db)
	seedContract(t, env.db, room.ID, "tenant@example.com")

	// A newer reading was recorded outside invoicing.
	after := 120.0
	waterAfter := 55.0
	require.NoError(t, env.db.Model(room).Updates(map[string]interface{}{
		"electric_meter_after": after,
		"water_meter_after":    waterAfter,
	}).Error)

	result, err := env.invoiceSvc.Create(context.Background(), uuid.NewString(), room.ID.String(), CreateInvoiceRequest{
		Month: 7, Year: 2026, ElectricReading: 150, WaterReading: 60,
	})
	require.NoError(t, err)

	assert.Equal(t, 120.0, result.Invoice.ElectricReadingBefore)
	assert.Equal(t, 55.0, result.Invoice.WaterReadingBefore)
	// 30 kWh * 3500, 5 m3 * 8000
	assert.Equal(t, "105000.00", result.Invoice.ElectricCost)
	assert.Equal(t, "40000.00", result.Invoice.WaterCost)
}

func TestInvoiceCreate_MeterRegressionIsFatal(t *testing.T) {
	env := newBillingEnv(t)
	room := seedRoom(t, env.db)
	seedContract(t, env.db, room.ID, "tenant@example.com")

	_, err := env.invoiceSvc.Create(context.Background(), uuid.NewString(), room.ID.String(), CreateInvoiceRequest{
		Month: 7, Year: 2026, ElectricReading: 90, WaterReading: 60,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrMeterRegression)

	// Nothing was persisted and the meters did not move.
	var invoiceCount int64
	require.NoError(t, env.db.Model(&model.Invoice{}).Count(&invoiceCount).Error)
	assert.Zero(t, invoiceCount)
	fresh := reloadRoom(t, env.db, room.ID)
	assert.Equal(t, 100.0, fresh.ElectricMeterNow)
	assert.Empty(t, env.notifier.Sent)
}

func TestInvoiceCreate_RequiresActiveContract(t *testing.T) {
	env := newBillingEnv(t)
	room := seedRoom(t, env.db)

	_, err := env.invoiceSvc.Create(context.Background(), uuid.NewString(), room.ID.String(), CreateInvoiceRequest{
		Month: 7, Year: 2026, ElectricReading: 150, WaterReading: 60,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrNoActiveTenant)
}

func TestInvoiceCreate_EmailFailureIsPartialSuccess(t *testing.T) {
	env := newBillingEnv(t)
	env.notifier.Err = assert.AnError

	room := seedRoom(t, env.db)
	seedContract(t, env.db, room.ID, "tenant@example.com")

	result, err := env.invoiceSvc.Create(context.Background(), uuid.NewString(), room.ID.String(), CreateInvoiceRequest{
		Month: 7, Year: 2026, ElectricReading: 150, WaterReading: 60,
	})
	require.NoError(t, err, "a failed e-mail must not undo the invoice")

	assert.False(t, result.Notified)
	assert.NotEmpty(t, result.NotificationError)

	// The invoice exists regardless.
	stored := reloadInvoice(t, env.db, result.Invoice.ID)
	assert.Equal(t, model.InvoicePending, stored.Status)
}

func TestAdvanceMeters_ConcurrentWriterLoses(t *testing.T) {
	env := newBillingEnv(t)
	room := seedRoom(t, env.db)
	ctx := context.Background()

	observed := repository.ObservedMeters(room)
	require.NoError(t, env.rooms.AdvanceMeters(ctx, room.ID, observed, 150, 60))

	// Second writer still holds the stale snapshot.
	err := env.rooms.AdvanceMeters(ctx, room.ID, observed, 155, 61)
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrConcurrentInvoiceConflict)

	fresh := reloadRoom(t, env.db, room.ID)
	assert.Equal(t, 150.0, fresh.ElectricMeterNow)
	assert.Equal(t, 60.0, fresh.WaterMeterNow)
}

func TestInvoiceEdit_RecomputesFromPeriodSnapshot(t *testing.T) {
	env := newBillingEnv(t)
	room, created := seedBilledRoom(t, env)

	newElectric := 160.0
	result, err := env.invoiceSvc.Edit(context.Background(), uuid.NewString(), created.Invoice.ID, EditInvoiceRequest{
		ElectricReading: &newElectric,
	})
	require.NoError(t, err)

	inv := result.Invoice
	// Usage re-derives from the period-start snapshot (100), not from the
	// advanced room meter (150): 60 kWh * 3500.
	assert.Equal(t, 100.0, inv.ElectricReadingBefore)
	assert.Equal(t, 160.0, inv.ElectricReadingAfter)
	assert.Equal(t, "210000.00", inv.ElectricCost)
	assert.Equal(t, "2390000.00", inv.TotalAmount)

	// The room baseline re-anchors to the corrected reading.
	fresh := reloadRoom(t, env.db, room.ID)
	assert.Equal(t, 160.0, fresh.ElectricMeterNow)

	// A material change re-sends the invoice e-mail.
	assert.True(t, result.Notified)
	assert.Len(t, env.notifier.Resent, 1)
}

func TestInvoiceEdit_OlderPeriodLeavesRoomMetersAlone(t *testing.T) {
	env := newBillingEnv(t)
	room, first := seedBilledRoom(t, env)

	// A newer invoice has since closed the next period and moved the
	// baseline to 200/70.
	_, err := env.invoiceSvc.Create(context.Background(), uuid.NewString(), room.ID.String(), CreateInvoiceRequest{
		Month: 8, Year: 2026, ElectricReading: 200, WaterReading: 70,
	})
	require.NoError(t, err)

	// Correcting the older invoice recomputes it from its own snapshot.
	newElectric := 160.0
	result, err := env.invoiceSvc.Edit(context.Background(), uuid.NewString(), first.Invoice.ID, EditInvoiceRequest{
		ElectricReading: &newElectric,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.Invoice.ElectricReadingBefore)
	assert.Equal(t, 160.0, result.Invoice.ElectricReadingAfter)
	assert.Equal(t, "210000.00", result.Invoice.ElectricCost)

	// The room baseline belongs to the newer period and must not move back.
	fresh := reloadRoom(t, env.db, room.ID)
	assert.Equal(t, 200.0, fresh.ElectricMeterNow)
	assert.Equal(t, 70.0, fresh.WaterMeterNow)
}

func TestInvoiceEdit_ImmaterialChangeSkipsEmail(t *testing.T) {
	env := newBillingEnv(t)
	_, created := seedBilledRoom(t, env)

	month := 8
	result, err := env.invoiceSvc.Edit(context.Background(), uuid.NewString(), created.Invoice.ID, EditInvoiceRequest{
		Month: &month,
	})
	require.NoError(t, err)

	assert.Equal(t, 8, result.Invoice.Month)
	assert.Empty(t, env.notifier.Resent)
}

func TestInvoiceEdit_PaidInvoiceIsLocked(t *testing.T) {
	env := newBillingEnv(t)
	_, created := seedBilledRoom(t, env)

	_, err := env.invoiceSvc.MarkStatus(context.Background(), uuid.NewString(), created.Invoice.ID, model.InvoicePaid)
	require.NoError(t, err)

	price := "1500000"
	_, err = env.invoiceSvc.Edit(context.Background(), uuid.NewString(), created.Invoice.ID, EditInvoiceRequest{
		RoomPrice: &price,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrInvoiceLocked)
}

func TestInvoiceEdit_RejectsReadingBelowSnapshot(t *testing.T) {
	env := newBillingEnv(t)
	_, created := seedBilledRoom(t, env)

	bad := 90.0 // below the 100 period-start baseline
	_, err := env.invoiceSvc.Edit(context.Background(), uuid.NewString(), created.Invoice.ID, EditInvoiceRequest{
		ElectricReading: &bad,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrMeterRegression)
}

func TestInvoiceMarkStatus_Transitions(t *testing.T) {
	env := newBillingEnv(t)
	_, created := seedBilledRoom(t, env)
	ctx := context.Background()
	actor := uuid.NewString()

	inv, err := env.invoiceSvc.MarkStatus(ctx, actor, created.Invoice.ID, model.InvoiceOverdue)
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceOverdue, inv.Status)

	inv, err = env.invoiceSvc.MarkStatus(ctx, actor, created.Invoice.ID, model.InvoicePaid)
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePaid, inv.Status)

	// PAID is terminal.
	_, err = env.invoiceSvc.MarkStatus(ctx, actor, created.Invoice.ID, model.InvoicePending)
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrInvoiceLocked)

	// Re-marking the current status is a no-op.
	inv, err = env.invoiceSvc.MarkStatus(ctx, actor, created.Invoice.ID, model.InvoicePaid)
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePaid, inv.Status)

	_, err = env.invoiceSvc.MarkStatus(ctx, actor, created.Invoice.ID, "CANCELLED")
	require.Error(t, err)
}

func TestInvoiceList_FiltersByStatus(t *testing.T) {
	env := newBillingEnv(t)
	_, created := seedBilledRoom(t, env)
	ctx := context.Background()

	// A second room with its own pending invoice.
	other := &model.Room{
		Name: "B-202", RentPrice: mustDec("1500000"),
		ElectricMeterNow: 0, WaterMeterNow: 0,
		ElectricFee: mustDec("3500"), WaterFee: mustDec("8000"),
		Status: model.RoomOccupied,
	}
	require.NoError(t, env.db.Create(other).Error)
	seedContract(t, env.db, other.ID, "other@example.com")
	_, err := env.invoiceSvc.Create(ctx, uuid.NewString(), other.ID.String(), CreateInvoiceRequest{
		Month: 7, Year: 2026, ElectricReading: 10, WaterReading: 5,
	})
	require.NoError(t, err)

	_, err = env.invoiceSvc.MarkStatus(ctx, uuid.NewString(), created.Invoice.ID, model.InvoicePaid)
	require.NoError(t, err)

	paid, total, err := env.invoiceSvc.List(ctx, InvoiceFilter{Status: model.InvoicePaid})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, paid, 1)
	assert.Equal(t, created.Invoice.ID, paid[0].ID)

	all, total, err := env.invoiceSvc.List(ctx, InvoiceFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)
}
