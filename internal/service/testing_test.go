package service

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"bhms-backend/internal/gateway"
	"bhms-backend/internal/model"
	"bhms-backend/internal/notifier"
	"bhms-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory sqlite database per test. The named shared
// cache keeps GORM's connection pool on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Room{},
		&model.Service{},
		&model.RoomService{},
		&model.Tenant{},
		&model.Contract{},
		&model.Invoice{},
		&model.Payment{},
		&model.AuditLog{},
	))
	return db
}

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// --- Fakes for the outbound collaborators ---

type fakeNotifier struct {
	Sent   []notifier.InvoiceSummary
	Resent []notifier.InvoiceSummary
	Err    error
}

func (f *fakeNotifier) SendInvoiceEmail(ctx context.Context, to string, summary notifier.InvoiceSummary) error {
	if f.Err != nil {
		return f.Err
	}
	f.Sent = append(f.Sent, summary)
	return nil
}

func (f *fakeNotifier) ResendInvoiceEmail(ctx context.Context, to string, summary notifier.InvoiceSummary) error {
	if f.Err != nil {
		return f.Err
	}
	f.Resent = append(f.Resent, summary)
	return nil
}

type fakeStorage struct {
	Stored []string
	Err    error
}

func (f *fakeStorage) Store(ctx context.Context, filename string, r io.Reader) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.Stored = append(f.Stored, filename)
	return "http://test/uploads/" + filename, nil
}

type fakeGateway struct {
	Created   []string
	VerifyErr error
}

func (f *fakeGateway) CreateTransaction(ctx context.Context, orderID string, grossAmount int64, customerName, customerEmail string) (*gateway.SnapTransaction, error) {
	f.Created = append(f.Created, orderID)
	return &gateway.SnapTransaction{
		OrderID:     orderID,
		Token:       "snap-token-" + orderID,
		RedirectURL: "https://app.sandbox.example/" + orderID,
	}, nil
}

func (f *fakeGateway) VerifyNotification(n gateway.Notification) error {
	return f.VerifyErr
}

// --- Environment wiring ---

type billingEnv struct {
	db       *gorm.DB
	rooms    repository.RoomRepository
	invoices repository.InvoiceRepository
	payments repository.PaymentRepository

	notifier *fakeNotifier
	storage  *fakeStorage
	gateway  *fakeGateway

	invoiceSvc InvoiceService
	paymentSvc PaymentService
	previewSvc PreviewService
}

func newBillingEnv(t *testing.T) *billingEnv {
	t.Helper()

	db := newTestDB(t)
	txManager := repository.NewTransactionManager(db)
	roomRepo := repository.NewRoomRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	mailer := &fakeNotifier{}
	proofs := &fakeStorage{}
	gw := &fakeGateway{}

	return &billingEnv{
		db:         db,
		rooms:      roomRepo,
		invoices:   invoiceRepo,
		payments:   paymentRepo,
		notifier:   mailer,
		storage:    proofs,
		gateway:    gw,
		invoiceSvc: NewInvoiceService(invoiceRepo, roomRepo, auditRepo, txManager, mailer, nil, "http://test"),
		paymentSvc: NewPaymentService(paymentRepo, invoiceRepo, roomRepo, auditRepo, txManager, proofs, gw, nil),
		previewSvc: NewPreviewService(roomRepo),
	}
}

// --- Fixtures ---

// seedRoom creates a room opening the billing period at electric=100, water=50.
func seedRoom(t *testing.T, db *gorm.DB) *model.Room {
	t.Helper()

	room := &model.Room{
		Name:             "A-101",
		RentPrice:        mustDec("2000000"),
		ElectricMeterNow: 100,
		WaterMeterNow:    50,
		ElectricFee:      mustDec("3500"),
		WaterFee:         mustDec("8000"),
		Status:           model.RoomOccupied,
	}
	require.NoError(t, db.Create(room).Error)
	return room
}

func seedContract(t *testing.T, db *gorm.DB, roomID uuid.UUID, email string) *model.Contract {
	t.Helper()

	tenant := &model.Tenant{FullName: "Nguyen Van A", Email: email}
	require.NoError(t, db.Create(tenant).Error)

	contract := &model.Contract{
		RoomID:    roomID,
		TenantID:  tenant.ID,
		Tenant:    *tenant,
		StartDate: time.Now().AddDate(0, -1, 0),
		Status:    model.ContractActive,
	}
	require.NoError(t, db.Create(contract).Error)
	return contract
}

// seedRoomService attaches a fixed-price Internet line at 100000 x1.
func seedRoomService(t *testing.T, db *gorm.DB, roomID uuid.UUID) {
	t.Helper()

	svc := &model.Service{Name: "Internet", DefaultPrice: mustDec("100000"), PriceType: model.PriceFixed}
	require.NoError(t, db.Create(svc).Error)

	rs := &model.RoomService{
		RoomID:    roomID,
		ServiceID: svc.ID,
		Price:     mustDec("100000"),
		Quantity:  1,
		PriceType: model.PriceFixed,
	}
	require.NoError(t, db.Create(rs).Error)
}

// seedBilledRoom is the common starting point: occupied room with a contract,
// one service line, and one freshly created invoice at readings 150/60.
func seedBilledRoom(t *testing.T, env *billingEnv) (*model.Room, InvoiceMutationResult) {
	t.Helper()

	room := seedRoom(t, env.db)
	seedContract(t, env.db, room.ID, "tenant@example.com")
	seedRoomService(t, env.db, room.ID)

	result, err := env.invoiceSvc.Create(context.Background(), uuid.NewString(), room.ID.String(), CreateInvoiceRequest{
		Month:           7,
		Year:            2026,
		ElectricReading: 150,
		WaterReading:    60,
	})
	require.NoError(t, err)
	return room, result
}

func reloadRoom(t *testing.T, db *gorm.DB, id uuid.UUID) *model.Room {
	t.Helper()
	var room model.Room
	require.NoError(t, db.First(&room, "id = ?", id).Error)
	return &room
}

func reloadInvoice(t *testing.T, db *gorm.DB, id string) *model.Invoice {
	t.Helper()
	var invoice model.Invoice
	require.NoError(t, db.First(&invoice, "id = ?", id).Error)
	return &invoice
}

func auditCount(t *testing.T, db *gorm.DB, action string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.AuditLog{}).Where("action = ?", action).Count(&n).Error)
	return n
}
