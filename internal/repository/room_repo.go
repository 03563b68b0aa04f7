package repository

import (
	"context"

	"bhms-backend/internal/billing"
	"bhms-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	Update(ctx context.Context, room *model.Room) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Room, error)
	FindByIDWithBilling(ctx context.Context, id uuid.UUID) (*model.Room, error)
	List(ctx context.Context, status, search string, page, limit int) ([]model.Room, int64, error)
	AdvanceMeters(ctx context.Context, id uuid.UUID, observed MeterState, newElectric, newWater float64) error
}

// MeterState is the meter snapshot observed when the room was loaded. It keys the
// compare-and-swap that closes a billing period.
type MeterState struct {
	ElectricNow   float64
	ElectricAfter *float64
	WaterNow      float64
	WaterAfter    *float64
}

// ObservedMeters captures a loaded room's meter columns for a later compare-and-swap.
func ObservedMeters(room *model.Room) MeterState {
	return MeterState{
		ElectricNow:   room.ElectricMeterNow,
		ElectricAfter: room.ElectricMeterAfter,
		WaterNow:      room.WaterMeterNow,
		WaterAfter:    room.WaterMeterAfter,
	}
}

type roomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) Create(ctx context.Context, room *model.Room) error {
	return GetDB(ctx, r.db).Create(room).Error
}

func (r *roomRepository) Update(ctx context.Context, room *model.Room) error {
	return GetDB(ctx, r.db).Save(room).Error
}

func (r *roomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Room{}).Error
}

func (r *roomRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	var room model.Room
	if err := GetDB(ctx, r.db).First(&room, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByIDWithBilling loads the room together with everything invoice preview and
// creation need: the service snapshot and the active contracts (tenant count + email).
func (r *roomRepository) FindByIDWithBilling(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	var room model.Room
	err := GetDB(ctx, r.db).
		Preload("Services.Service").
		Preload("Contracts", "status = ?", model.ContractActive).
		Preload("Contracts.Tenant").
		First(&room, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) List(ctx context.Context, status, search string, page, limit int) ([]model.Room, int64, error) {
	var rooms []model.Room
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Room{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("Services.Service")
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if search != "" {
		fetchQuery = fetchQuery.Where("name ILIKE ?", "%"+search+"%")
	}
	if err := fetchQuery.Order("name asc").Offset(offset).Limit(limit).Find(&rooms).Error; err != nil {
		return nil, 0, err
	}

	return rooms, total, nil
}

// AdvanceMeters closes a billing period with a compare-and-swap keyed on the
// meter columns as observed when the room was loaded. Meter floats round-trip
// exactly through the double-precision columns, so equality in the WHERE clause
// is reliable. Zero rows affected means another writer already advanced the
// meters; the caller gets ErrConcurrentInvoiceConflict and must re-read and retry.
// The "after" columns are cleared: the confirmed reading becomes the next
// period's "now" baseline.
func (r *roomRepository) AdvanceMeters(ctx context.Context, id uuid.UUID, observed MeterState, newElectric, newWater float64) error {
	query := GetDB(ctx, r.db).Model(&model.Room{}).
		Where("id = ? AND electric_meter_now = ? AND water_meter_now = ?", id, observed.ElectricNow, observed.WaterNow)
	if observed.ElectricAfter != nil {
		query = query.Where("electric_meter_after = ?", *observed.ElectricAfter)
	} else {
		query = query.Where("electric_meter_after IS NULL")
	}
	if observed.WaterAfter != nil {
		query = query.Where("water_meter_after = ?", *observed.WaterAfter)
	} else {
		query = query.Where("water_meter_after IS NULL")
	}

	res := query.Updates(map[string]interface{}{
		"electric_meter_now":   newElectric,
		"water_meter_now":      newWater,
		"electric_meter_after": nil,
		"water_meter_after":    nil,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return billing.ErrConcurrentInvoiceConflict
	}
	return nil
}
