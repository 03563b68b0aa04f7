package repository

import (
	"context"

	"bhms-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceRepository covers the billable add-on catalog and its attachment to rooms.
type ServiceRepository interface {
	Create(ctx context.Context, svc *model.Service) error
	Update(ctx context.Context, svc *model.Service) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Service, error)
	List(ctx context.Context, page, limit int) ([]model.Service, int64, error)

	AttachToRoom(ctx context.Context, rs *model.RoomService) error
	UpdateRoomService(ctx context.Context, rs *model.RoomService) error
	DetachFromRoom(ctx context.Context, roomID, serviceID uuid.UUID) error
	FindRoomService(ctx context.Context, roomID, serviceID uuid.UUID) (*model.RoomService, error)
}

type serviceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) Create(ctx context.Context, svc *model.Service) error {
	return GetDB(ctx, r.db).Create(svc).Error
}

func (r *serviceRepository) Update(ctx context.Context, svc *model.Service) error {
	return GetDB(ctx, r.db).Save(svc).Error
}

func (r *serviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Service{}).Error
}

func (r *serviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	var svc model.Service
	if err := GetDB(ctx, r.db).First(&svc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *serviceRepository) List(ctx context.Context, page, limit int) ([]model.Service, int64, error) {
	var services []model.Service
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Service{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&services).Error; err != nil {
		return nil, 0, err
	}

	return services, total, nil
}

func (r *serviceRepository) AttachToRoom(ctx context.Context, rs *model.RoomService) error {
	return GetDB(ctx, r.db).Create(rs).Error
}

func (r *serviceRepository) UpdateRoomService(ctx context.Context, rs *model.RoomService) error {
	return GetDB(ctx, r.db).Save(rs).Error
}

func (r *serviceRepository) DetachFromRoom(ctx context.Context, roomID, serviceID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("room_id = ? AND service_id = ?", roomID, serviceID).Delete(&model.RoomService{}).Error
}

func (r *serviceRepository) FindRoomService(ctx context.Context, roomID, serviceID uuid.UUID) (*model.RoomService, error) {
	var rs model.RoomService
	if err := GetDB(ctx, r.db).Preload("Service").First(&rs, "room_id = ? AND service_id = ?", roomID, serviceID).Error; err != nil {
		return nil, err
	}
	return &rs, nil
}
