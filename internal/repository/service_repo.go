package repository

import (
	"context"

	"userhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceRepository manages the service catalog and credit packs.
type ServiceRepository interface {
	CreateService(ctx context.Context, svc *model.Service) error
	UpdateService(ctx context.Context, svc *model.Service) error
	DeleteService(ctx context.Context, id uuid.UUID) error
	FindServiceByID(ctx context.Context, id uuid.UUID) (*model.Service, error)
	FindServiceByClientID(ctx context.Context, clientID string) (*model.Service, error)
	ListServices(ctx context.Context, page, limit int) ([]model.Service, int64, error)

	ListActiveCreditPacks(ctx context.Context) ([]model.CreditPack, error)
	FindCreditPackByID(ctx context.Context, id uuid.UUID) (*model.CreditPack, error)
	CreateCreditPack(ctx context.Context, pack *model.CreditPack) error
}

type serviceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) CreateService(ctx context.Context, svc *model.Service) error {
	return GetDB(ctx, r.db).Create(svc).Error
}

func (r *serviceRepository) UpdateService(ctx context.Context, svc *model.Service) error {
	return GetDB(ctx, r.db).Save(svc).Error
}

func (r *serviceRepository) DeleteService(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Service{}).Error
}

func (r *serviceRepository) FindServiceByID(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	var svc model.Service
	if err := GetDB(ctx, r.db).First(&svc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *serviceRepository) FindServiceByClientID(ctx context.Context, clientID string) (*model.Service, error) {
	var svc model.Service
	if err := GetDB(ctx, r.db).First(&svc, "client_id = ?", clientID).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *serviceRepository) ListServices(ctx context.Context, page, limit int) ([]model.Service, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.Model(&model.Service{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var services []model.Service
	offset := (page - 1) * limit
	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&services).Error; err != nil {
		return nil, 0, err
	}

	return services, total, nil
}

func (r *serviceRepository) ListActiveCreditPacks(ctx context.Context) ([]model.CreditPack, error) {
	var packs []model.CreditPack
	err := GetDB(ctx, r.db).Where("active = ?", true).Order("credits asc").Find(&packs).Error
	return packs, err
}

func (r *serviceRepository) FindCreditPackByID(ctx context.Context, id uuid.UUID) (*model.CreditPack, error) {
	var pack model.CreditPack
	if err := GetDB(ctx, r.db).First(&pack, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pack, nil
}

func (r *serviceRepository) CreateCreditPack(ctx context.Context, pack *model.CreditPack) error {
	return GetDB(ctx, r.db).Create(pack).Error
}
