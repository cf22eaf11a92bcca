package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/forecourt/backoffice/internal/domain"
	"github.com/forecourt/backoffice/internal/ports"
)

type TankRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTankRepository(db *gorm.DB, log *zap.Logger) ports.TankRepository {
	return &TankRepository{
		db:  db,
		log: log,
	}
}

func (r *TankRepository) Save(ctx context.Context, tank *domain.Tank) error {
	result := r.db.WithContext(ctx).Save(tank)
	if result.Error != nil {
		r.log.Error("Failed to save tank", zap.String("tank_id", tank.ID), zap.Error(result.Error))
		return result.Error
	}
	return nil
}

func (r *TankRepository) FindByID(ctx context.Context, id string) (*domain.Tank, error) {
	var tank domain.Tank
	err := r.db.WithContext(ctx).First(&tank, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tank, nil
}

func (r *TankRepository) FindAll(ctx context.Context, filter map[string]interface{}) ([]domain.Tank, error) {
	var tanks []domain.Tank
	query := r.db.WithContext(ctx)
	if status, ok := filter["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if fuelType, ok := filter["fuel_type"]; ok {
		query = query.Where("fuel_type = ?", fuelType)
	}

	err := query.Order("id").Find(&tanks).Error
	if err != nil {
		return nil, err
	}
	return tanks, nil
}

func (r *TankRepository) UpdateStatus(ctx context.Context, id string, status domain.AssetStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Tank{}).Where("id = ?", id).Update("status", status).Error
}
