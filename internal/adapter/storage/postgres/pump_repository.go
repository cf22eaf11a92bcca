package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/forecourt/backoffice/internal/domain"
	"github.com/forecourt/backoffice/internal/ports"
)

type PumpRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewPumpRepository(db *gorm.DB, log *zap.Logger) ports.PumpRepository {
	return &PumpRepository{
		db:  db,
		log: log,
	}
}

func (r *PumpRepository) Save(ctx context.Context, pump *domain.Pump) error {
	return r.db.WithContext(ctx).Save(pump).Error
}

func (r *PumpRepository) FindByID(ctx context.Context, id string) (*domain.Pump, error) {
	var pump domain.Pump
	err := r.db.WithContext(ctx).Preload("Nozzles").First(&pump, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pump, nil
}

func (r *PumpRepository) FindAll(ctx context.Context, filter map[string]interface{}) ([]domain.Pump, error) {
	var pumps []domain.Pump
	query := r.db.WithContext(ctx).Preload("Nozzles")
	if islandID, ok := filter["island_id"]; ok {
		query = query.Where("island_id = ?", islandID)
	}
	if status, ok := filter["status"]; ok {
		query = query.Where("status = ?", status)
	}

	err := query.Order("id").Find(&pumps).Error
	if err != nil {
		return nil, err
	}
	return pumps, nil
}

func (r *PumpRepository) UpdateStatus(ctx context.Context, id string, status domain.AssetStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Pump{}).Where("id = ?", id).Update("status", status).Error
}
