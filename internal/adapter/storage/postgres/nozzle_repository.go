package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/forecourt/backoffice/internal/domain"
	"github.com/forecourt/backoffice/internal/ports"
)

type NozzleRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewNozzleRepository(db *gorm.DB, log *zap.Logger) ports.NozzleRepository {
	return &NozzleRepository{
		db:  db,
		log: log,
	}
}

func (r *NozzleRepository) Save(ctx context.Context, nozzle *domain.Nozzle) error {
	return r.db.WithContext(ctx).Save(nozzle).Error
}

func (r *NozzleRepository) FindByID(ctx context.Context, id string) (*domain.Nozzle, error) {
	var nozzle domain.Nozzle
	err := r.db.WithContext(ctx).First(&nozzle, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &nozzle, nil
}

func (r *NozzleRepository) FindAll(ctx context.Context, filter map[string]interface{}) ([]domain.Nozzle, error) {
	var nozzles []domain.Nozzle
	query := r.db.WithContext(ctx)
	if pumpID, ok := filter["pump_id"]; ok {
		query = query.Where("pump_id = ?", pumpID)
	}
	if tankID, ok := filter["tank_id"]; ok {
		query = query.Where("tank_id = ?", tankID)
	}
	if status, ok := filter["status"]; ok {
		query = query.Where("status = ?", status)
	}

	err := query.Order("id").Find(&nozzles).Error
	if err != nil {
		return nil, err
	}
	return nozzles, nil
}

func (r *NozzleRepository) UpdateStatus(ctx context.Context, id string, status domain.AssetStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Nozzle{}).Where("id = ?", id).Update("status", status).Error
}
