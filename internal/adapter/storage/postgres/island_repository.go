package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/forecourt/backoffice/internal/domain"
	"github.com/forecourt/backoffice/internal/ports"
)

type IslandRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewIslandRepository(db *gorm.DB, log *zap.Logger) ports.IslandRepository {
	return &IslandRepository{
		db:  db,
		log: log,
	}
}

func (r *IslandRepository) Save(ctx context.Context, island *domain.Island) error {
	return r.db.WithContext(ctx).Save(island).Error
}

func (r *IslandRepository) FindByID(ctx context.Context, id string) (*domain.Island, error) {
	var island domain.Island
	err := r.db.WithContext(ctx).Preload("Pumps").Preload("Pumps.Nozzles").First(&island, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &island, nil
}

func (r *IslandRepository) FindAll(ctx context.Context) ([]domain.Island, error) {
	var islands []domain.Island
	err := r.db.WithContext(ctx).Preload("Pumps").Preload("Pumps.Nozzles").Order("position").Find(&islands).Error
	if err != nil {
		return nil, err
	}
	return islands, nil
}
