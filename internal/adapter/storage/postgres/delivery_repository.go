package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/forecourt/backoffice/internal/domain"
	"github.com/forecourt/backoffice/internal/ports"
)

type DeliveryRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewDeliveryRepository(db *gorm.DB, log *zap.Logger) ports.DeliveryRepository {
	return &DeliveryRepository{
		db:  db,
		log: log,
	}
}

func (r *DeliveryRepository) Save(ctx context.Context, delivery *domain.Delivery) error {
	result := r.db.WithContext(ctx).Save(delivery)
	if result.Error != nil {
		r.log.Error("Failed to save delivery", zap.String("delivery_id", delivery.ID), zap.Error(result.Error))
		return result.Error
	}
	return nil
}

func (r *DeliveryRepository) FindByID(ctx context.Context, id string) (*domain.Delivery, error) {
	var delivery domain.Delivery
	err := r.db.WithContext(ctx).First(&delivery, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &delivery, nil
}

func (r *DeliveryRepository) FindUnlinked(ctx context.Context, tankID string) ([]domain.Delivery, error) {
	var deliveries []domain.Delivery
	query := r.db.WithContext(ctx).Where("reading_id IS NULL")
	if tankID != "" {
		query = query.Where("tank_id = ?", tankID)
	}

	err := query.Order("delivered_at").Find(&deliveries).Error
	if err != nil {
		return nil, err
	}
	return deliveries, nil
}
