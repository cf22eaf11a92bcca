package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/forecourt/backoffice/internal/domain"
	"github.com/forecourt/backoffice/internal/ports"
)

type ReadingRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewReadingRepository(db *gorm.DB, log *zap.Logger) ports.ReadingRepository {
	return &ReadingRepository{
		db:  db,
		log: log,
	}
}

// Save inserts the reading with its nozzle readings, inline deliveries and
// allocations, and claims the given pool deliveries, all in one database
// transaction. A pool delivery already claimed by another reading aborts
// the whole submission.
func (r *ReadingRepository) Save(ctx context.Context, reading *domain.ShiftReading, claimDeliveryIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reading).Error; err != nil {
			return err
		}
		if len(claimDeliveryIDs) == 0 {
			return nil
		}
		result := tx.Model(&domain.Delivery{}).
			Where("id IN ? AND reading_id IS NULL", claimDeliveryIDs).
			Update("reading_id", reading.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(claimDeliveryIDs)) {
			return fmt.Errorf("claimed %d of %d pool deliveries", result.RowsAffected, len(claimDeliveryIDs))
		}
		return nil
	})
}

func (r *ReadingRepository) FindByID(ctx context.Context, id string) (*domain.ShiftReading, error) {
	var reading domain.ShiftReading
	err := r.preloaded(ctx).First(&reading, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reading, nil
}

func (r *ReadingRepository) FindByIdentity(ctx context.Context, tankID, date string, shift domain.ShiftType) (*domain.ShiftReading, error) {
	var reading domain.ShiftReading
	err := r.db.WithContext(ctx).
		Where("tank_id = ? AND date = ? AND shift_type = ?", tankID, date, shift).
		First(&reading).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reading, nil
}

func (r *ReadingRepository) FindLatestByTank(ctx context.Context, tankID string) (*domain.ShiftReading, error) {
	var reading domain.ShiftReading
	// ISO dates sort lexically; DAY < NIGHT puts the night shift last.
	err := r.preloaded(ctx).
		Where("tank_id = ?", tankID).
		Order("date DESC").Order("shift_type DESC").Order("created_at DESC").
		First(&reading).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reading, nil
}

func (r *ReadingRepository) FindAll(ctx context.Context, filter map[string]interface{}) ([]domain.ShiftReading, error) {
	var readings []domain.ShiftReading
	query := r.preloaded(ctx)
	if tankID, ok := filter["tank_id"]; ok {
		query = query.Where("tank_id = ?", tankID)
	}
	if date, ok := filter["date"]; ok {
		query = query.Where("date = ?", date)
	}
	if status, ok := filter["validation_status"]; ok {
		query = query.Where("validation_status = ?", status)
	}

	err := query.Order("date DESC").Order("created_at DESC").Find(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

func (r *ReadingRepository) FindByDate(ctx context.Context, date string) ([]domain.ShiftReading, error) {
	var readings []domain.ShiftReading
	err := r.preloaded(ctx).
		Where("date = ?", date).
		Order("tank_id").Order("shift_type").
		Find(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

func (r *ReadingRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("NozzleReadings").
		Preload("Deliveries").
		Preload("Allocations")
}
