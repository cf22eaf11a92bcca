// Package delivery records fuel offloads as they happen. A recorded
// delivery sits in the unlinked pool until the shift submission that covers
// it claims it.
package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/forecourt/backoffice/internal/adapter/queue"
	"github.com/forecourt/backoffice/internal/domain"
	"github.com/forecourt/backoffice/internal/observability/telemetry"
	"github.com/forecourt/backoffice/internal/ports"
)

type Service struct {
	deliveries ports.DeliveryRepository
	tanks      ports.TankRepository
	mq         queue.MessageQueue
	log        *zap.Logger
}

func NewService(deliveries ports.DeliveryRepository, tanks ports.TankRepository, mq queue.MessageQueue, log *zap.Logger) ports.DeliveryService {
	return &Service{
		deliveries: deliveries,
		tanks:      tanks,
		mq:         mq,
		log:        log,
	}
}

func (s *Service) RecordDelivery(ctx context.Context, req *ports.DeliveryRequest) (*domain.Delivery, error) {
	tank, err := s.tanks.FindByID(ctx, req.TankID)
	if err != nil {
		return nil, err
	}
	if tank == nil {
		return nil, errors.New("tank not found")
	}

	volume := req.VolumeDelivered
	after := req.AfterVolume
	// The dip pair and the volume derive each other.
	if volume.IsZero() && after.GreaterThan(decimal.Zero) {
		volume = after.Sub(req.BeforeVolume)
	}
	if after.IsZero() && !volume.IsZero() && req.BeforeVolume.GreaterThan(decimal.Zero) {
		after = req.BeforeVolume.Add(volume)
	}
	if !volume.GreaterThan(decimal.Zero) {
		return nil, errors.New("volume delivered must be positive")
	}

	fuelType := req.FuelType
	if fuelType == "" {
		fuelType = tank.FuelType
	}
	if fuelType != tank.FuelType {
		return nil, errors.New("delivery fuel type does not match tank")
	}

	deliveredAt := req.DeliveredAt
	if deliveredAt.IsZero() {
		deliveredAt = time.Now()
	}

	now := time.Now()
	delivery := &domain.Delivery{
		ID:              uuid.NewString(),
		TankID:          req.TankID,
		DeliveredAt:     deliveredAt,
		Supplier:        req.Supplier,
		InvoiceNumber:   req.InvoiceNumber,
		FuelType:        fuelType,
		BeforeVolume:    req.BeforeVolume,
		AfterVolume:     after,
		VolumeDelivered: volume,
		RecordedBy:      req.RecordedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.deliveries.Save(ctx, delivery); err != nil {
		return nil, err
	}

	s.log.Info("Delivery recorded",
		zap.String("delivery_id", delivery.ID),
		zap.String("tank_id", delivery.TankID),
		zap.String("supplier", delivery.Supplier),
		zap.String("volume_delivered", delivery.VolumeDelivered.String()),
	)

	s.publishRecorded(delivery)

	return delivery, nil
}

func (s *Service) GetDelivery(ctx context.Context, id string) (*domain.Delivery, error) {
	return s.deliveries.FindByID(ctx, id)
}

func (s *Service) ListUnlinked(ctx context.Context, tankID string) ([]domain.Delivery, error) {
	return s.deliveries.FindUnlinked(ctx, tankID)
}

func (s *Service) publishRecorded(delivery *domain.Delivery) {
	event := queue.DeliveryEvent{
		DeliveryID:      delivery.ID,
		TankID:          delivery.TankID,
		Supplier:        delivery.Supplier,
		InvoiceNumber:   delivery.InvoiceNumber,
		VolumeDelivered: delivery.VolumeDelivered,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.mq.Publish(queue.SubjectDeliveryRecorded, data); err != nil {
		s.log.Warn("Failed to publish delivery.recorded", zap.Error(err))
	}
	telemetry.DeliveriesRecordedTotal.Inc()
}
