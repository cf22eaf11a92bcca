package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/forecourt/backoffice/internal/adapter/queue"
	"github.com/forecourt/backoffice/internal/domain"
	"github.com/forecourt/backoffice/internal/mocks"
	"github.com/forecourt/backoffice/internal/ports"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dieselTankRepo() *mocks.MockTankRepository {
	return &mocks.MockTankRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Tank, error) {
			if id == "TANK-DIESEL" {
				return &domain.Tank{ID: "TANK-DIESEL", FuelType: domain.FuelTypeDiesel}, nil
			}
			return nil, nil
		},
	}
}

func TestRecordDelivery_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	var saved *domain.Delivery

	deliveryRepo := &mocks.MockDeliveryRepository{
		SaveFunc: func(ctx context.Context, delivery *domain.Delivery) error {
			saved = delivery
			return nil
		},
	}
	mockMQ := mocks.NewMockMessageQueue()
	service := NewService(deliveryRepo, dieselTankRepo(), mockMQ, newTestLogger())

	req := &ports.DeliveryRequest{
		TankID:          "TANK-DIESEL",
		DeliveredAt:     time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC),
		Supplier:        "FuelCorp",
		InvoiceNumber:   "INV-100",
		BeforeVolume:    dec("5000"),
		VolumeDelivered: dec("15000"),
		RecordedBy:      "supervisor",
	}

	// Act
	delivery, err := service.RecordDelivery(ctx, req)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if saved == nil {
		t.Fatal("expected delivery to be saved")
	}
	if delivery.ID == "" {
		t.Error("expected generated delivery ID")
	}
	if delivery.Linked() {
		t.Error("a freshly recorded delivery must be unlinked")
	}
	// after is derived from before + delivered
	if !delivery.AfterVolume.Equal(dec("20000")) {
		t.Errorf("expected derived after volume 20000, got %s", delivery.AfterVolume)
	}
	if delivery.FuelType != domain.FuelTypeDiesel {
		t.Errorf("expected fuel type to default to the tank's, got %s", delivery.FuelType)
	}
	if msgs := mockMQ.GetPublishedMessages(queue.SubjectDeliveryRecorded); len(msgs) != 1 {
		t.Errorf("expected 1 delivery.recorded event, got %d", len(msgs))
	}
}

func TestRecordDelivery_DerivesVolumeFromDips(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service := NewService(&mocks.MockDeliveryRepository{}, dieselTankRepo(), mocks.NewMockMessageQueue(), newTestLogger())

	req := &ports.DeliveryRequest{
		TankID:       "TANK-DIESEL",
		Supplier:     "FuelCorp",
		BeforeVolume: dec("5000"),
		AfterVolume:  dec("20000"),
	}

	// Act
	delivery, err := service.RecordDelivery(ctx, req)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !delivery.VolumeDelivered.Equal(dec("15000")) {
		t.Errorf("expected derived volume 15000, got %s", delivery.VolumeDelivered)
	}
	if delivery.DeliveredAt.IsZero() {
		t.Error("expected delivered_at to be stamped")
	}
}

func TestRecordDelivery_TankNotFound(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service := NewService(&mocks.MockDeliveryRepository{}, dieselTankRepo(), mocks.NewMockMessageQueue(), newTestLogger())

	req := &ports.DeliveryRequest{
		TankID:          "TANK-UNKNOWN",
		VolumeDelivered: dec("1000"),
	}

	// Act
	_, err := service.RecordDelivery(ctx, req)

	// Assert
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestRecordDelivery_RejectsNonPositiveVolume(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service := NewService(&mocks.MockDeliveryRepository{}, dieselTankRepo(), mocks.NewMockMessageQueue(), newTestLogger())

	req := &ports.DeliveryRequest{
		TankID:       "TANK-DIESEL",
		Supplier:     "FuelCorp",
		BeforeVolume: dec("20000"),
		AfterVolume:  dec("5000"), // dips reversed: derived volume is negative
	}

	// Act
	_, err := service.RecordDelivery(ctx, req)

	// Assert
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestRecordDelivery_RejectsFuelTypeMismatch(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service := NewService(&mocks.MockDeliveryRepository{}, dieselTankRepo(), mocks.NewMockMessageQueue(), newTestLogger())

	req := &ports.DeliveryRequest{
		TankID:          "TANK-DIESEL",
		FuelType:        domain.FuelTypePetrol,
		VolumeDelivered: dec("1000"),
	}

	// Act
	_, err := service.RecordDelivery(ctx, req)

	// Assert
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestListUnlinked(t *testing.T) {
	// Arrange
	ctx := context.Background()
	deliveryRepo := &mocks.MockDeliveryRepository{
		FindUnlinkedFunc: func(ctx context.Context, tankID string) ([]domain.Delivery, error) {
			if tankID != "TANK-DIESEL" {
				t.Errorf("expected tank filter TANK-DIESEL, got %q", tankID)
			}
			return []domain.Delivery{{ID: "d1"}, {ID: "d2"}}, nil
		},
	}
	service := NewService(deliveryRepo, dieselTankRepo(), mocks.NewMockMessageQueue(), newTestLogger())

	// Act
	deliveries, err := service.ListUnlinked(ctx, "TANK-DIESEL")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(deliveries) != 2 {
		t.Errorf("expected 2 deliveries, got %d", len(deliveries))
	}
}
