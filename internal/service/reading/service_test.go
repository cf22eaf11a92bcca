package reading

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/forecourt/backoffice/internal/adapter/cache"
	"github.com/forecourt/backoffice/internal/adapter/queue"
	"github.com/forecourt/backoffice/internal/domain"
	"github.com/forecourt/backoffice/internal/mocks"
	"github.com/forecourt/backoffice/internal/ports"
	"github.com/forecourt/backoffice/internal/reconcile"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dieselTank() *domain.Tank {
	return &domain.Tank{
		ID:             "TANK-DIESEL",
		Name:           "Diesel Tank",
		FuelType:       domain.FuelTypeDiesel,
		CapacityLiters: dec("40000"),
		Status:         domain.AssetStatusActive,
	}
}

func tankRepoWith(tank *domain.Tank) *mocks.MockTankRepository {
	return &mocks.MockTankRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Tank, error) {
			if tank != nil && id == tank.ID {
				return tank, nil
			}
			return nil, nil
		},
	}
}

func newTestService(readings *mocks.MockReadingRepository, tanks *mocks.MockTankRepository, c *mocks.MockCache, mq *mocks.MockMessageQueue) ports.ReadingService {
	return NewService(readings, tanks, &mocks.MockDeliveryRepository{}, c, mq, reconcile.DefaultThresholds(), false, time.Hour, newTestLogger())
}

// poolWith serves the given deliveries by ID, standing in for the unlinked
// pool during claim tests.
func poolWith(deliveries ...*domain.Delivery) *mocks.MockDeliveryRepository {
	return &mocks.MockDeliveryRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Delivery, error) {
			for _, d := range deliveries {
				if d.ID == id {
					return d, nil
				}
			}
			return nil, nil
		},
	}
}

// balancedSubmission is a clean shift: meters, dips and cash all agree, so
// the verdict is PASS.
func balancedSubmission() *ports.ReadingSubmission {
	return &ports.ReadingSubmission{
		TankID:        "TANK-DIESEL",
		Date:          "2024-03-15",
		ShiftType:     domain.ShiftTypeDay,
		OpeningVolume: dec("5000"),
		ClosingVolume: dec("4000"),
		NozzleReadings: []ports.NozzleReadingEntry{
			{
				NozzleID:          "NOZZLE-1",
				Attendant:         "Maria",
				ElectronicOpening: dec("100"),
				ElectronicClosing: dec("1100"),
				MechanicalOpening: dec("200"),
				MechanicalClosing: dec("1200"),
			},
		},
		PricePerLiter:    dec("2.00"),
		ActualCashBanked: dec("2000.00"),
		RecordedBy:       "supervisor",
	}
}

func TestSubmitReading_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	var savedReading *domain.ShiftReading
	var savedClaims []string

	readingRepo := &mocks.MockReadingRepository{
		SaveFunc: func(ctx context.Context, reading *domain.ShiftReading, claimDeliveryIDs []string) error {
			savedReading = reading
			savedClaims = claimDeliveryIDs
			return nil
		},
	}
	mockCache := mocks.NewMockCache()
	mockMQ := mocks.NewMockMessageQueue()
	service := newTestService(readingRepo, tankRepoWith(dieselTank()), mockCache, mockMQ)

	// Act
	result, err := service.SubmitReading(ctx, balancedSubmission())

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if savedReading == nil {
		t.Fatal("expected reading to be saved")
	}
	if len(savedClaims) != 0 {
		t.Errorf("expected no claimed deliveries, got %v", savedClaims)
	}
	if savedReading.ID == "" {
		t.Error("expected generated reading ID")
	}
	if !result.TotalElectronic.Equal(dec("1000")) {
		t.Errorf("expected total electronic 1000, got %s", result.TotalElectronic)
	}
	if !result.TankVolumeMovement.Equal(dec("1000")) {
		t.Errorf("expected tank movement 1000, got %s", result.TankVolumeMovement)
	}
	if !result.CashDifference.IsZero() {
		t.Errorf("expected zero cash difference, got %s", result.CashDifference)
	}
	if result.ValidationStatus != domain.ValidationStatusPass {
		t.Errorf("expected PASS, got %s", result.ValidationStatus)
	}
	if len(result.DeliveryWarnings) != 0 {
		t.Errorf("expected no delivery warnings, got %v", result.DeliveryWarnings)
	}

	if msgs := mockMQ.GetPublishedMessages(queue.SubjectReadingSubmitted); len(msgs) != 1 {
		t.Errorf("expected 1 reading.submitted event, got %d", len(msgs))
	}
	if msgs := mockMQ.GetPublishedMessages(queue.SubjectReadingAlert); len(msgs) != 0 {
		t.Errorf("expected no alert for PASS, got %d", len(msgs))
	}

	if cached, _ := mockCache.Get(ctx, cache.PreviousShiftKey("TANK-DIESEL")); cached == "" {
		t.Error("expected previous-shift snapshot to be cached")
	}
}

func TestSubmitReading_NoAttendant(t *testing.T) {
	// Arrange
	ctx := context.Background()
	saveCalled := false

	readingRepo := &mocks.MockReadingRepository{
		SaveFunc: func(ctx context.Context, reading *domain.ShiftReading, claimDeliveryIDs []string) error {
			saveCalled = true
			return nil
		},
	}
	mockMQ := mocks.NewMockMessageQueue()
	service := newTestService(readingRepo, tankRepoWith(dieselTank()), mocks.NewMockCache(), mockMQ)

	sub := balancedSubmission()
	sub.NozzleReadings[0].Attendant = "   "

	// Act
	_, err := service.SubmitReading(ctx, sub)

	// Assert
	if !errors.Is(err, ErrNoAttendant) {
		t.Fatalf("expected ErrNoAttendant, got %v", err)
	}
	if saveCalled {
		t.Error("nothing should be persisted when the guard fails")
	}
	if msgs := mockMQ.GetPublishedMessages(queue.SubjectReadingSubmitted); len(msgs) != 0 {
		t.Error("no events should be published when the guard fails")
	}
}

func TestSubmitReading_DuplicateIdentity(t *testing.T) {
	// Arrange
	ctx := context.Background()

	readingRepo := &mocks.MockReadingRepository{
		FindByIdentityFunc: func(ctx context.Context, tankID, date string, shift domain.ShiftType) (*domain.ShiftReading, error) {
			return &domain.ShiftReading{ID: "existing"}, nil
		},
	}
	service := newTestService(readingRepo, tankRepoWith(dieselTank()), mocks.NewMockCache(), mocks.NewMockMessageQueue())

	// Act
	_, err := service.SubmitReading(ctx, balancedSubmission())

	// Assert
	if !errors.Is(err, ErrDuplicateReading) {
		t.Fatalf("expected ErrDuplicateReading, got %v", err)
	}
}

func TestSubmitReading_TankNotFound(t *testing.T) {
	// Arrange
	ctx := context.Background()

	service := newTestService(&mocks.MockReadingRepository{}, tankRepoWith(nil), mocks.NewMockCache(), mocks.NewMockMessageQueue())

	// Act
	_, err := service.SubmitReading(ctx, balancedSubmission())

	// Assert
	if !errors.Is(err, ErrTankNotFound) {
		t.Fatalf("expected ErrTankNotFound, got %v", err)
	}
}

func TestSubmitReading_InvalidIdentity(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service := newTestService(&mocks.MockReadingRepository{}, tankRepoWith(dieselTank()), mocks.NewMockCache(), mocks.NewMockMessageQueue())

	tests := []struct {
		name   string
		mutate func(*ports.ReadingSubmission)
	}{
		{"missing tank", func(s *ports.ReadingSubmission) { s.TankID = "" }},
		{"bad date", func(s *ports.ReadingSubmission) { s.Date = "15/03/2024" }},
		{"bad shift", func(s *ports.ReadingSubmission) { s.ShiftType = "EVENING" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := balancedSubmission()
			tt.mutate(sub)

			// Act
			_, err := service.SubmitReading(ctx, sub)

			// Assert
			if err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestSubmitReading_AllocationMismatchRequiresConfirmation(t *testing.T) {
	// Arrange
	ctx := context.Background()
	var savedReading *domain.ShiftReading

	readingRepo := &mocks.MockReadingRepository{
		SaveFunc: func(ctx context.Context, reading *domain.ShiftReading, claimDeliveryIDs []string) error {
			savedReading = reading
			return nil
		},
	}
	service := newTestService(readingRepo, tankRepoWith(dieselTank()), mocks.NewMockCache(), mocks.NewMockMessageQueue())

	sub := balancedSubmission()
	// Electronic total is 1000; allocate only 900 of it.
	sub.CustomerAllocations = []ports.AllocationEntry{
		{CustomerID: "CUST-1", CustomerName: "Haulage Co", Volume: dec("900")},
	}

	// Act: without confirmation
	_, err := service.SubmitReading(ctx, sub)

	// Assert
	if !errors.Is(err, ErrAllocationMismatch) {
		t.Fatalf("expected ErrAllocationMismatch, got %v", err)
	}
	if savedReading != nil {
		t.Fatal("mismatched submission must not persist without confirmation")
	}

	// Act: operator confirms the mismatch
	sub.ConfirmAllocationMismatch = true
	result, err := service.SubmitReading(ctx, sub)

	// Assert
	if err != nil {
		t.Fatalf("expected confirmed submission to succeed, got %v", err)
	}
	if !savedReading.AllocationMismatch {
		t.Error("expected allocation mismatch flag on the record")
	}
	if !savedReading.AllocationMismatchByLiter.Equal(dec("100")) {
		t.Errorf("expected mismatch of 100 L, got %s", savedReading.AllocationMismatchByLiter)
	}
	if result.AllocationValid {
		t.Error("expected allocation_valid=false in the result")
	}
	if len(savedReading.Allocations) != 1 {
		t.Fatalf("expected 1 allocation child, got %d", len(savedReading.Allocations))
	}
	// Allocation price falls back to the shift price.
	if !savedReading.Allocations[0].Amount.Equal(dec("1800.00")) {
		t.Errorf("expected allocation amount 1800.00, got %s", savedReading.Allocations[0].Amount)
	}
}

func TestSubmitReading_AllocationsRejectedForPetrol(t *testing.T) {
	// Arrange
	ctx := context.Background()
	petrol := &domain.Tank{
		ID:       "TANK-PETROL",
		Name:     "Petrol Tank",
		FuelType: domain.FuelTypePetrol,
		Status:   domain.AssetStatusActive,
	}
	service := newTestService(&mocks.MockReadingRepository{}, tankRepoWith(petrol), mocks.NewMockCache(), mocks.NewMockMessageQueue())

	sub := balancedSubmission()
	sub.TankID = "TANK-PETROL"
	sub.CustomerAllocations = []ports.AllocationEntry{
		{CustomerID: "CUST-1", Volume: dec("1000")},
	}

	// Act
	_, err := service.SubmitReading(ctx, sub)

	// Assert
	if err == nil {
		t.Fatal("expected error for petrol allocations, got nil")
	}
}

func TestSubmitReading_FailVerdictPublishesAlert(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockMQ := mocks.NewMockMessageQueue()
	service := newTestService(&mocks.MockReadingRepository{}, tankRepoWith(dieselTank()), mocks.NewMockCache(), mockMQ)

	sub := balancedSubmission()
	// Expected cash is 2000.00; banking 1900.00 is a 5% loss, past the
	// 2% fail limit.
	sub.ActualCashBanked = dec("1900.00")

	// Act
	result, err := service.SubmitReading(ctx, sub)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.ValidationStatus != domain.ValidationStatusFail {
		t.Fatalf("expected FAIL, got %s", result.ValidationStatus)
	}

	alerts := mockMQ.GetPublishedMessages(queue.SubjectReadingAlert)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert event, got %d", len(alerts))
	}

	var event queue.ReadingEvent
	if err := json.Unmarshal(alerts[0], &event); err != nil {
		t.Fatalf("failed to decode alert event: %v", err)
	}
	if event.ValidationStatus != string(domain.ValidationStatusFail) {
		t.Errorf("expected FAIL in alert event, got %s", event.ValidationStatus)
	}
	if !event.CashDifference.Equal(dec("-100.00")) {
		t.Errorf("expected cash difference -100.00, got %s", event.CashDifference)
	}
}

func TestSubmitReading_WarningAlertsOnlyWhenConfigured(t *testing.T) {
	// Arrange
	ctx := context.Background()

	// Expected cash 2000.00; banking 1970.00 is a 1.5% loss: WARNING.
	sub := balancedSubmission()
	sub.ActualCashBanked = dec("1970.00")

	quietMQ := mocks.NewMockMessageQueue()
	quiet := NewService(&mocks.MockReadingRepository{}, tankRepoWith(dieselTank()), &mocks.MockDeliveryRepository{}, mocks.NewMockCache(), quietMQ, reconcile.DefaultThresholds(), false, time.Hour, newTestLogger())

	noisyMQ := mocks.NewMockMessageQueue()
	noisy := NewService(&mocks.MockReadingRepository{}, tankRepoWith(dieselTank()), &mocks.MockDeliveryRepository{}, mocks.NewMockCache(), noisyMQ, reconcile.DefaultThresholds(), true, time.Hour, newTestLogger())

	// Act
	if _, err := quiet.SubmitReading(ctx, sub); err != nil {
		t.Fatalf("quiet submission failed: %v", err)
	}
	sub2 := balancedSubmission()
	sub2.ActualCashBanked = dec("1970.00")
	if _, err := noisy.SubmitReading(ctx, sub2); err != nil {
		t.Fatalf("noisy submission failed: %v", err)
	}

	// Assert
	if msgs := quietMQ.GetPublishedMessages(queue.SubjectReadingAlert); len(msgs) != 0 {
		t.Errorf("expected no WARNING alert by default, got %d", len(msgs))
	}
	if msgs := noisyMQ.GetPublishedMessages(queue.SubjectReadingAlert); len(msgs) != 1 {
		t.Errorf("expected WARNING alert when configured, got %d", len(msgs))
	}
}

func TestSubmitReading_ClaimsPoolDeliveries(t *testing.T) {
	// Arrange
	ctx := context.Background()
	var savedReading *domain.ShiftReading
	var savedClaims []string

	readingRepo := &mocks.MockReadingRepository{
		SaveFunc: func(ctx context.Context, reading *domain.ShiftReading, claimDeliveryIDs []string) error {
			savedReading = reading
			savedClaims = claimDeliveryIDs
			return nil
		},
	}
	pool := poolWith(&domain.Delivery{
		ID:              "pool-delivery-1",
		TankID:          "TANK-DIESEL",
		DeliveredAt:     time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC),
		Supplier:        "FuelCorp",
		InvoiceNumber:   "INV-100",
		FuelType:        domain.FuelTypeDiesel,
		BeforeVolume:    dec("19000"),
		AfterVolume:     dec("34000"),
		VolumeDelivered: dec("15000"),
	})
	service := NewService(readingRepo, tankRepoWith(dieselTank()), pool, mocks.NewMockCache(), mocks.NewMockMessageQueue(), reconcile.DefaultThresholds(), false, time.Hour, newTestLogger())

	sub := balancedSubmission()
	sub.OpeningVolume = dec("20000")
	sub.ClosingVolume = dec("34000")
	// The claim carries only the ID; the figures come from the pool row.
	sub.Deliveries = []ports.DeliveryEntry{{DeliveryID: "pool-delivery-1"}}

	// Act
	result, err := service.SubmitReading(ctx, sub)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(savedClaims) != 1 || savedClaims[0] != "pool-delivery-1" {
		t.Errorf("expected claim of pool-delivery-1, got %v", savedClaims)
	}
	if len(savedReading.Deliveries) != 0 {
		t.Errorf("claimed pool deliveries must not be duplicated as children, got %d", len(savedReading.Deliveries))
	}
	// (20000 − 34000) + 15000 = 1000
	if !result.TankVolumeMovement.Equal(dec("1000")) {
		t.Errorf("expected tank movement 1000, got %s", result.TankVolumeMovement)
	}
	if !result.TotalDelivered.Equal(dec("15000")) {
		t.Errorf("expected total delivered 15000, got %s", result.TotalDelivered)
	}
}

func TestSubmitReading_RejectsUnclaimableDelivery(t *testing.T) {
	// Arrange
	ctx := context.Background()
	saveCalled := false

	readingRepo := &mocks.MockReadingRepository{
		SaveFunc: func(ctx context.Context, reading *domain.ShiftReading, claimDeliveryIDs []string) error {
			saveCalled = true
			return nil
		},
	}

	otherReading := "reading-elsewhere"
	linked := &domain.Delivery{
		ID:              "pool-delivery-1",
		ReadingID:       &otherReading,
		TankID:          "TANK-DIESEL",
		VolumeDelivered: dec("15000"),
	}

	tests := []struct {
		name string
		pool *mocks.MockDeliveryRepository
	}{
		{name: "unknown delivery", pool: poolWith()},
		{name: "already linked", pool: poolWith(linked)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(readingRepo, tankRepoWith(dieselTank()), tt.pool, mocks.NewMockCache(), mocks.NewMockMessageQueue(), reconcile.DefaultThresholds(), false, time.Hour, newTestLogger())

			sub := balancedSubmission()
			sub.Deliveries = []ports.DeliveryEntry{{DeliveryID: "pool-delivery-1"}}

			// Act
			_, err := service.SubmitReading(ctx, sub)

			// Assert
			if !errors.Is(err, ErrDeliveryNotClaimable) {
				t.Fatalf("expected ErrDeliveryNotClaimable, got %v", err)
			}
			if saveCalled {
				t.Error("save must not run when a claim is invalid")
			}
		})
	}
}

func TestSubmitReading_RejectsCrossTankClaim(t *testing.T) {
	// Arrange
	ctx := context.Background()
	pool := poolWith(&domain.Delivery{
		ID:              "pool-delivery-2",
		TankID:          "TANK-PETROL",
		FuelType:        domain.FuelTypePetrol,
		VolumeDelivered: dec("8000"),
	})
	service := NewService(&mocks.MockReadingRepository{}, tankRepoWith(dieselTank()), pool, mocks.NewMockCache(), mocks.NewMockMessageQueue(), reconcile.DefaultThresholds(), false, time.Hour, newTestLogger())

	sub := balancedSubmission()
	sub.Deliveries = []ports.DeliveryEntry{{DeliveryID: "pool-delivery-2"}}

	// Act
	_, err := service.SubmitReading(ctx, sub)

	// Assert
	if err == nil {
		t.Fatal("expected cross-tank claim to be rejected")
	}
}

func TestSubmitReading_DerivesDeliveryVolume(t *testing.T) {
	// Arrange
	ctx := context.Background()
	var savedReading *domain.ShiftReading

	readingRepo := &mocks.MockReadingRepository{
		SaveFunc: func(ctx context.Context, reading *domain.ShiftReading, claimDeliveryIDs []string) error {
			savedReading = reading
			return nil
		},
	}
	service := newTestService(readingRepo, tankRepoWith(dieselTank()), mocks.NewMockCache(), mocks.NewMockMessageQueue())

	sub := balancedSubmission()
	sub.OpeningVolume = dec("20000")
	sub.ClosingVolume = dec("34000")
	sub.Deliveries = []ports.DeliveryEntry{
		{
			DeliveryTime: time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC),
			Supplier:     "FuelCorp",
			BeforeVolume: dec("19000"),
			AfterVolume:  dec("34000"),
			// volume_delivered left empty: derived as after − before
		},
	}

	// Act
	result, err := service.SubmitReading(ctx, sub)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(savedReading.Deliveries) != 1 {
		t.Fatalf("expected 1 delivery child, got %d", len(savedReading.Deliveries))
	}
	if !savedReading.Deliveries[0].VolumeDelivered.Equal(dec("15000")) {
		t.Errorf("expected derived volume 15000, got %s", savedReading.Deliveries[0].VolumeDelivered)
	}
	if savedReading.Deliveries[0].FuelType != domain.FuelTypeDiesel {
		t.Errorf("expected delivery fuel type to default to the tank's, got %s", savedReading.Deliveries[0].FuelType)
	}
	if !result.TotalDelivered.Equal(dec("15000")) {
		t.Errorf("expected total delivered 15000, got %s", result.TotalDelivered)
	}
}

func TestGetPreviousShift_UsesCachedSnapshot(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repoCalled := false

	readingRepo := &mocks.MockReadingRepository{
		FindLatestByTankFunc: func(ctx context.Context, tankID string) (*domain.ShiftReading, error) {
			repoCalled = true
			return nil, nil
		},
	}
	mockCache := mocks.NewMockCache()

	snapshot := &domain.ShiftReading{ID: "reading-1", TankID: "TANK-DIESEL", Date: "2024-03-14", ShiftType: domain.ShiftTypeNight}
	data, _ := json.Marshal(snapshot)
	_ = mockCache.Set(ctx, cache.PreviousShiftKey("TANK-DIESEL"), string(data), time.Hour)

	service := newTestService(readingRepo, tankRepoWith(dieselTank()), mockCache, mocks.NewMockMessageQueue())

	// Act
	reading, err := service.GetPreviousShift(ctx, "TANK-DIESEL")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reading == nil || reading.ID != "reading-1" {
		t.Fatalf("expected cached reading-1, got %+v", reading)
	}
	if repoCalled {
		t.Error("repository should not be queried when the snapshot is cached")
	}
}

func TestGetPreviousShift_FallsBackToRepository(t *testing.T) {
	// Arrange
	ctx := context.Background()

	latest := &domain.ShiftReading{ID: "reading-2", TankID: "TANK-DIESEL", Date: "2024-03-15", ShiftType: domain.ShiftTypeDay}
	readingRepo := &mocks.MockReadingRepository{
		FindLatestByTankFunc: func(ctx context.Context, tankID string) (*domain.ShiftReading, error) {
			return latest, nil
		},
	}
	mockCache := mocks.NewMockCache()
	service := newTestService(readingRepo, tankRepoWith(dieselTank()), mockCache, mocks.NewMockMessageQueue())

	// Act
	reading, err := service.GetPreviousShift(ctx, "TANK-DIESEL")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reading == nil || reading.ID != "reading-2" {
		t.Fatalf("expected reading-2, got %+v", reading)
	}
	if cached, _ := mockCache.Get(ctx, cache.PreviousShiftKey("TANK-DIESEL")); cached == "" {
		t.Error("expected the fallback result to be cached")
	}
}
