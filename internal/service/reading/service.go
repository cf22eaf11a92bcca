// Package reading implements the shift submission pipeline: it validates
// the payload, runs the reconciliation calculator, persists the frozen
// record with its children in one transaction, refreshes the previous-shift
// snapshot and publishes the queue events.
package reading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/forecourt/backoffice/internal/adapter/cache"
	"github.com/forecourt/backoffice/internal/adapter/queue"
	"github.com/forecourt/backoffice/internal/domain"
	"github.com/forecourt/backoffice/internal/observability/telemetry"
	"github.com/forecourt/backoffice/internal/ports"
	"github.com/forecourt/backoffice/internal/reconcile"
)

var (
	// ErrNoAttendant is the submission guard: a shift with no
	// attendant-assigned nozzle readings records nothing.
	ErrNoAttendant = errors.New("at least one nozzle reading with an attendant is required")

	// ErrDuplicateReading signals a (tank, date, shift) identity conflict.
	ErrDuplicateReading = errors.New("a reading for this tank, date and shift already exists")

	// ErrAllocationMismatch signals that the customer allocations do not
	// balance against the electronic total and the operator has not
	// confirmed the mismatch.
	ErrAllocationMismatch = errors.New("customer allocations do not balance against the electronic total")

	// ErrTankNotFound signals an unknown tank id.
	ErrTankNotFound = errors.New("tank not found")

	// ErrNonDieselAllocation rejects customer allocations on tanks that do
	// not hold diesel.
	ErrNonDieselAllocation = errors.New("customer allocations only apply to diesel tanks")

	// ErrDeliveryNotClaimable signals a claim of a pool delivery that does
	// not exist or was already linked to another reading.
	ErrDeliveryNotClaimable = errors.New("delivery not found or already claimed")
)

type Service struct {
	readings       ports.ReadingRepository
	tanks          ports.TankRepository
	deliveries     ports.DeliveryRepository
	cache          ports.Cache
	mq             queue.MessageQueue
	thresholds     reconcile.Thresholds
	alertOnWarning bool
	snapshotTTL    time.Duration
	log            *zap.Logger
}

func NewService(readings ports.ReadingRepository, tanks ports.TankRepository, deliveries ports.DeliveryRepository, c ports.Cache, mq queue.MessageQueue, thresholds reconcile.Thresholds, alertOnWarning bool, snapshotTTL time.Duration, log *zap.Logger) ports.ReadingService {
	if snapshotTTL <= 0 {
		snapshotTTL = 24 * time.Hour
	}

	return &Service{
		readings:       readings,
		tanks:          tanks,
		deliveries:     deliveries,
		cache:          c,
		mq:             mq,
		thresholds:     thresholds,
		alertOnWarning: alertOnWarning,
		snapshotTTL:    snapshotTTL,
		log:            log,
	}
}

func (s *Service) SubmitReading(ctx context.Context, sub *ports.ReadingSubmission) (*ports.SubmissionResult, error) {
	if err := validateIdentity(sub); err != nil {
		return nil, err
	}

	tank, err := s.tanks.FindByID(ctx, sub.TankID)
	if err != nil {
		return nil, err
	}
	if tank == nil {
		return nil, ErrTankNotFound
	}

	nozzles := attendantReadings(sub.NozzleReadings)
	if len(nozzles) == 0 {
		return nil, ErrNoAttendant
	}

	existing, err := s.readings.FindByIdentity(ctx, sub.TankID, sub.Date, sub.ShiftType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateReading
	}

	allocations := positiveAllocations(sub.CustomerAllocations)
	if len(allocations) > 0 && tank.FuelType != domain.FuelTypeDiesel {
		return nil, ErrNonDieselAllocation
	}

	deliveries, claimIDs := normalizeDeliveries(sub.Deliveries)
	if len(claimIDs) > 0 {
		if err := s.resolveClaims(ctx, sub.TankID, deliveries); err != nil {
			return nil, err
		}
	}

	result := reconcile.Compute(reconcile.Input{
		OpeningVolume:       sub.OpeningVolume,
		ClosingVolume:       sub.ClosingVolume,
		Nozzles:             toCalcNozzles(nozzles),
		Deliveries:          toCalcDeliveries(deliveries),
		LegacyBeforeOffload: sub.BeforeOffloadVolume,
		LegacyAfterOffload:  sub.AfterOffloadVolume,
		PricePerLiter:       sub.PricePerLiter,
		ActualCashBanked:    sub.ActualCashBanked,
		Allocations:         toCalcAllocations(allocations),
	}, s.thresholds)

	if len(allocations) > 0 && !result.Allocation.Valid && !sub.ConfirmAllocationMismatch {
		return nil, fmt.Errorf("%w: difference %s L", ErrAllocationMismatch, result.Allocation.Difference.Round(4))
	}

	reading := s.buildReading(sub, tank, nozzles, deliveries, allocations, result)

	if err := s.readings.Save(ctx, reading, claimIDs); err != nil {
		return nil, err
	}

	s.log.Info("Shift reading submitted",
		zap.String("reading_id", reading.ID),
		zap.String("tank_id", reading.TankID),
		zap.String("date", reading.Date),
		zap.String("shift_type", string(reading.ShiftType)),
		zap.String("validation_status", string(reading.ValidationStatus)),
	)

	s.cacheSnapshot(ctx, reading)
	s.publishEvents(reading)
	recordMetrics(reading)

	return &ports.SubmissionResult{
		ShiftReading:         reading,
		DeliveryWarnings:     result.DeliveryWarnings,
		AllocationValid:      result.Allocation.Valid,
		AllocationDifference: result.Allocation.Difference.Round(4),
	}, nil
}

func (s *Service) GetReading(ctx context.Context, id string) (*domain.ShiftReading, error) {
	return s.readings.FindByID(ctx, id)
}

func (s *Service) ListReadings(ctx context.Context, filter map[string]interface{}) ([]domain.ShiftReading, error) {
	return s.readings.FindAll(ctx, filter)
}

// GetPreviousShift returns the latest submitted reading for the tank, the
// carryover source for a new entry. The cached snapshot written at
// submission time answers most calls.
func (s *Service) GetPreviousShift(ctx context.Context, tankID string) (*domain.ShiftReading, error) {
	key := cache.PreviousShiftKey(tankID)

	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		var reading domain.ShiftReading
		if err := json.Unmarshal([]byte(cached), &reading); err == nil {
			return &reading, nil
		}
	}

	reading, err := s.readings.FindLatestByTank(ctx, tankID)
	if err != nil {
		return nil, err
	}
	if reading != nil {
		s.cacheSnapshot(ctx, reading)
	}

	return reading, nil
}

func (s *Service) buildReading(sub *ports.ReadingSubmission, tank *domain.Tank, nozzles []ports.NozzleReadingEntry, deliveries []ports.DeliveryEntry, allocations []ports.AllocationEntry, result reconcile.Result) *domain.ShiftReading {
	readingID := uuid.NewString()
	now := time.Now()

	reading := &domain.ShiftReading{
		ID:        readingID,
		TankID:    sub.TankID,
		Date:      sub.Date,
		ShiftType: sub.ShiftType,

		OpeningDipCM:       sub.OpeningDipCM,
		ClosingDipCM:       sub.ClosingDipCM,
		AfterDeliveryDipCM: sub.AfterDeliveryDipCM,
		OpeningVolume:      sub.OpeningVolume,
		ClosingVolume:      sub.ClosingVolume,

		BeforeOffloadVolume: sub.BeforeOffloadVolume,
		AfterOffloadVolume:  sub.AfterOffloadVolume,

		PricePerLiter:    sub.PricePerLiter,
		ActualCashBanked: sub.ActualCashBanked,

		TotalElectronic:          result.Totals.Electronic.Round(4),
		TotalMechanical:          result.Totals.Mechanical.Round(4),
		TotalDelivered:           result.TotalDelivered.Round(4),
		TankVolumeMovement:       result.TankVolumeMovement.Round(4),
		ElectronicVsTankVariance: result.Metrics.ElectronicVsTankVariance.Round(4),
		ElectronicVsTankPercent:  result.Metrics.ElectronicVariancePercent.Round(4),
		MechanicalVsTankVariance: result.Metrics.MechanicalVsTankVariance.Round(4),
		MechanicalVsTankPercent:  result.Metrics.MechanicalVariancePercent.Round(4),
		ExpectedAmountElectronic: result.Metrics.ExpectedAmountElectronic.Round(2),
		CashDifference:           result.Metrics.CashDifference.Round(2),
		LossPercent:              result.Metrics.LossPercent.Round(4),
		ValidationStatus:         domain.ValidationStatus(result.Metrics.Verdict),

		AllocationMismatch:        len(allocations) > 0 && !result.Allocation.Valid,
		AllocationMismatchByLiter: result.Allocation.Difference.Round(4),

		RecordedBy: sub.RecordedBy,
		Notes:      sub.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	for _, n := range nozzles {
		reading.NozzleReadings = append(reading.NozzleReadings, domain.NozzleReading{
			ReadingID:         readingID,
			NozzleID:          n.NozzleID,
			Attendant:         n.Attendant,
			ElectronicOpening: n.ElectronicOpening,
			ElectronicClosing: n.ElectronicClosing,
			MechanicalOpening: n.MechanicalOpening,
			MechanicalClosing: n.MechanicalClosing,
		})
	}

	for _, d := range deliveries {
		// Pool deliveries already exist as rows and are claimed by ID in
		// the same transaction, so only new entries become children here.
		if d.DeliveryID != "" {
			continue
		}
		reading.Deliveries = append(reading.Deliveries, domain.Delivery{
			ID:              uuid.NewString(),
			ReadingID:       &readingID,
			TankID:          sub.TankID,
			DeliveredAt:     d.DeliveryTime,
			Supplier:        d.Supplier,
			InvoiceNumber:   d.InvoiceNumber,
			FuelType:        deliveryFuelType(d, tank),
			BeforeVolume:    d.BeforeVolume,
			AfterVolume:     d.AfterVolume,
			VolumeDelivered: d.VolumeDelivered,
			RecordedBy:      sub.RecordedBy,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	for _, a := range allocations {
		price := a.PricePerLiter
		if price.IsZero() {
			price = sub.PricePerLiter
		}
		reading.Allocations = append(reading.Allocations, domain.CustomerAllocation{
			ReadingID:     readingID,
			CustomerID:    a.CustomerID,
			CustomerName:  a.CustomerName,
			Volume:        a.Volume,
			PricePerLiter: price,
			Amount:        a.Volume.Mul(price).Round(2),
		})
	}

	return reading
}

func (s *Service) cacheSnapshot(ctx context.Context, reading *domain.ShiftReading) {
	data, err := json.Marshal(reading)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cache.PreviousShiftKey(reading.TankID), string(data), s.snapshotTTL); err != nil {
		s.log.Warn("Failed to cache previous-shift snapshot",
			zap.String("tank_id", reading.TankID),
			zap.Error(err),
		)
	}
}

// publishEvents emits the queue events after the transaction commits.
// Publishing is best effort: the reading is already the system of record.
func (s *Service) publishEvents(reading *domain.ShiftReading) {
	event := queue.ReadingEvent{
		ReadingID:          reading.ID,
		TankID:             reading.TankID,
		Date:               reading.Date,
		ShiftType:          string(reading.ShiftType),
		ValidationStatus:   string(reading.ValidationStatus),
		TankVolumeMovement: reading.TankVolumeMovement,
		LossPercent:        reading.LossPercent,
		CashDifference:     reading.CashDifference,
		RecordedBy:         reading.RecordedBy,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	if err := s.mq.Publish(queue.SubjectReadingSubmitted, data); err != nil {
		s.log.Warn("Failed to publish reading.submitted", zap.Error(err))
	}

	alert := reading.ValidationStatus == domain.ValidationStatusFail ||
		(s.alertOnWarning && reading.ValidationStatus == domain.ValidationStatusWarning)
	if alert {
		if err := s.mq.Publish(queue.SubjectReadingAlert, data); err != nil {
			s.log.Warn("Failed to publish reading.alert", zap.Error(err))
		}
	}
}

func recordMetrics(reading *domain.ShiftReading) {
	telemetry.ReadingsSubmittedTotal.WithLabelValues(string(reading.ValidationStatus)).Inc()
	telemetry.ReadingLossPercent.WithLabelValues(reading.TankID).Set(reading.LossPercent.InexactFloat64())
	telemetry.VariancePercent.WithLabelValues(reading.TankID, "electronic").Set(reading.ElectronicVsTankPercent.InexactFloat64())
	telemetry.VariancePercent.WithLabelValues(reading.TankID, "mechanical").Set(reading.MechanicalVsTankPercent.InexactFloat64())
}

func validateIdentity(sub *ports.ReadingSubmission) error {
	if sub.TankID == "" {
		return errors.New("tank_id is required")
	}
	if _, err := time.Parse("2006-01-02", sub.Date); err != nil {
		return errors.New("date must be YYYY-MM-DD")
	}
	if sub.ShiftType != domain.ShiftTypeDay && sub.ShiftType != domain.ShiftTypeNight {
		return errors.New("shift_type must be DAY or NIGHT")
	}
	return nil
}

// attendantReadings keeps only entries credited to an attendant; the rest
// were never worked and stay out of the frozen record.
func attendantReadings(entries []ports.NozzleReadingEntry) []ports.NozzleReadingEntry {
	var out []ports.NozzleReadingEntry
	for _, e := range entries {
		if strings.TrimSpace(e.Attendant) != "" {
			out = append(out, e)
		}
	}
	return out
}

func positiveAllocations(entries []ports.AllocationEntry) []ports.AllocationEntry {
	var out []ports.AllocationEntry
	for _, a := range entries {
		if a.Volume.GreaterThan(decimal.Zero) {
			out = append(out, a)
		}
	}
	return out
}

// normalizeDeliveries fills the derivable fields both ways: before+after
// derives the volume, before+volume derives the after dip. It also returns
// the IDs of pool deliveries the submission claims.
func normalizeDeliveries(entries []ports.DeliveryEntry) ([]ports.DeliveryEntry, []string) {
	out := make([]ports.DeliveryEntry, 0, len(entries))
	var claimIDs []string

	for _, d := range entries {
		if d.VolumeDelivered.IsZero() && d.AfterVolume.GreaterThan(decimal.Zero) {
			d.VolumeDelivered = d.AfterVolume.Sub(d.BeforeVolume)
		}
		if d.AfterVolume.IsZero() && !d.VolumeDelivered.IsZero() && d.BeforeVolume.GreaterThan(decimal.Zero) {
			d.AfterVolume = d.BeforeVolume.Add(d.VolumeDelivered)
		}
		if d.DeliveryID != "" {
			claimIDs = append(claimIDs, d.DeliveryID)
		}
		out = append(out, d)
	}

	return out, claimIDs
}

// resolveClaims loads each claimed pool delivery and copies its figures
// into the entry so the claimed volume reaches the calculator. The claim
// itself is still linked atomically by the repository at save time.
func (s *Service) resolveClaims(ctx context.Context, tankID string, entries []ports.DeliveryEntry) error {
	for i := range entries {
		if entries[i].DeliveryID == "" {
			continue
		}

		pool, err := s.deliveries.FindByID(ctx, entries[i].DeliveryID)
		if err != nil {
			return err
		}
		if pool == nil || pool.Linked() {
			return fmt.Errorf("%w: %s", ErrDeliveryNotClaimable, entries[i].DeliveryID)
		}
		if pool.TankID != tankID {
			return errors.New("claimed delivery does not match the submission tank")
		}

		entries[i].DeliveryTime = pool.DeliveredAt
		entries[i].Supplier = pool.Supplier
		entries[i].InvoiceNumber = pool.InvoiceNumber
		entries[i].FuelType = pool.FuelType
		entries[i].BeforeVolume = pool.BeforeVolume
		entries[i].AfterVolume = pool.AfterVolume
		entries[i].VolumeDelivered = pool.VolumeDelivered
	}
	return nil
}

func deliveryFuelType(d ports.DeliveryEntry, tank *domain.Tank) domain.FuelType {
	if d.FuelType != "" {
		return d.FuelType
	}
	return tank.FuelType
}

func toCalcNozzles(entries []ports.NozzleReadingEntry) []reconcile.Nozzle {
	out := make([]reconcile.Nozzle, 0, len(entries))
	for _, e := range entries {
		out = append(out, reconcile.Nozzle{
			NozzleID:          e.NozzleID,
			ElectronicOpening: e.ElectronicOpening,
			ElectronicClosing: e.ElectronicClosing,
			MechanicalOpening: e.MechanicalOpening,
			MechanicalClosing: e.MechanicalClosing,
		})
	}
	return out
}

func toCalcDeliveries(entries []ports.DeliveryEntry) []reconcile.Delivery {
	out := make([]reconcile.Delivery, 0, len(entries))
	for _, d := range entries {
		out = append(out, reconcile.Delivery{
			DeliveredAt:     d.DeliveryTime,
			Supplier:        d.Supplier,
			InvoiceNumber:   d.InvoiceNumber,
			BeforeVolume:    d.BeforeVolume,
			AfterVolume:     d.AfterVolume,
			VolumeDelivered: d.VolumeDelivered,
		})
	}
	return out
}

func toCalcAllocations(entries []ports.AllocationEntry) []reconcile.Allocation {
	out := make([]reconcile.Allocation, 0, len(entries))
	for _, a := range entries {
		out = append(out, reconcile.Allocation{
			CustomerID: a.CustomerID,
			Volume:     a.Volume,
		})
	}
	return out
}
