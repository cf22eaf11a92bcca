// Package reconcile implements the tank reconciliation calculator: pure,
// side-effect-free derivation of movement, variance and financial metrics
// from one shift's raw readings. Identical inputs always produce identical
// outputs; all operations are total over absent or malformed values and
// degrade to zero instead of failing.
package reconcile

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Nozzle holds one nozzle's totalizer readings for a shift.
type Nozzle struct {
	NozzleID          string
	ElectronicOpening decimal.Decimal
	ElectronicClosing decimal.Decimal
	MechanicalOpening decimal.Decimal
	MechanicalClosing decimal.Decimal
}

// Delivery is one fuel offload into the tank during the shift.
// VolumeDelivered is the authoritative quantity; the before/after dip
// volumes are verification data for the sequence checks.
type Delivery struct {
	DeliveredAt     time.Time
	Supplier        string
	InvoiceNumber   string
	BeforeVolume    decimal.Decimal
	AfterVolume     decimal.Decimal
	VolumeDelivered decimal.Decimal
}

// Allocation is one customer's share of the dispensed volume.
type Allocation struct {
	CustomerID string
	Volume     decimal.Decimal
}

// Totals carries the summed nozzle movements for both meter types.
type Totals struct {
	Electronic decimal.Decimal
	Mechanical decimal.Decimal
}

// NozzleMovement returns closing − opening liters for one totalizer pair.
// A zero operand means the value was never entered, so the movement is
// undefined and reported as zero. Negative movement is preserved: the
// anomaly belongs to the caller, not the calculator.
func NozzleMovement(opening, closing decimal.Decimal) decimal.Decimal {
	if opening.IsZero() || closing.IsZero() {
		return decimal.Zero
	}
	return closing.Sub(opening)
}

// TotalMovements sums electronic and mechanical movement across every
// nozzle in the shift, regardless of attendant assignment.
func TotalMovements(nozzles []Nozzle) Totals {
	t := Totals{Electronic: decimal.Zero, Mechanical: decimal.Zero}
	for _, n := range nozzles {
		t.Electronic = t.Electronic.Add(NozzleMovement(n.ElectronicOpening, n.ElectronicClosing))
		t.Mechanical = t.Mechanical.Add(NozzleMovement(n.MechanicalOpening, n.MechanicalClosing))
	}
	return t
}

// TotalDelivered sums the delivered liters over all deliveries. The stored
// VolumeDelivered wins; when it is absent and the after dip was captured,
// after − before is used instead. Entries with neither contribute zero.
func TotalDelivered(deliveries []Delivery) decimal.Decimal {
	total := decimal.Zero
	for _, d := range deliveries {
		switch {
		case !d.VolumeDelivered.IsZero():
			total = total.Add(d.VolumeDelivered)
		case d.AfterVolume.GreaterThan(decimal.Zero):
			total = total.Add(d.AfterVolume.Sub(d.BeforeVolume))
		}
	}
	return total
}

// TankVolumeMovement computes the net liters drawn from the tank during
// the shift. With deliveries present the delivered volume is added back so
// the result isolates the sales-only draw-down:
//
//	(opening − closing) + totalDelivered
//
// Without deliveries the legacy single-offload fields select the
// backward-compatible formula instead.
func TankVolumeMovement(openingVol, closingVol decimal.Decimal, deliveries []Delivery, legacyBefore, legacyAfter decimal.Decimal) decimal.Decimal {
	if len(deliveries) > 0 {
		return openingVol.Sub(closingVol).Add(TotalDelivered(deliveries))
	}
	if closingVol.GreaterThan(decimal.Zero) && legacyAfter.GreaterThan(decimal.Zero) {
		return legacyAfter.Sub(closingVol).Add(openingVol.Sub(legacyBefore))
	}
	if closingVol.GreaterThan(decimal.Zero) {
		return openingVol.Sub(closingVol)
	}
	return decimal.Zero
}

// Input is the complete raw state of one shift submission.
type Input struct {
	OpeningVolume       decimal.Decimal
	ClosingVolume       decimal.Decimal
	Nozzles             []Nozzle
	Deliveries          []Delivery
	LegacyBeforeOffload decimal.Decimal
	LegacyAfterOffload  decimal.Decimal
	PricePerLiter       decimal.Decimal
	ActualCashBanked    decimal.Decimal
	Allocations         []Allocation
}

// Result gathers every derived figure the submission pipeline persists and
// returns to the caller.
type Result struct {
	Totals             Totals
	TotalDelivered     decimal.Decimal
	TankVolumeMovement decimal.Decimal
	Metrics            Metrics
	DeliveryWarnings   []string
	Allocation         AllocationBalance
}

// Compute runs the full calculator over one shift's input.
func Compute(in Input, th Thresholds) Result {
	totals := TotalMovements(in.Nozzles)
	movement := TankVolumeMovement(in.OpeningVolume, in.ClosingVolume, in.Deliveries, in.LegacyBeforeOffload, in.LegacyAfterOffload)
	return Result{
		Totals:             totals,
		TotalDelivered:     TotalDelivered(in.Deliveries),
		TankVolumeMovement: movement,
		Metrics:            CalculateFinancials(totals, movement, in.PricePerLiter, in.ActualCashBanked, th),
		DeliveryWarnings:   ValidateDeliverySequence(in.Deliveries),
		Allocation:         BalanceAllocations(totals.Electronic, in.Allocations),
	}
}

// sortedByTime returns the deliveries in chronological order without
// mutating the caller's slice.
func sortedByTime(deliveries []Delivery) []Delivery {
	out := make([]Delivery, len(deliveries))
	copy(out, deliveries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DeliveredAt.Before(out[j].DeliveredAt)
	})
	return out
}
