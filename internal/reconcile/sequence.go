package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// deliveryTolerance is the allowed gap, in liters, between the after
	// dip and before + delivered.
	deliveryTolerance = decimal.NewFromInt(10)

	// allocationTolerance is the allowed gap, in liters, between the
	// allocated total and the electronic total.
	allocationTolerance = decimal.NewFromFloat(0.01)
)

// ValidateDeliverySequence checks the chronologically ordered deliveries
// for dip inconsistencies. The warnings are advisory and never block a
// submission. Deliveries without a captured after dip are skipped; the
// dips are verification data, VolumeDelivered stays authoritative.
func ValidateDeliverySequence(deliveries []Delivery) []string {
	var warnings []string
	var prev *Delivery

	for i, d := range sortedByTime(deliveries) {
		if d.AfterVolume.GreaterThan(decimal.Zero) {
			expected := d.BeforeVolume.Add(d.VolumeDelivered)
			if d.AfterVolume.Sub(expected).Abs().GreaterThan(deliveryTolerance) {
				warnings = append(warnings, fmt.Sprintf(
					"delivery %d (%s): after volume %s does not match before + delivered (%s)",
					i+1, label(d), d.AfterVolume.String(), expected.String()))
			}
			if d.BeforeVolume.GreaterThanOrEqual(d.AfterVolume) {
				warnings = append(warnings, fmt.Sprintf(
					"delivery %d (%s): before volume %s is not below after volume %s",
					i+1, label(d), d.BeforeVolume.String(), d.AfterVolume.String()))
			}
		}
		if prev != nil && prev.AfterVolume.GreaterThan(decimal.Zero) &&
			d.BeforeVolume.GreaterThan(prev.AfterVolume) {
			warnings = append(warnings, fmt.Sprintf(
				"delivery %d (%s): before volume %s exceeds previous after volume %s",
				i+1, label(d), d.BeforeVolume.String(), prev.AfterVolume.String()))
		}
		current := d
		prev = &current
	}
	return warnings
}

func label(d Delivery) string {
	if d.InvoiceNumber != "" {
		return d.InvoiceNumber
	}
	if d.Supplier != "" {
		return d.Supplier
	}
	return "no invoice"
}

// AllocationBalance reports whether the customer allocations account for
// the full electronic total.
type AllocationBalance struct {
	Valid          bool
	Difference     decimal.Decimal
	PercentageDiff decimal.Decimal
}

// BalanceAllocations compares the allocated volume against the electronic
// total. Valid means the difference is within 0.01 L.
func BalanceAllocations(totalElectronic decimal.Decimal, allocations []Allocation) AllocationBalance {
	allocated := decimal.Zero
	for _, a := range allocations {
		allocated = allocated.Add(a.Volume)
	}

	b := AllocationBalance{Difference: totalElectronic.Sub(allocated)}
	b.Valid = b.Difference.Abs().LessThanOrEqual(allocationTolerance)
	if totalElectronic.GreaterThan(decimal.Zero) {
		b.PercentageDiff = b.Difference.Div(totalElectronic).Mul(hundred)
	} else {
		b.PercentageDiff = decimal.Zero
	}
	return b
}
