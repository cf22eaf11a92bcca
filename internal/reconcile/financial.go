package reconcile

import "github.com/shopspring/decimal"

// Verdict is the reconciliation outcome for one shift.
type Verdict string

const (
	VerdictPass    Verdict = "PASS"
	VerdictWarning Verdict = "WARNING"
	VerdictFail    Verdict = "FAIL"
)

// Thresholds are the variance and loss policy limits, in percent. All
// comparisons are strict: a value exactly on a limit stays in the lower
// tier.
type Thresholds struct {
	WarnVariancePercent decimal.Decimal
	FailVariancePercent decimal.Decimal
	WarnLossPercent     decimal.Decimal
	FailLossPercent     decimal.Decimal
}

// DefaultThresholds returns the station policy defaults: warn above 0.5%
// variance or 1% loss, fail above 1% variance or 2% loss.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WarnVariancePercent: decimal.NewFromFloat(0.5),
		FailVariancePercent: decimal.NewFromInt(1),
		WarnLossPercent:     decimal.NewFromInt(1),
		FailLossPercent:     decimal.NewFromInt(2),
	}
}

// Metrics holds the variance and cash figures for one shift.
type Metrics struct {
	ElectronicVsTankVariance  decimal.Decimal
	MechanicalVsTankVariance  decimal.Decimal
	ElectronicVariancePercent decimal.Decimal
	MechanicalVariancePercent decimal.Decimal
	ExpectedAmountElectronic  decimal.Decimal
	CashDifference            decimal.Decimal
	LossPercent               decimal.Decimal
	Verdict                   Verdict
}

var hundred = decimal.NewFromInt(100)

// CalculateFinancials derives the variance and cash metrics and assigns
// the verdict. Percentages are zero whenever their denominator is not
// positive.
func CalculateFinancials(totals Totals, tankMovement, pricePerLiter, actualCashBanked decimal.Decimal, th Thresholds) Metrics {
	m := Metrics{
		ElectronicVsTankVariance: totals.Electronic.Sub(tankMovement),
		MechanicalVsTankVariance: totals.Mechanical.Sub(tankMovement),
		ExpectedAmountElectronic: totals.Electronic.Mul(pricePerLiter),
	}
	m.CashDifference = actualCashBanked.Sub(m.ExpectedAmountElectronic)

	if tankMovement.GreaterThan(decimal.Zero) {
		m.ElectronicVariancePercent = m.ElectronicVsTankVariance.Div(tankMovement).Abs().Mul(hundred)
		m.MechanicalVariancePercent = m.MechanicalVsTankVariance.Div(tankMovement).Abs().Mul(hundred)
	} else {
		m.ElectronicVariancePercent = decimal.Zero
		m.MechanicalVariancePercent = decimal.Zero
	}

	if m.ExpectedAmountElectronic.GreaterThan(decimal.Zero) {
		m.LossPercent = m.CashDifference.Div(m.ExpectedAmountElectronic).Mul(hundred)
	} else {
		m.LossPercent = decimal.Zero
	}

	m.Verdict = verdict(m, th)
	return m
}

// verdict applies the policy rules in order: FAIL, then WARNING, else PASS.
func verdict(m Metrics, th Thresholds) Verdict {
	absLoss := m.LossPercent.Abs()
	switch {
	case m.ElectronicVariancePercent.GreaterThan(th.FailVariancePercent),
		m.MechanicalVariancePercent.GreaterThan(th.FailVariancePercent),
		absLoss.GreaterThan(th.FailLossPercent):
		return VerdictFail
	case m.ElectronicVariancePercent.GreaterThan(th.WarnVariancePercent),
		m.MechanicalVariancePercent.GreaterThan(th.WarnVariancePercent),
		absLoss.GreaterThan(th.WarnLossPercent):
		return VerdictWarning
	default:
		return VerdictPass
	}
}
