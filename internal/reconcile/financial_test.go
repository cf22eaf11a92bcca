package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCalculateFinancialsVariances(t *testing.T) {
	// Arrange: meters read 16800 / 16750 against a tank draw-down of 16769.57.
	totals := Totals{Electronic: dec("16800"), Mechanical: dec("16750")}

	// Act
	m := CalculateFinancials(totals, dec("16769.57"), dec("2.00"), dec("33600.00"), DefaultThresholds())

	// Assert
	if !m.ElectronicVsTankVariance.Equal(dec("30.43")) {
		t.Errorf("electronic variance = %s, want 30.43", m.ElectronicVsTankVariance)
	}
	if !m.MechanicalVsTankVariance.Equal(dec("-19.57")) {
		t.Errorf("mechanical variance = %s, want -19.57", m.MechanicalVsTankVariance)
	}
	if !m.ExpectedAmountElectronic.Equal(dec("33600.00")) {
		t.Errorf("expected amount = %s, want 33600.00", m.ExpectedAmountElectronic)
	}
	if !m.CashDifference.IsZero() {
		t.Errorf("cash difference = %s, want 0", m.CashDifference)
	}
	if !m.LossPercent.IsZero() {
		t.Errorf("loss percent = %s, want 0", m.LossPercent)
	}
	// Variance percents stay under 0.5%, loss is zero.
	if m.Verdict != VerdictPass {
		t.Errorf("verdict = %s, want PASS", m.Verdict)
	}
}

func TestCalculateFinancialsVerdict(t *testing.T) {
	tests := []struct {
		name         string
		electronic   string
		mechanical   string
		tankMovement string
		price        string
		cash         string
		want         Verdict
	}{
		{
			name:       "clean shift passes",
			electronic: "1000", mechanical: "1000", tankMovement: "1000",
			price: "2.00", cash: "2000.00",
			want: VerdictPass,
		},
		{
			name:       "variance exactly at the fail limit stays a warning",
			electronic: "1010", mechanical: "1000", tankMovement: "1000",
			price: "0", cash: "0",
			want: VerdictWarning,
		},
		{
			name:       "variance just past the fail limit fails",
			electronic: "1010.01", mechanical: "1000", tankMovement: "1000",
			price: "0", cash: "0",
			want: VerdictFail,
		},
		{
			name:       "variance exactly at the warn limit passes",
			electronic: "1005", mechanical: "1000", tankMovement: "1000",
			price: "0", cash: "0",
			want: VerdictPass,
		},
		{
			name:       "mechanical variance alone can fail",
			electronic: "1000", mechanical: "1010.01", tankMovement: "1000",
			price: "0", cash: "0",
			want: VerdictFail,
		},
		{
			name:       "loss exactly at the fail limit stays a warning",
			electronic: "1000", mechanical: "1000", tankMovement: "1000",
			price: "1.00", cash: "980.00",
			want: VerdictWarning,
		},
		{
			name:       "loss past the fail limit fails",
			electronic: "1000", mechanical: "1000", tankMovement: "1000",
			price: "1.00", cash: "979.00",
			want: VerdictFail,
		},
		{
			name:       "gain is judged by magnitude too",
			electronic: "1000", mechanical: "1000", tankMovement: "1000",
			price: "1.00", cash: "1021.00",
			want: VerdictFail,
		},
		{
			name:       "loss exactly at the warn limit passes",
			electronic: "1000", mechanical: "1000", tankMovement: "1000",
			price: "1.00", cash: "990.00",
			want: VerdictPass,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := Totals{Electronic: dec(tt.electronic), Mechanical: dec(tt.mechanical)}
			m := CalculateFinancials(totals, dec(tt.tankMovement), dec(tt.price), dec(tt.cash), DefaultThresholds())
			if m.Verdict != tt.want {
				t.Errorf("verdict = %s, want %s (eVar%%=%s mVar%%=%s loss%%=%s)",
					m.Verdict, tt.want, m.ElectronicVariancePercent, m.MechanicalVariancePercent, m.LossPercent)
			}
		})
	}
}

func TestCalculateFinancialsDivisionGuards(t *testing.T) {
	totals := Totals{Electronic: dec("500"), Mechanical: dec("480")}

	// Zero tank movement: variance percents must degrade to zero.
	m := CalculateFinancials(totals, decimal.Zero, decimal.Zero, dec("100"), DefaultThresholds())
	if !m.ElectronicVariancePercent.IsZero() || !m.MechanicalVariancePercent.IsZero() {
		t.Errorf("variance percents = %s / %s, want 0 / 0",
			m.ElectronicVariancePercent, m.MechanicalVariancePercent)
	}
	// Zero price: no expected amount, so no loss percent either.
	if !m.LossPercent.IsZero() {
		t.Errorf("loss percent = %s, want 0", m.LossPercent)
	}
	if !m.CashDifference.Equal(dec("100")) {
		t.Errorf("cash difference = %s, want 100", m.CashDifference)
	}

	// Negative tank movement is also an invalid denominator.
	m = CalculateFinancials(totals, dec("-10"), dec("1"), dec("500"), DefaultThresholds())
	if !m.ElectronicVariancePercent.IsZero() {
		t.Errorf("variance percent with negative movement = %s, want 0", m.ElectronicVariancePercent)
	}
}

func TestDefaultThresholds(t *testing.T) {
	th := DefaultThresholds()
	if !th.WarnVariancePercent.Equal(dec("0.5")) || !th.FailVariancePercent.Equal(dec("1")) {
		t.Errorf("variance thresholds = %s / %s, want 0.5 / 1", th.WarnVariancePercent, th.FailVariancePercent)
	}
	if !th.WarnLossPercent.Equal(dec("1")) || !th.FailLossPercent.Equal(dec("2")) {
		t.Errorf("loss thresholds = %s / %s, want 1 / 2", th.WarnLossPercent, th.FailLossPercent)
	}
}
