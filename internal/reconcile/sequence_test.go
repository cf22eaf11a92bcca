package reconcile

import (
	"strings"
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2024, 3, 14, hour, min, 0, 0, time.UTC)
}

func TestValidateDeliverySequence(t *testing.T) {
	tests := []struct {
		name       string
		deliveries []Delivery
		wantCount  int
		wantSubstr string
	}{
		{
			name: "consistent sequence has no warnings",
			deliveries: []Delivery{
				{DeliveredAt: at(8, 0), BeforeVolume: dec("5000"), AfterVolume: dec("20000"), VolumeDelivered: dec("15000")},
				{DeliveredAt: at(14, 0), BeforeVolume: dec("12000"), AfterVolume: dec("22000"), VolumeDelivered: dec("10000")},
			},
			wantCount: 0,
		},
		{
			name: "before exceeding previous after is flagged",
			deliveries: []Delivery{
				{DeliveredAt: at(8, 0), BeforeVolume: dec("5000"), AfterVolume: dec("20000"), VolumeDelivered: dec("15000")},
				{DeliveredAt: at(14, 0), BeforeVolume: dec("21000"), AfterVolume: dec("30000"), VolumeDelivered: dec("9000")},
			},
			wantCount:  1,
			wantSubstr: "exceeds previous after volume",
		},
		{
			name: "after outside the ten liter tolerance is flagged",
			deliveries: []Delivery{
				{DeliveredAt: at(8, 0), InvoiceNumber: "INV-77", BeforeVolume: dec("5000"), AfterVolume: dec("20010.01"), VolumeDelivered: dec("15000")},
			},
			wantCount:  1,
			wantSubstr: "does not match before + delivered",
		},
		{
			name: "after exactly ten liters off is tolerated",
			deliveries: []Delivery{
				{DeliveredAt: at(8, 0), BeforeVolume: dec("5000"), AfterVolume: dec("20010"), VolumeDelivered: dec("15000")},
			},
			wantCount: 0,
		},
		{
			name: "before not below after is flagged",
			deliveries: []Delivery{
				{DeliveredAt: at(8, 0), BeforeVolume: dec("20000"), AfterVolume: dec("20000"), VolumeDelivered: dec("0")},
			},
			wantCount:  1,
			wantSubstr: "is not below after volume",
		},
		{
			name: "deliveries without after dips are skipped",
			deliveries: []Delivery{
				{DeliveredAt: at(8, 0), VolumeDelivered: dec("15000")},
				{DeliveredAt: at(14, 0), VolumeDelivered: dec("9000")},
			},
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateDeliverySequence(tt.deliveries)
			if len(got) != tt.wantCount {
				t.Fatalf("got %d warnings %v, want %d", len(got), got, tt.wantCount)
			}
			if tt.wantSubstr != "" && !strings.Contains(got[0], tt.wantSubstr) {
				t.Errorf("warning %q does not mention %q", got[0], tt.wantSubstr)
			}
		})
	}
}

func TestValidateDeliverySequenceOrdersByTime(t *testing.T) {
	// Arrange: entered out of order. Chronologically the sequence is
	// consistent; pairwise in entry order it would not be.
	deliveries := []Delivery{
		{DeliveredAt: at(14, 0), BeforeVolume: dec("12000"), AfterVolume: dec("22000"), VolumeDelivered: dec("10000")},
		{DeliveredAt: at(8, 0), BeforeVolume: dec("5000"), AfterVolume: dec("20000"), VolumeDelivered: dec("15000")},
	}

	// Act
	warnings := ValidateDeliverySequence(deliveries)

	// Assert
	if len(warnings) != 0 {
		t.Errorf("chronologically consistent sequence flagged: %v", warnings)
	}
	if !deliveries[0].DeliveredAt.Equal(at(14, 0)) {
		t.Error("caller's slice order was mutated")
	}
}

func TestBalanceAllocations(t *testing.T) {
	tests := []struct {
		name        string
		total       string
		allocations []Allocation
		wantValid   bool
		wantDiff    string
	}{
		{
			name:        "difference within tolerance is valid",
			total:       "1000",
			allocations: []Allocation{{Volume: dec("600")}, {Volume: dec("399.995")}},
			wantValid:   true,
			wantDiff:    "0.005",
		},
		{
			name:        "difference past tolerance is invalid",
			total:       "1000",
			allocations: []Allocation{{Volume: dec("999.98")}},
			wantValid:   false,
			wantDiff:    "0.02",
		},
		{
			name:        "exact balance",
			total:       "16769.57",
			allocations: []Allocation{{Volume: dec("10000")}, {Volume: dec("6769.57")}},
			wantValid:   true,
			wantDiff:    "0",
		},
		{
			name:      "no allocations against zero total",
			total:     "0",
			wantValid: true,
			wantDiff:  "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BalanceAllocations(dec(tt.total), tt.allocations)
			if got.Valid != tt.wantValid {
				t.Errorf("valid = %v, want %v (difference %s)", got.Valid, tt.wantValid, got.Difference)
			}
			if !got.Difference.Equal(dec(tt.wantDiff)) {
				t.Errorf("difference = %s, want %s", got.Difference, tt.wantDiff)
			}
		})
	}
}

func TestBalanceAllocationsPercentage(t *testing.T) {
	got := BalanceAllocations(dec("1000"), []Allocation{{Volume: dec("990")}})
	if got.Valid {
		t.Error("10 liter gap should not be valid")
	}
	if !got.PercentageDiff.Equal(dec("1")) {
		t.Errorf("percentage diff = %s, want 1", got.PercentageDiff)
	}
}
