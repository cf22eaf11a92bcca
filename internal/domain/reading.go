package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ShiftType string

const (
	ShiftTypeDay   ShiftType = "DAY"
	ShiftTypeNight ShiftType = "NIGHT"
)

type ValidationStatus string

const (
	ValidationStatusPass    ValidationStatus = "PASS"
	ValidationStatusWarning ValidationStatus = "WARNING"
	ValidationStatusFail    ValidationStatus = "FAIL"
)

// ShiftReading is one tank's frozen record for one (date, shift) pair.
// The derived columns are computed once at submission; the record is never
// edited afterwards, only superseded by the next shift.
type ShiftReading struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	TankID    string    `json:"tank_id" gorm:"index;uniqueIndex:idx_tank_date_shift"`
	Date      string    `json:"date" gorm:"type:varchar(10);uniqueIndex:idx_tank_date_shift"` // YYYY-MM-DD
	ShiftType ShiftType `json:"shift_type" gorm:"uniqueIndex:idx_tank_date_shift"`

	OpeningDipCM       decimal.Decimal `json:"opening_dip_cm" gorm:"type:decimal(20,4)"`
	ClosingDipCM       decimal.Decimal `json:"closing_dip_cm" gorm:"type:decimal(20,4)"`
	AfterDeliveryDipCM decimal.Decimal `json:"after_delivery_dip_cm" gorm:"type:decimal(20,4)"`
	OpeningVolume      decimal.Decimal `json:"opening_volume" gorm:"type:decimal(20,4)"`
	ClosingVolume      decimal.Decimal `json:"closing_volume" gorm:"type:decimal(20,4)"`

	// Legacy single-offload fields, populated only on records predating
	// multi-delivery support.
	BeforeOffloadVolume decimal.Decimal `json:"before_offload_volume" gorm:"type:decimal(20,4)"`
	AfterOffloadVolume  decimal.Decimal `json:"after_offload_volume" gorm:"type:decimal(20,4)"`

	PricePerLiter    decimal.Decimal `json:"price_per_liter" gorm:"type:decimal(20,4)"`
	ActualCashBanked decimal.Decimal `json:"actual_cash_banked" gorm:"type:decimal(20,2)"`

	NozzleReadings []NozzleReading      `json:"nozzle_readings" gorm:"foreignKey:ReadingID"`
	Deliveries     []Delivery           `json:"deliveries" gorm:"foreignKey:ReadingID"`
	Allocations    []CustomerAllocation `json:"customer_allocations" gorm:"foreignKey:ReadingID"`

	TotalElectronic           decimal.Decimal  `json:"total_electronic" gorm:"type:decimal(20,4)"`
	TotalMechanical           decimal.Decimal  `json:"total_mechanical" gorm:"type:decimal(20,4)"`
	TotalDelivered            decimal.Decimal  `json:"total_delivered" gorm:"type:decimal(20,4)"`
	TankVolumeMovement        decimal.Decimal  `json:"tank_volume_movement" gorm:"type:decimal(20,4)"`
	ElectronicVsTankVariance  decimal.Decimal  `json:"electronic_vs_tank_variance" gorm:"type:decimal(20,4)"`
	ElectronicVsTankPercent   decimal.Decimal  `json:"electronic_vs_tank_percent" gorm:"type:decimal(20,4)"`
	MechanicalVsTankVariance  decimal.Decimal  `json:"mechanical_vs_tank_variance" gorm:"type:decimal(20,4)"`
	MechanicalVsTankPercent   decimal.Decimal  `json:"mechanical_vs_tank_percent" gorm:"type:decimal(20,4)"`
	ExpectedAmountElectronic  decimal.Decimal  `json:"expected_amount_electronic" gorm:"type:decimal(20,2)"`
	CashDifference            decimal.Decimal  `json:"cash_difference" gorm:"type:decimal(20,2)"`
	LossPercent               decimal.Decimal  `json:"loss_percent" gorm:"type:decimal(20,4)"`
	ValidationStatus          ValidationStatus `json:"validation_status" gorm:"index"`
	AllocationMismatch        bool             `json:"allocation_mismatch"`
	AllocationMismatchByLiter decimal.Decimal  `json:"allocation_mismatch_by_liter" gorm:"type:decimal(20,4)"`

	RecordedBy string    `json:"recorded_by"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NozzleReading is one nozzle's totalizer pair inside a shift reading.
// Row order is insertion order and carries no meaning beyond display.
type NozzleReading struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	ReadingID         string          `json:"reading_id" gorm:"index"`
	NozzleID          string          `json:"nozzle_id"`
	Attendant         string          `json:"attendant"`
	ElectronicOpening decimal.Decimal `json:"electronic_opening" gorm:"type:decimal(20,4)"`
	ElectronicClosing decimal.Decimal `json:"electronic_closing" gorm:"type:decimal(20,4)"`
	MechanicalOpening decimal.Decimal `json:"mechanical_opening" gorm:"type:decimal(20,4)"`
	MechanicalClosing decimal.Decimal `json:"mechanical_closing" gorm:"type:decimal(20,4)"`
}

// CustomerAllocation apportions part of a diesel shift's electronic total
// to a named account customer.
type CustomerAllocation struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	ReadingID     string          `json:"reading_id" gorm:"index"`
	CustomerID    string          `json:"customer_id" gorm:"index"`
	CustomerName  string          `json:"customer_name"`
	Volume        decimal.Decimal `json:"volume" gorm:"type:decimal(20,4)"`
	PricePerLiter decimal.Decimal `json:"price_per_liter" gorm:"type:decimal(20,4)"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(20,2)"`
}
