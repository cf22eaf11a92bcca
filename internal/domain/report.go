package domain

import "github.com/shopspring/decimal"

// DailySummaryRow is one tank shift's line in the daily report.
type DailySummaryRow struct {
	TankID             string           `json:"tank_id"`
	TankName           string           `json:"tank_name"`
	FuelType           FuelType         `json:"fuel_type"`
	ShiftType          ShiftType        `json:"shift_type"`
	TotalElectronic    decimal.Decimal  `json:"total_electronic"`
	TotalMechanical    decimal.Decimal  `json:"total_mechanical"`
	TankVolumeMovement decimal.Decimal  `json:"tank_volume_movement"`
	TotalDelivered     decimal.Decimal  `json:"total_delivered"`
	ExpectedAmount     decimal.Decimal  `json:"expected_amount"`
	ActualCashBanked   decimal.Decimal  `json:"actual_cash_banked"`
	CashDifference     decimal.Decimal  `json:"cash_difference"`
	LossPercent        decimal.Decimal  `json:"loss_percent"`
	ValidationStatus   ValidationStatus `json:"validation_status"`
}

// DailySummary aggregates every submitted reading for one calendar date.
type DailySummary struct {
	Date            string            `json:"date"`
	Rows            []DailySummaryRow `json:"rows"`
	TotalLitersSold decimal.Decimal   `json:"total_liters_sold"`
	TotalDelivered  decimal.Decimal   `json:"total_delivered"`
	TotalExpected   decimal.Decimal   `json:"total_expected"`
	TotalBanked     decimal.Decimal   `json:"total_banked"`
	TotalDifference decimal.Decimal   `json:"total_difference"`
	StatusCounts    map[string]int    `json:"status_counts"` // verdict -> reading count
}

// AttendantSales is one attendant's dispensed volume and expected take for
// a date, summed over every nozzle credited to them.
type AttendantSales struct {
	Attendant        string          `json:"attendant"`
	NozzleCount      int             `json:"nozzle_count"`
	ElectronicLiters decimal.Decimal `json:"electronic_liters"`
	ExpectedAmount   decimal.Decimal `json:"expected_amount"`
}

// AttendantSalesReport is the per-attendant sale calculation for a date.
type AttendantSalesReport struct {
	Date       string           `json:"date"`
	Attendants []AttendantSales `json:"attendants"`
}
