// Package report aggregates submitted shift readings into daily summaries,
// attendant sale breakdowns and spreadsheet exports for the station manager.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/forecourt/backoffice/internal/domain"
	"github.com/forecourt/backoffice/internal/ports"
	"github.com/forecourt/backoffice/internal/reconcile"
)

// Service builds reports from frozen shift readings. It never recomputes
// reconciliation figures; the numbers shown are the ones persisted at
// submission time.
type Service struct {
	readings    ports.ReadingRepository
	tanks       ports.TankRepository
	stationName string
	currency    string
	log         *zap.Logger
}

// NewService creates a new report service.
func NewService(readings ports.ReadingRepository, tanks ports.TankRepository, stationName, currency string, log *zap.Logger) ports.ReportService {
	if currency == "" {
		currency = "USD"
	}
	return &Service{
		readings:    readings,
		tanks:       tanks,
		stationName: stationName,
		currency:    currency,
		log:         log,
	}
}

// DailySummary aggregates every reading submitted for the given date.
func (s *Service) DailySummary(ctx context.Context, date string) (*domain.DailySummary, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, errors.New("date must be in YYYY-MM-DD format")
	}

	readings, err := s.readings.FindByDate(ctx, date)
	if err != nil {
		s.log.Error("Failed to load readings for daily summary", zap.String("date", date), zap.Error(err))
		return nil, err
	}

	tankNames, err := s.tankIndex(ctx)
	if err != nil {
		return nil, err
	}

	summary := &domain.DailySummary{
		Date:            date,
		Rows:            make([]domain.DailySummaryRow, 0, len(readings)),
		TotalLitersSold: decimal.Zero,
		TotalDelivered:  decimal.Zero,
		TotalExpected:   decimal.Zero,
		TotalBanked:     decimal.Zero,
		TotalDifference: decimal.Zero,
		StatusCounts:    make(map[string]int),
	}

	for _, r := range readings {
		row := domain.DailySummaryRow{
			TankID:             r.TankID,
			TankName:           r.TankID,
			ShiftType:          r.ShiftType,
			TotalElectronic:    r.TotalElectronic,
			TotalMechanical:    r.TotalMechanical,
			TankVolumeMovement: r.TankVolumeMovement,
			TotalDelivered:     r.TotalDelivered,
			ExpectedAmount:     r.ExpectedAmountElectronic,
			ActualCashBanked:   r.ActualCashBanked,
			CashDifference:     r.CashDifference,
			LossPercent:        r.LossPercent,
			ValidationStatus:   r.ValidationStatus,
		}
		if tank, ok := tankNames[r.TankID]; ok {
			row.TankName = tank.Name
			row.FuelType = tank.FuelType
		}
		summary.Rows = append(summary.Rows, row)

		summary.TotalLitersSold = summary.TotalLitersSold.Add(r.TotalElectronic)
		summary.TotalDelivered = summary.TotalDelivered.Add(r.TotalDelivered)
		summary.TotalExpected = summary.TotalExpected.Add(r.ExpectedAmountElectronic)
		summary.TotalBanked = summary.TotalBanked.Add(r.ActualCashBanked)
		summary.TotalDifference = summary.TotalDifference.Add(r.CashDifference)
		summary.StatusCounts[string(r.ValidationStatus)]++
	}

	return summary, nil
}

// ExportDailySummary renders the daily summary as an xlsx workbook and
// returns its bytes, ready to stream as a download.
func (s *Service) ExportDailySummary(ctx context.Context, date string) ([]byte, error) {
	summary, err := s.DailySummary(ctx, date)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Daily Summary"
	index, _ := f.NewSheet(sheetName)
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	f.SetCellValue(sheetName, "A1", s.stationName)
	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Shift reconciliation for %s", summary.Date))

	headers := []string{
		"Tank", "Fuel", "Shift", "Electronic (L)", "Mechanical (L)",
		"Tank Movement (L)", "Delivered (L)",
		fmt.Sprintf("Expected (%s)", s.currency),
		fmt.Sprintf("Banked (%s)", s.currency),
		fmt.Sprintf("Difference (%s)", s.currency),
		"Loss %", "Status",
	}
	const headerRow = 4
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		f.SetCellValue(sheetName, cell, header)
	}

	rowIndex := headerRow + 1
	for _, row := range summary.Rows {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex), row.TankName)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIndex), string(row.FuelType))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIndex), string(row.ShiftType))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowIndex), row.TotalElectronic.InexactFloat64())
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowIndex), row.TotalMechanical.InexactFloat64())
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowIndex), row.TankVolumeMovement.InexactFloat64())
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", rowIndex), row.TotalDelivered.InexactFloat64())
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", rowIndex), row.ExpectedAmount.InexactFloat64())
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", rowIndex), row.ActualCashBanked.InexactFloat64())
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", rowIndex), row.CashDifference.InexactFloat64())
		f.SetCellValue(sheetName, fmt.Sprintf("K%d", rowIndex), row.LossPercent.InexactFloat64())
		f.SetCellValue(sheetName, fmt.Sprintf("L%d", rowIndex), string(row.ValidationStatus))
		rowIndex++
	}

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex), "TOTAL")
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowIndex), summary.TotalLitersSold.InexactFloat64())
	f.SetCellValue(sheetName, fmt.Sprintf("G%d", rowIndex), summary.TotalDelivered.InexactFloat64())
	f.SetCellValue(sheetName, fmt.Sprintf("H%d", rowIndex), summary.TotalExpected.InexactFloat64())
	f.SetCellValue(sheetName, fmt.Sprintf("I%d", rowIndex), summary.TotalBanked.InexactFloat64())
	f.SetCellValue(sheetName, fmt.Sprintf("J%d", rowIndex), summary.TotalDifference.InexactFloat64())

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.log.Error("Failed to render daily summary workbook", zap.String("date", date), zap.Error(err))
		return nil, err
	}

	s.log.Info("Daily summary exported",
		zap.String("date", date),
		zap.Int("rows", len(summary.Rows)))

	return buf.Bytes(), nil
}

// AttendantSales groups the date's nozzle readings by attendant and computes
// each attendant's dispensed volume and the cash they are expected to hand in.
func (s *Service) AttendantSales(ctx context.Context, date string) (*domain.AttendantSalesReport, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, errors.New("date must be in YYYY-MM-DD format")
	}

	readings, err := s.readings.FindByDate(ctx, date)
	if err != nil {
		s.log.Error("Failed to load readings for attendant sales", zap.String("date", date), zap.Error(err))
		return nil, err
	}

	byAttendant := make(map[string]*domain.AttendantSales)
	order := make([]string, 0)

	for _, r := range readings {
		for _, nr := range r.NozzleReadings {
			if nr.Attendant == "" {
				continue
			}
			sales, ok := byAttendant[nr.Attendant]
			if !ok {
				sales = &domain.AttendantSales{Attendant: nr.Attendant}
				byAttendant[nr.Attendant] = sales
				order = append(order, nr.Attendant)
			}
			liters := reconcile.NozzleMovement(nr.ElectronicOpening, nr.ElectronicClosing)
			sales.NozzleCount++
			sales.ElectronicLiters = sales.ElectronicLiters.Add(liters)
			sales.ExpectedAmount = sales.ExpectedAmount.Add(liters.Mul(r.PricePerLiter).Round(2))
		}
	}

	report := &domain.AttendantSalesReport{
		Date:       date,
		Attendants: make([]domain.AttendantSales, 0, len(order)),
	}
	for _, name := range order {
		report.Attendants = append(report.Attendants, *byAttendant[name])
	}

	return report, nil
}

// tankIndex loads every tank keyed by ID for row labelling.
func (s *Service) tankIndex(ctx context.Context) (map[string]domain.Tank, error) {
	tanks, err := s.tanks.FindAll(ctx, nil)
	if err != nil {
		s.log.Error("Failed to load tanks for report", zap.Error(err))
		return nil, err
	}
	index := make(map[string]domain.Tank, len(tanks))
	for _, t := range tanks {
		index[t.ID] = t
	}
	return index, nil
}
