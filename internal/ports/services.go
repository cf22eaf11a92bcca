package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/forecourt/backoffice/internal/domain"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, string, error) // token, refresh, err
	Register(ctx context.Context, user *domain.User) error
	RefreshToken(ctx context.Context, token string) (string, error)
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
}

type StationService interface {
	CreateTank(ctx context.Context, tank *domain.Tank) error
	GetTank(ctx context.Context, id string) (*domain.Tank, error)
	ListTanks(ctx context.Context, filter map[string]interface{}) ([]domain.Tank, error)
	UpdateTankStatus(ctx context.Context, id string, status domain.AssetStatus) error

	CreateIsland(ctx context.Context, island *domain.Island) error
	ListIslands(ctx context.Context) ([]domain.Island, error)

	CreatePump(ctx context.Context, pump *domain.Pump) error
	ListPumps(ctx context.Context, filter map[string]interface{}) ([]domain.Pump, error)
	UpdatePumpStatus(ctx context.Context, id string, status domain.AssetStatus) error

	CreateNozzle(ctx context.Context, nozzle *domain.Nozzle) error
	ListNozzles(ctx context.Context, filter map[string]interface{}) ([]domain.Nozzle, error)
	UpdateNozzleStatus(ctx context.Context, id string, status domain.AssetStatus) error
}

// ReadingSubmission is the shift submission payload. Absent numeric fields
// decode to zero, which the calculator treats as "not entered".
type ReadingSubmission struct {
	TankID             string           `json:"tank_id"`
	Date               string           `json:"date"` // YYYY-MM-DD
	ShiftType          domain.ShiftType `json:"shift_type"`
	OpeningDipCM       decimal.Decimal  `json:"opening_dip_cm"`
	ClosingDipCM       decimal.Decimal  `json:"closing_dip_cm"`
	AfterDeliveryDipCM decimal.Decimal  `json:"after_delivery_dip_cm"`
	OpeningVolume      decimal.Decimal  `json:"opening_volume"`
	ClosingVolume      decimal.Decimal  `json:"closing_volume"`

	NozzleReadings []NozzleReadingEntry `json:"nozzle_readings"`
	Deliveries     []DeliveryEntry      `json:"deliveries"`

	// Legacy single-offload fields, honored only when Deliveries is empty.
	BeforeOffloadVolume decimal.Decimal `json:"before_offload_volume"`
	AfterOffloadVolume  decimal.Decimal `json:"after_offload_volume"`

	PricePerLiter    decimal.Decimal `json:"price_per_liter"`
	ActualCashBanked decimal.Decimal `json:"actual_cash_banked"`

	CustomerAllocations       []AllocationEntry `json:"customer_allocations"`
	ConfirmAllocationMismatch bool              `json:"confirm_allocation_mismatch"`

	RecordedBy string `json:"recorded_by"`
	Notes      string `json:"notes"`
}

type NozzleReadingEntry struct {
	NozzleID          string          `json:"nozzle_id"`
	Attendant         string          `json:"attendant"`
	ElectronicOpening decimal.Decimal `json:"electronic_opening"`
	ElectronicClosing decimal.Decimal `json:"electronic_closing"`
	MechanicalOpening decimal.Decimal `json:"mechanical_opening"`
	MechanicalClosing decimal.Decimal `json:"mechanical_closing"`
}

type DeliveryEntry struct {
	DeliveryID      string          `json:"delivery_id"` // set when claiming a pool delivery
	DeliveryTime    time.Time       `json:"delivery_time"`
	Supplier        string          `json:"supplier"`
	FuelType        domain.FuelType `json:"fuel_type"`
	InvoiceNumber   string          `json:"invoice_number"`
	BeforeVolume    decimal.Decimal `json:"before_volume"`
	AfterVolume     decimal.Decimal `json:"after_volume"`
	VolumeDelivered decimal.Decimal `json:"volume_delivered"`
}

type AllocationEntry struct {
	CustomerID    string          `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	Volume        decimal.Decimal `json:"volume"`
	PricePerLiter decimal.Decimal `json:"price_per_liter"`
}

// SubmissionResult is returned after a successful submission: the frozen
// reading flattened into the response, plus the advisory findings.
type SubmissionResult struct {
	*domain.ShiftReading
	DeliveryWarnings     []string        `json:"delivery_warnings"`
	AllocationValid      bool            `json:"allocation_valid"`
	AllocationDifference decimal.Decimal `json:"allocation_difference"`
}

type ReadingService interface {
	SubmitReading(ctx context.Context, sub *ReadingSubmission) (*SubmissionResult, error)
	GetReading(ctx context.Context, id string) (*domain.ShiftReading, error)
	ListReadings(ctx context.Context, filter map[string]interface{}) ([]domain.ShiftReading, error)
	GetPreviousShift(ctx context.Context, tankID string) (*domain.ShiftReading, error)
}

// DeliveryRequest records an offload into the unlinked pool.
type DeliveryRequest struct {
	TankID          string          `json:"tank_id"`
	DeliveredAt     time.Time       `json:"delivered_at"`
	Supplier        string          `json:"supplier"`
	InvoiceNumber   string          `json:"invoice_number"`
	FuelType        domain.FuelType `json:"fuel_type"`
	BeforeVolume    decimal.Decimal `json:"before_volume"`
	AfterVolume     decimal.Decimal `json:"after_volume"`
	VolumeDelivered decimal.Decimal `json:"volume_delivered"`
	RecordedBy      string          `json:"recorded_by"`
}

type DeliveryService interface {
	RecordDelivery(ctx context.Context, req *DeliveryRequest) (*domain.Delivery, error)
	GetDelivery(ctx context.Context, id string) (*domain.Delivery, error)
	ListUnlinked(ctx context.Context, tankID string) ([]domain.Delivery, error)
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, customer *domain.Customer) error
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	ListCustomers(ctx context.Context, activeOnly bool) ([]domain.Customer, error)
}

type ReportService interface {
	DailySummary(ctx context.Context, date string) (*domain.DailySummary, error)
	ExportDailySummary(ctx context.Context, date string) ([]byte, error) // xlsx
	AttendantSales(ctx context.Context, date string) (*domain.AttendantSalesReport, error)
}

// EmailService handles outbound mail.
type EmailService interface {
	// Send sends a plain-text email
	Send(ctx context.Context, to, subject, body string) error

	// SendHTML sends an HTML email
	SendHTML(ctx context.Context, to, subject, htmlBody string) error

	// SendTemplate sends an email using a named template
	SendTemplate(ctx context.Context, to, templateName string, data map[string]interface{}) error

	// SendReconciliationAlert notifies the manager of a failed shift
	SendReconciliationAlert(ctx context.Context, to string, reading *domain.ShiftReading) error

	// SendDailyReport mails the daily summary
	SendDailyReport(ctx context.Context, to string, summary *domain.DailySummary) error
}
