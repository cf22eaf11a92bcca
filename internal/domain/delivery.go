package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Delivery is one fuel offload into a tank. A delivery recorded as it
// happens sits in the unlinked pool (ReadingID nil) until a shift
// submission claims it.
type Delivery struct {
	ID              string          `json:"id" gorm:"primaryKey"`
	ReadingID       *string         `json:"reading_id,omitempty" gorm:"index"`
	TankID          string          `json:"tank_id" gorm:"index"`
	DeliveredAt     time.Time       `json:"delivered_at" gorm:"index"`
	Supplier        string          `json:"supplier"`
	InvoiceNumber   string          `json:"invoice_number,omitempty"`
	FuelType        FuelType        `json:"fuel_type"`
	BeforeVolume    decimal.Decimal `json:"before_volume" gorm:"type:decimal(20,4)"`
	AfterVolume     decimal.Decimal `json:"after_volume" gorm:"type:decimal(20,4)"`
	VolumeDelivered decimal.Decimal `json:"volume_delivered" gorm:"type:decimal(20,4)"`
	RecordedBy      string          `json:"recorded_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Linked reports whether the delivery has been claimed by a shift reading.
func (d *Delivery) Linked() bool {
	return d.ReadingID != nil && *d.ReadingID != ""
}
