package queue

import "github.com/shopspring/decimal"

// MessageQueue defines the interface for a message queue adapter
type MessageQueue interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Ping() error
	Close() error
}

// Subjects published by the back office.
const (
	SubjectReadingSubmitted = "reading.submitted"
	SubjectReadingAlert     = "reading.alert"
	SubjectDeliveryRecorded = "delivery.recorded"
)

// ReadingEvent is the JSON body published on reading.submitted and
// reading.alert.
type ReadingEvent struct {
	ReadingID          string          `json:"reading_id"`
	TankID             string          `json:"tank_id"`
	Date               string          `json:"date"`
	ShiftType          string          `json:"shift_type"`
	ValidationStatus   string          `json:"validation_status"`
	TankVolumeMovement decimal.Decimal `json:"tank_volume_movement"`
	LossPercent        decimal.Decimal `json:"loss_percent"`
	CashDifference     decimal.Decimal `json:"cash_difference"`
	RecordedBy         string          `json:"recorded_by"`
}

// DeliveryEvent is the JSON body published on delivery.recorded.
type DeliveryEvent struct {
	DeliveryID      string          `json:"delivery_id"`
	TankID          string          `json:"tank_id"`
	Supplier        string          `json:"supplier"`
	InvoiceNumber   string          `json:"invoice_number,omitempty"`
	VolumeDelivered decimal.Decimal `json:"volume_delivered"`
}
