package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type FuelType string

const (
	FuelTypeDiesel FuelType = "DIESEL"
	FuelTypePetrol FuelType = "PETROL"
)

type AssetStatus string

const (
	AssetStatusActive      AssetStatus = "Active"
	AssetStatusInactive    AssetStatus = "Inactive"
	AssetStatusMaintenance AssetStatus = "Maintenance"
)

type Tank struct {
	ID             string          `json:"id" gorm:"primaryKey"`
	Name           string          `json:"name"`
	FuelType       FuelType        `json:"fuel_type" gorm:"index"`
	CapacityLiters decimal.Decimal `json:"capacity_liters" gorm:"type:decimal(20,4)"`
	Status         AssetStatus     `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
