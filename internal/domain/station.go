package domain

import (
	"time"
)

type Island struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	Position  int       `json:"position"` // forecourt display order
	Pumps     []Pump    `json:"pumps,omitempty" gorm:"foreignKey:IslandID"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Pump struct {
	ID        string      `json:"id" gorm:"primaryKey"`
	IslandID  string      `json:"island_id" gorm:"index"`
	Name      string      `json:"name"`
	Status    AssetStatus `json:"status"`
	Nozzles   []Nozzle    `json:"nozzles,omitempty" gorm:"foreignKey:PumpID"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type Nozzle struct {
	ID        string      `json:"id" gorm:"primaryKey"`
	PumpID    string      `json:"pump_id" gorm:"index"`
	TankID    string      `json:"tank_id" gorm:"index"` // tank this nozzle draws from
	FuelType  FuelType    `json:"fuel_type"`
	Status    AssetStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
