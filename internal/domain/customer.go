package domain

import (
	"time"
)

// Customer is an account holder eligible for diesel volume allocations.
type Customer struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex"`
	Contact   string    `json:"contact,omitempty"`
	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
