package models

import (
	"time"
)

// Operator is a payee identified by the username recorded in the sheet
// header. This is a separate identity from the operator key that keys shift
// aggregation; the two are never conflated.
type Operator struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:255;not null;uniqueIndex" json:"username"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
