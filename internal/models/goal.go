package models

import "time"

// Goal is the target fluid volume for one calendar day. There is at
// most one row whose Date falls inside a local day; callers enforce
// that with find-or-create over a [dayStart, dayEnd) range.
type Goal struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Date       time.Time `gorm:"not null;index" json:"date"`
	QuantityOz float64   `gorm:"not null;default:0" json:"quantity_oz"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
