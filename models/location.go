package models

import "time"

// RiderLocation is an append-only time series of position samples. The
// rider's current position lives on RiderProfile as a read projection.
type RiderLocation struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RiderID      uint      `json:"rider_id" gorm:"not null;index"`
	OrderID      *uint     `json:"order_id" gorm:"index"`
	Lat          float64   `json:"lat" gorm:"not null"`
	Lng          float64   `json:"lng" gorm:"not null"`
	Accuracy     *float64  `json:"accuracy"`
	Heading      *float64  `json:"heading"`
	Speed        *float64  `json:"speed"`
	BatteryLevel *int      `json:"battery_level"`
	IsOnline     bool      `json:"is_online"`
	CreatedAt    time.Time `json:"created_at"`
}
