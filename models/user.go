package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleMerchant UserRole = "merchant"
	RoleRider    UserRole = "rider"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"not null;default:'customer'"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RiderApproval gates whether a rider may claim orders or go online
type RiderApproval string

const (
	RiderPending  RiderApproval = "pending"
	RiderApproved RiderApproval = "approved"
	RiderRejected RiderApproval = "rejected"
)

// RiderProfile holds rider-specific state. CurrentLat/CurrentLng is a
// last-write-wins projection of the newest RiderLocation sample; the
// location history table is the source of truth.
type RiderProfile struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	UserID         uint          `json:"user_id" gorm:"uniqueIndex;not null"`
	User           User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ApprovalStatus RiderApproval `json:"approval_status" gorm:"not null;default:'pending'"`
	VehicleType    string        `json:"vehicle_type"`
	PlateNumber    string        `json:"plate_number"`
	IsOnline       bool          `json:"is_online" gorm:"default:false"`
	CurrentLat     *float64      `json:"current_lat"`
	CurrentLng     *float64      `json:"current_lng"`
	LastLocationAt *time.Time    `json:"last_location_at"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
