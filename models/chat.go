package models

import "time"

// ChatMessage is an order-scoped message between the parties of an order.
type ChatMessage struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	OrderID    uint      `json:"order_id" gorm:"not null;index"`
	SenderID   uint      `json:"sender_id" gorm:"not null"`
	SenderRole UserRole  `json:"sender_role" gorm:"not null"`
	Body       string    `json:"body" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
}
