package models

import "time"

// OrderStatus represents all possible states of a delivery order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusAccepted  OrderStatus = "accepted"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusPickedUp  OrderStatus = "picked_up"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// PaymentMethod is how the customer settles the order total
type PaymentMethod string

const (
	PayCash   PaymentMethod = "cod"
	PayWallet PaymentMethod = "wallet"
	PayGcash  PaymentMethod = "gcash"
	PayMaya   PaymentMethod = "maya"
)

type Order struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	OrderNumber  string     `json:"order_number" gorm:"uniqueIndex;not null"`
	CustomerID   uint       `json:"customer_id" gorm:"not null"`
	Customer     User       `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	RestaurantID uint       `json:"restaurant_id" gorm:"not null"`
	Restaurant   Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`

	// RiderID is assigned exactly once, by the claim transition. It is
	// non-null iff status is accepted..delivered; cancellation clears it.
	RiderID *uint `json:"rider_id"`
	Rider   *User `json:"rider,omitempty" gorm:"foreignKey:RiderID"`

	Status OrderStatus `json:"status" gorm:"not null;default:'pending'"`

	// Money columns are derived from the item snapshot and the restaurant's
	// configured markup and delivery fee; they are never edited directly.
	Subtotal    float64 `json:"subtotal"`
	Markup      float64 `json:"markup"`
	DeliveryFee float64 `json:"delivery_fee"`
	Total       float64 `json:"total"`

	PaymentMethod   PaymentMethod `json:"payment_method" gorm:"not null;default:'cod'"`
	DeliveryAddress string        `json:"delivery_address" gorm:"not null"`
	Notes           string        `json:"notes"`

	EstimatedDeliveryAt *time.Time `json:"estimated_delivery_at"`

	Items         []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type OrderItem struct {
	ID         uint     `json:"id" gorm:"primaryKey"`
	OrderID    uint     `json:"order_id" gorm:"not null"`
	MenuItemID uint     `json:"menu_item_id" gorm:"not null"`
	MenuItem   MenuItem `json:"menu_item,omitempty" gorm:"foreignKey:MenuItemID"`
	Quantity   int      `json:"quantity" gorm:"not null"`
	Price      float64  `json:"price" gorm:"not null"` // snapshot price at time of order
	Name       string   `json:"name"`                  // snapshot name
	Modifiers  string   `json:"modifiers"`             // snapshot of selected modifiers, comma-joined
}

// OrderStatusHistory is the append-only audit trail: one row per status
// transition plus one row per merchant item edit (same status, note only).
// Rows are never updated or deleted; the newest row's ToStatus always
// mirrors the parent order's live status.
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"` // empty for the creation event
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ActorID    uint        `json:"actor_id"`
	ActorRole  UserRole    `json:"actor_role"`
	Note       string      `json:"note"`
	Lat        *float64    `json:"lat"`
	Lng        *float64    `json:"lng"`
	CreatedAt  time.Time   `json:"created_at"`
}
