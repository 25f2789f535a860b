package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet.Balance is a cached projection over the wallet's completed
// transactions. The transaction log is the source of truth; the balance
// can always be rebuilt by replaying it.
type Wallet struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	UserID    uint            `json:"user_id" gorm:"uniqueIndex;not null"`
	User      User            `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Balance   decimal.Decimal `json:"balance" gorm:"type:numeric;not null;default:0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type TransactionType string

const (
	TxDeposit          TransactionType = "deposit"
	TxWithdrawal       TransactionType = "withdrawal"
	TxGcashTopup       TransactionType = "gcash_topup"
	TxMayaTopup        TransactionType = "maya_topup"
	TxCashCollection   TransactionType = "cash_collection"
	TxOrderPayment     TransactionType = "order_payment"
	TxMerchantEarnings TransactionType = "merchant_earnings"
)

type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxCompleted TransactionStatus = "completed"
	TxFailed    TransactionStatus = "failed"
)

// WalletTransaction rows are append-only: amount, type and wallet are
// immutable once written. Only Status may change, and only pending →
// completed/failed via an explicit resolve step.
type WalletTransaction struct {
	ID            uint              `json:"id" gorm:"primaryKey"`
	WalletID      uint              `json:"wallet_id" gorm:"not null;index"`
	Wallet        Wallet            `json:"-" gorm:"foreignKey:WalletID"`
	OrderID       *uint             `json:"order_id"`
	Type          TransactionType   `json:"type" gorm:"not null"`
	PaymentMethod string            `json:"payment_method"`
	Amount        decimal.Decimal   `json:"amount" gorm:"type:numeric;not null"` // signed
	ExternalRef   string            `json:"external_ref"`                        // gateway transaction id
	CollectedBy   *uint             `json:"collected_by"`                        // who physically handled cash
	Status        TransactionStatus `json:"status" gorm:"not null;default:'pending'"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// OrderLedgerPosting guards the order→ledger bridge: one row per
// (order, transition) pair, so re-delivering the same lifecycle event
// cannot post the same money twice.
type OrderLedgerPosting struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	OrderID        uint      `json:"order_id" gorm:"not null;uniqueIndex:idx_order_transition"`
	TransitionType string    `json:"transition_type" gorm:"not null;uniqueIndex:idx_order_transition"`
	CreatedAt      time.Time `json:"created_at"`
}
