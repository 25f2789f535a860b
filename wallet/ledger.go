package wallet

import (
	"context"
	"errors"
	"fmt"

	"food-delivery-engine/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrTransactionNotFound = errors.New("wallet transaction not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadyResolved     = errors.New("transaction is not pending")
	ErrInvalidStatus       = errors.New("invalid transaction status")
)

// Ledger is the append-only money log. Every monetary event is a
// transaction row; Wallet.Balance is only a cached projection that is
// adjusted exactly once per row, on the transition into completed.
// Recompute rebuilds the projection from the log when they diverge.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

type PostInput struct {
	WalletID      uint
	OrderID       *uint
	Type          models.TransactionType
	PaymentMethod string
	Amount        decimal.Decimal // signed
	ExternalRef   string
	CollectedBy   *uint
	Status        models.TransactionStatus
}

// Post appends a transaction and, when it is inserted already completed,
// applies its signed amount to the cached balance in the same transaction.
func (l *Ledger) Post(ctx context.Context, in PostInput) (*models.WalletTransaction, decimal.Decimal, error) {
	var (
		txn     *models.WalletTransaction
		balance decimal.Decimal
	)
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		txn, balance, err = l.post(tx, in)
		return err
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	return txn, balance, nil
}

// post is the in-transaction body of Post, shared with the order bridge.
func (l *Ledger) post(tx *gorm.DB, in PostInput) (*models.WalletTransaction, decimal.Decimal, error) {
	if in.Status == "" {
		in.Status = models.TxCompleted
	}
	if in.Status == models.TxFailed {
		return nil, decimal.Zero, fmt.Errorf("%w: cannot insert a failed transaction", ErrInvalidStatus)
	}

	var wallet models.Wallet
	if err := tx.First(&wallet, in.WalletID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, decimal.Zero, fmt.Errorf("%w: wallet %d", ErrWalletNotFound, in.WalletID)
		}
		return nil, decimal.Zero, err
	}

	// A debit may never promise more than the wallet currently holds,
	// whether it settles now or later.
	if in.Amount.IsNegative() && wallet.Balance.Add(in.Amount).IsNegative() {
		return nil, decimal.Zero, fmt.Errorf("%w: balance %s, requested %s",
			ErrInsufficientBalance, wallet.Balance.String(), in.Amount.String())
	}

	txn := models.WalletTransaction{
		WalletID:      wallet.ID,
		OrderID:       in.OrderID,
		Type:          in.Type,
		PaymentMethod: in.PaymentMethod,
		Amount:        in.Amount,
		ExternalRef:   in.ExternalRef,
		CollectedBy:   in.CollectedBy,
		Status:        in.Status,
	}
	if err := tx.Create(&txn).Error; err != nil {
		return nil, decimal.Zero, err
	}

	if in.Status == models.TxCompleted {
		wallet.Balance = wallet.Balance.Add(in.Amount)
		if err := tx.Model(&models.Wallet{}).Where("id = ?", wallet.ID).
			Update("balance", wallet.Balance).Error; err != nil {
			return nil, decimal.Zero, err
		}
	}
	return &txn, wallet.Balance, nil
}

// Resolve flips a pending transaction to completed or failed. The amount is
// applied exactly once, on the transition into completed; a failed flip
// applies nothing. Anything other than a pending source state is rejected.
func (l *Ledger) Resolve(ctx context.Context, txnID uint, status models.TransactionStatus) (*models.WalletTransaction, decimal.Decimal, error) {
	if status != models.TxCompleted && status != models.TxFailed {
		return nil, decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	var (
		txn     models.WalletTransaction
		balance decimal.Decimal
	)
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&txn, txnID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: transaction %d", ErrTransactionNotFound, txnID)
			}
			return err
		}
		if txn.Status != models.TxPending {
			return fmt.Errorf("%w: currently %s", ErrAlreadyResolved, txn.Status)
		}

		var wallet models.Wallet
		if err := tx.First(&wallet, txn.WalletID).Error; err != nil {
			return err
		}

		// A debit is re-checked at settlement time: two pending withdrawals
		// can each be covered when requested yet overdraw when both settle.
		if status == models.TxCompleted && txn.Amount.IsNegative() &&
			wallet.Balance.Add(txn.Amount).IsNegative() {
			return fmt.Errorf("%w: balance %s, settling %s",
				ErrInsufficientBalance, wallet.Balance.String(), txn.Amount.String())
		}

		if err := tx.Model(&models.WalletTransaction{}).Where("id = ?", txn.ID).
			Update("status", status).Error; err != nil {
			return err
		}
		txn.Status = status

		balance = wallet.Balance
		if status == models.TxCompleted {
			balance = wallet.Balance.Add(txn.Amount)
			if err := tx.Model(&models.Wallet{}).Where("id = ?", wallet.ID).
				Update("balance", balance).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	return &txn, balance, nil
}

// Recompute replays the full transaction log for one wallet and overwrites
// the cached balance. Used for reconciliation when cache and log diverge.
func (l *Ledger) Recompute(ctx context.Context, walletID uint) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wallet models.Wallet
		if err := tx.First(&wallet, walletID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: wallet %d", ErrWalletNotFound, walletID)
			}
			return err
		}

		var txns []models.WalletTransaction
		if err := tx.Where("wallet_id = ? AND status = ?", walletID, models.TxCompleted).
			Find(&txns).Error; err != nil {
			return err
		}
		balance = decimal.Zero
		for _, t := range txns {
			balance = balance.Add(t.Amount)
		}
		return tx.Model(&models.Wallet{}).Where("id = ?", walletID).
			Update("balance", balance).Error
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// Balance returns the cached projection.
func (l *Ledger) Balance(ctx context.Context, walletID uint) (decimal.Decimal, error) {
	var wallet models.Wallet
	if err := l.db.WithContext(ctx).First(&wallet, walletID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, fmt.Errorf("%w: wallet %d", ErrWalletNotFound, walletID)
		}
		return decimal.Zero, err
	}
	return wallet.Balance, nil
}

// History returns the full transaction log, newest first. Pending and
// failed rows stay visible even though they contribute nothing to balance.
func (l *Ledger) History(ctx context.Context, walletID uint) ([]models.WalletTransaction, error) {
	var txns []models.WalletTransaction
	err := l.db.WithContext(ctx).Where("wallet_id = ?", walletID).
		Order("created_at desc, id desc").Find(&txns).Error
	return txns, err
}

// WalletForUser fetches (or lazily creates) the single wallet owned by a user.
func (l *Ledger) WalletForUser(ctx context.Context, userID uint) (*models.Wallet, error) {
	return walletForUser(l.db.WithContext(ctx), userID)
}

func walletForUser(tx *gorm.DB, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := tx.Where("user_id = ?", userID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		wallet = models.Wallet{UserID: userID, Balance: decimal.Zero}
		if err := tx.Create(&wallet).Error; err != nil {
			return nil, err
		}
		return &wallet, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}
