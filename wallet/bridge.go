package wallet

import (
	"errors"

	"food-delivery-engine/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Bridge turns order lifecycle transitions into ledger postings. Every
// posting is guarded by an OrderLedgerPosting row with a composite unique
// key on (order, transition), so delivering the same lifecycle event twice
// posts money exactly once. It runs inside the order engine's transaction.
type Bridge struct {
	ledger *Ledger
}

func NewBridge(ledger *Ledger) *Bridge {
	return &Bridge{ledger: ledger}
}

const (
	postingWalletPayment    = "placed_wallet_payment"
	postingMerchantEarnings = "delivered_merchant_earnings"
	postingCashCollection   = "delivered_cash_collection"
)

// OnOrderPlaced debits the customer's wallet for wallet-paid orders.
// Cash and gateway-paid orders post nothing at placement time.
func (b *Bridge) OnOrderPlaced(tx *gorm.DB, order *models.Order) error {
	if order.PaymentMethod != models.PayWallet {
		return nil
	}
	fresh, err := claimPosting(tx, order.ID, postingWalletPayment)
	if err != nil || !fresh {
		return err
	}
	wallet, err := walletForUser(tx, order.CustomerID)
	if err != nil {
		return err
	}
	_, _, err = b.ledger.post(tx, PostInput{
		WalletID:      wallet.ID,
		OrderID:       &order.ID,
		Type:          models.TxOrderPayment,
		PaymentMethod: string(models.PayWallet),
		Amount:        decimal.NewFromFloat(order.Total).Neg(),
		Status:        models.TxCompleted,
	})
	return err
}

// OnOrderDelivered credits the merchant's earnings and, for cash orders,
// records which rider is holding the collected cash. The cash-collection
// row stays pending until reconciliation resolves it, so it is visible in
// history without touching the rider's balance.
func (b *Bridge) OnOrderDelivered(tx *gorm.DB, order *models.Order) error {
	fresh, err := claimPosting(tx, order.ID, postingMerchantEarnings)
	if err != nil {
		return err
	}
	if fresh {
		var restaurant models.Restaurant
		if err := tx.First(&restaurant, order.RestaurantID).Error; err != nil {
			return err
		}
		wallet, err := walletForUser(tx, restaurant.OwnerID)
		if err != nil {
			return err
		}
		if _, _, err := b.ledger.post(tx, PostInput{
			WalletID:      wallet.ID,
			OrderID:       &order.ID,
			Type:          models.TxMerchantEarnings,
			PaymentMethod: string(order.PaymentMethod),
			Amount:        decimal.NewFromFloat(order.Subtotal),
			Status:        models.TxCompleted,
		}); err != nil {
			return err
		}
	}

	if order.PaymentMethod == models.PayCash && order.RiderID != nil {
		fresh, err := claimPosting(tx, order.ID, postingCashCollection)
		if err != nil || !fresh {
			return err
		}
		wallet, err := walletForUser(tx, *order.RiderID)
		if err != nil {
			return err
		}
		if _, _, err := b.ledger.post(tx, PostInput{
			WalletID:      wallet.ID,
			OrderID:       &order.ID,
			Type:          models.TxCashCollection,
			PaymentMethod: string(models.PayCash),
			Amount:        decimal.NewFromFloat(order.Total),
			CollectedBy:   order.RiderID,
			Status:        models.TxPending,
		}); err != nil {
			return err
		}
	}
	return nil
}

// claimPosting inserts the idempotency guard row. A conflict on the
// (order, transition) unique index means the posting already happened;
// the caller must then skip it silently.
func claimPosting(tx *gorm.DB, orderID uint, transition string) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.OrderLedgerPosting{OrderID: orderID, TransitionType: transition})
	if res.Error != nil {
		// Some dialects surface the conflict instead of swallowing it.
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
