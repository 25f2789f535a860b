package wallet

import (
	"context"
	"testing"

	"food-delivery-engine/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedDeliveredOrder(t *testing.T, db *gorm.DB, method models.PaymentMethod) *models.Order {
	t.Helper()
	owner := models.User{Name: "Owner", Email: "owner@test.io", PasswordHash: "x", Role: models.RoleMerchant}
	customer := models.User{Name: "Cust", Email: "cust@test.io", PasswordHash: "x", Role: models.RoleCustomer}
	rider := models.User{Name: "Rider", Email: "rider@test.io", PasswordHash: "x", Role: models.RoleRider}
	require.NoError(t, db.Create(&owner).Error)
	require.NoError(t, db.Create(&customer).Error)
	require.NoError(t, db.Create(&rider).Error)

	restaurant := models.Restaurant{OwnerID: owner.ID, Name: "R", IsOpen: true}
	require.NoError(t, db.Create(&restaurant).Error)

	order := models.Order{
		OrderNumber:     "ORD-TEST-1",
		CustomerID:      customer.ID,
		RestaurantID:    restaurant.ID,
		RiderID:         &rider.ID,
		Status:          models.StatusDelivered,
		Subtotal:        300,
		Markup:          30,
		DeliveryFee:     49,
		Total:           379,
		PaymentMethod:   method,
		DeliveryAddress: "x",
	}
	require.NoError(t, db.Create(&order).Error)
	return &order
}

func TestDeliveredBridgeIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	bridge := NewBridge(ledger)
	order := seedDeliveredOrder(t, db, models.PayCash)

	// the same lifecycle event delivered twice
	for i := 0; i < 2; i++ {
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
			return bridge.OnOrderDelivered(tx, order)
		}))
	}

	var earnings []models.WalletTransaction
	require.NoError(t, db.Where("order_id = ? AND type = ?", order.ID, models.TxMerchantEarnings).
		Find(&earnings).Error)
	require.Len(t, earnings, 1, "merchant earnings must post exactly once")
	assert.True(t, earnings[0].Amount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, models.TxCompleted, earnings[0].Status)

	var collections []models.WalletTransaction
	require.NoError(t, db.Where("order_id = ? AND type = ?", order.ID, models.TxCashCollection).
		Find(&collections).Error)
	require.Len(t, collections, 1, "cash collection must post exactly once")
	assert.Equal(t, models.TxPending, collections[0].Status)
	assert.True(t, collections[0].Amount.Equal(decimal.NewFromInt(379)))
	require.NotNil(t, collections[0].CollectedBy)
	assert.Equal(t, *order.RiderID, *collections[0].CollectedBy)
}

func TestDeliveredBridgeSkipsCashCollectionForWalletOrders(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	bridge := NewBridge(ledger)
	order := seedDeliveredOrder(t, db, models.PayWallet)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return bridge.OnOrderDelivered(tx, order)
	}))

	var count int64
	db.Model(&models.WalletTransaction{}).
		Where("order_id = ? AND type = ?", order.ID, models.TxCashCollection).Count(&count)
	assert.Zero(t, count, "no cash changes hands on a wallet-paid order")
}

func TestPlacedBridgeDebitsWalletOncePerOrder(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	bridge := NewBridge(ledger)
	order := seedDeliveredOrder(t, db, models.PayWallet)
	ctx := context.Background()

	w, err := ledger.WalletForUser(ctx, order.CustomerID)
	require.NoError(t, err)
	_, _, err = ledger.Post(ctx, PostInput{WalletID: w.ID, Type: models.TxDeposit, Amount: decimal.NewFromInt(500), Status: models.TxCompleted})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
			return bridge.OnOrderPlaced(tx, order)
		}))
	}

	balance, err := ledger.Balance(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromFloat(500-order.Total)),
		"payment must debit exactly once, got %s", balance)
}
