package wallet

import (
	"context"
	"testing"

	"food-delivery-engine/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Restaurant{}, &models.Order{},
		&models.Wallet{}, &models.WalletTransaction{}, &models.OrderLedgerPosting{},
	))
	return db
}

func newWallet(t *testing.T, db *gorm.DB) *models.Wallet {
	t.Helper()
	user := models.User{Name: "W", Email: "w@test.io", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	w := models.Wallet{UserID: user.ID, Balance: decimal.Zero}
	require.NoError(t, db.Create(&w).Error)
	return &w
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestLedgerConservation(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	w := newWallet(t, db)
	ctx := context.Background()

	_, _, err := ledger.Post(ctx, PostInput{WalletID: w.ID, Type: models.TxDeposit, Amount: d(100), Status: models.TxCompleted})
	require.NoError(t, err)
	_, balance, err := ledger.Post(ctx, PostInput{WalletID: w.ID, Type: models.TxWithdrawal, Amount: d(-30), Status: models.TxCompleted})
	require.NoError(t, err)
	assert.True(t, balance.Equal(d(70)))

	pending, balance, err := ledger.Post(ctx, PostInput{WalletID: w.ID, Type: models.TxGcashTopup, Amount: d(50), Status: models.TxPending})
	require.NoError(t, err)
	assert.True(t, balance.Equal(d(70)), "a pending row contributes nothing")

	// completing the pending top-up applies it exactly once
	_, balance, err = ledger.Resolve(ctx, pending.ID, models.TxCompleted)
	require.NoError(t, err)
	assert.True(t, balance.Equal(d(120)))

	got, err := ledger.Balance(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, got.Equal(d(120)))
}

func TestFailedResolveAppliesNothing(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	w := newWallet(t, db)
	ctx := context.Background()

	_, _, err := ledger.Post(ctx, PostInput{WalletID: w.ID, Type: models.TxDeposit, Amount: d(100), Status: models.TxCompleted})
	require.NoError(t, err)
	_, _, err = ledger.Post(ctx, PostInput{WalletID: w.ID, Type: models.TxWithdrawal, Amount: d(-30), Status: models.TxCompleted})
	require.NoError(t, err)
	pending, _, err := ledger.Post(ctx, PostInput{WalletID: w.ID, Type: models.TxMayaTopup, Amount: d(50), Status: models.TxPending})
	require.NoError(t, err)

	txn, balance, err := ledger.Resolve(ctx, pending.ID, models.TxFailed)
	require.NoError(t, err)
	assert.Equal(t, models.TxFailed, txn.Status)
	assert.True(t, balance.Equal(d(70)), "a failed flip must not touch the balance")

	// the failed row remains visible in history
	history, err := ledger.History(ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestResolveIsSingleShot(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	w := newWallet(t, db)
	ctx := context.Background()

	pending, _, err := ledger.Post(ctx, PostInput{WalletID: w.ID, Type: models.TxGcashTopup, Amount: d(50), Status: models.TxPending})
	require.NoError(t, err)

	_, _, err = ledger.Resolve(ctx, pending.ID, models.TxCompleted)
	require.NoError(t, err)

	// a second confirmation must not double-apply the amount
	_, _, err = ledger.Resolve(ctx, pending.ID, models.TxCompleted)
	assert.ErrorIs(t, err, ErrAlreadyResolved)

	balance, err := ledger.Balance(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(d(50)))

	// and resolve only accepts terminal statuses
	_, _, err = ledger.Resolve(ctx, pending.ID, models.TxPending)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestWithdrawalGuards(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	w := newWallet(t, db)
	ctx := context.Background()

	_, _, err := ledger.Post(ctx, PostInput{WalletID: w.ID, Type: models.TxDeposit, Amount: d(40), Status: models.TxCompleted})
	require.NoError(t, err)

	_, _, err = ledger.Post(ctx, PostInput{WalletID: w.ID, Type: models.TxWithdrawal, Amount: d(-100), Status: models.TxPending})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// a covered withdrawal sits pending without moving the balance
	pending, balance, err := ledger.Post(ctx, PostInput{WalletID: w.ID, Type: models.TxWithdrawal, Amount: d(-25), Status: models.TxPending})
	require.NoError(t, err)
	assert.True(t, balance.Equal(d(40)))

	_, balance, err = ledger.Resolve(ctx, pending.ID, models.TxCompleted)
	require.NoError(t, err)
	assert.True(t, balance.Equal(d(15)))
}

func TestResolveRechecksDebitCoverage(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	w := newWallet(t, db)
	ctx := context.Background()

	_, _, err := ledger.Post(ctx, PostInput{WalletID: w.ID, Type: models.TxDeposit, Amount: d(40), Status: models.TxCompleted})
	require.NoError(t, err)

	// both withdrawals are individually covered at request time
	first, _, err := ledger.Post(ctx, PostInput{WalletID: w.ID, Type: models.TxWithdrawal, Amount: d(-30), Status: models.TxPending})
	require.NoError(t, err)
	second, _, err := ledger.Post(ctx, PostInput{WalletID: w.ID, Type: models.TxWithdrawal, Amount: d(-30), Status: models.TxPending})
	require.NoError(t, err)

	_, balance, err := ledger.Resolve(ctx, first.ID, models.TxCompleted)
	require.NoError(t, err)
	assert.True(t, balance.Equal(d(10)))

	// settling the second would overdraw; it must stay pending
	_, _, err = ledger.Resolve(ctx, second.ID, models.TxCompleted)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	got, err := ledger.Balance(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, got.Equal(d(10)))

	var txn models.WalletTransaction
	require.NoError(t, db.First(&txn, second.ID).Error)
	assert.Equal(t, models.TxPending, txn.Status, "a rejected settlement leaves the row pending")

	// it can still be failed, which applies nothing
	_, balance, err = ledger.Resolve(ctx, second.ID, models.TxFailed)
	require.NoError(t, err)
	assert.True(t, balance.Equal(d(10)))
}

func TestPostRejectsUnknownWalletAndFailedInsert(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	_, _, err := ledger.Post(ctx, PostInput{WalletID: 9999, Type: models.TxDeposit, Amount: d(10)})
	assert.ErrorIs(t, err, ErrWalletNotFound)

	w := newWallet(t, db)
	_, _, err = ledger.Post(ctx, PostInput{WalletID: w.ID, Type: models.TxDeposit, Amount: d(10), Status: models.TxFailed})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestRecomputeRepairsDivergedCache(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	w := newWallet(t, db)
	ctx := context.Background()

	_, _, err := ledger.Post(ctx, PostInput{WalletID: w.ID, Type: models.TxDeposit, Amount: d(200), Status: models.TxCompleted})
	require.NoError(t, err)
	_, _, err = ledger.Post(ctx, PostInput{WalletID: w.ID, Type: models.TxOrderPayment, Amount: d(-80), Status: models.TxCompleted})
	require.NoError(t, err)
	_, _, err = ledger.Post(ctx, PostInput{WalletID: w.ID, Type: models.TxGcashTopup, Amount: d(999), Status: models.TxPending})
	require.NoError(t, err)

	// corrupt the cached projection behind the ledger's back
	require.NoError(t, db.Model(&models.Wallet{}).Where("id = ?", w.ID).
		Update("balance", d(5)).Error)

	balance, err := ledger.Recompute(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(d(120)), "replay must rebuild 200-80, ignoring pending")

	got, err := ledger.Balance(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, got.Equal(d(120)))
}

func TestWalletForUserIsLazy(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	user := models.User{Name: "L", Email: "l@test.io", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	w1, err := ledger.WalletForUser(ctx, user.ID)
	require.NoError(t, err)
	w2, err := ledger.WalletForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, w1.ID, w2.ID, "one wallet per user")
}
