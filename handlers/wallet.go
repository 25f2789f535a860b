package handlers

import (
	"net/http"

	"food-delivery-engine/middleware"
	"food-delivery-engine/models"
	"food-delivery-engine/wallet"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GetMyWallet returns the caller's cached balance and full transaction
// history. Pending and failed rows are listed but contribute nothing to
// the balance.
func GetMyWallet(c *gin.Context) {
	userID := middleware.GetUserID(c)

	w, err := ledger.WalletForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	history, err := ledger.History(c.Request.Context(), w.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"wallet":       w,
		"balance":      w.Balance,
		"transactions": history,
	})
}

type TopupRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Method string          `json:"method" binding:"required,oneof=gcash maya"`
}

// RequestTopup creates a pending gateway top-up carrying an external
// reference. The gateway's confirmation (or an admin) later resolves it;
// only then does the amount hit the balance.
func RequestTopup(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req TopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Top-up amount must be positive"})
		return
	}

	txType := models.TxGcashTopup
	if req.Method == "maya" {
		txType = models.TxMayaTopup
	}

	w, err := ledger.WalletForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	txn, balance, err := ledger.Post(c.Request.Context(), wallet.PostInput{
		WalletID:      w.ID,
		Type:          txType,
		PaymentMethod: req.Method,
		Amount:        req.Amount,
		ExternalRef:   uuid.NewString(),
		Status:        models.TxPending,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Top-up created, awaiting gateway confirmation",
		"transaction": txn,
		"balance":     balance,
	})
}

type WithdrawRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// RequestWithdrawal creates a pending withdrawal. The visible balance is
// untouched until settlement confirms it; the request is still rejected
// up front if the wallet cannot cover it.
func RequestWithdrawal(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Withdrawal amount must be positive"})
		return
	}

	w, err := ledger.WalletForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	txn, balance, err := ledger.Post(c.Request.Context(), wallet.PostInput{
		WalletID: w.ID,
		Type:     models.TxWithdrawal,
		Amount:   req.Amount.Neg(),
		Status:   models.TxPending,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Withdrawal requested, pending settlement",
		"transaction": txn,
		"balance":     balance,
	})
}

type DepositRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// Deposit posts an immediately-completed cash-in (e.g. over-the-counter)
func Deposit(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Deposit amount must be positive"})
		return
	}

	w, err := ledger.WalletForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	txn, balance, err := ledger.Post(c.Request.Context(), wallet.PostInput{
		WalletID: w.ID,
		Type:     models.TxDeposit,
		Amount:   req.Amount,
		Status:   models.TxCompleted,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Deposit completed",
		"transaction": txn,
		"balance":     balance,
	})
}
