package handlers

import (
	"net/http"

	"food-delivery-engine/config"
	"food-delivery-engine/middleware"
	"food-delivery-engine/models"
	"food-delivery-engine/orders"

	"github.com/gin-gonic/gin"
)

// AdminGetAllOrders returns all orders with full detail — admin only
func AdminGetAllOrders(c *gin.Context) {
	var allOrders []models.Order
	query := config.DB.Preload("Items").
		Preload("Customer").Preload("Restaurant").Preload("Rider").Preload("StatusHistory")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if restaurantID := c.Query("restaurant_id"); restaurantID != "" {
		query = query.Where("restaurant_id = ?", restaurantID)
	}

	query.Order("created_at desc").Find(&allOrders)

	summary := map[string]int{}
	var totalRevenue float64
	for _, o := range allOrders {
		summary[string(o.Status)]++
		if o.Status == models.StatusDelivered {
			totalRevenue += o.Total
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"total_revenue": totalRevenue,
		"count":         len(allOrders),
		"orders":        allOrders,
	})
}

// AdminGetAllUsers returns all users — admin only
func AdminGetAllUsers(c *gin.Context) {
	var users []models.User
	query := config.DB
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	query.Find(&users)
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}

type AdminCancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AdminCancelOrder cancels any non-terminal order with a mandatory reason
func AdminCancelOrder(c *gin.Context) {
	adminID := middleware.GetUserID(c)
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req AdminCancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, entry, err := engine.Transition(c.Request.Context(), orders.TransitionInput{
		OrderID:   orderID,
		ActorID:   adminID,
		ActorRole: models.RoleAdmin,
		NewStatus: models.StatusCancelled,
		Note:      "[ADMIN] " + req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Order cancelled by admin",
		"order":           order,
		"previous_status": entry.FromStatus,
	})
}

// AdminListRiders returns rider profiles, optionally filtered by approval
func AdminListRiders(c *gin.Context) {
	var profiles []models.RiderProfile
	query := config.DB.Preload("User")
	if status := c.Query("approval_status"); status != "" {
		query = query.Where("approval_status = ?", status)
	}
	query.Find(&profiles)
	c.JSON(http.StatusOK, gin.H{"count": len(profiles), "riders": profiles})
}

type RiderApprovalRequest struct {
	Status models.RiderApproval `json:"status" binding:"required"`
}

// AdminSetRiderApproval approves or rejects a rider's documents. Only
// approved riders may claim orders or go online; rejection also forces
// the rider offline.
func AdminSetRiderApproval(c *gin.Context) {
	riderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req RiderApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != models.RiderApproved && req.Status != models.RiderRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be approved or rejected"})
		return
	}

	var profile models.RiderProfile
	if err := config.DB.Where("user_id = ?", riderID).First(&profile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rider not found"})
		return
	}

	updates := map[string]interface{}{"approval_status": req.Status}
	if req.Status == models.RiderRejected {
		updates["is_online"] = false
	}
	config.DB.Model(&profile).Updates(updates)

	c.JSON(http.StatusOK, gin.H{"message": "Rider approval updated", "profile": profile})
}

// AdminResolveTransaction settles a pending wallet transaction — a
// withdrawal, a gateway top-up confirmation or a cash remittance. The
// amount is applied to the balance only on the flip into completed.
func AdminResolveTransaction(c *gin.Context) {
	txnID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status models.TransactionStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txn, balance, err := ledger.Resolve(c.Request.Context(), txnID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Transaction resolved",
		"transaction": txn,
		"balance":     balance,
	})
}

// AdminRecomputeWallet rebuilds a wallet's cached balance from its
// transaction log (reconciliation)
func AdminRecomputeWallet(c *gin.Context) {
	walletID, ok := parseID(c, "id")
	if !ok {
		return
	}
	balance, err := ledger.Recompute(c.Request.Context(), walletID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Balance recomputed from ledger", "balance": balance})
}
