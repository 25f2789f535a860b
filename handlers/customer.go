package handlers

import (
	"net/http"
	"time"

	"food-delivery-engine/config"
	"food-delivery-engine/middleware"
	"food-delivery-engine/models"
	"food-delivery-engine/orders"

	"github.com/gin-gonic/gin"
)

type PlaceOrderRequest struct {
	RestaurantID    uint                 `json:"restaurant_id" binding:"required"`
	DeliveryAddress string               `json:"delivery_address" binding:"required"`
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
	Notes           string               `json:"notes"`
	Items           []orders.ItemInput   `json:"items" binding:"required,min=1"`
}

// PlaceOrder creates a new order (customer only)
func PlaceOrder(c *gin.Context) {
	customerID := middleware.GetUserID(c)

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := engine.Create(c.Request.Context(), orders.CreateInput{
		CustomerID:      customerID,
		RestaurantID:    req.RestaurantID,
		PaymentMethod:   req.PaymentMethod,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		Items:           req.Items,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// GetMyOrders returns all orders for the logged-in customer
func GetMyOrders(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	var myOrders []models.Order
	config.DB.Preload("Items").Preload("Restaurant").
		Where("customer_id = ?", customerID).
		Order("created_at desc").
		Find(&myOrders)
	c.JSON(http.StatusOK, gin.H{"count": len(myOrders), "orders": myOrders})
}

// GetOrderDetail returns a single order's full detail with history
func GetOrderDetail(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	orderID := c.Param("id")

	var order models.Order
	if err := config.DB.
		Preload("Items").
		Preload("Restaurant").
		Preload("StatusHistory").
		Preload("Rider").
		First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.CustomerID != customerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}

	elapsed := time.Since(order.CreatedAt).Minutes()
	c.JSON(http.StatusOK, gin.H{
		"order":           order,
		"minutes_elapsed": int(elapsed),
	})
}

type ChatRequest struct {
	Body string `json:"body" binding:"required"`
}

// PostChatMessage stores an order-scoped message and pushes it to the
// order's live connections. Only a party to the order may post.
func PostChatMessage(c *gin.Context) {
	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)

	var order models.Order
	if err := config.DB.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if !isOrderParty(&order, userID, role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a party to this order"})
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg := models.ChatMessage{
		OrderID:    order.ID,
		SenderID:   userID,
		SenderRole: role,
		Body:       req.Body,
	}
	if err := config.DB.Create(&msg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save message"})
		return
	}
	liveHub.ChatMessage(&msg)

	c.JSON(http.StatusCreated, gin.H{"message": "Message sent", "chat": msg})
}

// GetChatMessages returns the order's chat log, oldest first
func GetChatMessages(c *gin.Context) {
	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)

	var order models.Order
	if err := config.DB.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if !isOrderParty(&order, userID, role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a party to this order"})
		return
	}

	var msgs []models.ChatMessage
	config.DB.Where("order_id = ?", order.ID).Order("created_at asc, id asc").Find(&msgs)
	c.JSON(http.StatusOK, gin.H{"count": len(msgs), "messages": msgs})
}

// isOrderParty reports whether the caller is the customer, the assigned
// rider, the restaurant's owner, or an admin.
func isOrderParty(order *models.Order, userID uint, role models.UserRole) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleCustomer:
		return order.CustomerID == userID
	case models.RoleRider:
		return order.RiderID != nil && *order.RiderID == userID
	case models.RoleMerchant:
		var restaurant models.Restaurant
		if err := config.DB.First(&restaurant, order.RestaurantID).Error; err != nil {
			return false
		}
		return restaurant.OwnerID == userID
	}
	return false
}
