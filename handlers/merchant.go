package handlers

import (
	"net/http"

	"food-delivery-engine/config"
	"food-delivery-engine/middleware"
	"food-delivery-engine/models"
	"food-delivery-engine/orders"

	"github.com/gin-gonic/gin"
)

type RestaurantRequest struct {
	Name          string  `json:"name" binding:"required"`
	Cuisine       string  `json:"cuisine"`
	Address       string  `json:"address"`
	Description   string  `json:"description"`
	MarkupPercent float64 `json:"markup_percent"`
	DeliveryFee   float64 `json:"delivery_fee"`
}

// CreateRestaurant registers the merchant's restaurant (one per account)
func CreateRestaurant(c *gin.Context) {
	ownerID := middleware.GetUserID(c)

	var existing models.Restaurant
	if err := config.DB.Where("owner_id = ?", ownerID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "You already have a restaurant"})
		return
	}

	var req RestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	restaurant := models.Restaurant{
		OwnerID:       ownerID,
		Name:          req.Name,
		Cuisine:       req.Cuisine,
		Address:       req.Address,
		Description:   req.Description,
		MarkupPercent: req.MarkupPercent,
		DeliveryFee:   req.DeliveryFee,
		IsOpen:        true,
	}
	if err := config.DB.Create(&restaurant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create restaurant"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Restaurant created", "restaurant": restaurant})
}

// GetMyRestaurant returns the merchant's restaurant with its menu
func GetMyRestaurant(c *gin.Context) {
	restaurant, ok := ownedRestaurant(c)
	if !ok {
		return
	}
	config.DB.Preload("MenuItems").First(restaurant, restaurant.ID)
	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

// UpdateRestaurant updates profile fields, open flag, markup and fee
func UpdateRestaurant(c *gin.Context) {
	restaurant, ok := ownedRestaurant(c)
	if !ok {
		return
	}

	var req struct {
		Name          *string  `json:"name"`
		Cuisine       *string  `json:"cuisine"`
		Address       *string  `json:"address"`
		Description   *string  `json:"description"`
		IsOpen        *bool    `json:"is_open"`
		MarkupPercent *float64 `json:"markup_percent"`
		DeliveryFee   *float64 `json:"delivery_fee"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Cuisine != nil {
		updates["cuisine"] = *req.Cuisine
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsOpen != nil {
		updates["is_open"] = *req.IsOpen
	}
	if req.MarkupPercent != nil {
		updates["markup_percent"] = *req.MarkupPercent
	}
	if req.DeliveryFee != nil {
		updates["delivery_fee"] = *req.DeliveryFee
	}
	config.DB.Model(restaurant).Updates(updates)
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant updated", "restaurant": restaurant})
}

type MenuItemRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,min=0"`
	Category    string  `json:"category"`
	IsAvailable *bool   `json:"is_available"`
	IsVeg       bool    `json:"is_veg"`
}

// AddMenuItem adds a dish to the merchant's menu
func AddMenuItem(c *gin.Context) {
	restaurant, ok := ownedRestaurant(c)
	if !ok {
		return
	}

	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := models.MenuItem{
		RestaurantID: restaurant.ID,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Category:     req.Category,
		IsAvailable:  req.IsAvailable == nil || *req.IsAvailable,
		IsVeg:        req.IsVeg,
	}
	if err := config.DB.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add menu item"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Menu item added", "item": item})
}

// UpdateMenuItem edits a dish on the merchant's menu
func UpdateMenuItem(c *gin.Context) {
	restaurant, ok := ownedRestaurant(c)
	if !ok {
		return
	}

	var item models.MenuItem
	if err := config.DB.Where("id = ? AND restaurant_id = ?", c.Param("itemId"), restaurant.ID).
		First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}

	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
		"price":       req.Price,
		"category":    req.Category,
		"is_veg":      req.IsVeg,
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}
	config.DB.Model(&item).Updates(updates)
	c.JSON(http.StatusOK, gin.H{"message": "Menu item updated", "item": item})
}

// DeleteMenuItem removes a dish from the merchant's menu
func DeleteMenuItem(c *gin.Context) {
	restaurant, ok := ownedRestaurant(c)
	if !ok {
		return
	}
	res := config.DB.Where("id = ? AND restaurant_id = ?", c.Param("itemId"), restaurant.ID).
		Delete(&models.MenuItem{})
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
}

// GetRestaurantOrders returns all orders for the merchant with a status summary
func GetRestaurantOrders(c *gin.Context) {
	restaurant, ok := ownedRestaurant(c)
	if !ok {
		return
	}

	var restaurantOrders []models.Order
	query := config.DB.Preload("Items").Preload("Customer").Preload("Rider").
		Where("restaurant_id = ?", restaurant.ID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	query.Order("created_at desc").Find(&restaurantOrders)

	summary := map[string]int{}
	for _, o := range restaurantOrders {
		summary[string(o.Status)]++
	}

	c.JSON(http.StatusOK, gin.H{
		"restaurant":    restaurant.Name,
		"order_summary": summary,
		"count":         len(restaurantOrders),
		"orders":        restaurantOrders,
	})
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

// UpdateOrderStatus handles the merchant's state transitions
func UpdateOrderStatus(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, entry, err := engine.Transition(c.Request.Context(), orders.TransitionInput{
		OrderID:   orderID,
		ActorID:   ownerID,
		ActorRole: models.RoleMerchant,
		NewStatus: req.Status,
		Note:      req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Order status updated",
		"order":           order,
		"previous_status": entry.FromStatus,
		"current_status":  entry.ToStatus,
	})
}

type EditOrderItemsRequest struct {
	Items []orders.ItemInput `json:"items" binding:"required"`
	Note  string             `json:"note"`
}

// EditOrderItems lets the merchant correct an order's contents. Totals are
// re-derived; the status does not change but the edit lands in the audit
// trail.
func EditOrderItems(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req EditOrderItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := engine.EditItems(c.Request.Context(), orderID, ownerID, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order items updated", "order": order})
}

// ownedRestaurant loads the caller's restaurant or writes a 404
func ownedRestaurant(c *gin.Context) (*models.Restaurant, bool) {
	ownerID := middleware.GetUserID(c)
	var restaurant models.Restaurant
	if err := config.DB.Where("owner_id = ?", ownerID).First(&restaurant).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No restaurant found for your account"})
		return nil, false
	}
	return &restaurant, true
}
