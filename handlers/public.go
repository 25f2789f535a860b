package handlers

import (
	"net/http"

	"food-delivery-engine/config"
	"food-delivery-engine/models"
	"food-delivery-engine/statemachine"

	"github.com/gin-gonic/gin"
)

// ListRestaurants returns all open restaurants (public)
func ListRestaurants(c *gin.Context) {
	var restaurants []models.Restaurant
	query := config.DB.Preload("Owner")

	if cuisine := c.Query("cuisine"); cuisine != "" {
		query = query.Where("cuisine LIKE ?", "%"+cuisine+"%")
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	if open := c.Query("open"); open == "true" {
		query = query.Where("is_open = ?", true)
	}

	query.Find(&restaurants)
	c.JSON(http.StatusOK, gin.H{
		"count":       len(restaurants),
		"restaurants": restaurants,
	})
}

// GetRestaurant returns a single restaurant
func GetRestaurant(c *gin.Context) {
	var restaurant models.Restaurant
	if err := config.DB.Preload("MenuItems").First(&restaurant, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

// GetMenu returns the restaurant's available menu items
func GetMenu(c *gin.Context) {
	var items []models.MenuItem
	config.DB.Where("restaurant_id = ? AND is_available = ?", c.Param("id"), true).Find(&items)
	c.JSON(http.StatusOK, gin.H{"count": len(items), "menu": items})
}

// GetStateMachineInfo documents the full order lifecycle
func GetStateMachineInfo(c *gin.Context) {
	transitions := statemachine.GetAllTransitions()
	c.JSON(http.StatusOK, gin.H{
		"states": []models.OrderStatus{
			models.StatusPending, models.StatusAccepted, models.StatusPreparing,
			models.StatusReady, models.StatusPickedUp, models.StatusDelivered,
			models.StatusCancelled,
		},
		"initial_state":   models.StatusPending,
		"terminal_states": []models.OrderStatus{models.StatusDelivered, models.StatusCancelled},
		"transitions":     transitions,
	})
}
