package handlers

import (
	"net/http"

	"food-delivery-engine/config"
	"food-delivery-engine/middleware"
	"food-delivery-engine/models"
	"food-delivery-engine/orders"
	"food-delivery-engine/tracker"

	"github.com/gin-gonic/gin"
)

// GetAvailableOrders shows pending orders that no rider has claimed yet
func GetAvailableOrders(c *gin.Context) {
	var available []models.Order
	config.DB.Preload("Restaurant").Preload("Customer").
		Where("status = ? AND rider_id IS NULL", models.StatusPending).
		Order("created_at asc").
		Find(&available)
	c.JSON(http.StatusOK, gin.H{
		"count":  len(available),
		"orders": available,
	})
}

// GetMyDeliveries returns all orders assigned to the logged-in rider
func GetMyDeliveries(c *gin.Context) {
	riderID := middleware.GetUserID(c)
	var deliveries []models.Order
	config.DB.Preload("Items").Preload("Restaurant").Preload("Customer").
		Where("rider_id = ?", riderID).
		Order("updated_at desc").
		Find(&deliveries)
	c.JSON(http.StatusOK, gin.H{"count": len(deliveries), "orders": deliveries})
}

type ClaimRequest struct {
	Note string   `json:"note"`
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
}

// ClaimOrder races to assign the pending order to this rider. Losing the
// race yields a 409 with taken=true — an expected outcome, not a fault.
func ClaimOrder(c *gin.Context) {
	riderID := middleware.GetUserID(c)
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ClaimRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	order, entry, err := engine.Claim(c.Request.Context(), orders.TransitionInput{
		OrderID:   orderID,
		ActorID:   riderID,
		ActorRole: models.RoleRider,
		NewStatus: models.StatusAccepted,
		Note:      req.Note,
		Lat:       req.Lat,
		Lng:       req.Lng,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order is yours",
		"order":   order,
		"history": entry,
	})
}

type RiderTransitionRequest struct {
	Note string   `json:"note"`
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
}

// PickupOrder transitions ready → picked_up (assigned rider only)
func PickupOrder(c *gin.Context) {
	riderTransition(c, models.StatusPickedUp, "Order picked up successfully")
}

// DeliverOrder transitions picked_up → delivered (assigned rider only)
func DeliverOrder(c *gin.Context) {
	riderTransition(c, models.StatusDelivered, "Order delivered successfully! 🎉")
}

func riderTransition(c *gin.Context, to models.OrderStatus, message string) {
	riderID := middleware.GetUserID(c)
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req RiderTransitionRequest
	_ = c.ShouldBindJSON(&req)

	order, entry, err := engine.Transition(c.Request.Context(), orders.TransitionInput{
		OrderID:   orderID,
		ActorID:   riderID,
		ActorRole: models.RoleRider,
		NewStatus: to,
		Note:      req.Note,
		Lat:       req.Lat,
		Lng:       req.Lng,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"order":   order,
		"status":  entry.ToStatus,
	})
}

type OnlineRequest struct {
	Online bool `json:"online"`
}

// SetOnline toggles the rider's availability (approved riders only)
func SetOnline(c *gin.Context) {
	riderID := middleware.GetUserID(c)

	var req OnlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := track.SetOnline(c.Request.Context(), riderID, req.Online)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Availability updated", "profile": profile})
}

// PostLocation ingests a position sample and broadcasts it
func PostLocation(c *gin.Context) {
	riderID := middleware.GetUserID(c)

	var sample tracker.Sample
	if err := c.ShouldBindJSON(&sample); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sample.RiderID = riderID

	stored, err := track.Record(c.Request.Context(), sample)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"location": stored})
}
