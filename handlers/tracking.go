package handlers

import (
	"net/http"

	"food-delivery-engine/middleware"

	"github.com/gin-gonic/gin"
)

// ServeWS upgrades the connection and hands it to the hub. The token
// arrives as a query parameter because browsers cannot set headers on
// websocket dials. After the upgrade the client declares interests with
// {"join": <orderId>} and {"joinTracking": {...}} messages.
func ServeWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token query parameter required"})
		return
	}
	claims, err := middleware.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	liveHub.HandleWS(c.Writer, c.Request, claims.UserID, claims.Role)
}

// GetOrderTrail returns the rider position samples recorded for one order
func GetOrderTrail(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}
	trail, err := track.HistoryForOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(trail), "trail": trail})
}
