package handlers

import (
	"errors"
	"log"
	"net/http"

	"food-delivery-engine/orders"
	"food-delivery-engine/tracker"
	"food-delivery-engine/wallet"

	"github.com/gin-gonic/gin"
)

// respondError maps engine error kinds to HTTP responses. Each kind keeps
// its own status so clients can react differently — in particular a lost
// claim race is a 409 with taken=true, which rider apps treat as a normal
// outcome rather than a failure.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orders.ErrAlreadyClaimed):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Order has already been taken by another rider",
			"taken": true,
		})
	case errors.Is(err, orders.ErrNotFound),
		errors.Is(err, wallet.ErrWalletNotFound),
		errors.Is(err, wallet.ErrTransactionNotFound),
		errors.Is(err, tracker.ErrRiderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, orders.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, orders.ErrUnauthorized),
		errors.Is(err, tracker.ErrNotApproved):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, orders.ErrValidation),
		errors.Is(err, wallet.ErrInsufficientBalance),
		errors.Is(err, wallet.ErrAlreadyResolved),
		errors.Is(err, wallet.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
