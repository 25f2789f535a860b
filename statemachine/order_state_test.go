package statemachine

import (
	"testing"

	"food-delivery-engine/models"

	"github.com/stretchr/testify/assert"
)

func TestHappyPathTransitions(t *testing.T) {
	assert.NoError(t, CanTransition(models.StatusPending, models.StatusAccepted, models.RoleRider))
	assert.NoError(t, CanTransition(models.StatusAccepted, models.StatusPreparing, models.RoleMerchant))
	assert.NoError(t, CanTransition(models.StatusPreparing, models.StatusReady, models.RoleMerchant))
	assert.NoError(t, CanTransition(models.StatusReady, models.StatusPickedUp, models.RoleRider))
	assert.NoError(t, CanTransition(models.StatusPickedUp, models.StatusDelivered, models.RoleRider))
}

func TestSkippingStatesRejected(t *testing.T) {
	assert.Error(t, CanTransition(models.StatusPending, models.StatusPickedUp, models.RoleRider))
	assert.Error(t, CanTransition(models.StatusPending, models.StatusPreparing, models.RoleMerchant))
	assert.Error(t, CanTransition(models.StatusAccepted, models.StatusDelivered, models.RoleRider))
}

func TestActorGating(t *testing.T) {
	// Only the rider claims; only the merchant moves the kitchen states.
	assert.Error(t, CanTransition(models.StatusPending, models.StatusAccepted, models.RoleMerchant))
	assert.Error(t, CanTransition(models.StatusPending, models.StatusAccepted, models.RoleCustomer))
	assert.Error(t, CanTransition(models.StatusAccepted, models.StatusPreparing, models.RoleRider))
	assert.Error(t, CanTransition(models.StatusReady, models.StatusPickedUp, models.RoleMerchant))
}

func TestCancellation(t *testing.T) {
	for _, from := range []models.OrderStatus{
		models.StatusPending, models.StatusAccepted, models.StatusPreparing,
		models.StatusReady, models.StatusPickedUp,
	} {
		assert.NoError(t, CanTransition(from, models.StatusCancelled, models.RoleMerchant), "merchant cancel from %s", from)
		assert.NoError(t, CanTransition(from, models.StatusCancelled, models.RoleAdmin), "admin cancel from %s", from)
		assert.Error(t, CanTransition(from, models.StatusCancelled, models.RoleRider), "rider cannot cancel from %s", from)
	}
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, IsTerminal(models.StatusDelivered))
	assert.True(t, IsTerminal(models.StatusCancelled))
	assert.False(t, IsTerminal(models.StatusPending))
	assert.False(t, IsTerminal(models.StatusPickedUp))

	assert.Empty(t, ValidTransitionsFrom(models.StatusDelivered))
	assert.Empty(t, ValidTransitionsFrom(models.StatusCancelled))
}

func TestRequiresAssignedRider(t *testing.T) {
	assert.False(t, RequiresAssignedRider(models.StatusPending))
	assert.False(t, RequiresAssignedRider(models.StatusCancelled))
	for _, s := range []models.OrderStatus{
		models.StatusAccepted, models.StatusPreparing, models.StatusReady,
		models.StatusPickedUp, models.StatusDelivered,
	} {
		assert.True(t, RequiresAssignedRider(s), "%s must carry a rider", s)
	}
}
