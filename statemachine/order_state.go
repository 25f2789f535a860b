package statemachine

import (
	"errors"

	"food-delivery-engine/models"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor models.UserRole
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Rider claims a pending order (the only compare-and-swap transition)
	{From: models.StatusPending, To: models.StatusAccepted, Actor: models.RoleRider},
	// Merchant works the order through the kitchen
	{From: models.StatusAccepted, To: models.StatusPreparing, Actor: models.RoleMerchant},
	{From: models.StatusPreparing, To: models.StatusReady, Actor: models.RoleMerchant},
	// Assigned rider picks up and delivers
	{From: models.StatusReady, To: models.StatusPickedUp, Actor: models.RoleRider},
	{From: models.StatusPickedUp, To: models.StatusDelivered, Actor: models.RoleRider},
	// Merchant or admin may cancel any non-terminal order (reason required)
	{From: models.StatusPending, To: models.StatusCancelled, Actor: models.RoleMerchant},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: models.RoleAdmin},
	{From: models.StatusAccepted, To: models.StatusCancelled, Actor: models.RoleMerchant},
	{From: models.StatusAccepted, To: models.StatusCancelled, Actor: models.RoleAdmin},
	{From: models.StatusPreparing, To: models.StatusCancelled, Actor: models.RoleMerchant},
	{From: models.StatusPreparing, To: models.StatusCancelled, Actor: models.RoleAdmin},
	{From: models.StatusReady, To: models.StatusCancelled, Actor: models.RoleMerchant},
	{From: models.StatusReady, To: models.StatusCancelled, Actor: models.RoleAdmin},
	{From: models.StatusPickedUp, To: models.StatusCancelled, Actor: models.RoleMerchant},
	{From: models.StatusPickedUp, To: models.StatusCancelled, Actor: models.RoleAdmin},
}

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor models.UserRole
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// IsTerminal reports whether no transition can ever leave the given state
func IsTerminal(status models.OrderStatus) bool {
	return status == models.StatusDelivered || status == models.StatusCancelled
}

// RequiresAssignedRider reports whether the order must carry a rider while
// in the given state
func RequiresAssignedRider(status models.OrderStatus) bool {
	switch status {
	case models.StatusAccepted, models.StatusPreparing, models.StatusReady,
		models.StatusPickedUp, models.StatusDelivered:
		return true
	}
	return false
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor models.UserRole) error {
	key := transitionKey{From: from, To: to, Actor: actor}
	if transitionMap[key] {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " → " + string(to) +
			" is not allowed for actor '" + string(actor) + "'. " +
			"Valid transitions from " + string(from) + " are: " + describeValidFrom(from),
	)
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
