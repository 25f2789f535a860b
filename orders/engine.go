package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"food-delivery-engine/models"
	"food-delivery-engine/statemachine"

	"gorm.io/gorm"
)

// Events receives lifecycle notifications after a mutation has committed.
// Implementations must not block; the hub's publish path is fire-and-forget.
type Events interface {
	OrderCreated(order *models.Order)
	OrderUpdated(order *models.Order, entry *models.OrderStatusHistory)
}

// LedgerBridge posts money movements tied to lifecycle transitions. It runs
// inside the same transaction as the order update and must be idempotent
// per (order, transition), so a re-delivered event cannot double-post.
type LedgerBridge interface {
	OnOrderPlaced(tx *gorm.DB, order *models.Order) error
	OnOrderDelivered(tx *gorm.DB, order *models.Order) error
}

// Engine owns every order mutation: creation, the claim compare-and-swap,
// table-validated status transitions and merchant item edits. Each mutation
// persists the order change and its status-history row in one transaction.
type Engine struct {
	db     *gorm.DB
	events Events
	ledger LedgerBridge
}

func New(db *gorm.DB, events Events, ledger LedgerBridge) *Engine {
	return &Engine{db: db, events: events, ledger: ledger}
}

type ItemInput struct {
	MenuItemID uint     `json:"menu_item_id" binding:"required"`
	Quantity   int      `json:"quantity" binding:"required,min=1"`
	Modifiers  []string `json:"modifiers"`
}

type CreateInput struct {
	CustomerID      uint
	RestaurantID    uint
	PaymentMethod   models.PaymentMethod
	DeliveryAddress string
	Notes           string
	Items           []ItemInput
}

type TransitionInput struct {
	OrderID   uint
	ActorID   uint
	ActorRole models.UserRole
	NewStatus models.OrderStatus
	Note      string
	Lat       *float64
	Lng       *float64
}

// Create validates the cart against the restaurant's live menu, snapshots
// items and prices, derives the money columns and writes the order plus its
// creation history row in one transaction.
func (e *Engine) Create(ctx context.Context, in CreateInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, validationErr("order must contain at least one item")
	}
	if in.DeliveryAddress == "" {
		return nil, validationErr("delivery address is required")
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PayCash
	}

	var order models.Order
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var restaurant models.Restaurant
		if err := tx.First(&restaurant, in.RestaurantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: restaurant %d", ErrNotFound, in.RestaurantID)
			}
			return storageErr(err)
		}
		if !restaurant.IsOpen {
			return validationErr("restaurant is currently closed")
		}

		items, subtotal, err := snapshotItems(tx, &restaurant, in.Items)
		if err != nil {
			return err
		}
		markup := round2(subtotal * restaurant.MarkupPercent / 100)

		order = models.Order{
			OrderNumber:     generateOrderNumber(),
			CustomerID:      in.CustomerID,
			RestaurantID:    in.RestaurantID,
			Status:          models.StatusPending,
			Subtotal:        subtotal,
			Markup:          markup,
			DeliveryFee:     restaurant.DeliveryFee,
			Total:           round2(subtotal + markup + restaurant.DeliveryFee),
			PaymentMethod:   in.PaymentMethod,
			DeliveryAddress: in.DeliveryAddress,
			Notes:           in.Notes,
			Items:           items,
		}
		if err := tx.Create(&order).Error; err != nil {
			return storageErr(err)
		}

		entry := models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			ActorID:   in.CustomerID,
			ActorRole: models.RoleCustomer,
			Note:      "Order placed by customer",
		}
		if err := tx.Create(&entry).Error; err != nil {
			return storageErr(err)
		}

		if e.ledger != nil {
			if err := e.ledger.OnOrderPlaced(tx, &order); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.reload(ctx, &order, "Items", "Restaurant")
	if e.events != nil {
		e.events.OrderCreated(&order)
	}
	return &order, nil
}

// Claim assigns a pending order to a rider. It is a compare-and-swap on
// (status, rider_id): a single conditional UPDATE whose zero-rows result is
// a definitive rejection, never something to retry. Under N concurrent
// claims exactly one rider wins; the rest get ErrAlreadyClaimed.
func (e *Engine) Claim(ctx context.Context, in TransitionInput) (*models.Order, *models.OrderStatusHistory, error) {
	// Only a rider may claim; any other role is an invalid transition per
	// the table, not a missing rider profile.
	if err := statemachine.CanTransition(models.StatusPending, models.StatusAccepted, in.ActorRole); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	var profile models.RiderProfile
	if err := e.db.WithContext(ctx).Where("user_id = ?", in.ActorID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: rider %d", ErrNotFound, in.ActorID)
		}
		return nil, nil, storageErr(err)
	}
	if profile.ApprovalStatus != models.RiderApproved {
		return nil, nil, fmt.Errorf("%w: rider is not approved", ErrUnauthorized)
	}

	var (
		order models.Order
		entry models.OrderStatusHistory
	)
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ? AND rider_id IS NULL", in.OrderID, models.StatusPending).
			Updates(map[string]interface{}{
				"status":   models.StatusAccepted,
				"rider_id": in.ActorID,
			})
		if res.Error != nil {
			return storageErr(res.Error)
		}
		if res.RowsAffected == 0 {
			// Lost the race or the order never existed; tell them apart.
			var exists models.Order
			if err := tx.Select("id").First(&exists, in.OrderID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: order %d", ErrNotFound, in.OrderID)
				}
				return storageErr(err)
			}
			return ErrAlreadyClaimed
		}

		if err := tx.First(&order, in.OrderID).Error; err != nil {
			return storageErr(err)
		}
		note := in.Note
		if note == "" {
			note = "Order accepted by rider"
		}
		entry = models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: models.StatusPending,
			ToStatus:   models.StatusAccepted,
			ActorID:    in.ActorID,
			ActorRole:  models.RoleRider,
			Note:       note,
			Lat:        in.Lat,
			Lng:        in.Lng,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	e.reload(ctx, &order, "Restaurant")
	if e.events != nil {
		e.events.OrderUpdated(&order, &entry)
	}
	return &order, &entry, nil
}

// Transition applies a non-claim status change: table check, ownership
// check, order update plus history append in one transaction, ledger
// posting on delivery. Claims (→ accepted) are routed to Claim.
func (e *Engine) Transition(ctx context.Context, in TransitionInput) (*models.Order, *models.OrderStatusHistory, error) {
	if in.NewStatus == models.StatusAccepted {
		return e.Claim(ctx, in)
	}
	if in.NewStatus == models.StatusCancelled && strings.TrimSpace(in.Note) == "" {
		return nil, nil, validationErr("cancellation requires a reason")
	}

	var (
		order models.Order
		entry models.OrderStatusHistory
	)
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, in.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", ErrNotFound, in.OrderID)
			}
			return storageErr(err)
		}

		// Table check first: an unreachable target is InvalidTransition even
		// when the actor would also fail the ownership check.
		if err := statemachine.CanTransition(order.Status, in.NewStatus, in.ActorRole); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
		if err := e.authorize(tx, &order, in.ActorID, in.ActorRole); err != nil {
			return err
		}

		prev := order.Status
		updates := map[string]interface{}{"status": in.NewStatus}
		switch in.NewStatus {
		case models.StatusPreparing:
			// Kitchen started; give the customer an ETA.
			eta := time.Now().Add(30 * time.Minute)
			updates["estimated_delivery_at"] = &eta
			order.EstimatedDeliveryAt = &eta
		case models.StatusCancelled:
			// Cancellation re-opens the assignment slot.
			updates["rider_id"] = nil
			order.RiderID = nil
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
			return storageErr(err)
		}
		order.Status = in.NewStatus

		entry = models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: prev,
			ToStatus:   in.NewStatus,
			ActorID:    in.ActorID,
			ActorRole:  in.ActorRole,
			Note:       in.Note,
			Lat:        in.Lat,
			Lng:        in.Lng,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return storageErr(err)
		}

		if in.NewStatus == models.StatusDelivered && e.ledger != nil {
			if err := e.ledger.OnOrderDelivered(tx, &order); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	e.reload(ctx, &order, "Restaurant")
	if e.events != nil {
		e.events.OrderUpdated(&order, &entry)
	}
	return &order, &entry, nil
}

// EditItems is the merchant's correction path. It is not a status change:
// the item snapshot is replaced, the money columns re-derived from the
// restaurant's configured markup, and a history row is appended whose
// status equals the current one with a note explaining the edit.
func (e *Engine) EditItems(ctx context.Context, orderID, merchantID uint, items []ItemInput) (*models.Order, error) {
	if len(items) == 0 {
		return nil, validationErr("an order cannot be edited down to zero items")
	}

	var (
		order models.Order
		entry models.OrderStatusHistory
	)
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return storageErr(err)
		}
		if statemachine.IsTerminal(order.Status) {
			return validationErr("cannot edit a " + string(order.Status) + " order")
		}

		var restaurant models.Restaurant
		if err := tx.First(&restaurant, order.RestaurantID).Error; err != nil {
			return storageErr(err)
		}
		if restaurant.OwnerID != merchantID {
			return fmt.Errorf("%w: order belongs to another restaurant", ErrUnauthorized)
		}

		newItems, subtotal, err := snapshotItems(tx, &restaurant, items)
		if err != nil {
			return err
		}
		for i := range newItems {
			newItems[i].OrderID = order.ID
		}

		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return storageErr(err)
		}
		if err := tx.Create(&newItems).Error; err != nil {
			return storageErr(err)
		}

		markup := round2(subtotal * restaurant.MarkupPercent / 100)
		total := round2(subtotal + markup + order.DeliveryFee)
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"subtotal": subtotal,
			"markup":   markup,
			"total":    total,
		}).Error; err != nil {
			return storageErr(err)
		}

		entry = models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: order.Status,
			ToStatus:   order.Status,
			ActorID:    merchantID,
			ActorRole:  models.RoleMerchant,
			Note:       fmt.Sprintf("Merchant edited order items (%d items, new total %.2f)", len(newItems), total),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.reload(ctx, &order, "Items", "Restaurant")
	if e.events != nil {
		e.events.OrderUpdated(&order, &entry)
	}
	return &order, nil
}

// reload refreshes the committed order with the given associations for the
// outbound event. On a read failure the in-transaction copy is kept — its
// ids and status are already correct — rather than publishing a zeroed row.
func (e *Engine) reload(ctx context.Context, order *models.Order, assocs ...string) {
	q := e.db.WithContext(ctx)
	for _, a := range assocs {
		q = q.Preload(a)
	}
	var fresh models.Order
	if err := q.First(&fresh, order.ID).Error; err != nil {
		log.Printf("orders: reload of order %d after commit failed: %v", order.ID, err)
		return
	}
	*order = fresh
}

// authorize enforces ownership for non-claim transitions: a rider must be
// the assigned rider, a merchant must own the order's restaurant. Admins
// pass. A mismatch is a terminal authorization failure, not a race.
func (e *Engine) authorize(tx *gorm.DB, order *models.Order, actorID uint, role models.UserRole) error {
	switch role {
	case models.RoleAdmin:
		return nil
	case models.RoleRider:
		if order.RiderID == nil || *order.RiderID != actorID {
			return fmt.Errorf("%w: you are not the assigned rider", ErrUnauthorized)
		}
		return nil
	case models.RoleMerchant:
		var restaurant models.Restaurant
		if err := tx.First(&restaurant, order.RestaurantID).Error; err != nil {
			return storageErr(err)
		}
		if restaurant.OwnerID != actorID {
			return fmt.Errorf("%w: order belongs to another restaurant", ErrUnauthorized)
		}
		return nil
	default:
		return fmt.Errorf("%w: role %q cannot change order status", ErrUnauthorized, role)
	}
}

// snapshotItems resolves cart lines against the live menu and freezes
// name, price and modifiers at order time.
func snapshotItems(tx *gorm.DB, restaurant *models.Restaurant, items []ItemInput) ([]models.OrderItem, float64, error) {
	var (
		snapshot []models.OrderItem
		subtotal float64
	)
	for _, line := range items {
		if line.Quantity < 1 {
			return nil, 0, validationErr("item quantity must be at least 1")
		}
		var menuItem models.MenuItem
		if err := tx.First(&menuItem, line.MenuItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, fmt.Errorf("%w: menu item %d", ErrNotFound, line.MenuItemID)
			}
			return nil, 0, storageErr(err)
		}
		if menuItem.RestaurantID != restaurant.ID {
			return nil, 0, validationErr("menu item '" + menuItem.Name + "' does not belong to this restaurant")
		}
		if !menuItem.IsAvailable {
			return nil, 0, validationErr("menu item '" + menuItem.Name + "' is not available")
		}
		subtotal = round2(subtotal + menuItem.Price*float64(line.Quantity))
		snapshot = append(snapshot, models.OrderItem{
			MenuItemID: menuItem.ID,
			Quantity:   line.Quantity,
			Price:      menuItem.Price,
			Name:       menuItem.Name,
			Modifiers:  strings.Join(line.Modifiers, ", "),
		})
	}
	return snapshot, subtotal, nil
}

func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%d", time.Now().UnixNano())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
