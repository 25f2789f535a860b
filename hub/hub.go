package hub

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"food-delivery-engine/models"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub is the in-memory fan-out of lifecycle and location events. Live
// connections are indexed by interest (order id, role, user id) so
// publishing routes directly to the matching subset instead of scanning
// every connection. Delivery is fire-and-forget: a slow or dead
// connection simply misses the event.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	byOrder map[uint]map[*Client]struct{}
	byRole  map[models.UserRole]map[*Client]struct{}
	byUser  map[uint]map[*Client]struct{}
}

func New() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		byOrder: make(map[uint]map[*Client]struct{}),
		byRole:  make(map[models.UserRole]map[*Client]struct{}),
		byUser:  make(map[uint]map[*Client]struct{}),
	}
}

// HandleWS upgrades the request and serves the connection until it closes.
// The caller has already authenticated userID and role.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request, userID uint, role models.UserRole) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	newClient(h, conn, userID, role).Serve()
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

// Unregister removes the client from every interest set and closes its
// send channel. Must be prompt on disconnect so publishes stop targeting
// dead connections.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for orderID := range c.orders {
		h.drop(h.byOrder, orderID, c)
	}
	if c.tracking {
		if set := h.byRole[c.role]; set != nil {
			delete(set, c)
			if len(set) == 0 {
				delete(h.byRole, c.role)
			}
		}
		h.drop(h.byUser, c.userID, c)
	}
	close(c.send)
}

// JoinOrder subscribes the client to one order's event stream.
func (h *Hub) JoinOrder(c *Client, orderID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	c.orders[orderID] = struct{}{}
	h.add(h.byOrder, orderID, c)
}

// JoinTracking subscribes the client to the tracking-wide streams for its
// own user id and role.
func (h *Hub) JoinTracking(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	c.tracking = true
	if h.byRole[c.role] == nil {
		h.byRole[c.role] = make(map[*Client]struct{})
	}
	h.byRole[c.role][c] = struct{}{}
	h.add(h.byUser, c.userID, c)
}

func (h *Hub) add(index map[uint]map[*Client]struct{}, key uint, c *Client) {
	if index[key] == nil {
		index[key] = make(map[*Client]struct{})
	}
	index[key][c] = struct{}{}
}

func (h *Hub) drop(index map[uint]map[*Client]struct{}, key uint, c *Client) {
	if set := index[key]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(index, key)
		}
	}
}

// publish marshals the event once and pushes it to the union of the given
// target sets, at most once per client. Sends never block: a client whose
// buffer is full misses this event.
func (h *Hub) publish(ev Event, collect func() []map[*Client]struct{}) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("hub: drop unmarshalable %s event: %v", ev.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	seen := make(map[*Client]struct{})
	for _, set := range collect() {
		for c := range set {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			select {
			case c.send <- data:
			default:
			}
		}
	}
}

// PublishToOrder pushes an event to every connection joined to the order.
func (h *Hub) PublishToOrder(orderID uint, ev Event) {
	h.publish(ev, func() []map[*Client]struct{} {
		return []map[*Client]struct{}{h.byOrder[orderID]}
	})
}

// PublishToRole pushes an event to every tracking connection of a role.
func (h *Hub) PublishToRole(role models.UserRole, ev Event) {
	h.publish(ev, func() []map[*Client]struct{} {
		return []map[*Client]struct{}{h.byRole[role]}
	})
}

// PublishToUser pushes an event to every tracking connection of one user.
func (h *Hub) PublishToUser(userID uint, ev Event) {
	h.publish(ev, func() []map[*Client]struct{} {
		return []map[*Client]struct{}{h.byUser[userID]}
	})
}

// ── engine/tracker event sinks ─────────────────────────────────────────

// OrderCreated fans a new order out to the merchant, the customer and
// tracking admins.
func (h *Hub) OrderCreated(order *models.Order) {
	ev := Event{Type: EventNewOrder, Payload: order, Timestamp: time.Now()}
	h.publish(ev, func() []map[*Client]struct{} {
		targets := []map[*Client]struct{}{
			h.byOrder[order.ID],
			h.byRole[models.RoleAdmin],
			h.byUser[order.CustomerID],
		}
		if order.Restaurant.OwnerID != 0 {
			targets = append(targets, h.byUser[order.Restaurant.OwnerID])
		}
		return targets
	})
}

// OrderUpdated carries the new order state plus the freshly appended
// status-history row to the order room, both parties and tracking admins.
func (h *Hub) OrderUpdated(order *models.Order, entry *models.OrderStatusHistory) {
	ev := Event{
		Type: EventOrderUpdate,
		Payload: map[string]interface{}{
			"order":   order,
			"history": entry,
		},
		Timestamp: time.Now(),
	}
	h.publish(ev, func() []map[*Client]struct{} {
		targets := []map[*Client]struct{}{
			h.byOrder[order.ID],
			h.byRole[models.RoleAdmin],
			h.byUser[order.CustomerID],
		}
		if order.RiderID != nil {
			targets = append(targets, h.byUser[*order.RiderID])
		}
		if order.Restaurant.OwnerID != 0 {
			targets = append(targets, h.byUser[order.Restaurant.OwnerID])
		}
		return targets
	})
}

// ChatMessage stays scoped to the order room.
func (h *Hub) ChatMessage(msg *models.ChatMessage) {
	ev := Event{Type: EventChatMessage, Payload: msg, Timestamp: time.Now()}
	h.publish(ev, func() []map[*Client]struct{} {
		return []map[*Client]struct{}{h.byOrder[msg.OrderID]}
	})
}

// RiderLocation goes to the tracked order's room, the rider's own tracking
// connections and admins.
func (h *Hub) RiderLocation(sample *models.RiderLocation) {
	ev := Event{Type: EventRiderLocation, Payload: sample, Timestamp: time.Now()}
	h.publish(ev, func() []map[*Client]struct{} {
		targets := []map[*Client]struct{}{
			h.byRole[models.RoleAdmin],
			h.byUser[sample.RiderID],
		}
		if sample.OrderID != nil {
			targets = append(targets, h.byOrder[*sample.OrderID])
		}
		return targets
	})
}
