package hub

import "time"

type EventType string

const (
	EventNewOrder      EventType = "new_order"
	EventOrderUpdate   EventType = "order_update"
	EventChatMessage   EventType = "chat_message"
	EventRiderLocation EventType = "rider_location_update"
)

// Event is the JSON envelope pushed to every matching connection.
type Event struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}
