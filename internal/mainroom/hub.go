package mainroom

import (
	"encoding/json"
	"log"

	"meedi8/backend/internal/models"
	"meedi8/backend/internal/storage"
)

// Hub owns every live main-room connection on this server instance and
// routes events between the two parties of each room.
type Hub struct {
	// Clients maps user ID to the active connection. One connection per
	// user; a reconnect replaces the old one.
	Clients map[string]Client

	IncomingCh   chan models.RoomEvent
	RegisterCh   chan Client
	UnregisterCh chan Client
	PubSubCh     chan models.RoomEvent

	Storage storage.Storage
}

// NewHub creates a hub over the given storage.
func NewHub(s storage.Storage) *Hub {
	return &Hub{
		Clients:      make(map[string]Client),
		IncomingCh:   make(chan models.RoomEvent),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		PubSubCh:     make(chan models.RoomEvent, 16),
		Storage:      s,
	}
}

// StartPubSubListener subscribes to every room channel on redis and feeds
// the events into PubSubCh. Runs until the subscription closes.
func (h *Hub) StartPubSubListener() {
	go func() {
		pubsub := h.Storage.SubscribeToAllRooms()
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var ev models.RoomEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("ERROR: Failed to decode pub/sub event: %v", err)
				continue
			}
			h.PubSubCh <- ev
		}
	}()
}

// Run is the hub's main dispatcher goroutine. StartPubSubListener must be
// started separately so single-process deployments and tests can run the
// dispatcher without redis fanout.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.RegisterCh:
			if old, ok := h.Clients[c.GetUserID()]; ok {
				old.Close()
			}
			h.Clients[c.GetUserID()] = c
			log.Printf("Client %s joined room %s", c.GetUserID(), c.GetRoomID())

		case c := <-h.UnregisterCh:
			if current, ok := h.Clients[c.GetUserID()]; ok && current == c {
				delete(h.Clients, c.GetUserID())
				c.Close()
				log.Printf("Client %s left room %s", c.GetUserID(), c.GetRoomID())
			}

		case ev := <-h.IncomingCh:
			h.handleIncoming(ev)

		case ev := <-h.PubSubCh:
			h.deliver(ev)
		}
	}
}

// handleIncoming persists a party's event and publishes it for fanout.
// Typing indicators are ephemeral and skip the transcript.
func (h *Hub) handleIncoming(ev models.RoomEvent) {
	if ev.Type != "typing" {
		if err := h.Storage.SaveMessage(&ev); err != nil {
			log.Printf("ERROR: Failed to save message for room %s: %v", ev.RoomID, err)
			return
		}
	}
	if err := h.Storage.PublishRoomEvent(ev.RoomID, ev); err != nil {
		log.Printf("ERROR: Failed to publish event for room %s: %v", ev.RoomID, err)
	}
}

// deliver routes a fanned-out event to the room's connected participants.
// The sender does not get their own text or typing events back; system and
// phase_change events go to both parties.
func (h *Hub) deliver(ev models.RoomEvent) {
	room, err := h.Storage.GetRoomByID(ev.RoomID)
	if err != nil {
		log.Printf("WARNING: Event for unknown room %s dropped: %v", ev.RoomID, err)
		return
	}

	for _, userID := range []string{room.User1ID, room.User2ID} {
		if userID == "" {
			continue
		}
		if userID == ev.SenderID && (ev.Type == "text" || ev.Type == "typing") {
			continue
		}
		c, ok := h.Clients[userID]
		if !ok || c.GetRoomID() != ev.RoomID {
			continue
		}
		select {
		case c.GetSendChannel() <- ev:
		default:
			// Slow consumer: drop the connection, the party can rejoin.
			delete(h.Clients, userID)
			c.Close()
		}
	}
}
