package handler

import (
	"log"

	"meedi8/backend/internal/mainroom"
	"meedi8/backend/internal/models"
	"meedi8/backend/internal/roomflow"
	"meedi8/backend/internal/storage"
)

// Handler wires the HTTP surface to the hub, storage and the phase flow.
type Handler struct {
	Hub       *mainroom.Hub
	Storage   storage.Storage
	Flow      *roomflow.Service
	JWTSecret []byte
}

func NewHandler(hub *mainroom.Hub, s storage.Storage, flow *roomflow.Service, jwtSecret []byte) *Handler {
	return &Handler{
		Hub:       hub,
		Storage:   s,
		Flow:      flow,
		JWTSecret: jwtSecret,
	}
}

// roomView builds the per-viewer JSON shape. is_user1 is derived here from
// the authenticated viewer, never stored. The invite token is only exposed
// to the initiator.
func (h *Handler) roomView(room *models.Room, viewerID string) models.RoomView {
	view := models.RoomView{
		ID:          room.RoomID,
		Title:       room.Title,
		Phase:       room.Phase,
		CreatedAt:   room.CreatedAt,
		User1ID:     room.User1ID,
		User2ID:     room.User2ID,
		CheckInDate: room.CheckInDate,
		IsUser1:     viewerID == room.User1ID,
	}
	if view.IsUser1 {
		view.InviteToken = room.InviteToken
	}

	if u, err := h.Storage.GetUserByID(room.User1ID); err == nil {
		view.User1Name = u.Name
	} else {
		log.Printf("WARNING: Failed to load user1 %s for room %s: %v", room.User1ID, room.RoomID, err)
	}
	if room.User2ID != "" {
		if u, err := h.Storage.GetUserByID(room.User2ID); err == nil {
			view.User2Name = u.Name
		} else {
			log.Printf("WARNING: Failed to load user2 %s for room %s: %v", room.User2ID, room.RoomID, err)
		}
	}
	return view
}
