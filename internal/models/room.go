package models

import (
	"time"

	"meedi8/backend/internal/phase"
)

// Room represents one mediation session between exactly two parties.
// It holds the participants, the current phase and the invite token that
// seats the second party.
type Room struct {
	// RoomID is the unique identifier for the room (UUID).
	RoomID string `gorm:"primaryKey"`
	// Title is the subject of the mediation, chosen by the initiator.
	Title string `gorm:"type:text;not null"`
	// Phase is the room's current lifecycle stage.
	Phase phase.Phase `gorm:"type:text;not null;index"`
	// User1ID is the initiator's user ID.
	User1ID string `gorm:"type:uuid;not null;index"`
	// User2ID is the invitee's user ID. Empty until they join.
	User2ID string `gorm:"type:uuid;index"`
	// InviteToken grants the second party entry into the lobby.
	InviteToken string `gorm:"type:uuid;uniqueIndex;not null"`
	// CheckInDate is an optional follow-up date agreed at resolution.
	CheckInDate *time.Time
	// CreatedAt is when the initiator started the mediation.
	CreatedAt time.Time
	// StartedAt is when both parties first entered the main room.
	StartedAt *time.Time
	// EndedAt is when the room reached its terminal phase.
	EndedAt *time.Time
}

// Active reports whether the room still has a live mediation in it.
func (r *Room) Active() bool { return !r.Phase.Terminal() }

// RoleOf returns the viewer's role in the room. The is_user1 flag exposed
// by the API is derived from this, never stored.
func (r *Room) RoleOf(userID string) phase.Role {
	return phase.RoleFor(userID == r.User1ID)
}

// HasParticipant reports whether userID occupies one of the two slots.
func (r *Room) HasParticipant(userID string) bool {
	return userID != "" && (userID == r.User1ID || userID == r.User2ID)
}

// RoomView is the per-viewer JSON shape of a room. IsUser1 is computed for
// the requesting user; the struct is shared by the server handlers and the
// API client.
type RoomView struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Phase       phase.Phase `json:"phase"`
	CreatedAt   time.Time   `json:"created_at"`
	User1ID     string      `json:"user1_id"`
	User2ID     string      `json:"user2_id,omitempty"`
	User1Name   string      `json:"user1_name"`
	User2Name   string      `json:"user2_name,omitempty"`
	CheckInDate *time.Time  `json:"check_in_date,omitempty"`
	IsUser1     bool        `json:"is_user1"`
	InviteToken string      `json:"invite_token,omitempty"` // initiator only
}

// LobbyStatus is the polled lobby payload.
type LobbyStatus struct {
	RoomPhase phase.Phase `json:"room_phase"`
}
