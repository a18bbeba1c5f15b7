package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"meedi8/backend/internal/config"
	"meedi8/backend/internal/models"
	"meedi8/backend/internal/phase"
	"meedi8/backend/internal/roomflow"
	"meedi8/backend/internal/storage"
)

// paywall writes the structured 402/413 payload the client maps to its
// upgrade-required error.
func paywall(c *gin.Context, status int, reason string, limit int) {
	c.AbortWithStatusJSON(status, gin.H{"detail": gin.H{
		"reason":      reason,
		"limit":       limit,
		"upgrade_url": config.UpgradeURL,
	}})
}

// loadRoomForParticipant fetches the room and enforces that the caller
// occupies one of its two slots. Writes the error response itself and
// returns nil when the request is already answered.
func (h *Handler) loadRoomForParticipant(c *gin.Context) *models.Room {
	viewerID := c.GetString("userID")
	room, err := h.Storage.GetRoomByID(c.Param("roomId"))
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return nil
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load room"})
		return nil
	}
	if !room.HasParticipant(viewerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a participant of this room"})
		return nil
	}
	return room
}

type createRoomRequest struct {
	Title       string     `json:"title" binding:"required"`
	CheckInDate *time.Time `json:"check_in_date"`
}

// CreateRoom starts a new mediation with the caller as initiator. The room
// opens in user1_coaching. Free-tier accounts are limited to one active
// room at a time.
func (h *Handler) CreateRoom(c *gin.Context) {
	viewerID := c.GetString("userID")

	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 1. Paywall: active-room quota for free accounts.
	user, err := h.Storage.GetUserByID(viewerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account"})
		return
	}
	if !user.UnlimitedRooms {
		active, err := h.Storage.CountActiveRoomsForUser(viewerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check room quota"})
			return
		}
		if active >= config.FreeActiveRoomLimit {
			paywall(c, http.StatusPaymentRequired, config.PaywallReasonRooms, config.FreeActiveRoomLimit)
			return
		}
	}

	// 2. Create the room with a fresh invite token.
	room := &models.Room{
		RoomID:      uuid.New().String(),
		Title:       req.Title,
		Phase:       phase.User1Coaching,
		User1ID:     viewerID,
		InviteToken: uuid.New().String(),
		CheckInDate: req.CheckInDate,
		CreatedAt:   time.Now(),
	}
	if err := h.Storage.SaveRoom(room); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}
	if err := h.Storage.CacheInviteToken(room.InviteToken, room.RoomID); err != nil {
		// Cache miss only slows the first join lookup down.
		c.Error(err)
	}

	c.JSON(http.StatusCreated, h.roomView(room, viewerID))
}

// ListRooms returns every room the caller participates in.
func (h *Handler) ListRooms(c *gin.Context) {
	viewerID := c.GetString("userID")

	rooms, err := h.Storage.ListRoomsForUser(viewerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rooms"})
		return
	}

	views := make([]models.RoomView, 0, len(rooms))
	for i := range rooms {
		views = append(views, h.roomView(&rooms[i], viewerID))
	}
	c.JSON(http.StatusOK, views)
}

// GetRoom returns the full room record for a participant.
func (h *Handler) GetRoom(c *gin.Context) {
	room := h.loadRoomForParticipant(c)
	if room == nil {
		return
	}
	c.JSON(http.StatusOK, h.roomView(room, c.GetString("userID")))
}

// GetLobby is the polled status endpoint: just the phase, nothing else.
func (h *Handler) GetLobby(c *gin.Context) {
	room := h.loadRoomForParticipant(c)
	if room == nil {
		return
	}
	c.JSON(http.StatusOK, models.LobbyStatus{RoomPhase: room.Phase})
}

// DeleteRoom hard-deletes a room and its transcript. Either party may do
// it at any phase.
func (h *Handler) DeleteRoom(c *gin.Context) {
	room := h.loadRoomForParticipant(c)
	if room == nil {
		return
	}
	if err := h.Storage.DeleteRoom(room.RoomID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete room"})
		return
	}
	c.Status(http.StatusNoContent)
}

// JoinPreview shows the room behind an invite token without seating the
// caller. Unauthenticated so the invite screen can render before login.
func (h *Handler) JoinPreview(c *gin.Context) {
	room, err := h.Storage.GetRoomByInviteToken(c.Param("inviteToken"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invite not found"})
		return
	}
	// Never leak the token or the second slot through the preview.
	view := h.roomView(room, "")
	view.InviteToken = ""
	c.JSON(http.StatusOK, view)
}

// Join seats the caller as user2. Idempotent for an already-seated invitee;
// rejected once the slot belongs to someone else or the room has moved on.
func (h *Handler) Join(c *gin.Context) {
	viewerID := c.GetString("userID")

	room, err := h.Storage.GetRoomByInviteToken(c.Param("inviteToken"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invite not found"})
		return
	}

	switch {
	case room.User2ID == viewerID:
		// Already seated, treat as success.
	case room.User1ID == viewerID:
		c.JSON(http.StatusConflict, gin.H{"error": "You cannot join your own room"})
		return
	case room.User2ID != "":
		c.JSON(http.StatusConflict, gin.H{"error": "This room already has two participants"})
		return
	case room.Phase != phase.User2Lobby:
		c.JSON(http.StatusConflict, gin.H{"error": "This room is not accepting a second participant yet"})
		return
	default:
		room.User2ID = viewerID
		if err := h.Storage.SaveRoom(room); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join room"})
			return
		}
	}

	c.JSON(http.StatusOK, h.roomView(room, viewerID))
}

type advanceRequest struct {
	Event string `json:"event" binding:"required"`
}

// Advance applies a phase event on behalf of the caller and returns the
// resulting phase in the same shape the lobby endpoint uses.
func (h *Handler) Advance(c *gin.Context) {
	room := h.loadRoomForParticipant(c)
	if room == nil {
		return
	}

	var req advanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	next, err := h.Flow.Advance(room, c.GetString("userID"), roomflow.Event(req.Event))
	if err != nil {
		switch {
		case errors.Is(err, roomflow.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": "invalid phase transition"})
		case errors.Is(err, roomflow.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not a participant of this room"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to advance room"})
		}
		return
	}

	c.JSON(http.StatusOK, models.LobbyStatus{RoomPhase: next})
}

// GetTranscript returns the room's persisted messages. Free-tier accounts
// are cut off once the transcript exceeds the free cap.
func (h *Handler) GetTranscript(c *gin.Context) {
	room := h.loadRoomForParticipant(c)
	if room == nil {
		return
	}

	user, err := h.Storage.GetUserByID(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account"})
		return
	}
	if !user.UnlimitedRooms {
		count, err := h.Storage.CountMessages(room.RoomID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transcript"})
			return
		}
		if count > config.FreeTranscriptLimit {
			paywall(c, http.StatusRequestEntityTooLarge, config.PaywallReasonLength, config.FreeTranscriptLimit)
			return
		}
	}

	rows, err := h.Storage.GetTranscript(room.RoomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transcript"})
		return
	}
	c.JSON(http.StatusOK, rows)
}
