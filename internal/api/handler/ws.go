package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"meedi8/backend/internal/mainroom"
	"meedi8/backend/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production!
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeMainRoom upgrades a participant's connection into the main-room
// relay. The navigation gate applies server-side too: the upgrade is
// refused until the phase opens the main room.
func (h *Handler) ServeMainRoom(c *gin.Context) {
	// 1. Authenticate. Browsers cannot set headers on websocket upgrades,
	// so the token query parameter is accepted as well.
	token := bearerToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
		return
	}
	userID, err := validateJWT(token, h.JWTSecret)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return
	}

	// 2. The caller must hold a slot and the gate must be open.
	room, err := h.Storage.GetRoomByID(c.Param("roomId"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}
	if !room.HasParticipant(userID) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You are not a participant of this room"})
		return
	}
	if !room.Phase.MainRoomOpen() {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "The main room is not open yet"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	// 3. Register the connection with the hub and start its pumps.
	client := &mainroom.WebSocketClient{
		Hub:    h.Hub,
		UserID: userID,
		RoomID: room.RoomID,
		Conn:   conn,
		Send:   make(chan models.RoomEvent, 256),
	}
	h.Hub.RegisterCh <- client
	client.Run()
}
