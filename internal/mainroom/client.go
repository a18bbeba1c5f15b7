// Package mainroom relays the live conversation between the two parties of
// a mediation room. The hub fans events out through redis pub/sub so any
// server instance can host either party's connection.
package mainroom

import "meedi8/backend/internal/models"

// Client is the interface for one connected party, whatever the transport.
// The hub manages clients uniformly through it.
type Client interface {
	// GetUserID returns the connected user's ID.
	GetUserID() string
	// GetRoomID returns the room this connection is attached to.
	GetRoomID() string

	// GetSendChannel returns the channel the hub delivers events on.
	GetSendChannel() chan<- models.RoomEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts the client's send side down.
	Close()
}
