package models

import "gorm.io/gorm"

// RoomMessage is a persisted main-room transcript row. The embedded
// gorm.Model provides ID, CreatedAt, UpdatedAt and DeletedAt. Rows are
// deleted together with their room.
type RoomMessage struct {
	gorm.Model

	// RoomID is the room the message belongs to.
	RoomID string `gorm:"type:uuid;not null;index:idx_room_msg"`
	// SenderID is the user who sent the message.
	SenderID string `gorm:"type:uuid;not null;index:idx_room_msg"`
	// Content is the message body.
	Content string `gorm:"type:text;not null"`
	// Type indicates the kind of message ("text", "system", "typing").
	Type string `gorm:"type:text;not null"`
}

// RoomEvent is the realtime payload relayed between the two parties in the
// main room, and published on redis for phase-change fanout.
type RoomEvent struct {
	ID       uint   `json:"id,omitempty"`
	RoomID   string `json:"room_id"`
	SenderID string `json:"sender_id"`
	Content  string `json:"content"`
	Type     string `json:"type"` // "text", "system", "typing", "phase_change"
}
