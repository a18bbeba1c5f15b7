// Package phase defines the lifecycle of a mediation room and the pure
// mapping from a room's phase to what each party may see and do.
// The server owns the transitions; clients only react to the phase value
// reported by the lobby endpoint.
package phase

// Phase is the wire value of a room's lifecycle stage, as reported in the
// room_phase field of the lobby endpoint.
type Phase string

const (
	// User1Coaching: the initiator is in their pre-conversation coaching.
	User1Coaching Phase = "user1_coaching"
	// User2Lobby: the initiator finished coaching and the invitee has not
	// started theirs yet (waiting / invite-sharing stage).
	User2Lobby Phase = "user2_lobby"
	// User2Coaching: the invitee is in their coaching.
	User2Coaching Phase = "user2_coaching"
	// MainRoom: both parties may enter the shared conversation.
	MainRoom Phase = "main_room"
	// InSession: the shared conversation is underway.
	InSession Phase = "in_session"
	// Resolved: the mediation ended in an agreement. Terminal.
	Resolved Phase = "resolved"
)

// All returns every known phase in progression order.
func All() []Phase {
	return []Phase{User1Coaching, User2Lobby, User2Coaching, MainRoom, InSession, Resolved}
}

// Known reports whether p is one of the enumerated phases. Unknown values
// are not an error anywhere in this package; consumers fall back to a
// default descriptor instead.
func (p Phase) Known() bool {
	switch p {
	case User1Coaching, User2Lobby, User2Coaching, MainRoom, InSession, Resolved:
		return true
	}
	return false
}

// Terminal reports whether p ends the room's lifecycle.
func (p Phase) Terminal() bool { return p == Resolved }

// MainRoomOpen reports whether the shared conversation room may be entered.
// This is the single gate condition: only main_room and in_session open it.
func (p Phase) MainRoomOpen() bool { return p == MainRoom || p == InSession }

// Role identifies which of the two participant slots the viewer occupies.
type Role string

const (
	// Initiator is user1, the party who created the room.
	Initiator Role = "initiator"
	// Invitee is user2, the party who joined through the invite link.
	Invitee Role = "invitee"
)

// RoleFor converts the per-viewer is_user1 flag from the API into a Role.
func RoleFor(isUser1 bool) Role {
	if isUser1 {
		return Initiator
	}
	return Invitee
}
