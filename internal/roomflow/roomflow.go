// Package roomflow owns the server-side phase progression of a mediation
// room. Transitions are forward-only; clients never drive the state machine
// directly, they request an event and react to whatever phase the server
// reports afterwards.
package roomflow

import (
	"errors"
	"log"

	"meedi8/backend/internal/models"
	"meedi8/backend/internal/phase"
	"meedi8/backend/internal/storage"
)

// Event is a phase-advancement request from one of the parties.
type Event string

const (
	// EventStartCoaching: the invitee leaves the lobby and begins coaching.
	EventStartCoaching Event = "start_coaching"
	// EventCompleteCoaching: the acting party finished their coaching.
	EventCompleteCoaching Event = "complete_coaching"
	// EventBeginSession: the conversation in the main room starts.
	EventBeginSession Event = "begin_session"
	// EventResolve: the parties reached an agreement.
	EventResolve Event = "resolve"
)

var (
	// ErrInvalidTransition is returned for any (phase, event, role)
	// combination outside the progression table, including regressions.
	ErrInvalidTransition = errors.New("invalid phase transition")
	// ErrNotParticipant is returned when the actor has no slot in the room.
	ErrNotParticipant = errors.New("user is not a participant of this room")
)

// anyRole marks transitions either party may trigger.
const anyRole = phase.Role("any")

type transitionKey struct {
	from  phase.Phase
	event Event
}

type transition struct {
	to   phase.Phase
	role phase.Role
}

// transitions is the complete progression table. Anything absent is
// rejected.
var transitions = map[transitionKey]transition{
	{phase.User1Coaching, EventCompleteCoaching}: {phase.User2Lobby, phase.Initiator},
	{phase.User2Lobby, EventStartCoaching}:       {phase.User2Coaching, phase.Invitee},
	{phase.User2Coaching, EventCompleteCoaching}: {phase.MainRoom, phase.Invitee},
	{phase.MainRoom, EventBeginSession}:          {phase.InSession, anyRole},
	{phase.InSession, EventResolve}:              {phase.Resolved, anyRole},
}

// Service validates and applies phase transitions.
type Service struct {
	Storage storage.Storage
}

// NewService creates a new roomflow service.
func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// Advance applies ev to the room on behalf of actorID. On success it
// persists the new phase, publishes a phase_change event for the hub and
// notifier, and returns the new phase.
func (s *Service) Advance(room *models.Room, actorID string, ev Event) (phase.Phase, error) {
	if !room.HasParticipant(actorID) {
		return room.Phase, ErrNotParticipant
	}

	next, err := Next(room.Phase, room.RoleOf(actorID), ev)
	if err != nil {
		return room.Phase, err
	}

	// The invitee must actually be seated before leaving the lobby.
	if ev == EventStartCoaching && room.User2ID == "" {
		return room.Phase, ErrInvalidTransition
	}

	if err := s.Storage.UpdateRoomPhase(room.RoomID, next); err != nil {
		return room.Phase, err
	}
	room.Phase = next

	change := models.RoomEvent{
		RoomID:   room.RoomID,
		SenderID: actorID,
		Content:  string(next),
		Type:     "phase_change",
	}
	if err := s.Storage.PublishRoomEvent(room.RoomID, change); err != nil {
		// The transition is already durable; fanout failure only delays
		// observers until their next poll.
		log.Printf("WARNING: Failed to publish phase change for room %s: %v", room.RoomID, err)
	}

	log.Printf("Room %s advanced to %s by %s", room.RoomID, next, actorID)
	return next, nil
}

// Next is the pure transition function: it returns the phase that (from,
// role, ev) leads to, or ErrInvalidTransition.
func Next(from phase.Phase, role phase.Role, ev Event) (phase.Phase, error) {
	t, ok := transitions[transitionKey{from, ev}]
	if !ok {
		return from, ErrInvalidTransition
	}
	if t.role != anyRole && t.role != role {
		return from, ErrInvalidTransition
	}
	return t.to, nil
}
