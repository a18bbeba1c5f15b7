package phase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"meedi8/backend/internal/phase"
)

const roomID = "11111111-2222-3333-4444-555555555555"

// TestGateMonotonicity verifies the one hard guard: the main room is never
// reachable while either party still has prerequisite steps, and always
// reachable once the phase opens it.
func TestGateMonotonicity(t *testing.T) {
	closed := []phase.Phase{phase.User1Coaching, phase.User2Lobby, phase.User2Coaching}
	open := []phase.Phase{phase.MainRoom, phase.InSession}

	for _, role := range []phase.Role{phase.Initiator, phase.Invitee} {
		for _, p := range closed {
			route, ok := phase.EnterMainRoom(p, role, roomID)
			assert.False(t, ok, "gate must stay closed for %s/%s", p, role)
			assert.NotEqual(t, phase.MainRoomRoute(roomID), route,
				"closed gate must redirect away from the main room for %s/%s", p, role)
		}
		for _, p := range open {
			route, ok := phase.EnterMainRoom(p, role, roomID)
			assert.True(t, ok, "gate must be open for %s/%s", p, role)
			assert.Equal(t, phase.MainRoomRoute(roomID), route)
		}
	}
}

// TestGateInviteeLobbyRedirect covers the concrete scenario: an invitee
// navigating straight to the main room while the phase is still user2_lobby
// lands on the coaching screen instead.
func TestGateInviteeLobbyRedirect(t *testing.T) {
	route, ok := phase.EnterMainRoom(phase.User2Lobby, phase.Invitee, roomID)

	assert.False(t, ok)
	assert.Equal(t, phase.CoachingRoute(roomID), route)
}

// TestRouteForResolution verifies terminal rooms resolve to the resolution
// screen for both roles.
func TestRouteForResolution(t *testing.T) {
	assert.Equal(t, phase.ResolutionRoute(roomID), phase.RouteFor(phase.Resolved, phase.Initiator, roomID))
	assert.Equal(t, phase.ResolutionRoute(roomID), phase.RouteFor(phase.Resolved, phase.Invitee, roomID))
}

// TestRouteForEarlyPhases pins down where each party waits before the gate
// opens: the initiator on the invite screen, the invitee in coaching.
func TestRouteForEarlyPhases(t *testing.T) {
	tests := []struct {
		p    phase.Phase
		role phase.Role
		want string
	}{
		{phase.User1Coaching, phase.Initiator, phase.CoachingRoute(roomID)},
		{phase.User1Coaching, phase.Invitee, phase.InviteRoute(roomID)},
		{phase.User2Lobby, phase.Initiator, phase.InviteRoute(roomID)},
		{phase.User2Lobby, phase.Invitee, phase.CoachingRoute(roomID)},
		{phase.User2Coaching, phase.Initiator, phase.InviteRoute(roomID)},
		{phase.User2Coaching, phase.Invitee, phase.CoachingRoute(roomID)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, phase.RouteFor(tt.p, tt.role, roomID), "%s/%s", tt.p, tt.role)
	}
}

// TestRouteForUnknownPhase verifies an unrecognized phase never routes into
// the main room.
func TestRouteForUnknownPhase(t *testing.T) {
	route := phase.RouteFor(phase.Phase("future_phase"), phase.Initiator, roomID)
	assert.Equal(t, phase.InviteRoute(roomID), route)
}

// TestRoleFor verifies the is_user1 flag translates to roles.
func TestRoleFor(t *testing.T) {
	assert.Equal(t, phase.Initiator, phase.RoleFor(true))
	assert.Equal(t, phase.Invitee, phase.RoleFor(false))
}

// TestKnown verifies the enum membership check and that MainRoomOpen is
// limited to exactly two phases.
func TestKnown(t *testing.T) {
	for _, p := range phase.All() {
		assert.True(t, p.Known())
	}
	assert.False(t, phase.Phase("bogus").Known())

	openCount := 0
	for _, p := range phase.All() {
		if p.MainRoomOpen() {
			openCount++
		}
	}
	assert.Equal(t, 2, openCount)
}
