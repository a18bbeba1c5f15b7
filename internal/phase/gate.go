package phase

// Client-side route builders. These are navigation targets, not API paths.

func InviteRoute(roomID string) string     { return "/rooms/" + roomID + "/invite" }
func CoachingRoute(roomID string) string   { return "/coaching/" + roomID }
func MainRoomRoute(roomID string) string   { return "/main-room/" + roomID }
func ResolutionRoute(roomID string) string { return "/rooms/" + roomID + "/resolution" }

// RouteFor resolves the screen a viewer belongs on for the current phase.
// The main-room route is only ever returned when the phase opens it; every
// earlier phase resolves to the invite-share or coaching screen instead.
func RouteFor(p Phase, r Role, roomID string) string {
	if p.MainRoomOpen() {
		return MainRoomRoute(roomID)
	}
	switch p {
	case User1Coaching:
		if r == Initiator {
			return CoachingRoute(roomID)
		}
		return InviteRoute(roomID)
	case User2Lobby:
		if r == Initiator {
			return InviteRoute(roomID)
		}
		return CoachingRoute(roomID)
	case User2Coaching:
		if r == Initiator {
			return InviteRoute(roomID)
		}
		return CoachingRoute(roomID)
	case Resolved:
		return ResolutionRoute(roomID)
	default:
		// Unknown phase: fall back to the room's invite/status screen.
		return InviteRoute(roomID)
	}
}

// EnterMainRoom is the guarded navigation action. When the gate is open it
// returns the main-room route and true; otherwise it returns the route the
// viewer is redirected to instead and false.
func EnterMainRoom(p Phase, r Role, roomID string) (string, bool) {
	if p.MainRoomOpen() {
		return MainRoomRoute(roomID), true
	}
	return RouteFor(p, r, roomID), false
}
