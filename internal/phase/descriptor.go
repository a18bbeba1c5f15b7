package phase

// Descriptor is what a view renders for a (phase, role) pair: a status
// label, an accent color, the action button text and whether that action is
// currently enabled.
type Descriptor struct {
	Label       string
	Color       string
	Action      string
	ActionReady bool
	Description string
}

// Accent colors shared with the terminal UI.
const (
	colorWaiting  = "#D4A017" // amber
	colorCoaching = "#5B8DEF" // blue
	colorReady    = "#2EB872" // green
	colorResolved = "#8A8F98" // gray
)

// unknownDescriptor is the fallback for any phase value the tables do not
// cover. Deliberate policy: never fail on an unrecognized phase.
var unknownDescriptor = Descriptor{
	Label:       "Unknown",
	Color:       colorResolved,
	Action:      "View",
	ActionReady: true,
	Description: "The room is in an unrecognized state.",
}

var initiatorDescriptors = map[Phase]Descriptor{
	User1Coaching: {
		Label:       "In Coaching",
		Color:       colorCoaching,
		Action:      "Continue Coaching",
		ActionReady: true,
		Description: "Finish your coaching session to unlock the invite.",
	},
	User2Lobby: {
		Label:       "Waiting for Other Person to Join",
		Color:       colorWaiting,
		Action:      "View Invite",
		ActionReady: true,
		Description: "Share your invite link so the other person can join.",
	},
	User2Coaching: {
		Label:       "Other Person is in Coaching",
		Color:       colorWaiting,
		Action:      "Take a Breath",
		ActionReady: false,
		Description: "The other person is preparing. The conversation opens when they finish.",
	},
	MainRoom: {
		Label:       "Ready for Conversation",
		Color:       colorReady,
		Action:      "Enter Main Room",
		ActionReady: true,
		Description: "Both of you are ready. Enter the main room to begin.",
	},
	InSession: {
		Label:       "In Conversation",
		Color:       colorReady,
		Action:      "Rejoin Session",
		ActionReady: true,
		Description: "Your conversation is underway.",
	},
	Resolved: {
		Label:       "Completed",
		Color:       colorResolved,
		Action:      "View Resolution",
		ActionReady: true,
		Description: "This mediation reached an agreement.",
	},
}

var inviteeDescriptors = map[Phase]Descriptor{
	User1Coaching: {
		Label:       "Other Person is in Coaching",
		Color:       colorWaiting,
		Action:      "Take a Breath",
		ActionReady: false,
		Description: "The other person is preparing before inviting you in.",
	},
	User2Lobby: {
		Label:       "Ready to Join",
		Color:       colorCoaching,
		Action:      "Start Coaching",
		ActionReady: true,
		Description: "Start your coaching session to prepare for the conversation.",
	},
	User2Coaching: {
		Label:       "In Coaching",
		Color:       colorCoaching,
		Action:      "Continue Coaching",
		ActionReady: true,
		Description: "Finish your coaching session to unlock the conversation.",
	},
	MainRoom: {
		Label:       "Ready for Conversation",
		Color:       colorReady,
		Action:      "Enter Main Room",
		ActionReady: true,
		Description: "Both of you are ready. Enter the main room to begin.",
	},
	InSession: {
		Label:       "In Conversation",
		Color:       colorReady,
		Action:      "Rejoin Session",
		ActionReady: true,
		Description: "Your conversation is underway.",
	},
	Resolved: {
		Label:       "Completed",
		Color:       colorResolved,
		Action:      "View Resolution",
		ActionReady: true,
		Description: "This mediation reached an agreement.",
	},
}

// Describe maps a (phase, role) pair to its display descriptor. It is total:
// any phase absent from the tables yields the Unknown fallback, never an
// error. No side effects.
func Describe(p Phase, r Role) Descriptor {
	table := inviteeDescriptors
	if r == Initiator {
		table = initiatorDescriptors
	}
	if d, ok := table[p]; ok {
		return d
	}
	return unknownDescriptor
}
