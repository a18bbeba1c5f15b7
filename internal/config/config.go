package config

import "time"

const (
	// Client
	LobbyPollInterval = 3 * time.Second
	RequestTimeout    = 90 * time.Second

	// Auth
	TokenTTL  = 72 * time.Hour
	JWTIssuer = "meedi8-service"

	// Paywall (free tier)
	FreeActiveRoomLimit = 1
	FreeTranscriptLimit = 200 // messages per room
	UpgradeURL          = "https://meedi8.app/upgrade"
	PaywallReasonRooms  = "active_room_limit"
	PaywallReasonLength = "transcript_limit"

	// Invite
	InviteTokenCacheTTL = 14 * 24 * time.Hour
)
