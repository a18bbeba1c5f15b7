// Package notify pushes Telegram notifications to participants whose
// accounts are linked to a Telegram chat. It listens on the same redis
// channel the main-room hub uses, so a phase change reaches an absent
// party even when no client is polling.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"meedi8/backend/internal/models"
	"meedi8/backend/internal/phase"
	"meedi8/backend/internal/storage"
)

// Service receives room events over redis and answers the bot's own
// commands. Telegram is notification-only: the mediation itself always
// happens over the websocket main room.
type Service struct {
	BotAPI  *tgbotapi.BotAPI
	Storage storage.Storage
}

// NewService authorizes the bot and returns a ready service.
func NewService(token string, s storage.Storage) (*Service, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}
	bot.Debug = false
	log.Printf("Authorized on telegram account %s", bot.Self.UserName)

	return &Service{BotAPI: bot, Storage: s}, nil
}

// Run starts the event listener and then blocks on the bot's update loop.
func (s *Service) Run(ctx context.Context) {
	go s.listenRoomEvents(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.BotAPI.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}
		switch update.Message.Command() {
		case "start":
			s.reply(update.Message.Chat.ID,
				"This bot notifies you when your mediation rooms change state. "+
					"Ask an administrator to link your account, then use /status to check your rooms.")
		case "status":
			s.handleStatusCommand(update.Message.Chat.ID)
		default:
			s.reply(update.Message.Chat.ID, "Unknown command. Try /status.")
		}
	}
}

// listenRoomEvents consumes phase_change events for every room and pings
// the party that did not trigger the change.
func (s *Service) listenRoomEvents(ctx context.Context) {
	pubsub := s.Storage.SubscribeToAllRooms()
	defer pubsub.Close()

	log.Println("Telegram notifier subscribed to room events")
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			var ev models.RoomEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("ERROR: Failed to unmarshal room event: %v", err)
				continue
			}
			if ev.Type != "phase_change" {
				continue
			}
			s.notifyPhaseChange(ev)
		}
	}
}

// notifyPhaseChange messages every linked participant except the actor.
func (s *Service) notifyPhaseChange(ev models.RoomEvent) {
	room, err := s.Storage.GetRoomByID(ev.RoomID)
	if err != nil {
		log.Printf("WARNING: Dropping phase change for unknown room %s: %v", ev.RoomID, err)
		return
	}

	for _, userID := range []string{room.User1ID, room.User2ID} {
		if userID == "" || userID == ev.SenderID {
			continue
		}
		user, err := s.Storage.GetUserByID(userID)
		if err != nil {
			log.Printf("WARNING: Failed to load user %s for notification: %v", userID, err)
			continue
		}
		if user.TelegramID == 0 {
			continue
		}
		s.reply(user.TelegramID, PhaseNotice(room, phase.Phase(ev.Content), room.RoleOf(userID)))
	}
}

// handleStatusCommand lists the caller's rooms with their current state.
func (s *Service) handleStatusCommand(chatID int64) {
	user, err := s.Storage.GetUserByTelegramID(chatID)
	if err != nil {
		s.reply(chatID, "Your Telegram account is not linked to a mediation account.")
		return
	}

	rooms, err := s.Storage.ListRoomsForUser(user.ID)
	if err != nil {
		log.Printf("ERROR: Failed to list rooms for user %s: %v", user.ID, err)
		s.reply(chatID, "Could not load your rooms, try again later.")
		return
	}
	if len(rooms) == 0 {
		s.reply(chatID, "You have no mediation rooms.")
		return
	}

	var b strings.Builder
	b.WriteString("Your rooms:\n")
	for i := range rooms {
		room := &rooms[i]
		d := phase.Describe(room.Phase, room.RoleOf(user.ID))
		fmt.Fprintf(&b, "• %s — %s\n", room.Title, d.Label)
	}
	s.reply(chatID, b.String())
}

func (s *Service) reply(chatID int64, text string) {
	if _, err := s.BotAPI.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("ERROR: Failed to send telegram message to %d: %v", chatID, err)
	}
}

// PhaseNotice renders the message a linked participant receives when their
// room moves to a new phase.
func PhaseNotice(room *models.Room, to phase.Phase, viewer phase.Role) string {
	d := phase.Describe(to, viewer)
	if d.ActionReady {
		return fmt.Sprintf("%q: %s. Open the app and choose %q.", room.Title, d.Label, d.Action)
	}
	return fmt.Sprintf("%q: %s.", room.Title, d.Label)
}
