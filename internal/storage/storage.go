package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"meedi8/backend/internal/config"
	"meedi8/backend/internal/models"
	"meedi8/backend/internal/phase"
)

// ErrRoomNotFound is returned when a room ID or invite token resolves to
// nothing.
var ErrRoomNotFound = errors.New("room not found")

type Storage interface {
	SaveUser(user *models.User) error
	GetUserByID(userID string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByTelegramID(chatID int64) (*models.User, error)

	SaveRoom(room *models.Room) error
	GetRoomByID(roomID string) (*models.Room, error)
	GetRoomByInviteToken(token string) (*models.Room, error)
	ListRoomsForUser(userID string) ([]models.Room, error)
	DeleteRoom(roomID string) error
	CountActiveRoomsForUser(userID string) (int64, error)
	UpdateRoomPhase(roomID string, p phase.Phase) error

	SaveMessage(ev *models.RoomEvent) error
	GetTranscript(roomID string) ([]models.RoomMessage, error)
	CountMessages(roomID string) (int64, error)

	PublishRoomEvent(roomID string, ev models.RoomEvent) error
	SubscribeToAllRooms() *redis.PubSub

	CacheInviteToken(token, roomID string) error
	LookupInviteToken(token string) (string, error)
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// SaveUser stores a user in PostgreSQL.
func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

// GetUserByID looks a user up by their UUID.
func (s *Service) GetUserByID(userID string) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail looks a user up by email (unique).
func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByTelegramID finds the account linked to a Telegram chat, if any.
func (s *Service) GetUserByTelegramID(chatID int64) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "telegram_id = ?", chatID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SaveRoom stores a room in PostgreSQL.
func (s *Service) SaveRoom(room *models.Room) error {
	return s.DB.Save(room).Error
}

// GetRoomByID fetches a single room.
func (s *Service) GetRoomByID(roomID string) (*models.Room, error) {
	var room models.Room
	err := s.DB.Where("room_id = ?", roomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get room %s: %v", roomID, err)
		return nil, err
	}
	return &room, nil
}

// GetRoomByInviteToken resolves an invite token to its room.
func (s *Service) GetRoomByInviteToken(token string) (*models.Room, error) {
	// 1. Fast path: redis cache.
	if roomID, err := s.LookupInviteToken(token); err == nil && roomID != "" {
		return s.GetRoomByID(roomID)
	}

	// 2. Authoritative lookup in PostgreSQL.
	var room models.Room
	err := s.DB.Where("invite_token = ?", token).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	// Refill the cache for subsequent lookups. Failure is non-fatal.
	if err := s.CacheInviteToken(token, room.RoomID); err != nil {
		log.Printf("WARNING: Failed to cache invite token for room %s: %v", room.RoomID, err)
	}
	return &room, nil
}

// ListRoomsForUser returns every room the user participates in, newest
// first.
func (s *Service) ListRoomsForUser(userID string) ([]models.Room, error) {
	var rooms []models.Room
	err := s.DB.Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at desc").
		Find(&rooms).Error
	if err != nil {
		log.Printf("ERROR: Failed to list rooms for user %s: %v", userID, err)
		return nil, err
	}
	return rooms, nil
}

// DeleteRoom hard-deletes a room and cascades to its transcript. Runs in a
// transaction so a half-deleted room is never observable.
func (s *Service) DeleteRoom(roomID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("room_id = ?", roomID).Delete(&models.RoomMessage{}).Error; err != nil {
			return err
		}
		return tx.Where("room_id = ?", roomID).Delete(&models.Room{}).Error
	})
}

// CountActiveRoomsForUser counts the user's non-terminal rooms. Used by the
// paywall quota check.
func (s *Service) CountActiveRoomsForUser(userID string) (int64, error) {
	var n int64
	err := s.DB.Model(&models.Room{}).
		Where("phase <> ?", phase.Resolved).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Count(&n).Error
	return n, err
}

// UpdateRoomPhase persists a phase transition and stamps the session
// start/end timestamps where applicable.
func (s *Service) UpdateRoomPhase(roomID string, p phase.Phase) error {
	updates := map[string]interface{}{"phase": p}
	switch p {
	case phase.InSession:
		updates["started_at"] = gorm.Expr("COALESCE(started_at, NOW())")
	case phase.Resolved:
		updates["ended_at"] = gorm.Expr("NOW()")
	}
	return s.DB.Model(&models.Room{}).
		Where("room_id = ?", roomID).
		Updates(updates).Error
}

// SaveMessage persists a main-room event to the transcript and fills in the
// generated row ID so it can be published.
func (s *Service) SaveMessage(ev *models.RoomEvent) error {
	row := models.RoomMessage{
		RoomID:   ev.RoomID,
		SenderID: ev.SenderID,
		Content:  ev.Content,
		Type:     ev.Type,
	}
	if err := s.DB.Create(&row).Error; err != nil {
		log.Printf("ERROR: Failed to save message for room %s: %v", ev.RoomID, err)
		return err
	}
	ev.ID = row.ID
	return nil
}

// GetTranscript loads a room's messages ordered by creation time.
func (s *Service) GetTranscript(roomID string) ([]models.RoomMessage, error) {
	var rows []models.RoomMessage
	if err := s.DB.Where("room_id = ?", roomID).Order("created_at asc").Find(&rows).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rows, nil
		}
		log.Printf("ERROR: Failed to get transcript for room %s: %v", roomID, err)
		return nil, err
	}
	return rows, nil
}

// CountMessages counts the transcript rows of a room. Used by the free-tier
// transcript cap.
func (s *Service) CountMessages(roomID string) (int64, error) {
	var n int64
	err := s.DB.Model(&models.RoomMessage{}).Where("room_id = ?", roomID).Count(&n).Error
	return n, err
}

// PublishRoomEvent publishes an event on the room's redis channel so every
// server instance (and the notifier) sees it.
func (s *Service) PublishRoomEvent(roomID string, ev models.RoomEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, "room:"+roomID, string(payload)).Err()
}

// SubscribeToAllRooms subscribes to every room channel.
func (s *Service) SubscribeToAllRooms() *redis.PubSub {
	return s.Redis.PSubscribe(s.Ctx, "room:*")
}

// CacheInviteToken stores the token → room mapping in redis with a TTL.
func (s *Service) CacheInviteToken(token, roomID string) error {
	return s.Redis.Set(s.Ctx, "invite:"+token, roomID, config.InviteTokenCacheTTL).Err()
}

// LookupInviteToken resolves a cached invite token. Returns an empty string
// without error on a cache miss.
func (s *Service) LookupInviteToken(token string) (string, error) {
	roomID, err := s.Redis.Get(s.Ctx, "invite:"+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return roomID, nil
}
