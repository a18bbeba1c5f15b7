package mainroom_test

import (
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"

	"meedi8/backend/internal/models"
	"meedi8/backend/internal/phase"
)

// MockStorage is a testify/mock implementation of storage.Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(userID string) (*models.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByTelegramID(chatID int64) (*models.User, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) SaveRoom(room *models.Room) error {
	args := m.Called(room)
	return args.Error(0)
}

func (m *MockStorage) GetRoomByID(roomID string) (*models.Room, error) {
	args := m.Called(roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *MockStorage) GetRoomByInviteToken(token string) (*models.Room, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *MockStorage) ListRoomsForUser(userID string) ([]models.Room, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Room), args.Error(1)
}

func (m *MockStorage) DeleteRoom(roomID string) error {
	args := m.Called(roomID)
	return args.Error(0)
}

func (m *MockStorage) CountActiveRoomsForUser(userID string) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) UpdateRoomPhase(roomID string, p phase.Phase) error {
	args := m.Called(roomID, p)
	return args.Error(0)
}

func (m *MockStorage) SaveMessage(ev *models.RoomEvent) error {
	args := m.Called(ev)
	return args.Error(0)
}

func (m *MockStorage) GetTranscript(roomID string) ([]models.RoomMessage, error) {
	args := m.Called(roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RoomMessage), args.Error(1)
}

func (m *MockStorage) CountMessages(roomID string) (int64, error) {
	args := m.Called(roomID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) PublishRoomEvent(roomID string, ev models.RoomEvent) error {
	args := m.Called(roomID, ev)
	return args.Error(0)
}

func (m *MockStorage) SubscribeToAllRooms() *redis.PubSub {
	args := m.Called()
	return args.Get(0).(*redis.PubSub)
}

func (m *MockStorage) CacheInviteToken(token, roomID string) error {
	args := m.Called(token, roomID)
	return args.Error(0)
}

func (m *MockStorage) LookupInviteToken(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

// mockClient is a test double for the mainroom.Client interface.
type mockClient struct {
	userID string
	roomID string
	// RecvChannel is buffered so hub delivery never blocks in tests.
	RecvChannel chan models.RoomEvent
	closed      bool
}

func newMockClient(userID, roomID string) *mockClient {
	return &mockClient{
		userID:      userID,
		roomID:      roomID,
		RecvChannel: make(chan models.RoomEvent, 10),
	}
}

func (c *mockClient) GetUserID() string                       { return c.userID }
func (c *mockClient) GetRoomID() string                       { return c.roomID }
func (c *mockClient) GetSendChannel() chan<- models.RoomEvent { return c.RecvChannel }
func (c *mockClient) Run()                                    {}
func (c *mockClient) Close()                                  { c.closed = true }
