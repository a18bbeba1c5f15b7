package mainroom_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"meedi8/backend/internal/mainroom"
	"meedi8/backend/internal/models"
	"meedi8/backend/internal/phase"
)

func testRoom() *models.Room {
	return &models.Room{
		RoomID:  "room-1",
		Title:   "Noise at night",
		Phase:   phase.InSession,
		User1ID: "user-1",
		User2ID: "user-2",
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	storageMock := new(MockStorage)
	hub := mainroom.NewHub(storageMock)

	clientA := newMockClient("user-1", "room-1")

	go hub.Run()

	hub.RegisterCh <- clientA
	time.Sleep(100 * time.Millisecond)
	assert.Contains(t, hub.Clients, "user-1")

	hub.UnregisterCh <- clientA
	time.Sleep(100 * time.Millisecond)
	assert.NotContains(t, hub.Clients, "user-1")
	assert.True(t, clientA.closed)
}

// TestHubIncomingPersistsAndPublishes verifies a party's message is written
// to the transcript and fanned out through redis.
func TestHubIncomingPersistsAndPublishes(t *testing.T) {
	storageMock := new(MockStorage)
	hub := mainroom.NewHub(storageMock)

	storageMock.On("SaveMessage", mock.AnythingOfType("*models.RoomEvent")).Return(nil)
	storageMock.On("PublishRoomEvent", "room-1", mock.AnythingOfType("models.RoomEvent")).Return(nil)

	go hub.Run()

	hub.IncomingCh <- models.RoomEvent{RoomID: "room-1", SenderID: "user-1", Content: "hello", Type: "text"}
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertCalled(t, "SaveMessage", mock.AnythingOfType("*models.RoomEvent"))
	storageMock.AssertCalled(t, "PublishRoomEvent", "room-1", mock.AnythingOfType("models.RoomEvent"))
}

// TestHubTypingSkipsTranscript verifies typing indicators are relayed but
// never persisted.
func TestHubTypingSkipsTranscript(t *testing.T) {
	storageMock := new(MockStorage)
	hub := mainroom.NewHub(storageMock)

	storageMock.On("PublishRoomEvent", "room-1", mock.AnythingOfType("models.RoomEvent")).Return(nil)

	go hub.Run()

	hub.IncomingCh <- models.RoomEvent{RoomID: "room-1", SenderID: "user-1", Type: "typing"}
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertNotCalled(t, "SaveMessage", mock.Anything)
	storageMock.AssertCalled(t, "PublishRoomEvent", "room-1", mock.AnythingOfType("models.RoomEvent"))
}

// TestHubDeliversToPartnerOnly verifies the sender does not receive their
// own text back.
func TestHubDeliversToPartnerOnly(t *testing.T) {
	storageMock := new(MockStorage)
	hub := mainroom.NewHub(storageMock)

	clientA := newMockClient("user-1", "room-1")
	clientB := newMockClient("user-2", "room-1")
	hub.Clients["user-1"] = clientA
	hub.Clients["user-2"] = clientB

	storageMock.On("GetRoomByID", "room-1").Return(testRoom(), nil)

	go hub.Run()

	hub.PubSubCh <- models.RoomEvent{RoomID: "room-1", SenderID: "user-1", Content: "hello", Type: "text"}
	time.Sleep(100 * time.Millisecond)

	select {
	case ev := <-clientB.RecvChannel:
		assert.Equal(t, "hello", ev.Content)
	default:
		t.Error("partner did not receive the message")
	}
	select {
	case <-clientA.RecvChannel:
		t.Error("sender must not receive their own text back")
	default:
	}
}

// TestHubPhaseChangeReachesBothParties verifies phase_change events fan out
// to both connections, including the actor's.
func TestHubPhaseChangeReachesBothParties(t *testing.T) {
	storageMock := new(MockStorage)
	hub := mainroom.NewHub(storageMock)

	clientA := newMockClient("user-1", "room-1")
	clientB := newMockClient("user-2", "room-1")
	hub.Clients["user-1"] = clientA
	hub.Clients["user-2"] = clientB

	storageMock.On("GetRoomByID", "room-1").Return(testRoom(), nil)

	go hub.Run()

	hub.PubSubCh <- models.RoomEvent{
		RoomID:   "room-1",
		SenderID: "user-1",
		Content:  string(phase.Resolved),
		Type:     "phase_change",
	}
	time.Sleep(100 * time.Millisecond)

	for _, c := range []*mockClient{clientA, clientB} {
		select {
		case ev := <-c.RecvChannel:
			assert.Equal(t, "phase_change", ev.Type)
			assert.Equal(t, string(phase.Resolved), ev.Content)
		default:
			t.Errorf("client %s did not receive the phase change", c.GetUserID())
		}
	}
}

// TestHubDropsEventForUnknownRoom verifies events for deleted rooms are
// discarded without delivery.
func TestHubDropsEventForUnknownRoom(t *testing.T) {
	storageMock := new(MockStorage)
	hub := mainroom.NewHub(storageMock)

	clientA := newMockClient("user-1", "room-gone")
	hub.Clients["user-1"] = clientA

	storageMock.On("GetRoomByID", "room-gone").Return(nil, assert.AnError)

	go hub.Run()

	hub.PubSubCh <- models.RoomEvent{RoomID: "room-gone", SenderID: "user-2", Content: "hi", Type: "text"}
	time.Sleep(100 * time.Millisecond)

	select {
	case <-clientA.RecvChannel:
		t.Error("no delivery expected for an unknown room")
	default:
	}
}
