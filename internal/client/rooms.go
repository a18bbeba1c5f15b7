package client

import (
	"context"
	"net/http"
	"time"

	"meedi8/backend/internal/models"
	"meedi8/backend/internal/phase"
)

type credentials struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Name     string   `json:"name,omitempty"`
	Topics   []string `json:"topics,omitempty"`
}

type authResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// Signup registers a new account with the given screening topics and
// stores the returned token in the session.
func (c *Client) Signup(ctx context.Context, email, password, name string, topics []string) (string, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/auth/signup", credentials{Email: email, Password: password, Name: name, Topics: topics}, &resp)
	if err != nil {
		return "", err
	}
	if err := c.Session.SetToken(resp.Token); err != nil {
		return "", err
	}
	return resp.UserID, nil
}

// Login authenticates and stores the returned token in the session.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", credentials{Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	if err := c.Session.SetToken(resp.Token); err != nil {
		return "", err
	}
	return resp.UserID, nil
}

// Profile fetches the caller's own account view.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type createRoomRequest struct {
	Title       string     `json:"title"`
	CheckInDate *time.Time `json:"check_in_date,omitempty"`
}

// CreateRoom starts a new mediation. The caller becomes user1 and the room
// opens in user1_coaching. Subject to the active-room paywall.
func (c *Client) CreateRoom(ctx context.Context, title string, checkIn *time.Time) (*models.RoomView, error) {
	var view models.RoomView
	err := c.do(ctx, http.MethodPost, "/rooms", createRoomRequest{Title: title, CheckInDate: checkIn}, &view)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ListRooms returns every room the caller participates in.
func (c *Client) ListRooms(ctx context.Context) ([]models.RoomView, error) {
	var views []models.RoomView
	if err := c.do(ctx, http.MethodGet, "/rooms", nil, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// GetRoom fetches the full room record. Used once when entering a results
// or summary view, not polled.
func (c *Client) GetRoom(ctx context.Context, roomID string) (*models.RoomView, error) {
	var view models.RoomView
	if err := c.do(ctx, http.MethodGet, "/rooms/"+roomID, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// GetLobby fetches the room's current phase. This is the endpoint the
// poller hits every tick.
func (c *Client) GetLobby(ctx context.Context, roomID string) (phase.Phase, error) {
	var status models.LobbyStatus
	if err := c.do(ctx, http.MethodGet, "/rooms/"+roomID+"/lobby", nil, &status); err != nil {
		return "", err
	}
	return status.RoomPhase, nil
}

// DeleteRoom hard-deletes a room and its transcript. Either party may call
// it; errors are surfaced, not retried.
func (c *Client) DeleteRoom(ctx context.Context, roomID string) error {
	return c.do(ctx, http.MethodDelete, "/rooms/"+roomID, nil, nil)
}

// JoinPreview shows the room behind an invite token without joining.
func (c *Client) JoinPreview(ctx context.Context, inviteToken string) (*models.RoomView, error) {
	var view models.RoomView
	if err := c.do(ctx, http.MethodGet, "/join/"+inviteToken, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Join seats the caller as user2 in the room behind the invite token.
func (c *Client) Join(ctx context.Context, inviteToken string) (*models.RoomView, error) {
	var view models.RoomView
	if err := c.do(ctx, http.MethodPost, "/join/"+inviteToken, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

type advanceRequest struct {
	Event string `json:"event"`
}

// Advance requests a phase transition and returns the phase the server
// reports afterwards.
func (c *Client) Advance(ctx context.Context, roomID, event string) (phase.Phase, error) {
	var status models.LobbyStatus
	if err := c.do(ctx, http.MethodPost, "/rooms/"+roomID+"/advance", advanceRequest{Event: event}, &status); err != nil {
		return "", err
	}
	return status.RoomPhase, nil
}
