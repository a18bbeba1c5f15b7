// Package client implements the session phase controller: the HTTP client
// that talks to the Meedi8 API, the session (token) store it authenticates
// with, and the lobby poller that keeps a room's phase fresh. Error
// classification lives here and only here; consumers react to classified
// outcomes, never to raw HTTP statuses.
package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Session holds the bearer credential for the current login. It replaces
// ambient token storage: the API client takes a *Session explicitly, and a
// rejected credential tears the session down in one place.
//
// When constructed with a path the token survives restarts in a plain file,
// the terminal-client equivalent of browser local storage.
type Session struct {
	mu    sync.Mutex
	token string
	path  string
}

// NewSession creates a session store. path may be empty for a purely
// in-memory session (tests, one-shot commands).
func NewSession(path string) *Session {
	return &Session{path: path}
}

// Init loads a previously persisted token, if any. Call once on startup.
func (s *Session) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	s.token = strings.TrimSpace(string(data))
	return nil
}

// Token returns the current bearer token, empty when logged out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool { return s.Token() != "" }

// SetToken stores a fresh credential and persists it.
func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	if s.path == "" {
		return nil
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Teardown clears the credential, in memory and on disk. Called on logout
// and whenever the server answers 401.
func (s *Session) Teardown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
