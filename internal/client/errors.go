package client

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionExpired signals a 401: the stored token has been cleared
	// and the user must log in again. Never retried.
	ErrSessionExpired = errors.New("session expired, please log in again")
	// ErrRequestTimeout signals the client-side abort. The caller may
	// retry manually.
	ErrRequestTimeout = errors.New("the request is taking longer than expected")
)

// APIError is any other non-2xx response, carrying the server's message
// text when one was provided.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("API %d", e.Status)
}

// PaywallError is the distinguished 402/413 condition: a subscription or
// quota limit was hit. It carries the structured detail payload so the UI
// can render an upgrade prompt. Never retried automatically.
type PaywallError struct {
	Status int
	Detail PaywallDetail
}

// PaywallDetail is the detail object of a paywall response.
type PaywallDetail struct {
	Reason     string `json:"reason"`
	Limit      int    `json:"limit"`
	UpgradeURL string `json:"upgrade_url"`
}

func (e *PaywallError) Error() string {
	return fmt.Sprintf("upgrade required (%s, limit %d)", e.Detail.Reason, e.Detail.Limit)
}
