package responses

import "time"

type LaunchSession struct {
	SessionID   string    `json:"session_id"`
	Patient     string    `json:"patient,omitempty"`
	User        string    `json:"user,omitempty"`
	Resource    string    `json:"resource,omitempty"`
	Domain      string    `json:"domain,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type,omitempty"`
	AccessToken string    `json:"access_token,omitempty"`
}

type Health struct {
	Status     string `json:"status"`
	Koppeltaal *bool  `json:"koppeltaal,omitempty"`
}
