package models

import "time"

// TokenDetails is the token endpoint response of the koppeltaal OAuth server
// plus the derived expiry.
type TokenDetails struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	Scope        string    `json:"scope,omitempty"`
	Patient      string    `json:"patient,omitempty"`
	User         string    `json:"user,omitempty"`
	Resource     string    `json:"resource,omitempty"`
	Location     string    `json:"location,omitempty"`
	Domain       string    `json:"domain,omitempty"`
	IssuedAt     time.Time `json:"issued_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (t *TokenDetails) Expired(now time.Time) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(t.ExpiresAt)
}

type MobileLaunchCode struct {
	ActivationCode string `json:"activationCode"`
	ExpiresIn      int    `json:"expiresIn"`
}

type ServerMetadata struct {
	AuthorizeEndpoint string `json:"authorizeEndpoint"`
	TokenEndpoint     string `json:"tokenEndpoint"`
	FHIRVersion       string `json:"fhirVersion,omitempty"`
	Software          string `json:"software,omitempty"`
	Raw               []byte `json:"-"`
}
