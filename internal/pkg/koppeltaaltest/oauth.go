package koppeltaaltest

import (
	"koppeltaal-service/internal/pkg/constvars"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const activationCodeTTL = 300

var tokenSigningKey = []byte("koppeltaaltest-signing-key")

func (s *Server) launch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get(constvars.LaunchParamResource) == "" {
		writeOutcome(w, constvars.StatusBadRequest, "required", "resource is required")
		return
	}
	launch := uuid.NewString()
	s.mu.Lock()
	s.launches[launch] = grantFrom(q)
	s.mu.Unlock()

	target, _ := url.Parse(s.opts.LaunchURL)
	params := target.Query()
	params.Set(constvars.OAuthParamIss, s.BaseURL())
	params.Set(constvars.OAuthParamLaunch, launch)
	target.RawQuery = params.Encode()
	http.Redirect(w, r, target.String(), constvars.StatusFound)
}

func (s *Server) mobileLaunch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get(constvars.LaunchParamResource) == "" {
		writeOutcome(w, constvars.StatusBadRequest, "required", "resource is required")
		return
	}
	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	s.mu.Lock()
	s.codes[code] = grantFrom(q)
	s.mu.Unlock()

	writeJSON(w, constvars.StatusOK, map[string]interface{}{
		"activationCode": code,
		"expiresIn":      activationCodeTTL,
	})
}

func (s *Server) authorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	redirectURI, err := url.Parse(q.Get(constvars.OAuthParamRedirectURI))
	if err != nil || redirectURI.Scheme == "" {
		writeOutcome(w, constvars.StatusBadRequest, "required", "redirect_uri is required")
		return
	}
	launch := q.Get(constvars.OAuthParamLaunch)

	s.mu.Lock()
	g, ok := s.launches[launch]
	delete(s.launches, launch)
	code := uuid.NewString()
	if ok {
		g.clientID = q.Get(constvars.OAuthParamClientID)
		s.codes[code] = g
	}
	s.mu.Unlock()

	params := redirectURI.Query()
	if !ok {
		params.Set(constvars.OAuthParamError, "invalid_request")
	} else {
		params.Set(constvars.OAuthParamCode, code)
	}
	params.Set(constvars.OAuthParamState, q.Get(constvars.OAuthParamState))
	redirectURI.RawQuery = params.Encode()
	http.Redirect(w, r, redirectURI.String(), constvars.StatusFound)
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, constvars.StatusBadRequest, "invalid_request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var g grant
	switch r.PostForm.Get(constvars.OAuthParamGrantType) {
	case constvars.GrantTypeAuthorizationCode, constvars.GrantTypeActivationCode:
		code := r.PostForm.Get(constvars.OAuthParamCode)
		found, ok := s.codes[code]
		if !ok {
			writeOAuthError(w, constvars.StatusBadRequest, "invalid_grant")
			return
		}
		delete(s.codes, code)
		g = found

	case constvars.GrantTypeRefreshToken:
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.opts.ClientID || pass != s.opts.ClientSecret {
			writeOAuthError(w, constvars.StatusUnauthorized, "invalid_client")
			return
		}
		refresh := r.PostForm.Get(constvars.OAuthParamRefreshToken)
		previous, ok := s.refresh[refresh]
		if !ok {
			writeOAuthError(w, constvars.StatusBadRequest, "invalid_grant")
			return
		}
		g = s.access[previous]
		delete(s.refresh, refresh)
		delete(s.access, previous)

	default:
		writeOAuthError(w, constvars.StatusBadRequest, "unsupported_grant_type")
		return
	}

	access, err := s.signAccessToken(g)
	if err != nil {
		writeOAuthError(w, constvars.StatusInternalServerError, "server_error")
		return
	}
	refresh := uuid.NewString()
	s.access[access] = g
	s.refresh[refresh] = access

	writeJSON(w, constvars.StatusOK, map[string]interface{}{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    constvars.AuthSchemeBearer,
		"expires_in":    int(s.opts.TokenTTL.Seconds()),
		"patient":       g.patient,
		"user":          g.user,
		"resource":      g.resource,
		"domain":        s.opts.Domain,
	})
}

func (s *Server) signAccessToken(g grant) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   g.user,
		Issuer:    s.BaseURL(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tokenSigningKey)
}

// LiveTokens is the number of access tokens the server currently accepts.
func (s *Server) LiveTokens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.access)
}

func grantFrom(q url.Values) grant {
	return grant{
		clientID: q.Get(constvars.OAuthParamClientID),
		patient:  q.Get(constvars.LaunchParamPatient),
		user:     q.Get(constvars.LaunchParamUser),
		resource: q.Get(constvars.LaunchParamResource),
	}
}

func writeOAuthError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{constvars.OAuthParamError: code})
}
