package smart_auth

import (
	"context"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/koppeltaaltest"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const redirectURI = "https://game.example/oauth/callback"

func newTestClient(server *koppeltaaltest.Server) *SmartAuthClient {
	opts := server.Options()
	return NewSmartAuthClient(server.URL, nil, models.BasicCredential(opts.Username, opts.Password), zap.NewNop())
}

func bearerClient(server *koppeltaaltest.Server, token string) *SmartAuthClient {
	return NewSmartAuthClient(server.URL, nil, models.BearerCredential(token), zap.NewNop())
}

func refs(server *koppeltaaltest.Server) (string, string) {
	return server.BaseURL() + "/Patient/p1/_history/1", server.BaseURL() + "/Practitioner/u1/_history/1"
}

// authorize follows the launch through the authorize endpoint the way a
// browser would and returns the code handed to the redirect uri.
func authorize(t *testing.T, authorizeURL string) url.Values {
	t.Helper()
	noFollow := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := noFollow.Get(authorizeURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	return location.Query()
}

func TestSmartAuthClient_TestAuthentication(t *testing.T) {
	server := koppeltaaltest.NewServer(koppeltaaltest.Options{})
	defer server.Close()

	t.Run("Valid Credential", func(t *testing.T) {
		assert.True(t, newTestClient(server).TestAuthentication(context.Background()))
	})

	t.Run("Wrong Password", func(t *testing.T) {
		c := NewSmartAuthClient(server.URL, nil, models.BasicCredential(koppeltaaltest.DefaultUsername, "nope"), zap.NewNop())
		assert.False(t, c.TestAuthentication(context.Background()))
	})

	t.Run("Unreachable Server", func(t *testing.T) {
		closed := koppeltaaltest.NewServer(koppeltaaltest.Options{})
		closed.Close()
		assert.False(t, newTestClient(closed).TestAuthentication(context.Background()))
	})
}

func TestSmartAuthClient_Launch(t *testing.T) {
	server := koppeltaaltest.NewServer(koppeltaaltest.Options{})
	defer server.Close()
	patient, user := refs(server)

	t.Run("Location Carries Issuer And Launch", func(t *testing.T) {
		location, err := newTestClient(server).Launch(context.Background(), "activity-1", patient, user, nil)
		require.NoError(t, err)

		u, err := url.Parse(location)
		require.NoError(t, err)
		assert.Equal(t, server.BaseURL(), u.Query().Get("iss"))
		assert.NotEmpty(t, u.Query().Get("launch"))
	})

	t.Run("Requires Application Credential", func(t *testing.T) {
		c := NewSmartAuthClient(server.URL, nil, models.BasicCredential("someone", "else"), zap.NewNop())
		_, err := c.Launch(context.Background(), "activity-1", patient, user, nil)
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindAuthenticationFailure))
	})

	t.Run("Location Without Launch Is Rejected", func(t *testing.T) {
		broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "https://game.example/launch?iss=x", http.StatusFound)
		}))
		defer broken.Close()

		c := NewSmartAuthClient(broken.URL, nil, models.BasicCredential("a", "b"), zap.NewNop())
		_, err := c.Launch(context.Background(), "activity-1", patient, user, nil)
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindProtocolViolation))
	})
}

func TestSmartAuthClient_MobileLaunch(t *testing.T) {
	server := koppeltaaltest.NewServer(koppeltaaltest.Options{})
	defer server.Close()
	patient, user := refs(server)

	code, err := newTestClient(server).MobileLaunch(context.Background(), "activity-1", patient, user, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, code.ActivationCode)
	assert.Greater(t, code.ExpiresIn, 0)
}

func TestSmartAuthClient_Metadata(t *testing.T) {
	server := koppeltaaltest.NewServer(koppeltaaltest.Options{})
	defer server.Close()
	c := newTestClient(server)

	first, err := c.Metadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, server.URL+constvars.KoppeltaalTokenPath, first.TokenEndpoint)

	server.FailNext(http.StatusServiceUnavailable)
	second, err := c.Metadata(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestSmartAuthClient_CreateOAuthAuthorizeURL(t *testing.T) {
	c := NewSmartAuthClient("https://koppeltaal.example", nil, models.Credential{}, zap.NewNop())
	md := &models.ServerMetadata{AuthorizeEndpoint: "https://koppeltaal.example/OAuth2/Koppeltaal/Authorize"}

	t.Run("Exactly The Four Parameters", func(t *testing.T) {
		raw, err := c.CreateOAuthAuthorizeURL("game", redirectURI, "L1", "abc", md)
		require.NoError(t, err)

		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "/OAuth2/Koppeltaal/Authorize", u.Path)
		assert.Equal(t, url.Values{
			"client_id":    {"game"},
			"redirect_uri": {redirectURI},
			"launch":       {"L1"},
			"state":        {"abc"},
		}, u.Query())
	})

	t.Run("Missing Endpoint", func(t *testing.T) {
		_, err := c.CreateOAuthAuthorizeURL("game", redirectURI, "L1", "abc", &models.ServerMetadata{})
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindProtocolViolation))
	})
}

func TestSmartAuthClient_AuthorizationCodeFlow(t *testing.T) {
	server := koppeltaaltest.NewServer(koppeltaaltest.Options{})
	defer server.Close()
	patient, user := refs(server)
	ctx := context.Background()
	c := newTestClient(server)

	location, err := c.Launch(ctx, "activity-1", patient, user, nil)
	require.NoError(t, err)
	launchURL, err := url.Parse(location)
	require.NoError(t, err)

	md, err := c.Metadata(ctx)
	require.NoError(t, err)
	authorizeURL, err := c.CreateOAuthAuthorizeURL(koppeltaaltest.DefaultClientID, redirectURI, launchURL.Query().Get("launch"), "abc", md)
	require.NoError(t, err)

	params := authorize(t, authorizeURL)
	assert.Equal(t, "abc", params.Get("state"))
	require.NotEmpty(t, params.Get("code"))

	before := time.Now()
	token, err := c.ExchangeAuthorizationCode(ctx, params.Get("code"), redirectURI, md)
	require.NoError(t, err)

	t.Run("Token Carries Launch Context", func(t *testing.T) {
		assert.NotEmpty(t, token.AccessToken)
		assert.NotEmpty(t, token.RefreshToken)
		assert.Equal(t, patient, token.Patient)
		assert.Equal(t, user, token.User)
		assert.Equal(t, "activity-1", token.Resource)
		assert.Equal(t, koppeltaaltest.DefaultDomain, token.Domain)
	})

	t.Run("Expiry Is Derived", func(t *testing.T) {
		assert.False(t, token.Expired(time.Now()))
		assert.WithinDuration(t, before.Add(time.Hour), token.ExpiresAt, 5*time.Second)
	})

	t.Run("Token Authenticates", func(t *testing.T) {
		assert.True(t, bearerClient(server, token.AccessToken).TestAuthentication(ctx))
	})

	t.Run("Code Is Single Use", func(t *testing.T) {
		_, err := c.ExchangeAuthorizationCode(ctx, params.Get("code"), redirectURI, md)
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindAuthenticationFailure))
	})

	t.Run("Launch Is Single Use", func(t *testing.T) {
		again := authorize(t, authorizeURL)
		assert.Equal(t, "invalid_request", again.Get("error"))
		assert.Empty(t, again.Get("code"))
	})
}

func TestSmartAuthClient_ActivationCodeAndRefresh(t *testing.T) {
	server := koppeltaaltest.NewServer(koppeltaaltest.Options{})
	defer server.Close()
	patient, user := refs(server)
	ctx := context.Background()
	c := newTestClient(server)

	mobile, err := c.MobileLaunch(ctx, "activity-1", patient, user, nil)
	require.NoError(t, err)

	token, err := c.ExchangeActivationCode(ctx, koppeltaaltest.DefaultClientID, redirectURI, mobile.ActivationCode)
	require.NoError(t, err)
	require.True(t, bearerClient(server, token.AccessToken).TestAuthentication(ctx))

	t.Run("Wrong Client Secret", func(t *testing.T) {
		_, err := c.Refresh(ctx, token, koppeltaaltest.DefaultClientID, "wrong")
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindAuthenticationFailure))
	})

	fresh, err := c.Refresh(ctx, token, koppeltaaltest.DefaultClientID, koppeltaaltest.DefaultClientSecret)
	require.NoError(t, err)

	t.Run("Both Tokens Rotate", func(t *testing.T) {
		assert.NotEqual(t, token.AccessToken, fresh.AccessToken)
		assert.NotEqual(t, token.RefreshToken, fresh.RefreshToken)
	})

	t.Run("Old Token Is Invalidated", func(t *testing.T) {
		assert.False(t, bearerClient(server, token.AccessToken).TestAuthentication(ctx))
		assert.True(t, bearerClient(server, fresh.AccessToken).TestAuthentication(ctx))
		assert.Equal(t, 1, server.LiveTokens())
	})

	t.Run("Old Refresh Token Is Spent", func(t *testing.T) {
		_, err := c.Refresh(ctx, token, koppeltaaltest.DefaultClientID, koppeltaaltest.DefaultClientSecret)
		require.Error(t, err)
	})
}

func TestSmartAuthClient_RefreshWithoutRotation(t *testing.T) {
	mux := http.NewServeMux()
	var base string
	mux.HandleFunc(constvars.KoppeltaalFHIRPath+constvars.KoppeltaalMetadataPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"resourceType":"Conformance","rest":[{"security":{"extension":[` +
			`{"url":"` + constvars.SystemSMARTOAuthURIs + `#authorize","valueUri":"` + base + `/authorize"},` +
			`{"url":"` + constvars.SystemSMARTOAuthURIs + `#token","valueUri":"` + base + `/token"}]}}]}`))
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"same","refresh_token":"r2","token_type":"Bearer","expires_in":60}`))
	})
	stale := httptest.NewServer(mux)
	defer stale.Close()
	base = stale.URL

	c := NewSmartAuthClient(stale.URL, nil, models.Credential{}, zap.NewNop())
	_, err := c.Refresh(context.Background(), &models.TokenDetails{AccessToken: "same", RefreshToken: "r1"}, "game", "secret")
	require.Error(t, err)
	assert.True(t, exceptions.IsKind(err, exceptions.KindProtocolViolation))
}
