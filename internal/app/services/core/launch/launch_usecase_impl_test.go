package launch

import (
	"context"
	"koppeltaal-service/internal/app/contracts"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/app/services/fhir_koppeltaal/smart_auth"
	"koppeltaal-service/internal/app/services/shared/tokenstore"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/koppeltaaltest"
	"koppeltaal-service/internal/pkg/utils"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const redirectURI = "https://game.example/callback"

type fixture struct {
	server *koppeltaaltest.Server
	auth   *smart_auth.SmartAuthClient
	tokens contracts.TokenStore
	uc     contracts.LaunchUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	server := koppeltaaltest.NewServer(koppeltaaltest.Options{})
	t.Cleanup(server.Close)

	auth := smart_auth.NewSmartAuthClient(server.URL, nil,
		models.BasicCredential(koppeltaaltest.DefaultUsername, koppeltaaltest.DefaultPassword), zap.NewNop())
	tokens, err := tokenstore.NewRedisTokenStore(koppeltaaltest.NewMemoryRedis(), "token-store-key", zap.NewNop())
	require.NoError(t, err)

	uc, err := NewLaunchUsecase(zap.NewNop(), Config{
		Issuer:       server.BaseURL(),
		ClientID:     koppeltaaltest.DefaultClientID,
		ClientSecret: koppeltaaltest.DefaultClientSecret,
		RedirectURI:  redirectURI,
		StateSecret:  "state-secret",
	}, auth, tokens)
	require.NoError(t, err)
	return &fixture{server: server, auth: auth, tokens: tokens, uc: uc}
}

// launch asks the server for a launch and returns the iss and launch the
// application would receive.
func (f *fixture) launch(t *testing.T) (string, string) {
	t.Helper()
	patient := f.server.BaseURL() + "/Patient/p1/_history/1"
	user := f.server.BaseURL() + "/Practitioner/u1/_history/1"
	location, err := f.auth.Launch(context.Background(), "activity-1", patient, user, nil)
	require.NoError(t, err)
	u, err := url.Parse(location)
	require.NoError(t, err)
	return u.Query().Get("iss"), u.Query().Get("launch")
}

func follow(t *testing.T, authorizeURL string) url.Values {
	t.Helper()
	noFollow := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := noFollow.Get(authorizeURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	return location.Query()
}

func TestLaunchUsecase_Begin(t *testing.T) {
	f := newFixture(t)
	ctx := utils.WithRequestID(context.Background(), "")

	t.Run("Redirects To Authorize Endpoint", func(t *testing.T) {
		iss, launch := f.launch(t)
		raw, err := f.uc.Begin(ctx, iss, launch)
		require.NoError(t, err)

		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, koppeltaaltest.DefaultClientID, u.Query().Get("client_id"))
		assert.Equal(t, redirectURI, u.Query().Get("redirect_uri"))
		assert.Equal(t, launch, u.Query().Get("launch"))

		claims, err := utils.ParseLaunchStateJWT(u.Query().Get("state"), "state-secret")
		require.NoError(t, err)
		assert.Equal(t, launch, claims.Launch)
		assert.NotEmpty(t, claims.SessionID)
	})

	t.Run("Trailing Slash On Issuer", func(t *testing.T) {
		iss, launch := f.launch(t)
		_, err := f.uc.Begin(ctx, iss+"/", launch)
		assert.NoError(t, err)
	})

	t.Run("Foreign Issuer", func(t *testing.T) {
		_, launch := f.launch(t)
		_, err := f.uc.Begin(ctx, "https://evil.example/FHIR/Koppeltaal", launch)
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindAuthenticationFailure))
	})

	t.Run("Missing Launch", func(t *testing.T) {
		_, err := f.uc.Begin(ctx, f.server.BaseURL(), "")
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindProtocolViolation))
	})
}

func TestLaunchUsecase_CompleteRefreshEnd(t *testing.T) {
	f := newFixture(t)
	ctx := utils.WithRequestID(context.Background(), "")

	iss, launch := f.launch(t)
	authorizeURL, err := f.uc.Begin(ctx, iss, launch)
	require.NoError(t, err)
	callback := follow(t, authorizeURL)

	session, err := f.uc.Complete(ctx, callback.Get("code"), callback.Get("state"))
	require.NoError(t, err)
	require.NotNil(t, session.Token)

	t.Run("Session Carries Launch Context", func(t *testing.T) {
		assert.Equal(t, "activity-1", session.Token.Resource)
		assert.Equal(t, f.server.BaseURL()+"/Patient/p1/_history/1", session.Token.Patient)
		assert.WithinDuration(t, time.Now().Add(time.Hour), session.Token.ExpiresAt, 5*time.Second)
	})

	t.Run("Session Is Stored", func(t *testing.T) {
		stored, err := f.uc.Get(ctx, session.SessionID)
		require.NoError(t, err)
		assert.Equal(t, session.Token.AccessToken, stored.Token.AccessToken)
	})

	t.Run("Code Cannot Be Replayed", func(t *testing.T) {
		_, err := f.uc.Complete(ctx, callback.Get("code"), callback.Get("state"))
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindAuthenticationFailure))
	})

	t.Run("Tampered State", func(t *testing.T) {
		_, err := f.uc.Complete(ctx, "any-code", callback.Get("state")+"x")
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindAuthenticationFailure))
	})

	t.Run("Refresh Rotates And Keeps Context", func(t *testing.T) {
		refreshed, err := f.uc.Refresh(ctx, session.SessionID)
		require.NoError(t, err)
		assert.NotEqual(t, session.Token.AccessToken, refreshed.Token.AccessToken)
		assert.Equal(t, session.Token.Resource, refreshed.Token.Resource)

		stored, err := f.uc.Get(ctx, session.SessionID)
		require.NoError(t, err)
		assert.Equal(t, refreshed.Token.RefreshToken, stored.Token.RefreshToken)
	})

	t.Run("End Forgets The Session", func(t *testing.T) {
		require.NoError(t, f.uc.End(ctx, session.SessionID))
		_, err := f.uc.Get(ctx, session.SessionID)
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindNotFound))

		_, err = f.uc.Refresh(ctx, session.SessionID)
		assert.True(t, exceptions.IsKind(err, exceptions.KindNotFound))
	})
}

func TestLaunchUsecase_Healthy(t *testing.T) {
	f := newFixture(t)
	assert.True(t, f.uc.Healthy(context.Background()))
}

func TestCarryContext(t *testing.T) {
	fresh := &models.TokenDetails{AccessToken: "a2", Patient: "p2"}
	carryContext(fresh, &models.TokenDetails{Patient: "p1", User: "u1", Resource: "r1", Domain: "d1"})
	assert.Equal(t, "p2", fresh.Patient)
	assert.Equal(t, "u1", fresh.User)
	assert.Equal(t, "r1", fresh.Resource)
	assert.Equal(t, "d1", fresh.Domain)
}

func TestNewLaunchUsecase_RequiresStateSecret(t *testing.T) {
	_, err := NewLaunchUsecase(zap.NewNop(), Config{}, nil, nil)
	assert.Error(t, err)
}
