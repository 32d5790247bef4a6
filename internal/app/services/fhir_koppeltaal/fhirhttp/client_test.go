package fhirhttp

import (
	"context"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/exceptions"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStatusError(t *testing.T) {
	outcome := []byte(`{"resourceType":"OperationOutcome","issue":[{"severity":"error","diagnostics":"stale version"}]}`)

	tests := []struct {
		status int
		kind   exceptions.Kind
	}{
		{401, exceptions.KindAuthenticationFailure},
		{403, exceptions.KindAuthenticationFailure},
		{404, exceptions.KindNotFound},
		{409, exceptions.KindVersionConflict},
		{412, exceptions.KindVersionConflict},
		{400, exceptions.KindProtocolViolation},
		{422, exceptions.KindProtocolViolation},
		{500, exceptions.KindTransportFailure},
		{503, exceptions.KindTransportFailure},
		{429, exceptions.KindTransportFailure},
	}
	for _, tt := range tests {
		err := StatusError(tt.status, outcome, "MessageHeader/1", "app")
		assert.Equal(t, tt.kind, exceptions.KindOf(err), "status %d", tt.status)
	}

	t.Run("Diagnostics Become The Cause", func(t *testing.T) {
		err := StatusError(409, outcome, "MessageHeader/1", "app")
		var customErr *exceptions.CustomError
		require.ErrorAs(t, err, &customErr)
		require.NotNil(t, customErr.Unwrap())
		assert.Equal(t, "stale version", customErr.Unwrap().Error())
	})
}

func TestClient_Do(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get(constvars.HeaderAuthorization)
		gotRequestID = r.Header.Get(constvars.HeaderXRequestID)
		switch r.URL.Path {
		case "/redirect":
			http.Redirect(w, r, "/elsewhere?launch=abc", http.StatusFound)
		case "/slow":
			time.Sleep(200 * time.Millisecond)
		default:
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer server.Close()

	client := New(nil, models.BearerCredential("token-1"), zap.NewNop())
	ctx := context.WithValue(context.Background(), constvars.CONTEXT_REQUEST_ID_KEY, "req-1")

	t.Run("Applies Credential And Request Id", func(t *testing.T) {
		var out map[string]bool
		_, err := client.DoJSON(ctx, Request{Op: "test.Do", Method: constvars.MethodGet, URL: server.URL + "/ok"}, &out)
		require.NoError(t, err)
		assert.True(t, out["ok"])
		assert.Equal(t, "Bearer token-1", gotAuth)
		assert.Equal(t, "req-1", gotRequestID)
	})

	t.Run("Does Not Follow Redirects When Asked", func(t *testing.T) {
		resp, err := client.Do(ctx, Request{
			Op: "test.Do", Method: constvars.MethodGet, URL: server.URL + "/redirect",
			NoRedirect: true, Accept: []int{constvars.StatusFound},
		})
		require.NoError(t, err)
		assert.Contains(t, resp.Header.Get(constvars.HeaderLocation), "launch=abc")
	})

	t.Run("Deadline Is A Transport Failure", func(t *testing.T) {
		short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err := client.Do(short, Request{Op: "test.Do", Method: constvars.MethodGet, URL: server.URL + "/slow"})
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindTransportFailure))
	})

	t.Run("Credential Override", func(t *testing.T) {
		basic := models.BasicCredential("user", "pass")
		_, err := client.Do(ctx, Request{Op: "test.Do", Method: constvars.MethodGet, URL: server.URL + "/ok", Credential: &basic})
		require.NoError(t, err)
		assert.Contains(t, gotAuth, "Basic ")
	})
}
