package middlewares

import (
	"koppeltaal-service/internal/app/config"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/dto/responses"
	"koppeltaal-service/internal/pkg/utils"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testAPIKey = "test-session-api-key-12345"

func newTestMiddlewares(apiKey string) *Middlewares {
	return NewMiddlewares(zap.NewNop(), &config.InternalConfig{
		App:    config.App{MaxRequests: 2},
		Launch: config.AppLaunch{SessionAPIKey: apiKey},
	})
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("success"))
}

func TestRequireSessionAPIKey(t *testing.T) {
	handler := newTestMiddlewares(testAPIKey).RequireSessionAPIKey(http.HandlerFunc(okHandler))

	t.Run("Valid API Key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/s1/refresh", nil)
		req.Header.Set(HeaderAPIKey, testAPIKey)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "success", rr.Body.String())
	})

	for name, key := range map[string]string{
		"Missing API Key":       "",
		"Invalid API Key":       "invalid-api-key",
		"Case Sensitivity":      "TEST-SESSION-API-KEY-12345",
		"Whitespace In API Key": " " + testAPIKey + " ",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/s1/refresh", nil)
			if key != "" {
				req.Header.Set(HeaderAPIKey, key)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}

	t.Run("Unconfigured Key Locks The Endpoint", func(t *testing.T) {
		locked := newTestMiddlewares("").RequireSessionAPIKey(http.HandlerFunc(okHandler))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/s1/refresh", nil)
		req.Header.Set(HeaderAPIKey, "")
		rr := httptest.NewRecorder()
		locked.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	m := newTestMiddlewares(testAPIKey)

	var seen string
	var fromClient bool
	handler := m.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = utils.GetRequestID(r.Context())
		fromClient, _ = r.Context().Value(constvars.CONTEXT_IS_CLIENT_REQUEST_ID_KEY).(bool)
	}))

	t.Run("Client Request ID Is Kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(constvars.HeaderXRequestID, "client-1")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, "client-1", seen)
		assert.True(t, fromClient)
		assert.Equal(t, "client-1", rr.Header().Get(constvars.HeaderXRequestID))
	})

	t.Run("Request ID Is Generated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Contains(t, seen, constvars.REQUEST_ID_PREFIX)
		assert.False(t, fromClient)
		assert.Equal(t, seen, rr.Header().Get(constvars.HeaderXRequestID))
	})
}

func TestErrorHandler(t *testing.T) {
	m := newTestMiddlewares(testAPIKey)
	handler := m.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/launch", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	var body responses.ErrorDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, constvars.ErrClientSomethingWrongWithApplication, body.Message)
}

func TestLogging(t *testing.T) {
	m := newTestMiddlewares(testAPIKey)

	t.Run("Status Passes Through", func(t *testing.T) {
		handler := m.Logging(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusTeapot, rr.Code)
	})

	t.Run("Server Errors Are Logged As Warnings", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		handler := m.Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream"))
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/launch", nil))

		entries := logs.FilterMessage("API request completed").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		fields := entries[0].ContextMap()
		assert.EqualValues(t, http.StatusBadGateway, fields[constvars.LoggingStatusCodeKey])
		assert.EqualValues(t, len("upstream"), fields["bytes"])
	})
}

func TestRateLimit(t *testing.T) {
	handler := newTestMiddlewares(testAPIKey).RateLimit()(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/launch", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
