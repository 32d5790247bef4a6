package middlewares

import (
	"crypto/subtle"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/utils"
	"net/http"

	"go.uber.org/zap"
)

const (
	HeaderAPIKey = "x-api-key"
)

// RequireSessionAPIKey guards the session endpoints. When no key is
// configured every request is refused.
func (m *Middlewares) RequireSessionAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := m.InternalConfig.Launch.SessionAPIKey
		apiKey := r.Header.Get(HeaderAPIKey)

		if expected == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
			m.Log.Warn("API key authentication failed",
				zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(r.Context())),
				zap.String(constvars.LoggingRemoteAddrKey, r.RemoteAddr),
				zap.String(constvars.LoggingEndpointKey, r.URL.Path),
				zap.Bool("configured", expected != ""),
			)
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrInvalidAPIKey(nil))
			return
		}

		next.ServeHTTP(w, r)
	})
}
