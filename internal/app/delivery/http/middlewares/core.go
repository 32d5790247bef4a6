package middlewares

import (
	"context"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/utils"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// maxClientRequestIDLength bounds ids taken over from the X-Request-ID header.
const maxClientRequestIDLength = 128

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	written    int
}

func (rec *responseRecorder) WriteHeader(code int) {
	rec.statusCode = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *responseRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.written += n
	return n, err
}

// Logging writes one entry when a request arrives and one when it is done.
// Server errors are logged at warn level.
func (m *Middlewares) Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := utils.GetRequestID(r.Context())
			isClientRequestID, _ := r.Context().Value(constvars.CONTEXT_IS_CLIENT_REQUEST_ID_KEY).(bool)

			logger.Debug("API request started",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Bool("is_client_request_id", isClientRequestID),
				zap.String(constvars.LoggingMethodKey, r.Method),
				zap.String(constvars.LoggingEndpointKey, r.URL.Path),
			)

			rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			level := zapcore.InfoLevel
			if rec.statusCode >= constvars.StatusInternalServerError {
				level = zapcore.WarnLevel
			}
			logger.Log(level, "API request completed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingMethodKey, r.Method),
				zap.String(constvars.LoggingEndpointKey, r.URL.Path),
				zap.String(constvars.LoggingRemoteAddrKey, r.RemoteAddr),
				zap.String(constvars.LoggingUserAgentKey, r.UserAgent()),
				zap.Int(constvars.LoggingStatusCodeKey, rec.statusCode),
				zap.Int("bytes", rec.written),
				zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
				zap.Bool(constvars.LoggingSuccessKey, rec.statusCode < constvars.StatusBadRequest),
			)
		})
	}
}

// RequestIDMiddleware takes over the caller's X-Request-ID or generates one,
// and echoes it on the response.
func (m *Middlewares) RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(constvars.HeaderXRequestID))
		isClientRequestID := requestID != "" && len(requestID) <= maxClientRequestIDLength
		if !isClientRequestID {
			requestID = ""
		}

		ctx := utils.WithRequestID(r.Context(), requestID)
		ctx = context.WithValue(ctx, constvars.CONTEXT_IS_CLIENT_REQUEST_ID_KEY, isClientRequestID)
		w.Header().Set(constvars.HeaderXRequestID, utils.GetRequestID(ctx))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
