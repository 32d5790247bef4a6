package utils

import (
	"errors"
	"fmt"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/dto/responses"
	"koppeltaal-service/internal/pkg/exceptions"
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func BuildSuccessResponse(w http.ResponseWriter, code int, message string, data interface{}) {
	response := responses.ResponseDTO{
		Success: true,
		Message: message,
		Data:    data,
	}
	w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response)
}

// BuildErrorResponse writes err as an ErrorDTO. Client errors are logged at
// warn, everything else at error. The dev message is only exposed outside
// production.
func BuildErrorResponse(log *zap.Logger, w http.ResponseWriter, err error) {
	response := responses.ErrorDTO{
		StatusCode: constvars.StatusInternalServerError,
		Message:    constvars.ErrClientSomethingWrongWithApplication,
		Kind:       string(exceptions.KindInternal),
	}
	fields := []zap.Field{zap.Error(err)}

	var customErr *exceptions.CustomError
	if errors.As(err, &customErr) {
		response.StatusCode = customErr.StatusCode
		response.Message = customErr.ClientMessage
		response.Kind = string(customErr.Kind)
		fields = append(fields,
			zap.String("dev_message", customErr.DevMessage),
			zap.String("location", fmt.Sprintf("%s:%d %s", customErr.Location.File, customErr.Location.Line, customErr.Location.FunctionName)),
		)
		if GetEnvString("APP_ENV", constvars.AppEnvDevelopment) != constvars.AppEnvProduction {
			response.DevMessage = customErr.DevMessage
		}
	}
	fields = append(fields,
		zap.Int("status", response.StatusCode),
		zap.String(constvars.LoggingErrorKindKey, response.Kind),
	)

	level := zapcore.ErrorLevel
	if response.StatusCode < constvars.StatusInternalServerError {
		level = zapcore.WarnLevel
	}
	log.Log(level, "utils.BuildErrorResponse request failed", fields...)

	w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	w.WriteHeader(response.StatusCode)
	json.NewEncoder(w).Encode(response)
}
