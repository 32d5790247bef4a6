package utils

import (
	"koppeltaal-service/internal/pkg/constvars"
	"strings"

	"github.com/google/uuid"
)

func GenerateRequestID() string {
	return constvars.REQUEST_ID_PREFIX + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// GenerateMessageID returns a fresh messageId. Every logical send needs its
// own, the server has no other idempotency key.
func GenerateMessageID() string {
	return uuid.NewString()
}

func GenerateLogicalID() string {
	return uuid.NewString()
}

func GenerateSessionID() string {
	return uuid.NewString()
}
