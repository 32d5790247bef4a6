package contracts

import (
	"context"
	"koppeltaal-service/internal/app/models"
	"time"
)

type TokenStore interface {
	Save(ctx context.Context, sessionID string, token *models.TokenDetails, ttl time.Duration) error
	Load(ctx context.Context, sessionID string) (*models.TokenDetails, error)
	Delete(ctx context.Context, sessionID string) error
}
