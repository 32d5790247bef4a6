package contracts

import (
	"context"
	"koppeltaal-service/internal/app/models"
	"time"
)

type ClaimLedger interface {
	Record(ctx context.Context, record models.ClaimRecord) error
	Complete(ctx context.Context, headerID string, outcome models.ProcessingStatus, detail string, at time.Time) error
	Get(ctx context.Context, headerID string) (*models.ClaimRecord, error)
	ListOpenOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.ClaimRecord, error)
}
