package ledger

import (
	"context"
	"koppeltaal-service/internal/app/contracts"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

const (
	fieldHeaderRef   = "headerRef"
	fieldVersion     = "version"
	fieldMessageID   = "messageId"
	fieldEvent       = "event"
	fieldPatient     = "patient"
	fieldClaimedAt   = "claimedAt"
	fieldCompletedAt = "completedAt"
	fieldOutcome     = "outcome"
	fieldDetail      = "detail"
)

// RedisClaimLedger keeps each claim in a hash and the open ones in a sorted
// set scored by claim time in milliseconds.
type RedisClaimLedger struct {
	redisRepo contracts.RedisRepository
	Log       *zap.Logger
}

var _ contracts.ClaimLedger = (*RedisClaimLedger)(nil)

func NewRedisClaimLedger(repo contracts.RedisRepository, logger *zap.Logger) *RedisClaimLedger {
	return &RedisClaimLedger{redisRepo: repo, Log: logger}
}

func claimKey(headerID string) string {
	return constvars.RedisKeyClaimPrefix + headerID
}

func (l *RedisClaimLedger) Record(ctx context.Context, record models.ClaimRecord) error {
	requestID := utils.GetRequestID(ctx)
	fields := map[string]interface{}{
		fieldHeaderRef: record.HeaderRef,
		fieldVersion:   record.Version,
		fieldMessageID: record.MessageID,
		fieldEvent:     string(record.Event),
		fieldPatient:   record.Patient,
		fieldClaimedAt: record.ClaimedAt.UTC().Format(time.RFC3339Nano),
		// a re-claimed header starts over
		fieldCompletedAt: "",
		fieldOutcome:     "",
		fieldDetail:      "",
	}
	if err := l.redisRepo.HashSet(ctx, claimKey(record.HeaderID), fields); err != nil {
		l.Log.Error("redisClaimLedger.Record error writing claim",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingHeaderRefKey, record.HeaderRef),
			zap.Error(err),
		)
		return err
	}
	if err := l.redisRepo.SortedSetAdd(ctx, constvars.RedisKeyClaimsOpen, float64(record.ClaimedAt.UnixMilli()), record.HeaderID); err != nil {
		l.Log.Error("redisClaimLedger.Record error indexing claim",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingHeaderRefKey, record.HeaderRef),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (l *RedisClaimLedger) Complete(ctx context.Context, headerID string, outcome models.ProcessingStatus, detail string, at time.Time) error {
	requestID := utils.GetRequestID(ctx)
	fields := map[string]interface{}{
		fieldCompletedAt: at.UTC().Format(time.RFC3339Nano),
		fieldOutcome:     string(outcome),
		fieldDetail:      detail,
	}
	if err := l.redisRepo.HashSet(ctx, claimKey(headerID), fields); err != nil {
		l.Log.Error("redisClaimLedger.Complete error writing outcome",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return err
	}
	return l.redisRepo.SortedSetRemove(ctx, constvars.RedisKeyClaimsOpen, headerID)
}

// Get returns nil when the header was never recorded.
func (l *RedisClaimLedger) Get(ctx context.Context, headerID string) (*models.ClaimRecord, error) {
	fields, err := l.redisRepo.HashGetAll(ctx, claimKey(headerID))
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return recordFromFields(headerID, fields), nil
}

func (l *RedisClaimLedger) ListOpenOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.ClaimRecord, error) {
	ids, err := l.redisRepo.SortedSetRangeByScore(ctx, constvars.RedisKeyClaimsOpen, float64(cutoff.UnixMilli()), limit)
	if err != nil {
		l.Log.Error("redisClaimLedger.ListOpenOlderThan error reading index",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.Error(err),
		)
		return nil, err
	}

	records := make([]models.ClaimRecord, 0, len(ids))
	for _, id := range ids {
		record, err := l.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if record == nil || !record.Open() {
			continue
		}
		records = append(records, *record)
	}
	return records, nil
}

func recordFromFields(headerID string, fields map[string]string) *models.ClaimRecord {
	record := &models.ClaimRecord{
		HeaderID:  headerID,
		HeaderRef: fields[fieldHeaderRef],
		Version:   fields[fieldVersion],
		MessageID: fields[fieldMessageID],
		Event:     models.Event(fields[fieldEvent]),
		Patient:   fields[fieldPatient],
		Outcome:   models.ProcessingStatus(fields[fieldOutcome]),
		Detail:    fields[fieldDetail],
	}
	record.ClaimedAt, _ = time.Parse(time.RFC3339Nano, fields[fieldClaimedAt])
	if raw := fields[fieldCompletedAt]; raw != "" {
		if at, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			record.CompletedAt = &at
		}
	}
	return record
}
