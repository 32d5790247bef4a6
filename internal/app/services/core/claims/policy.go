package claims

import (
	"context"
	"fmt"
	"koppeltaal-service/internal/app/contracts"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/extensions"
	"koppeltaal-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

// StalePolicy decides what happens to a claim that stayed open too long.
type StalePolicy interface {
	Name() string
	Handle(ctx context.Context, record models.ClaimRecord) error
}

// NewStalePolicy returns the policy registered under name.
func NewStalePolicy(name string, exchange contracts.MessageExchangeClient, ledger contracts.ClaimLedger, ns extensions.Namespace, log *zap.Logger) (StalePolicy, error) {
	switch name {
	case constvars.StalePolicyReport, "":
		return &ReportPolicy{Log: log}, nil
	case constvars.StalePolicyFail:
		return NewFailPolicy(exchange, ledger, ns, log), nil
	}
	return nil, exceptions.ErrStaleClaimPolicy(fmt.Errorf("unknown stale policy %q", name), name)
}

// ReportPolicy only logs. The claim stays open for an operator.
type ReportPolicy struct {
	Log *zap.Logger
	now func() time.Time
}

func (p *ReportPolicy) Name() string { return constvars.StalePolicyReport }

func (p *ReportPolicy) Handle(ctx context.Context, record models.ClaimRecord) error {
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	p.Log.Warn("claims.reportPolicy stale claim",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingHeaderRefKey, record.HeaderRef),
		zap.String(constvars.LoggingMessageIDKey, record.MessageID),
		zap.String(constvars.LoggingEventKey, string(record.Event)),
		zap.Duration(constvars.LoggingClaimAgeKey, record.Age(now())),
	)
	return nil
}

// FailPolicy marks the stale header Failed on the server, provided it is
// still in the version the ledger saw claimed.
type FailPolicy struct {
	exchange  contracts.MessageExchangeClient
	ledger    contracts.ClaimLedger
	namespace extensions.Namespace
	Log       *zap.Logger
	now       func() time.Time
}

func NewFailPolicy(exchange contracts.MessageExchangeClient, ledger contracts.ClaimLedger, ns extensions.Namespace, log *zap.Logger) *FailPolicy {
	return &FailPolicy{exchange: exchange, ledger: ledger, namespace: ns, Log: log, now: time.Now}
}

func (p *FailPolicy) Name() string { return constvars.StalePolicyFail }

func (p *FailPolicy) Handle(ctx context.Context, record models.ClaimRecord) error {
	requestID := utils.GetRequestID(ctx)

	bundle, err := p.exchange.FetchBundle(ctx, &models.MessageHeader{ID: record.HeaderID, MessageID: record.MessageID})
	if err != nil {
		return exceptions.ErrStaleClaimPolicy(err, record.HeaderRef)
	}
	header, ok := models.MessageHeaderByMessageID(p.namespace, bundle, record.MessageID)
	if !ok {
		return exceptions.ErrStaleClaimPolicy(fmt.Errorf("message %s missing from fetched bundle", record.MessageID), record.HeaderRef)
	}

	switch {
	case header.ProcessingStatus.IsTerminal():
		return p.ledger.Complete(ctx, record.HeaderID, header.ProcessingStatus, "settled outside the consumer", p.now())
	case header.Version != record.Version:
		p.Log.Info("claims.failPolicy header moved on since the claim",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingHeaderRefKey, record.HeaderRef),
			zap.String(constvars.LoggingProcessingStatusKey, string(header.ProcessingStatus)),
		)
		return p.ledger.Complete(ctx, record.HeaderID, header.ProcessingStatus, "claimed again as version "+header.Version, p.now())
	case !header.ProcessingStatus.CanTransitionTo(models.ProcessingStatusFailed):
		return exceptions.ErrIllegalStatusTransition(string(header.ProcessingStatus), string(models.ProcessingStatusFailed))
	}

	reason := fmt.Sprintf("claim stale since %s", record.ClaimedAt.UTC().Format(time.RFC3339))
	failed, err := p.exchange.MarkFailed(ctx, header, reason)
	if err != nil {
		return exceptions.ErrStaleClaimPolicy(err, record.HeaderRef)
	}

	p.Log.Warn("claims.failPolicy marked stale claim failed",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingHeaderRefKey, failed.SelfLink),
		zap.String(constvars.LoggingMessageIDKey, record.MessageID),
	)
	return p.ledger.Complete(ctx, record.HeaderID, models.ProcessingStatusFailed, reason, p.now())
}
