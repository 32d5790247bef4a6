package consumer

import (
	"context"
	"koppeltaal-service/internal/app/contracts"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"koppeltaal-service/internal/pkg/utils"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultPollInterval  = 30 * time.Second
	defaultBatchSize     = 10
	defaultFetchAttempts = 3
)

type Config struct {
	PollInterval time.Duration
	// PollsPerSecond and Burst pace the claims made against the server.
	PollsPerSecond float64
	Burst          int
	// BatchSize caps the claims made in one tick.
	BatchSize int
	// FetchAttempts bounds the ticks a claimed message is re-fetched after a
	// retriable failure. Past it the claim is left to the watchdog.
	FetchAttempts int
	Filter        models.MessageFilter
}

type pendingFetch struct {
	header   *models.MessageHeader
	attempts int
}

// Worker claims new messages from the mailbox and hands them to the
// dispatcher. A header stays Claimed until the dispatcher accepted it; it
// then becomes Success, or Failed when dispatching was refused.
type Worker struct {
	log        *zap.Logger
	cfg        Config
	exchange   contracts.MessageExchangeClient
	ledger     contracts.ClaimLedger
	dispatcher contracts.Dispatcher
	limiter    *rate.Limiter
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once

	mu      sync.Mutex
	pending map[string]*pendingFetch
}

func NewWorker(log *zap.Logger, cfg Config, exchange contracts.MessageExchangeClient, ledger contracts.ClaimLedger, dispatcher contracts.Dispatcher) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	limit := rate.Inf
	if cfg.PollsPerSecond > 0 {
		limit = rate.Limit(cfg.PollsPerSecond)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.FetchAttempts <= 0 {
		cfg.FetchAttempts = defaultFetchAttempts
	}
	return &Worker{
		log:        log,
		cfg:        cfg,
		exchange:   exchange,
		ledger:     ledger,
		dispatcher: dispatcher,
		limiter:    rate.NewLimiter(limit, cfg.Burst),
		now:        time.Now,
		stop:       make(chan struct{}),
		pending:    make(map[string]*pendingFetch),
	}
}

// Start begins the ticker loop. It returns a stop function that waits for
// the running tick to finish.
func (w *Worker) Start(ctx context.Context) (stop func()) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	stopped := make(chan struct{})

	w.log.Info("consumer.worker started",
		zap.Duration(constvars.LoggingDurationKey, w.cfg.PollInterval),
	)

	go func() {
		defer close(stopped)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stop:
				return
			case <-ticker.C:
				w.RunOnce(utils.WithRequestID(ctx, ""))
			}
		}
	}()

	return func() {
		w.stopOnce.Do(func() { close(w.stop) })
		<-stopped
	}
}

// RunOnce first retries the claims whose fetch failed transiently, then
// claims and processes messages until the mailbox has nothing left for the
// filter or the batch is used up. It returns how many were claimed.
func (w *Worker) RunOnce(ctx context.Context) int {
	requestID := utils.GetRequestID(ctx)
	w.retryPending(ctx)

	claimed := 0
	for claimed < w.cfg.BatchSize {
		if err := w.limiter.Wait(ctx); err != nil {
			return claimed
		}

		header, err := w.exchange.ClaimNext(ctx, w.cfg.Filter)
		if err != nil {
			w.log.Warn("consumer.worker.RunOnce claim failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingErrorKindKey, string(exceptions.KindOf(err))),
				zap.Error(err),
			)
			return claimed
		}
		if header == nil {
			break
		}
		claimed++
		w.process(ctx, header)
	}

	if claimed > 0 {
		w.log.Info("consumer.worker.RunOnce finished",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int(constvars.LoggingHeaderCountKey, claimed),
		)
	}
	return claimed
}

func (w *Worker) process(ctx context.Context, header *models.MessageHeader) {
	fields := w.fieldsOf(ctx, header)

	record := models.ClaimRecord{
		HeaderID:  header.ID,
		HeaderRef: header.SelfLink,
		Version:   header.Version,
		MessageID: header.MessageID,
		Event:     header.Event,
		Patient:   header.PatientReference,
		ClaimedAt: w.now(),
	}
	if err := w.ledger.Record(ctx, record); err != nil {
		w.log.Warn("consumer.worker.process ledger record failed", append(fields, zap.Error(err))...)
	}
	w.deliver(ctx, header, 1, fields)
}

// Pending counts the claimed messages waiting for a fetch retry.
func (w *Worker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *Worker) retryPending(ctx context.Context) {
	w.mu.Lock()
	retries := make([]*pendingFetch, 0, len(w.pending))
	for id, p := range w.pending {
		retries = append(retries, p)
		delete(w.pending, id)
	}
	w.mu.Unlock()

	for _, p := range retries {
		if ctx.Err() != nil {
			w.park(p.header, p.attempts)
			continue
		}
		w.deliver(ctx, p.header, p.attempts+1, w.fieldsOf(ctx, p.header))
	}
}

func (w *Worker) park(header *models.MessageHeader, attempts int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[header.ID] = &pendingFetch{header: header, attempts: attempts}
}

func (w *Worker) fieldsOf(ctx context.Context, header *models.MessageHeader) []zap.Field {
	return []zap.Field{
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingMessageIDKey, header.MessageID),
		zap.String(constvars.LoggingHeaderRefKey, header.SelfLink),
		zap.String(constvars.LoggingEventKey, string(header.Event)),
	}
}

// deliver fetches, dispatches and acknowledges a claimed header. A
// retriable fetch failure keeps the header Claimed and its ledger entry
// open; only other failures mark it Failed.
func (w *Worker) deliver(ctx context.Context, header *models.MessageHeader, attempt int, fields []zap.Field) {
	bundle, err := w.exchange.FetchBundle(ctx, header)
	if err != nil {
		if exceptions.IsRetriable(err) {
			fields = append(fields,
				zap.Int("attempt", attempt),
				zap.String(constvars.LoggingErrorKindKey, string(exceptions.KindOf(err))),
				zap.Error(err),
			)
			if attempt < w.cfg.FetchAttempts {
				w.log.Warn("consumer.worker.process fetch failed, retrying next tick", fields...)
				w.park(header, attempt)
				return
			}
			w.log.Error("consumer.worker.process fetch attempts used up, claim left open", fields...)
			return
		}
		w.fail(ctx, header, nil, "fetch failed: "+err.Error(), fields)
		return
	}

	if err := w.dispatcher.Dispatch(ctx, header, bundle); err != nil {
		w.fail(ctx, header, bundle, "dispatch failed: "+err.Error(), fields)
		return
	}

	done, err := w.exchange.TransitionStatus(ctx, header, models.ProcessingStatusSuccess)
	if err != nil {
		// the claim stays open in the ledger for the watchdog
		w.log.Error("consumer.worker.process acknowledge failed", append(fields, zap.Error(err))...)
		return
	}
	w.complete(ctx, done, "", fields)
}

func (w *Worker) fail(ctx context.Context, header *models.MessageHeader, bundle *fhir_dto.Bundle, reason string, fields []zap.Field) {
	w.log.Warn("consumer.worker.process marking message failed", append(fields, zap.String("reason", reason))...)

	if bundle != nil {
		if err := w.dispatcher.DeadLetter(ctx, header, bundle, reason); err != nil {
			w.log.Error("consumer.worker.process dead letter failed", append(fields, zap.Error(err))...)
		}
	}

	failed, err := w.exchange.MarkFailed(ctx, header, reason)
	if err != nil {
		w.log.Error("consumer.worker.process mark failed failed", append(fields, zap.Error(err))...)
		return
	}
	w.complete(ctx, failed, reason, fields)
}

func (w *Worker) complete(ctx context.Context, header *models.MessageHeader, detail string, fields []zap.Field) {
	if err := w.ledger.Complete(ctx, header.ID, header.ProcessingStatus, detail, w.now()); err != nil {
		w.log.Warn("consumer.worker.process ledger complete failed", append(fields, zap.Error(err))...)
	}
}
