package claims

import (
	"context"
	"koppeltaal-service/internal/app/contracts"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/utils"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	defaultCronSpec  = "@every 5m"
	defaultBatchSize = 100
	leaderLockTTL    = 2 * time.Minute
)

type Config struct {
	CronSpec string
	// StaleAfter is the claim age after which the policy runs. Zero
	// disables the watchdog.
	StaleAfter time.Duration
	BatchSize  int
}

// Watchdog periodically looks for claims the consumer never completed.
type Watchdog struct {
	log    *zap.Logger
	cfg    Config
	ledger contracts.ClaimLedger
	locker contracts.LockerService
	policy StalePolicy
	now    func() time.Time
	cron   *cron.Cron
	runCtx context.Context
	cancel context.CancelFunc
}

func NewWatchdog(log *zap.Logger, cfg Config, ledger contracts.ClaimLedger, locker contracts.LockerService, policy StalePolicy) *Watchdog {
	if cfg.CronSpec == "" {
		cfg.CronSpec = defaultCronSpec
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return &Watchdog{log: log, cfg: cfg, ledger: ledger, locker: locker, policy: policy, now: time.Now}
}

func (w *Watchdog) Enabled() bool {
	return w.cfg.StaleAfter > 0
}

// Start schedules the watchdog. It does nothing when disabled.
func (w *Watchdog) Start(ctx context.Context) {
	if !w.Enabled() {
		w.log.Info("claims.watchdog disabled")
		return
	}
	w.runCtx, w.cancel = context.WithCancel(ctx)
	c := cron.New()
	_, err := c.AddFunc(w.cfg.CronSpec, func() { w.RunOnce(utils.WithRequestID(w.runCtx, "")) })
	if err != nil {
		w.log.Warn("claims.watchdog invalid cron spec; falling back to default",
			zap.String(constvars.LoggingCronSpecKey, w.cfg.CronSpec),
			zap.Error(err),
		)
		c = cron.New()
		_, _ = c.AddFunc(defaultCronSpec, func() { w.RunOnce(utils.WithRequestID(w.runCtx, "")) })
	}
	c.Start()
	w.cron = c
	w.log.Info("claims.watchdog started",
		zap.String(constvars.LoggingCronSpecKey, w.cfg.CronSpec),
		zap.String(constvars.LoggingStalePolicyKey, w.policy.Name()),
	)
}

// Stop waits for a running pass to finish.
func (w *Watchdog) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

// RunOnce hands every stale claim to the policy and returns how many it
// handled without error. Only the replica holding the leader lock works.
func (w *Watchdog) RunOnce(ctx context.Context) int {
	requestID := utils.GetRequestID(ctx)
	if !w.Enabled() {
		return 0
	}

	if w.locker != nil {
		acquired, token, err := w.locker.TryLock(ctx, constvars.RedisKeyWatchdogLock, leaderLockTTL)
		if err != nil {
			w.log.Warn("claims.watchdog leader lock attempt failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			return 0
		}
		if !acquired {
			w.log.Info("claims.watchdog leader lock held elsewhere",
				zap.String(constvars.LoggingRequestIDKey, requestID),
			)
			return 0
		}
		defer func() {
			if err := w.locker.Unlock(ctx, constvars.RedisKeyWatchdogLock, token); err != nil {
				w.log.Warn("claims.watchdog unlock failed",
					zap.String(constvars.LoggingRequestIDKey, requestID),
					zap.Error(err),
				)
			}
		}()
	}

	cutoff := w.now().Add(-w.cfg.StaleAfter)
	stale, err := w.ledger.ListOpenOlderThan(ctx, cutoff, w.cfg.BatchSize)
	if err != nil {
		w.log.Error("claims.watchdog listing stale claims failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return 0
	}

	handled := 0
	for _, record := range stale {
		err := utils.LogOperation(w.log.With(
			zap.String(constvars.LoggingHeaderRefKey, record.HeaderRef),
			zap.String(constvars.LoggingStalePolicyKey, w.policy.Name()),
		), "claims.watchdog stale policy", requestID, func() error {
			return w.policy.Handle(ctx, record)
		})
		if err != nil {
			w.log.Debug("claims.watchdog leaving claim open",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingErrorKindKey, string(exceptions.KindOf(err))),
			)
			continue
		}
		handled++
	}
	return handled
}
