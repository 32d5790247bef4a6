package consumer

import (
	"context"
	"errors"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/app/services/fhir_koppeltaal/messages"
	"koppeltaal-service/internal/app/services/shared/ledger"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"koppeltaal-service/internal/pkg/koppeltaaltest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingDispatcher struct {
	mu         sync.Mutex
	dispatched []string
	dead       map[string]string
	err        error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, header *models.MessageHeader, _ *fhir_dto.Bundle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.dispatched = append(d.dispatched, header.MessageID)
	return nil
}

func (d *recordingDispatcher) DeadLetter(_ context.Context, header *models.MessageHeader, _ *fhir_dto.Bundle, reason string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dead == nil {
		d.dead = make(map[string]string)
	}
	d.dead[header.MessageID] = reason
	return nil
}

type fixture struct {
	server     *koppeltaaltest.Server
	client     *messages.MessageFhirClient
	ledger     *ledger.RedisClaimLedger
	dispatcher *recordingDispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	server := koppeltaaltest.NewServer(koppeltaaltest.Options{})
	t.Cleanup(server.Close)
	opts := server.Options()
	return &fixture{
		server: server,
		client: messages.NewMessageFhirClient(messages.Config{
			ServerURL: server.URL,
			Namespace: server.Namespace(),
		}, nil, models.BasicCredential(opts.Username, opts.Password), zap.NewNop()),
		ledger:     ledger.NewRedisClaimLedger(koppeltaaltest.NewMemoryRedis(), zap.NewNop()),
		dispatcher: &recordingDispatcher{},
	}
}

func (f *fixture) post(t *testing.T, messageID, patientID string) *models.MessageHeader {
	t.Helper()
	bundle, err := f.server.CarePlanBundle(messageID, patientID)
	require.NoError(t, err)
	resp, err := f.client.Post(context.Background(), bundle)
	require.NoError(t, err)
	header, ok := models.MessageHeaderByMessageID(f.server.Namespace(), resp, messageID)
	require.True(t, ok)
	return header
}

func (f *fixture) worker(cfg Config) *Worker {
	return NewWorker(zap.NewNop(), cfg, f.client, f.ledger, f.dispatcher)
}

func TestWorker_RunOnce(t *testing.T) {
	f := newFixture(t)
	h1 := f.post(t, "msg-1", "patient-1")
	h2 := f.post(t, "msg-2", "patient-2")

	claimed := f.worker(Config{}).RunOnce(context.Background())
	assert.Equal(t, 2, claimed)

	t.Run("Every Message Is Dispatched And Acknowledged", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"msg-1", "msg-2"}, f.dispatcher.dispatched)
		assert.Equal(t, models.ProcessingStatusSuccess, f.server.HeaderStatus(h1.ID))
		assert.Equal(t, models.ProcessingStatusSuccess, f.server.HeaderStatus(h2.ID))
	})

	t.Run("Ledger Records The Outcome", func(t *testing.T) {
		record, err := f.ledger.Get(context.Background(), h1.ID)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.False(t, record.Open())
		assert.Equal(t, models.ProcessingStatusSuccess, record.Outcome)
		assert.Equal(t, "msg-1", record.MessageID)
	})

	t.Run("Nothing Left", func(t *testing.T) {
		assert.Equal(t, 0, f.worker(Config{}).RunOnce(context.Background()))
	})
}

func TestWorker_DispatchFailure(t *testing.T) {
	f := newFixture(t)
	h := f.post(t, "msg-1", "patient-1")
	f.dispatcher.err = errors.New("broker down")

	assert.Equal(t, 1, f.worker(Config{}).RunOnce(context.Background()))

	assert.Equal(t, models.ProcessingStatusFailed, f.server.HeaderStatus(h.ID))
	assert.Contains(t, f.dispatcher.dead["msg-1"], "broker down")

	record, err := f.ledger.Get(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProcessingStatusFailed, record.Outcome)
	assert.Contains(t, record.Detail, "broker down")
}

func TestWorker_BatchAndFilter(t *testing.T) {
	f := newFixture(t)
	f.post(t, "msg-1", "patient-1")
	f.post(t, "msg-2", "patient-2")

	t.Run("Batch Size Caps A Tick", func(t *testing.T) {
		assert.Equal(t, 1, f.worker(Config{BatchSize: 1}).RunOnce(context.Background()))
	})

	t.Run("Filter Excludes Other Events", func(t *testing.T) {
		w := f.worker(Config{Filter: models.MessageFilter{Event: models.EventCreateOrUpdatePatient}})
		assert.Equal(t, 0, w.RunOnce(context.Background()))
	})
}

func TestWorker_ClaimErrorEndsTick(t *testing.T) {
	f := newFixture(t)
	f.post(t, "msg-1", "patient-1")
	f.server.FailNext(503)

	assert.Equal(t, 0, f.worker(Config{}).RunOnce(context.Background()))
	assert.Empty(t, f.dispatcher.dispatched)
}

// flakyExchange fails the first fetches with the given error.
type flakyExchange struct {
	*messages.MessageFhirClient
	mu       sync.Mutex
	failures int
	err      error
	fetches  int
}

func (f *flakyExchange) FetchBundle(ctx context.Context, header *models.MessageHeader) (*fhir_dto.Bundle, error) {
	f.mu.Lock()
	f.fetches++
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()
	if fail {
		return nil, f.err
	}
	return f.MessageFhirClient.FetchBundle(ctx, header)
}

func TestWorker_TransientFetchFailure(t *testing.T) {
	t.Run("Claim Stays Open And Is Retried Next Tick", func(t *testing.T) {
		f := newFixture(t)
		h := f.post(t, "msg-1", "patient-1")
		exchange := &flakyExchange{
			MessageFhirClient: f.client,
			failures:          1,
			err:               exceptions.ErrServerDeadlineExceeded(context.DeadlineExceeded),
		}
		w := NewWorker(zap.NewNop(), Config{}, exchange, f.ledger, f.dispatcher)

		assert.Equal(t, 1, w.RunOnce(context.Background()))
		assert.Equal(t, models.ProcessingStatusClaimed, f.server.HeaderStatus(h.ID))
		assert.Equal(t, 1, w.Pending())
		assert.Empty(t, f.dispatcher.dispatched)

		record, err := f.ledger.Get(context.Background(), h.ID)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.True(t, record.Open())

		assert.Equal(t, 0, w.RunOnce(context.Background()))
		assert.Equal(t, 0, w.Pending())
		assert.Equal(t, []string{"msg-1"}, f.dispatcher.dispatched)
		assert.Equal(t, models.ProcessingStatusSuccess, f.server.HeaderStatus(h.ID))

		record, err = f.ledger.Get(context.Background(), h.ID)
		require.NoError(t, err)
		assert.False(t, record.Open())
	})

	t.Run("Used Up Attempts Leave The Claim To The Watchdog", func(t *testing.T) {
		f := newFixture(t)
		h := f.post(t, "msg-1", "patient-1")
		exchange := &flakyExchange{
			MessageFhirClient: f.client,
			failures:          5,
			err:               exceptions.ErrServerUnavailable(nil, 503),
		}
		w := NewWorker(zap.NewNop(), Config{FetchAttempts: 2}, exchange, f.ledger, f.dispatcher)

		w.RunOnce(context.Background())
		w.RunOnce(context.Background())
		w.RunOnce(context.Background())

		assert.Equal(t, 2, exchange.fetches)
		assert.Equal(t, 0, w.Pending())
		assert.Equal(t, models.ProcessingStatusClaimed, f.server.HeaderStatus(h.ID))

		record, err := f.ledger.Get(context.Background(), h.ID)
		require.NoError(t, err)
		assert.True(t, record.Open())
	})

	t.Run("Non Retriable Fetch Failure Marks Failed", func(t *testing.T) {
		f := newFixture(t)
		h := f.post(t, "msg-1", "patient-1")
		exchange := &flakyExchange{
			MessageFhirClient: f.client,
			failures:          1,
			err:               exceptions.ErrProtocolViolation(nil, "bundle has no MessageHeader"),
		}
		w := NewWorker(zap.NewNop(), Config{}, exchange, f.ledger, f.dispatcher)

		assert.Equal(t, 1, w.RunOnce(context.Background()))
		assert.Equal(t, 0, w.Pending())
		assert.Equal(t, models.ProcessingStatusFailed, f.server.HeaderStatus(h.ID))
	})
}

func TestWorker_StartStop(t *testing.T) {
	f := newFixture(t)
	f.post(t, "msg-1", "patient-1")

	w := f.worker(Config{PollInterval: 10 * time.Millisecond})
	stop := w.Start(context.Background())

	require.Eventually(t, func() bool {
		f.dispatcher.mu.Lock()
		defer f.dispatcher.mu.Unlock()
		return len(f.dispatcher.dispatched) == 1
	}, 2*time.Second, 10*time.Millisecond)
	stop()
	stop()
}
