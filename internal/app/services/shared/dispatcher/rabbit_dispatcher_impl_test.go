package dispatcher

import (
	"context"
	"errors"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"testing"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type published struct {
	queue string
	msg   amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	confirmOn  bool
	confirms   chan amqp.Confirmation
	published  []published
	nack       bool
	silent     bool
	publishErr error
	closed     bool
}

func (f *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	if !durable {
		return amqp.Queue{}, errors.New("queues must be durable")
	}
	f.declared = append(f.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) Confirm(bool) error {
	f.confirmOn = true
	return nil
}

func (f *fakeChannel) NotifyPublish(c chan amqp.Confirmation) chan amqp.Confirmation {
	f.confirms = c
	return c
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{queue: key, msg: msg})
	if !f.silent {
		f.confirms <- amqp.Confirmation{DeliveryTag: uint64(len(f.published)), Ack: !f.nack}
	}
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func header() *models.MessageHeader {
	return &models.MessageHeader{
		ID:               "h1",
		Version:          "2",
		SelfLink:         "https://kt.example/FHIR/Koppeltaal/MessageHeader/h1/_history/2",
		MessageID:        "m1",
		Event:            models.EventCreateOrUpdateCarePlan,
		PatientReference: "https://kt.example/FHIR/Koppeltaal/Patient/p1/_history/1",
		ProcessingStatus: models.ProcessingStatusClaimed,
	}
}

func TestNewService(t *testing.T) {
	ch := &fakeChannel{}
	_, err := NewService(ch, Queues{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultDispatchQueue, DefaultDeadLetterQueue}, ch.declared)
	assert.True(t, ch.confirmOn)
}

func TestService_Dispatch(t *testing.T) {
	ch := &fakeChannel{}
	svc, err := NewService(ch, Queues{Dispatch: "in", DeadLetter: "dead"}, zap.NewNop())
	require.NoError(t, err)
	bundle := &fhir_dto.Bundle{ResourceType: "Bundle", Type: "message"}

	t.Run("Publishes Persistent Envelope", func(t *testing.T) {
		require.NoError(t, svc.Dispatch(context.Background(), header(), bundle))
		require.Len(t, ch.published, 1)

		p := ch.published[0]
		assert.Equal(t, "in", p.queue)
		assert.Equal(t, amqp.Persistent, p.msg.DeliveryMode)
		assert.Equal(t, "m1", p.msg.MessageId)
		assert.Equal(t, "CreateOrUpdateCarePlan", p.msg.Type)

		var message DispatchMessage
		require.NoError(t, json.Unmarshal(p.msg.Body, &message))
		assert.Equal(t, header().SelfLink, message.HeaderRef)
		assert.Equal(t, header().PatientReference, message.Patient)
		assert.NotEmpty(t, message.ID)
		assert.Empty(t, message.Reason)
	})

	t.Run("Dead Letter Carries Reason", func(t *testing.T) {
		require.NoError(t, svc.DeadLetter(context.Background(), header(), bundle, "no handler"))
		p := ch.published[len(ch.published)-1]
		assert.Equal(t, "dead", p.queue)

		var message DispatchMessage
		require.NoError(t, json.Unmarshal(p.msg.Body, &message))
		assert.Equal(t, "no handler", message.Reason)
	})

	t.Run("Nack Is A Failure", func(t *testing.T) {
		ch.nack = true
		defer func() { ch.nack = false }()
		err := svc.Dispatch(context.Background(), header(), bundle)
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindTransportFailure))
	})

	t.Run("Publish Error", func(t *testing.T) {
		ch.publishErr = amqp.ErrClosed
		defer func() { ch.publishErr = nil }()
		assert.Error(t, svc.Dispatch(context.Background(), header(), bundle))
	})

	t.Run("Gives Up Waiting For Confirm", func(t *testing.T) {
		ch.silent = true
		defer func() { ch.silent = false }()
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.Error(t, svc.Dispatch(ctx, header(), bundle))
	})

	t.Run("Close", func(t *testing.T) {
		require.NoError(t, svc.Close())
		assert.True(t, ch.closed)
	})
}
