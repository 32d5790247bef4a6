package dispatcher

import (
	"context"
	"errors"
	"koppeltaal-service/internal/app/contracts"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"koppeltaal-service/internal/pkg/utils"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	DefaultDispatchQueue   = "koppeltaal_dispatch_queue"
	DefaultDeadLetterQueue = "koppeltaal_dispatch_dlq"
)

var errNotConfirmed = errors.New("message not confirmed")

// Channel is the part of *amqp.Channel the dispatcher needs.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Confirm(noWait bool) error
	NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// DispatchMessage is the payload put on the queues.
type DispatchMessage struct {
	ID               string                  `json:"id"`
	MessageID        string                  `json:"messageId"`
	HeaderRef        string                  `json:"headerRef"`
	Event            models.Event            `json:"event"`
	Patient          string                  `json:"patient,omitempty"`
	ProcessingStatus models.ProcessingStatus `json:"processingStatus"`
	Reason           string                  `json:"reason,omitempty"`
	DispatchedAt     time.Time               `json:"dispatchedAt"`
	Bundle           *fhir_dto.Bundle        `json:"bundle"`
}

type Queues struct {
	Dispatch   string
	DeadLetter string
}

type Service struct {
	ch       Channel
	queues   Queues
	log      *zap.Logger
	confirms chan amqp.Confirmation
	mu       sync.Mutex
}

var _ contracts.Dispatcher = (*Service)(nil)

// NewRabbitDispatcher opens a channel on conn and hands it to NewService.
func NewRabbitDispatcher(conn *amqp.Connection, queues Queues, log *zap.Logger) (*Service, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	svc, err := NewService(ch, queues, log)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	return svc, nil
}

// NewService declares both durable queues and puts the channel in confirm
// mode.
func NewService(ch Channel, queues Queues, log *zap.Logger) (*Service, error) {
	if queues.Dispatch == "" {
		queues.Dispatch = DefaultDispatchQueue
	}
	if queues.DeadLetter == "" {
		queues.DeadLetter = DefaultDeadLetterQueue
	}

	for _, name := range []string{queues.Dispatch, queues.DeadLetter} {
		if _, err := ch.QueueDeclare(
			name,  // name
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		); err != nil {
			return nil, err
		}
	}

	if err := ch.Confirm(false); err != nil {
		return nil, err
	}

	return &Service{
		ch:       ch,
		queues:   queues,
		log:      log,
		confirms: ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
	}, nil
}

func (s *Service) Dispatch(ctx context.Context, header *models.MessageHeader, bundle *fhir_dto.Bundle) error {
	return s.publish(ctx, s.queues.Dispatch, newMessage(header, bundle, ""))
}

func (s *Service) DeadLetter(ctx context.Context, header *models.MessageHeader, bundle *fhir_dto.Bundle, reason string) error {
	return s.publish(ctx, s.queues.DeadLetter, newMessage(header, bundle, reason))
}

func (s *Service) Close() error {
	return s.ch.Close()
}

func newMessage(header *models.MessageHeader, bundle *fhir_dto.Bundle, reason string) DispatchMessage {
	return DispatchMessage{
		ID:               uuid.NewString(),
		MessageID:        header.MessageID,
		HeaderRef:        header.SelfLink,
		Event:            header.Event,
		Patient:          header.PatientReference,
		ProcessingStatus: header.ProcessingStatus,
		Reason:           reason,
		DispatchedAt:     time.Now().UTC(),
		Bundle:           bundle,
	}
}

// publish sends one persistent message and waits for the broker confirm.
func (s *Service) publish(ctx context.Context, queue string, message DispatchMessage) error {
	requestID := utils.GetRequestID(ctx)
	s.log.Info("dispatcher.publish called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingQueueNameKey, queue),
		zap.String(constvars.LoggingMessageIDKey, message.MessageID),
	)

	body, err := json.Marshal(message)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		MessageId:    message.MessageID,
		Type:         string(message.Event),
		Timestamp:    message.DispatchedAt,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}
	if requestID != "" {
		msg.CorrelationId = requestID
	}

	if err := s.ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		s.log.Error("dispatcher.publish error publishing",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingQueueNameKey, queue),
			zap.Error(err),
		)
		return exceptions.ErrRabbitMQPublish(err, queue)
	}

	select {
	case confirmed, ok := <-s.confirms:
		if !ok || !confirmed.Ack {
			return exceptions.ErrRabbitMQPublish(errNotConfirmed, queue)
		}
	case <-ctx.Done():
		return exceptions.ErrRabbitMQPublish(ctx.Err(), queue)
	}
	return nil
}
