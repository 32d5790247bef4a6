package config

import (
	"context"
	"log"

	"github.com/go-chi/chi/v5"
	"github.com/minio/minio-go/v7"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Bootstrap struct {
	Router         *chi.Mux
	Redis          *redis.Client
	MongoDB        *mongo.Client
	Minio          *minio.Client
	Logger         *zap.Logger
	RabbitMQ       *amqp091.Connection
	InternalConfig *InternalConfig
	DriverConfig   *DriverConfig
	// WorkerStop if set will be called during Shutdown to stop the consumer
	WorkerStop   func()
	WatchdogStop func()
	// DispatcherClose releases the publishing channel before the connection goes
	DispatcherClose func() error
}

func (b *Bootstrap) Shutdown(ctx context.Context) error {
	if b.WorkerStop != nil {
		b.WorkerStop()
		log.Println("Successfully stopped consumer worker")
	}

	if b.WatchdogStop != nil {
		b.WatchdogStop()
		log.Println("Successfully stopped claim watchdog")
	}

	if b.DispatcherClose != nil {
		if err := b.DispatcherClose(); err != nil {
			return err
		}
		log.Println("Successfully closing dispatcher channel")
	}

	if b.RabbitMQ != nil {
		if err := b.RabbitMQ.Close(); err != nil {
			return err
		}
		log.Println("Successfully closing RabbitMQ")
	}

	if b.MongoDB != nil {
		if err := b.MongoDB.Disconnect(ctx); err != nil {
			return err
		}
		log.Println("Successfully closing MongoDB")
	}

	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			return err
		}
		log.Println("Successfully closing Redis")
	}

	// stdout/stderr sinks report EINVAL on sync; nothing to act on
	_ = b.Logger.Sync()
	log.Println("Successfully closing Logger")

	return nil
}
