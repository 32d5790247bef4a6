package messaging

import (
	"fmt"
	"koppeltaal-service/internal/app/config"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const connectionName = "koppeltaal-service"

// NewRabbitMQ dials the broker that carries claimed bundles to downstream
// consumers.
func NewRabbitMQ(driverConfig *config.DriverConfig) (*amqp091.Connection, error) {
	cfg := driverConfig.RabbitMQ
	uri := amqp091.URI{
		Scheme:   "amqp",
		Host:     cfg.Host,
		Port:     cfg.PortNumber(),
		Username: cfg.Username,
		Password: cfg.Password,
		Vhost:    cfg.Vhost,
	}

	properties := amqp091.NewConnectionProperties()
	properties.SetClientConnectionName(connectionName)

	conn, err := amqp091.DialConfig(uri.String(), amqp091.Config{
		Heartbeat:  10 * time.Second,
		Locale:     "en_US",
		Properties: properties,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitMQ at %s:%d%s: %w", cfg.Host, uri.Port, cfg.Vhost, err)
	}
	log.Printf("Successfully connected to rabbitMQ vhost %s", cfg.Vhost)
	return conn, nil
}
