package database

import (
	"context"
	"fmt"
	"koppeltaal-service/internal/app/config"
	"log"
	"net"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewMongoDB connects the optional claim ledger backend.
func NewMongoDB(ctx context.Context, driverConfig *config.DriverConfig) (*mongo.Client, error) {
	host := net.JoinHostPort(driverConfig.MongoDB.Host, driverConfig.MongoDB.Port)
	dbOptions := options.Client().
		SetHosts([]string{host}).
		SetAuth(options.Credential{
			Username: driverConfig.MongoDB.Username,
			Password: driverConfig.MongoDB.Password,
		}).
		SetAppName("koppeltaal-service").
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, dbOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo database at %s: %w", host, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo database at %s: %w", host, err)
	}
	log.Printf("Successfully connected to mongo database at %s", host)
	return client, nil
}
