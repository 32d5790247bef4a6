package database

import (
	"context"
	"fmt"
	"koppeltaal-service/internal/app/config"
	"log"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects the store shared by the claim ledger, the lock
// service and the launch token store.
func NewRedisClient(ctx context.Context, driverConfig *config.DriverConfig) (*redis.Client, error) {
	addr := net.JoinHostPort(driverConfig.Redis.Host, driverConfig.Redis.Port)
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     driverConfig.Redis.Password,
		DB:           driverConfig.Redis.DB,
		ClientName:   "koppeltaal-service",
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", addr, err)
	}

	log.Printf("Successfully connected to redis db %d", driverConfig.Redis.DB)
	return rdb, nil
}
