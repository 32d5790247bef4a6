package main

import (
	"context"
	"fmt"
	"koppeltaal-service/internal/app/config"
	"koppeltaal-service/internal/app/contracts"
	"koppeltaal-service/internal/app/delivery/http/controllers"
	"koppeltaal-service/internal/app/delivery/http/middlewares"
	"koppeltaal-service/internal/app/delivery/http/routers"
	"koppeltaal-service/internal/app/drivers/database"
	"koppeltaal-service/internal/app/drivers/koppeltaal"
	"koppeltaal-service/internal/app/drivers/logger"
	"koppeltaal-service/internal/app/drivers/messaging"
	"koppeltaal-service/internal/app/drivers/storage"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/app/services/core/claims"
	"koppeltaal-service/internal/app/services/core/consumer"
	"koppeltaal-service/internal/app/services/core/launch"
	"koppeltaal-service/internal/app/services/shared/archive"
	"koppeltaal-service/internal/app/services/shared/dispatcher"
	"koppeltaal-service/internal/app/services/shared/ledger"
	"koppeltaal-service/internal/app/services/shared/locker"
	"koppeltaal-service/internal/app/services/shared/redis"
	"koppeltaal-service/internal/app/services/shared/tokenstore"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/extensions"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Version sets the default build version
var Version = "develop"

// Tag sets the default latest commit tag
var Tag = "0.0.1-rc"

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	zapLogger := logger.NewZapLogger(driverConfig, internalConfig)
	zapLogger.Info("Starting koppeltaal service",
		zap.String("version", Version),
		zap.String("tag", Tag),
	)

	ctx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	redisClient, err := database.NewRedisClient(ctx, driverConfig)
	if err != nil {
		log.Fatalf("Redis: %v", err)
	}

	rabbitMQ, err := messaging.NewRabbitMQ(driverConfig)
	if err != nil {
		log.Fatalf("RabbitMQ: %v", err)
	}

	minioClient, err := storage.NewMinio(ctx, driverConfig, internalConfig.Minio.BucketName)
	if err != nil {
		log.Fatalf("Minio: %v", err)
	}

	bootstrap := &config.Bootstrap{
		Router:         chi.NewRouter(),
		Redis:          redisClient,
		Minio:          minioClient,
		Logger:         zapLogger,
		RabbitMQ:       rabbitMQ,
		InternalConfig: internalConfig,
		DriverConfig:   driverConfig,
	}

	if internalConfig.Consumer.LedgerDriver == constvars.LedgerDriverMongo {
		mongoDB, err := database.NewMongoDB(ctx, driverConfig)
		if err != nil {
			log.Fatalf("MongoDB: %v", err)
		}
		bootstrap.MongoDB = mongoDB
	}

	if err := bootstrapingTheApp(ctx, bootstrap); err != nil {
		log.Fatalf("Bootstrap: %v", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", internalConfig.App.Port),
		Handler: bootstrap.Router,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()
	zapLogger.Info("Launch receiver listening", zap.String("port", internalConfig.App.Port))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Println("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeoutInSeconds),
	)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	stopBackground()
	if err := bootstrap.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown: %v", err)
	}

	log.Println("Server exiting")
}

func bootstrapingTheApp(ctx context.Context, bootstrap *config.Bootstrap) error {
	cfg := bootstrap.InternalConfig
	log := bootstrap.Logger

	// Redis
	redisRepository := redis.NewRedisRepository(bootstrap.Redis)
	lockService := locker.NewLockService(redisRepository, log)

	// Koppeltaal
	clients := koppeltaal.NewClients(cfg, log)
	bundleArchive := archive.NewMinioArchive(bootstrap.Minio, cfg.Minio.BucketName, log)
	exchange := clients.Messages.WithArchive(bundleArchive)

	// Claim ledger
	var claimLedger contracts.ClaimLedger
	switch cfg.Consumer.LedgerDriver {
	case constvars.LedgerDriverMongo:
		claimLedger = ledger.NewMongoClaimLedger(bootstrap.MongoDB, cfg.MongoDB.LedgerDBName, cfg.MongoDB.LedgerCollection, log)
	case constvars.LedgerDriverRedis:
		claimLedger = ledger.NewRedisClaimLedger(redisRepository, log)
	default:
		return fmt.Errorf("unknown ledger driver %q", cfg.Consumer.LedgerDriver)
	}

	// Dispatcher
	rabbitDispatcher, err := dispatcher.NewRabbitDispatcher(bootstrap.RabbitMQ, dispatcher.Queues{
		Dispatch:   cfg.RabbitMQ.DispatchQueue,
		DeadLetter: cfg.RabbitMQ.DeadLetterQueue,
	}, log)
	if err != nil {
		return err
	}
	bootstrap.DispatcherClose = rabbitDispatcher.Close

	// Launch
	tokenStore, err := tokenstore.NewRedisTokenStore(redisRepository, cfg.Launch.TokenStoreKey, log)
	if err != nil {
		return err
	}
	launchUsecase, err := launch.NewLaunchUsecase(log, launch.Config{
		Issuer:       cfg.Koppeltaal.ServerURL + constvars.KoppeltaalFHIRPath,
		ClientID:     cfg.Koppeltaal.ClientID,
		ClientSecret: cfg.Koppeltaal.ClientSecret,
		RedirectURI:  cfg.Koppeltaal.RedirectURI,
		StateSecret:  cfg.Launch.StateSecret,
		StateTTL:     time.Duration(cfg.Launch.StateTTLInMinutes) * time.Minute,
		SessionTTL:   time.Duration(cfg.Launch.SessionTTLInHours) * time.Hour,
	}, clients.Auth, tokenStore)
	if err != nil {
		return err
	}

	middlewares := middlewares.NewMiddlewares(log, cfg)
	launchController := controllers.NewLaunchController(log, launchUsecase)
	routers.SetupRoutes(bootstrap.Router, cfg, middlewares, launchController)

	// Consumer worker
	if cfg.Consumer.Enabled {
		worker := consumer.NewWorker(log, consumer.Config{
			PollInterval:   time.Duration(cfg.Consumer.PollIntervalInSeconds) * time.Second,
			PollsPerSecond: cfg.Consumer.PollsPerSecond,
			Burst:          cfg.Consumer.Burst,
			BatchSize:      cfg.Consumer.BatchSize,
			Filter: models.MessageFilter{
				Event:   models.Event(cfg.Consumer.Event),
				Patient: cfg.Consumer.Patient,
			},
		}, exchange, claimLedger, rabbitDispatcher)
		bootstrap.WorkerStop = worker.Start(ctx)
	}

	// Claim watchdog
	policy, err := claims.NewStalePolicy(cfg.ClaimWatchdog.Policy, exchange, claimLedger, extensions.Namespace(cfg.Koppeltaal.Namespace), log)
	if err != nil {
		return err
	}
	watchdog := claims.NewWatchdog(log, claims.Config{
		CronSpec:   cfg.ClaimWatchdog.CronSpec,
		StaleAfter: time.Duration(cfg.ClaimWatchdog.StaleAfterInMinutes) * time.Minute,
		BatchSize:  cfg.ClaimWatchdog.BatchSize,
	}, claimLedger, lockService, policy)
	watchdog.Start(ctx)
	bootstrap.WatchdogStop = watchdog.Stop

	return nil
}
