package config

import (
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			Username: utils.GetEnvString("MONGODB_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("MONGODB_PASSWORD", "defaultPassword"),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
			DB:       utils.GetEnvInt("REDIS_DB", 0),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
		RabbitMQ: RabbitMQ{
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "guest"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "guest"),
			Vhost:    utils.GetEnvString("RABBITMQ_VHOST", "/"),
		},
		Minio: Minio{
			Port:     utils.GetEnvString("MINIO_PORT", "9000"),
			Host:     utils.GetEnvString("MINIO_HOST", "localhost"),
			Username: utils.GetEnvString("MINIO_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("MINIO_PASSWORD", "defaultPassword"),
			UseSSL:   utils.GetEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                      utils.GetEnvString("APP_ENV", constvars.AppEnvDevelopment),
			Port:                     utils.GetEnvString("APP_PORT", "8080"),
			Version:                  utils.GetEnvString("APP_VERSION", "v1.0"),
			Address:                  utils.GetEnvString("APP_ADDRESS", "localhost"),
			EndpointPrefix:           utils.GetEnvString("APP_ENDPOINT_PREFIX", "api"),
			AllowedOrigins:           utils.GetEnvString("APP_ALLOWED_ORIGINS", ""),
			MaxRequests:              utils.GetEnvInt("APP_MAX_REQUESTS", 10),
			ShutdownTimeoutInSeconds: utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT_IN_SECONDS", 10),
		},
		Koppeltaal: AppKoppeltaal{
			ServerURL:               utils.GetEnvString("KOPPELTAAL_SERVER_URL", "https://edgekoppeltaal.vhscloud.nl"),
			Namespace:               utils.GetEnvString("KOPPELTAAL_NAMESPACE", constvars.KoppeltaalNamespace),
			Domain:                  utils.GetEnvString("KOPPELTAAL_DOMAIN", ""),
			ApplicationID:           utils.GetEnvString("KOPPELTAAL_APPLICATION_ID", ""),
			Username:                utils.GetEnvString("KOPPELTAAL_USERNAME", ""),
			Password:                utils.GetEnvString("KOPPELTAAL_PASSWORD", ""),
			ClientID:                utils.GetEnvString("KOPPELTAAL_CLIENT_ID", ""),
			ClientSecret:            utils.GetEnvString("KOPPELTAAL_CLIENT_SECRET", ""),
			RedirectURI:             utils.GetEnvString("KOPPELTAAL_REDIRECT_URI", ""),
			SourceName:              utils.GetEnvString("KOPPELTAAL_SOURCE_NAME", "koppeltaal-service"),
			SourceSoftware:          utils.GetEnvString("KOPPELTAAL_SOURCE_SOFTWARE", "koppeltaal-service"),
			SourceVersion:           utils.GetEnvString("KOPPELTAAL_SOURCE_VERSION", "v1.0"),
			SourceEndpoint:          utils.GetEnvString("KOPPELTAAL_SOURCE_ENDPOINT", ""),
			RequestTimeoutInSeconds: utils.GetEnvInt("KOPPELTAAL_REQUEST_TIMEOUT_IN_SECONDS", 30),
		},
		Consumer: AppConsumer{
			Enabled:               utils.GetEnvBool("CONSUMER_ENABLED", false),
			PollIntervalInSeconds: utils.GetEnvInt("CONSUMER_POLL_INTERVAL_IN_SECONDS", 30),
			PollsPerSecond:        utils.GetEnvFloat("CONSUMER_POLLS_PER_SECOND", 2),
			Burst:                 utils.GetEnvInt("CONSUMER_BURST", 1),
			BatchSize:             utils.GetEnvInt("CONSUMER_BATCH_SIZE", 10),
			Event:                 utils.GetEnvString("CONSUMER_EVENT", ""),
			Patient:               utils.GetEnvString("CONSUMER_PATIENT", ""),
			ClaimAttempts:         utils.GetEnvInt("CONSUMER_CLAIM_ATTEMPTS", constvars.DefaultClaimAttempts),
			LedgerDriver:          utils.GetEnvString("CONSUMER_LEDGER_DRIVER", constvars.LedgerDriverRedis),
		},
		ClaimWatchdog: AppClaimWatchdog{
			CronSpec:            utils.GetEnvString("CLAIM_WATCHDOG_CRON_SPEC", "@every 5m"),
			StaleAfterInMinutes: utils.GetEnvInt("CLAIM_WATCHDOG_STALE_AFTER_IN_MINUTES", 0),
			Policy:              utils.GetEnvString("CLAIM_WATCHDOG_POLICY", constvars.StalePolicyReport),
			BatchSize:           utils.GetEnvInt("CLAIM_WATCHDOG_BATCH_SIZE", 100),
		},
		Launch: AppLaunch{
			StateSecret:       utils.GetEnvString("LAUNCH_STATE_SECRET", ""),
			StateTTLInMinutes: utils.GetEnvInt("LAUNCH_STATE_TTL_IN_MINUTES", 10),
			TokenStoreKey:     utils.GetEnvString("LAUNCH_TOKEN_STORE_KEY", ""),
			SessionTTLInHours: utils.GetEnvInt("LAUNCH_SESSION_TTL_IN_HOURS", 8),
			SessionAPIKey:     utils.GetEnvString("LAUNCH_SESSION_API_KEY", ""),
		},
		RabbitMQ: AppRabbitMQ{
			DispatchQueue:   utils.GetEnvString("RABBITMQ_DISPATCH_QUEUE", "koppeltaal_dispatch_queue"),
			DeadLetterQueue: utils.GetEnvString("RABBITMQ_DEAD_LETTER_QUEUE", "koppeltaal_dispatch_dlq"),
		},
		Minio: AppMinio{
			BucketName: utils.GetEnvString("MINIO_BUCKET_NAME", "koppeltaal-bundles"),
		},
		MongoDB: AppMongoDB{
			LedgerDBName:     utils.GetEnvString("MONGODB_LEDGER_DB_NAME", "koppeltaal"),
			LedgerCollection: utils.GetEnvString("MONGODB_LEDGER_COLLECTION", constvars.MongoCollectionClaims),
		},
	}
}
