package config

import (
	"strings"
	"time"
)

type InternalConfig struct {
	App           App              `mapstructure:"app"`
	Koppeltaal    AppKoppeltaal    `mapstructure:"koppeltaal"`
	Consumer      AppConsumer      `mapstructure:"consumer"`
	ClaimWatchdog AppClaimWatchdog `mapstructure:"claim_watchdog"`
	Launch        AppLaunch        `mapstructure:"launch"`
	RabbitMQ      AppRabbitMQ      `mapstructure:"rabbitmq"`
	Minio         AppMinio         `mapstructure:"minio"`
	MongoDB       AppMongoDB       `mapstructure:"mongodb"`
}

type App struct {
	Env                      string `mapstructure:"env"`
	Port                     string `mapstructure:"port"`
	Version                  string `mapstructure:"version"`
	Address                  string `mapstructure:"address"`
	EndpointPrefix           string `mapstructure:"endpoint_prefix"`
	AllowedOrigins           string `mapstructure:"allowed_origins"`
	MaxRequests              int    `mapstructure:"max_requests"`
	ShutdownTimeoutInSeconds int    `mapstructure:"shutdown_timeout_in_seconds"`
}

// Origins splits the comma separated AllowedOrigins.
func (a App) Origins() []string {
	var origins []string
	for _, o := range strings.Split(a.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// AppKoppeltaal describes the server and how this application is known to
// it.
type AppKoppeltaal struct {
	ServerURL      string `mapstructure:"server_url"`
	Namespace      string `mapstructure:"namespace"`
	Domain         string `mapstructure:"domain"`
	ApplicationID  string `mapstructure:"application_id"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	ClientID       string `mapstructure:"client_id"`
	ClientSecret   string `mapstructure:"client_secret"`
	RedirectURI    string `mapstructure:"redirect_uri"`
	SourceName     string `mapstructure:"source_name"`
	SourceSoftware string `mapstructure:"source_software"`
	SourceVersion  string `mapstructure:"source_version"`
	SourceEndpoint string `mapstructure:"source_endpoint"`
	// RequestTimeoutInSeconds bounds every call to the server.
	RequestTimeoutInSeconds int `mapstructure:"request_timeout_in_seconds"`
}

func (k AppKoppeltaal) RequestTimeout() time.Duration {
	return time.Duration(k.RequestTimeoutInSeconds) * time.Second
}

type AppConsumer struct {
	Enabled               bool    `mapstructure:"enabled"`
	PollIntervalInSeconds int     `mapstructure:"poll_interval_in_seconds"`
	PollsPerSecond        float64 `mapstructure:"polls_per_second"`
	Burst                 int     `mapstructure:"burst"`
	BatchSize             int     `mapstructure:"batch_size"`
	Event                 string  `mapstructure:"event"`
	Patient               string  `mapstructure:"patient"`
	ClaimAttempts         int     `mapstructure:"claim_attempts"`
	// LedgerDriver selects where in-flight claims are tracked: redis or mongo.
	LedgerDriver string `mapstructure:"ledger_driver"`
}

type AppClaimWatchdog struct {
	CronSpec string `mapstructure:"cron_spec"`
	// StaleAfterInMinutes of 0 disables the watchdog.
	StaleAfterInMinutes int    `mapstructure:"stale_after_in_minutes"`
	Policy              string `mapstructure:"policy"`
	BatchSize           int    `mapstructure:"batch_size"`
}

type AppLaunch struct {
	StateSecret       string `mapstructure:"state_secret"`
	StateTTLInMinutes int    `mapstructure:"state_ttl_in_minutes"`
	TokenStoreKey     string `mapstructure:"token_store_key"`
	SessionTTLInHours int    `mapstructure:"session_ttl_in_hours"`
	// SessionAPIKey guards the session endpoints. An empty key locks them.
	SessionAPIKey string `mapstructure:"session_api_key"`
}

type AppRabbitMQ struct {
	DispatchQueue   string `mapstructure:"dispatch_queue"`
	DeadLetterQueue string `mapstructure:"dead_letter_queue"`
}

type AppMinio struct {
	BucketName string `mapstructure:"bucket_name"`
}

type AppMongoDB struct {
	LedgerDBName     string `mapstructure:"ledger_db_name"`
	LedgerCollection string `mapstructure:"ledger_collection"`
}
