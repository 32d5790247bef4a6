package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
)

const (
	REQUEST_ID_PREFIX = "KT_SVC_"
)

const (
	AppEnvDevelopment = "development"
	AppEnvProduction  = "production"
)

const (
	LedgerDriverRedis = "redis"
	LedgerDriverMongo = "mongo"
)

const (
	StalePolicyReport = "report"
	StalePolicyFail   = "fail"
)
