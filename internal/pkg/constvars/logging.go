package constvars

const (
	LoggingRequestIDKey        = "request_id"
	LoggingMethodKey           = "method"
	LoggingEndpointKey         = "endpoint"
	LoggingRemoteAddrKey       = "remote_addr"
	LoggingUserAgentKey        = "user_agent"
	LoggingQueryKey            = "query"
	LoggingStatusCodeKey       = "status_code"
	LoggingDurationKey         = "duration"
	LoggingSuccessKey          = "success"
	LoggingURLKey              = "url"
	LoggingMessageIDKey        = "message_id"
	LoggingHeaderRefKey        = "header_ref"
	LoggingEventKey            = "event"
	LoggingPatientKey          = "patient"
	LoggingProcessingStatusKey = "processing_status"
	LoggingTargetStatusKey     = "target_status"
	LoggingEntryCountKey       = "entry_count"
	LoggingHeaderCountKey      = "header_count"
	LoggingAttemptKey          = "attempt"
	LoggingResourceTypeKey     = "resource_type"
	LoggingResourceRefKey      = "resource_ref"
	LoggingGrantTypeKey        = "grant_type"
	LoggingSessionIDKey        = "session_id"
	LoggingRedisKey            = "redis_key"
	LoggingLockValueKey        = "lock_value"
	LoggingLockExpirationKey   = "lock_expiration"
	LoggingQueueNameKey        = "queue_name"
	LoggingBucketNameKey       = "bucket_name"
	LoggingObjectKey           = "object_key"
	LoggingClaimAgeKey         = "claim_age"
	LoggingOperationKey        = "operation"
	LoggingErrorKindKey        = "error_kind"
	LoggingCronSpecKey         = "cron_spec"
	LoggingStalePolicyKey      = "stale_policy"
)
