package constvars

// Validation messages mapper
var CustomValidationErrorMessages = map[string]string{
	"required":           "is required",
	"min":                "must be at least %s characters long",
	"max":                "maximum at %s characters long",
	"gte":                "must be greater than or equal to %s",
	"lte":                "must be less than or equal to %s",
	"oneof":              "must be one of [%s]",
	"url":                "must be a valid URL",
	"uri":                "must be a valid URI",
	"email":              "must be a valid email",
	"required_without":   "is required when %s is not present",
	"required_with":      "is required when %s is present",
	"resource_type":      "must be a capitalized resource type name",
	"resource_id":        "must be a valid resource id",
	"event_code":         "must be a supported message event",
	"processing_status":  "must be one of [New, Claimed, Success, Failed]",
	"activity_kind":      "must be a supported activity kind",
	"activity_status":    "must be a supported activity status",
	"message_kind":       "must be a supported user message kind",
	"participant_role":   "must be a supported care plan participant role",
	"care_team_status":   "must be a supported care team status",
	"care_plan_status":   "must be one of [planned, active, completed]",
	"activity_performer": "must be one of [Patient, Practitioner, RelatedPerson]",
	"reference":          "must be a logical id or an absolute resource url",
	"required_if":        "is required",
}

// Tags that require parameter substitution
var TagsWithParams = map[string]bool{
	"min":              true,
	"max":              true,
	"gte":              true,
	"lte":              true,
	"oneof":            true,
	"required_without": true,
	"required_with":    true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "cannot process the request"
	ErrClientSomethingWrongWithApplication = "something wrong with the application"
	ErrClientNotAuthorized                 = "not authorized"
	ErrClientServerLongRespond             = "koppeltaal server took too long to respond"
	ErrClientVersionConflict               = "resource was changed by someone else, reload and retry"
	ErrClientProtocolViolation             = "request violates the message exchange protocol"
	ErrClientNotFound                      = "requested resource was not found"
	ErrClientInvalidLaunch                 = "invalid launch request"
	ErrClientSessionNotFound               = "launch session not found or expired"
)

// Error messages for developers
const (
	ErrDevValidationFailed           = "validation failed"
	ErrDevInvalidInput               = "invalid input"
	ErrDevCannotMarshalJSON          = "cannot marshal JSON"
	ErrDevCannotParseJSON            = "cannot parse JSON"
	ErrDevCreateHTTPRequest          = "failed to create HTTP request"
	ErrDevSendHTTPRequest            = "failed to send HTTP request"
	ErrDevServerDeadlineExceeded     = "koppeltaal server deadline exceeded"
	ErrDevServerUnavailable          = "koppeltaal server answered with status %d"
	ErrDevAuthenticationFailed       = "koppeltaal server rejected the credentials for %s"
	ErrDevVersionConflict            = "version conflict on %s"
	ErrDevNotFound                   = "%s not found"
	ErrDevProtocolViolation          = "protocol violation: %s"
	ErrDevInvalidResourceURL         = "invalid resource url: %s"
	ErrDevBuilderFinished            = "bundle builder already finished"
	ErrDevBuilderUnresolvedReference = "unresolved local reference %q on %s"
	ErrDevBuilderDuplicateLogicalID  = "duplicate logical id %q"
	ErrDevBuilderUnknownParent       = "no %s with logical id %q in this bundle"
	ErrDevBuilderMissingRequirement  = "event %s requires %s"
	ErrDevIllegalStatusTransition    = "illegal processing status transition %s -> %s"
	ErrDevTokenNotRotated            = "refresh did not rotate the %s"
	ErrDevMissingEndpoint            = "server metadata has no %s endpoint"
	ErrDevLaunchLocationInvalid      = "launch response location lacks %s"
	ErrDevDecodeResponse             = "failed to decode %s response"
	ErrDevOAuthError                 = "oauth token endpoint returned error %s"
	ErrDevInvalidAPIKey              = "missing or invalid api key"
	ErrDevStateInvalid               = "launch state is invalid or expired"
	ErrDevIssuerMismatch             = "launch issuer %s does not match configured server"
	ErrDevServerProcess              = "server failed to process the request"
	ErrDevRedisGetNoData             = "no data found in redis for key %s"
	ErrDevRedisSetData               = "failed to set data in redis"
	ErrDevRedisGetData               = "failed to get data from redis"
	ErrDevRedisDeleteData            = "failed to delete data in redis"
	ErrDevRedisUnlock                = "failed to release redis lock"
	ErrDevRedisSortedSet             = "failed to update redis sorted set"
	ErrDevMongoDBUpsertDocument      = "failed to upsert document into mongodb"
	ErrDevMongoDBFindDocument        = "failed to find document in mongodb"
	ErrDevMongoDBIterateDocuments    = "failed to iterate mongodb documents"
	ErrDevMinioFailedToCreateObject  = "failed to create object in bucket %s"
	ErrDevRabbitMQFailedToPublish    = "failed to publish message to queue %s"
	ErrDevTokenStoreSeal             = "failed to seal token details"
	ErrDevTokenStoreOpen             = "failed to open sealed token details"
	ErrDevStaleClaimPolicy           = "stale claim policy failed for %s"
)
