package constvars

const (
	RedisKeyClaimPrefix   = "koppeltaal:claim:"
	RedisKeyClaimsOpen    = "koppeltaal:claims:open"
	RedisKeySessionPrefix = "koppeltaal:session:"
	RedisKeyWatchdogLock  = "koppeltaal:lock:claim-watchdog"
)

const (
	MongoCollectionClaims = "claims"
)

const (
	ArchiveContentType = MIMEApplicationFHIRJSON
)
