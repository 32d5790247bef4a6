package constvars

const (
	// Generic messages
	ResponseSuccess = "success"
	ResponseError   = "error"

	// Launch session messages
	LaunchSessionCreatedMessage   = "launch session created successfully"
	LaunchSessionRefreshedMessage = "launch session refreshed successfully"
	LaunchSessionDeletedMessage   = "launch session deleted successfully"
	HealthCheckSuccessMessage     = "service is healthy"
)
