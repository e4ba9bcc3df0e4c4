package msgprovider

const (
	ErrorCodeServerError      = "SERVER_ERROR"      // For 5xx HTTP status
	ErrorCodeTimeout          = "TIMEOUT"           // For context timeout
	ErrorCodeInvalidRecipient = "INVALID_RECIPIENT" // For 400/validation errors
	ErrorCodeUnauthorized     = "UNAUTHORIZED"      // For 401/403, bad credentials
	ErrorCodeNetworkError     = "NETWORK_ERROR"     // For connection failures
)
