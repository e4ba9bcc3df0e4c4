package constants

const (
	ErrCodeTenantNotFound        = "TENANT_NOT_FOUND"
	ErrCodeConfigMissing         = "CONFIG_MISSING"
	ErrCodeConfigIncomplete      = "CONFIG_INCOMPLETE"
	ErrCodeConsentBlocked        = "CONSENT_BLOCKED"
	ErrCodeTemplateNotFound      = "TEMPLATE_NOT_FOUND"
	ErrCodeProviderError         = "PROVIDER_ERROR"
	ErrCodeValidationError       = "VALIDATION_ERROR"
	ErrCodeBroadcastNotFound     = "BROADCAST_NOT_FOUND"
	ErrCodeBroadcastInvalidState = "BROADCAST_INVALID_STATE"
	ErrCodeSequenceNotFound      = "SEQUENCE_NOT_FOUND"
	ErrCodeSequenceInactive      = "SEQUENCE_INACTIVE"
	ErrCodeAlreadyEnrolled       = "ALREADY_ENROLLED"
	ErrCodeInternalError         = "INTERNAL_ERROR"
	ErrCodeInvalidRequestBody    = "INVALID_REQUEST_BODY"
)

var errorMessages = map[string]string{
	ErrCodeTenantNotFound:        "tenant not found",
	ErrCodeConfigMissing:         "messaging is not configured for this tenant",
	ErrCodeConfigIncomplete:      "provider configuration is incomplete",
	ErrCodeConsentBlocked:        "send blocked by consent policy",
	ErrCodeTemplateNotFound:      "template not found",
	ErrCodeProviderError:         "provider rejected the message",
	ErrCodeValidationError:       "invalid message request",
	ErrCodeBroadcastNotFound:     "broadcast not found",
	ErrCodeBroadcastInvalidState: "broadcast is not in a valid state for this operation",
	ErrCodeSequenceNotFound:      "sequence not found",
	ErrCodeSequenceInactive:      "sequence is inactive or has no steps",
	ErrCodeAlreadyEnrolled:       "contact is already enrolled in this sequence",
	ErrCodeInternalError:         "Internal server error",
	ErrCodeInvalidRequestBody:    "failed to parse request body",
}

func GetErrorMessage(code string) string {
	if msg, exists := errorMessages[code]; exists {
		return msg
	}
	return errorMessages[ErrCodeInternalError]
}

func GetHTTPStatus(code string) int {
	switch code {
	case ErrCodeInvalidRequestBody, ErrCodeValidationError:
		return 400
	case ErrCodeConsentBlocked:
		return 403
	case ErrCodeTenantNotFound, ErrCodeBroadcastNotFound, ErrCodeTemplateNotFound, ErrCodeSequenceNotFound:
		return 404
	case ErrCodeBroadcastInvalidState, ErrCodeAlreadyEnrolled:
		return 409
	case ErrCodeSequenceInactive:
		return 422
	case ErrCodeConfigMissing, ErrCodeConfigIncomplete:
		return 422
	case ErrCodeProviderError:
		return 502
	default:
		return 500
	}
}
