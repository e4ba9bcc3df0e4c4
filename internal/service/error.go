package service

import "errors"

var (
	ErrTenantNotFound          = errors.New("TENANT_NOT_FOUND")
	ErrBroadcastNotFound       = errors.New("BROADCAST_NOT_FOUND")
	ErrBroadcastInvalidState   = errors.New("BROADCAST_INVALID_STATE")
	ErrNoRecipients            = errors.New("NO_RECIPIENTS")
	ErrScheduledNotCancellable = errors.New("SCHEDULED_NOT_CANCELLABLE")
	ErrSequenceNotFound        = errors.New("SEQUENCE_NOT_FOUND")
	ErrSequenceInactive        = errors.New("SEQUENCE_INACTIVE")
	ErrAlreadyEnrolled         = errors.New("ALREADY_ENROLLED")
	ErrDatabase                = errors.New("DATABASE_ERROR")
)

type Error struct {
	Code  string
	Cause error
}

func NewServiceError(code string, cause error) error {
	return Error{Code: code, Cause: cause}
}

func (e Error) Error() string {
	return e.Cause.Error()
}

func (e Error) Unwrap() error {
	return e.Cause
}
