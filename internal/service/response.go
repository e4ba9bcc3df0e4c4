package service

import "github.com/formaops/messaging-gateway/internal/model"

// Legal bases recognized by the consent gate.
const (
	LegalBasisContract = "contract"
	LegalBasisExempt   = "exempt"
	LegalBasisConsent  = "consent"
)

// SendResult is the structured outcome of a routed send. Failures are
// values, not errors: a blocked or rejected send is an expected result.
type SendResult struct {
	Success    bool   `json:"success"`
	MessageID  string `json:"message_id,omitempty"`
	Status     string `json:"status"`
	ErrorCode  string `json:"error_code,omitempty"`
	ErrorText  string `json:"error,omitempty"`
	LegalBasis string `json:"legal_basis,omitempty"`

	// MessageLogID is the local message-log row written for this
	// attempt; zero when persistence was skipped or failed.
	MessageLogID int64 `json:"-"`
}

type ConsentDecision struct {
	Allowed    bool   `json:"allowed"`
	Reason     string `json:"reason,omitempty"`
	LegalBasis string `json:"legal_basis,omitempty"`
}

type CreateBroadcastResponse struct {
	BroadcastID     int64 `json:"broadcast_id"`
	TotalRecipients int   `json:"total_recipients"`
}

type BroadcastProgress struct {
	BroadcastID int64                 `json:"broadcast_id"`
	Status      model.BroadcastStatus `json:"status"`
	Total       int                   `json:"total"`
	Pending     int                   `json:"pending"`
	Sent        int                   `json:"sent"`
	Failed      int                   `json:"failed"`
	Progress    int                   `json:"progress"`
}

// DispatchStats are the aggregate counters of one scheduled-queue drain.
type DispatchStats struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	Retried   int `json:"retried"`
}

// AdvanceStats are the aggregate counters of one sequence pass.
type AdvanceStats struct {
	Advanced  int `json:"advanced"`
	Completed int `json:"completed"`
	Stopped   int `json:"stopped"`
}
