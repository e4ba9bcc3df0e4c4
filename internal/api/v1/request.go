package v1

import "time"

type SendMessageRequest struct {
	TenantID     string   `json:"tenant_id" validate:"required"`
	To           string   `json:"to" validate:"required,min=6"`
	Text         string   `json:"text" validate:"required_without=TemplateKey"`
	TemplateKey  string   `json:"template_key"`
	Params       []string `json:"params"`
	Channel      string   `json:"channel" validate:"omitempty,oneof=whatsapp sms"`
	ContactID    *int64   `json:"contact_id"`
	EnrollmentID *int64   `json:"enrollment_id"`
}

type StructuralFiltersRequest struct {
	CohortIDs    []int64  `json:"cohort_ids"`
	SiteIDs      []int64  `json:"site_ids"`
	Statuses     []string `json:"statuses"`
	ProgramNames []string `json:"program_names"`
}

type RecipientFiltersRequest struct {
	Structural StructuralFiltersRequest `json:"structural"`
	Tags       []string                 `json:"tags"`
	Sources    []string                 `json:"sources"`
}

type CreateBroadcastRequest struct {
	TenantID    string                  `json:"tenant_id" validate:"required"`
	Name        string                  `json:"name" validate:"required"`
	Channel     string                  `json:"channel" validate:"omitempty,oneof=whatsapp sms"`
	TemplateKey string                  `json:"template_key"`
	Content     string                  `json:"content" validate:"required_without=TemplateKey"`
	Filters     RecipientFiltersRequest `json:"filters"`
}

type StartBroadcastRequest struct {
	TenantID string `json:"tenant_id"`
}

type ScheduleMessageRequest struct {
	TenantID    string    `json:"tenant_id" validate:"required"`
	To          string    `json:"to" validate:"required,min=6"`
	Text        string    `json:"text" validate:"required_without=TemplateKey"`
	TemplateKey string    `json:"template_key"`
	Channel     string    `json:"channel" validate:"omitempty,oneof=whatsapp sms"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	MaxRetries  int       `json:"max_retries" validate:"omitempty,min=1,max=10"`
}

type EnrollContactRequest struct {
	TenantID  string `json:"tenant_id" validate:"required"`
	Phone     string `json:"phone" validate:"required,min=6"`
	ContactID *int64 `json:"contact_id"`
}

type ClearHandoffRequest struct {
	TenantID string `json:"tenant_id" validate:"required"`
}
