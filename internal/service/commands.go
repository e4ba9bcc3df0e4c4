package service

import "github.com/formaops/messaging-gateway/internal/repository"

// SendMessageCommand carries one outbound send. Either TemplateKey or
// Text must be set; ContactID/EnrollmentID are optional links used by
// the consent gate and for message-log attribution.
type SendMessageCommand struct {
	To           string   `json:"to"`
	Text         string   `json:"text"`
	TemplateKey  string   `json:"template_key"`
	Params       []string `json:"params"`
	Channel      string   `json:"channel"`
	ContactID    *int64   `json:"contact_id"`
	EnrollmentID *int64   `json:"enrollment_id"`
}

type RecipientFilters struct {
	Structural repository.StructuralFilters `json:"structural"`
	Tags       []string                     `json:"tags"`
	Sources    []string                     `json:"sources"`
}

type CreateBroadcastCommand struct {
	Name        string           `json:"name"`
	Channel     string           `json:"channel"`
	TemplateKey string           `json:"template_key"`
	Content     string           `json:"content"`
	Filters     RecipientFilters `json:"filters"`
}

type StartBroadcastCommand struct {
	BroadcastID int64  `json:"broadcast_id"`
	TenantID    string `json:"tenant_id"`
	Resume      bool   `json:"resume"`
}

type ScheduleMessageCommand struct {
	To          string
	Text        string
	TemplateKey string
	Channel     string
	ScheduledAt int64
	MaxRetries  int
}
