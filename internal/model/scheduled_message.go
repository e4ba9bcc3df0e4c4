package model

import "time"

type ScheduledStatus string

const (
	ScheduledStatusPending    ScheduledStatus = "PENDING"
	ScheduledStatusProcessing ScheduledStatus = "PROCESSING"
	ScheduledStatusSent       ScheduledStatus = "SENT"
	ScheduledStatusFailed     ScheduledStatus = "FAILED"
	ScheduledStatusCancelled  ScheduledStatus = "CANCELLED"
)

// ScheduledMessage is a durably queued single send. RetryCount never
// exceeds MaxRetries, and a FAILED row is never re-queued.
type ScheduledMessage struct {
	ID           int64           `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	TenantID     string          `gorm:"column:tenant_id;index"`
	Phone        string          `gorm:"column:phone"`
	Content      string          `gorm:"column:content"`
	TemplateKey  *string         `gorm:"column:template_key"`
	Channel      string          `gorm:"column:channel"`
	ScheduledAt  time.Time       `gorm:"column:scheduled_at;index"`
	Status       ScheduledStatus `gorm:"column:status;index"`
	RetryCount   int             `gorm:"column:retry_count"`
	MaxRetries   int             `gorm:"column:max_retries"`
	LastError    *string         `gorm:"column:last_error"`
	MessageID    *int64          `gorm:"column:message_id"`
	EnrollmentID *int64          `gorm:"column:enrollment_id;index"`
	ContactID    *int64          `gorm:"column:contact_id"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at"`
}

func (ScheduledMessage) TableName() string { return "scheduled_messages" }
