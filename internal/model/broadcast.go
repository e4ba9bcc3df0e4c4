package model

import "time"

type BroadcastStatus string

const (
	BroadcastStatusDraft     BroadcastStatus = "DRAFT"
	BroadcastStatusSending   BroadcastStatus = "SENDING"
	BroadcastStatusCompleted BroadcastStatus = "COMPLETED"
	BroadcastStatusFailed    BroadcastStatus = "FAILED"
	BroadcastStatusCancelled BroadcastStatus = "CANCELLED"
	BroadcastStatusPaused    BroadcastStatus = "PAUSED"
)

type Broadcast struct {
	ID              int64           `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	TenantID        string          `gorm:"column:tenant_id;index"`
	Name            string          `gorm:"column:name"`
	Channel         string          `gorm:"column:channel"`
	TemplateKey     *string         `gorm:"column:template_key"`
	Content         string          `gorm:"column:content"`
	Filters         string          `gorm:"column:filters"` // serialized RecipientFilters
	TotalRecipients int             `gorm:"column:total_recipients"`
	SentCount       int             `gorm:"column:sent_count"`
	FailedCount     int             `gorm:"column:failed_count"`
	DeliveredCount  int             `gorm:"column:delivered_count"`
	Status          BroadcastStatus `gorm:"column:status"`
	StartedAt       *time.Time      `gorm:"column:started_at"`
	CompletedAt     *time.Time      `gorm:"column:completed_at"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

func (Broadcast) TableName() string { return "broadcasts" }

type RecipientStatus string

const (
	RecipientStatusPending RecipientStatus = "PENDING"
	RecipientStatusSent    RecipientStatus = "SENT"
	RecipientStatusFailed  RecipientStatus = "FAILED"
)

// BroadcastRecipient is one resolved recipient of a broadcast, unique
// per broadcast by normalized phone. Source records which filter
// strategy resolved the contact first.
type BroadcastRecipient struct {
	ID            int64           `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	BroadcastID   int64           `gorm:"column:broadcast_id;index:idx_broadcast_phone,unique"`
	TenantID      string          `gorm:"column:tenant_id;index"`
	Phone         string          `gorm:"column:phone;index:idx_broadcast_phone,unique"`
	ContactID     *int64          `gorm:"column:contact_id"`
	Source        string          `gorm:"column:source"`
	Status        RecipientStatus `gorm:"column:status"`
	ProviderMsgID *string         `gorm:"column:provider_msg_id"`
	ErrorText     *string         `gorm:"column:error_text"`
	SentAt        *time.Time      `gorm:"column:sent_at"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
}

func (BroadcastRecipient) TableName() string { return "broadcast_recipients" }
