package model

import "time"

const AuditActorSystem = "SYSTEM"

const (
	AuditActionMessageSent    = "message.sent"
	AuditActionMessageFailed  = "message.failed"
	AuditActionMessageBlocked = "message.blocked"
	AuditActionOptOut         = "consent.opt_out"
)

// AuditLog is the append-only record of compliance-relevant actions.
type AuditLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	TenantID  string    `gorm:"column:tenant_id;index"`
	Actor     string    `gorm:"column:actor"`
	Action    string    `gorm:"column:action"`
	Entity    string    `gorm:"column:entity"`
	EntityID  string    `gorm:"column:entity_id"`
	Payload   string    `gorm:"column:payload"` // structured JSON
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
