package model

import "time"

type ResponseType string

const (
	ResponseTypeText    ResponseType = "TEXT"
	ResponseTypeButtons ResponseType = "BUTTONS"
	ResponseTypeList    ResponseType = "LIST"
	ResponseTypeHandoff ResponseType = "HANDOFF"
)

// ChatbotRule matches inbound text by comma-separated keywords or a
// regex pattern. The reserved keyword "*" marks the fallback rule used
// when nothing else matches.
type ChatbotRule struct {
	ID              int64        `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	TenantID        string       `gorm:"column:tenant_id;index"`
	Name            string       `gorm:"column:name"`
	Keywords        string       `gorm:"column:keywords"`
	Pattern         string       `gorm:"column:pattern"`
	ResponseType    ResponseType `gorm:"column:response_type"`
	ResponseText    string       `gorm:"column:response_text"`
	ResponsePayload string       `gorm:"column:response_payload"` // serialized buttons/list payload
	Priority        int          `gorm:"column:priority"`
	Active          bool         `gorm:"column:active"`
	CreatedAt       time.Time    `gorm:"column:created_at"`
	UpdatedAt       time.Time    `gorm:"column:updated_at"`
}

func (ChatbotRule) TableName() string { return "chatbot_rules" }

// ChatbotConversation is the per-contact automation state: bot reply
// cooldown, human handoff and the last menu sent. Upserted on every
// inbound message.
type ChatbotConversation struct {
	ID             int64      `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	TenantID       string     `gorm:"column:tenant_id;index:idx_tenant_phone,unique"`
	Phone          string     `gorm:"column:phone;index:idx_tenant_phone,unique"`
	LastBotReplyAt *time.Time `gorm:"column:last_bot_reply_at"`
	HandoffActive  bool       `gorm:"column:handoff_active"`
	HandoffAt      *time.Time `gorm:"column:handoff_at"`
	LastMenu       string     `gorm:"column:last_menu"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (ChatbotConversation) TableName() string { return "chatbot_conversations" }
