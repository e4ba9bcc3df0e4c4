package model

import "time"

type MessageDirection string

const (
	DirectionInbound  MessageDirection = "INBOUND"
	DirectionOutbound MessageDirection = "OUTBOUND"
)

type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "SENT"
	MessageStatusDelivered MessageStatus = "DELIVERED"
	MessageStatusRead      MessageStatus = "READ"
	MessageStatusFailed    MessageStatus = "FAILED"
	MessageStatusReceived  MessageStatus = "RECEIVED"
)

// Message is the append-mostly log of every send attempt and every
// ingested inbound message. Rows are immutable once written except for
// delivery-status updates keyed by the provider message id.
type Message struct {
	ID            int64            `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	TenantID      string           `gorm:"column:tenant_id;index;index:idx_tenant_provider_msg,unique"`
	Direction     MessageDirection `gorm:"column:direction"`
	Channel       string           `gorm:"column:channel"`
	Status        MessageStatus    `gorm:"column:status"`
	Phone         string           `gorm:"column:phone;index"`
	Content       string           `gorm:"column:content"`
	TemplateKey   *string          `gorm:"column:template_key"`
	ProviderMsgID *string          `gorm:"column:provider_msg_id;index:idx_tenant_provider_msg,unique"`
	ContactID     *int64           `gorm:"column:contact_id"`
	EnrollmentID  *int64           `gorm:"column:enrollment_id"`
	ErrorText     *string          `gorm:"column:error_text"`
	CreatedAt     time.Time        `gorm:"column:created_at"`
}

func (Message) TableName() string { return "messages" }
