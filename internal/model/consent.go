package model

import "time"

// ConsentRecord is the per-contact data-protection state. A withdrawn
// or anonymized record blocks any marketing send to the contact.
type ConsentRecord struct {
	ID           int64      `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	TenantID     string     `gorm:"column:tenant_id;index"`
	ContactID    int64      `gorm:"column:contact_id;uniqueIndex"`
	ConsentGiven bool       `gorm:"column:consent_given"`
	ConsentText  string     `gorm:"column:consent_text"`
	Method       string     `gorm:"column:method"`
	LegalBasis   string     `gorm:"column:legal_basis"`
	WithdrawnAt  *time.Time `gorm:"column:withdrawn_at"`
	AnonymizedAt *time.Time `gorm:"column:anonymized_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (ConsentRecord) TableName() string { return "consent_records" }
