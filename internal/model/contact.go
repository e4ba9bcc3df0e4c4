package model

import "time"

type ContactKind string

const (
	ContactKindLearner   ContactKind = "LEARNER"
	ContactKindMarketing ContactKind = "MARKETING"
)

// Contact is the CRM's contact record. The table belongs to the wider
// platform; this subsystem only reads it, for recipient resolution and
// for linking message rows to people.
type Contact struct {
	ID          int64       `gorm:"primaryKey;column:id;<-:false"`
	TenantID    string      `gorm:"column:tenant_id"`
	FirstName   string      `gorm:"column:first_name"`
	LastName    string      `gorm:"column:last_name"`
	Phone       string      `gorm:"column:phone"`
	Kind        ContactKind `gorm:"column:kind"`
	Source      string      `gorm:"column:source"`
	CohortID    *int64      `gorm:"column:cohort_id"`
	SiteID      *int64      `gorm:"column:site_id"`
	Status      string      `gorm:"column:status"`
	ProgramName string      `gorm:"column:program_name"`
	CreatedAt   time.Time   `gorm:"column:created_at"`
}

func (Contact) TableName() string { return "contacts" }

// ContactTag is the CRM's contact tagging table, read-only here.
type ContactTag struct {
	ContactID int64  `gorm:"column:contact_id"`
	Tag       string `gorm:"column:tag"`
}

func (ContactTag) TableName() string { return "contact_tags" }
