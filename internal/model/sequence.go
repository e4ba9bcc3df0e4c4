package model

import "time"

type Sequence struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	TenantID    string    `gorm:"column:tenant_id;index"`
	Name        string    `gorm:"column:name"`
	Active      bool      `gorm:"column:active"`
	StopOnReply bool      `gorm:"column:stop_on_reply"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Sequence) TableName() string { return "sequences" }

// SequenceStep is one timed step of a drip sequence. DelayDays counts
// from the enrollment's reference date, not from the previous step.
type SequenceStep struct {
	ID          int64   `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	SequenceID  int64   `gorm:"column:sequence_id;index:idx_sequence_step,unique"`
	StepOrder   int     `gorm:"column:step_order;index:idx_sequence_step,unique"`
	TemplateKey *string `gorm:"column:template_key"`
	Content     string  `gorm:"column:content"`
	Channel     string  `gorm:"column:channel"`
	DelayDays   int     `gorm:"column:delay_days"`
}

func (SequenceStep) TableName() string { return "sequence_steps" }

type EnrollmentStatus string

const (
	EnrollmentStatusActive         EnrollmentStatus = "ACTIVE"
	EnrollmentStatusCompleted      EnrollmentStatus = "COMPLETED"
	EnrollmentStatusStoppedByReply EnrollmentStatus = "STOPPED_BY_REPLY"
)

// SequenceEnrollment tracks one contact's progress through a sequence.
// CurrentStep is monotonically non-decreasing.
type SequenceEnrollment struct {
	ID            int64            `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	TenantID      string           `gorm:"column:tenant_id;index"`
	SequenceID    int64            `gorm:"column:sequence_id;index"`
	ContactID     *int64           `gorm:"column:contact_id"`
	Phone         string           `gorm:"column:phone"`
	ReferenceDate time.Time        `gorm:"column:reference_date"`
	CurrentStep   int              `gorm:"column:current_step"`
	NextStepAt    *time.Time       `gorm:"column:next_step_at;index"`
	Status        EnrollmentStatus `gorm:"column:status;index"`
	StoppedReason *string          `gorm:"column:stopped_reason"`
	CompletedAt   *time.Time       `gorm:"column:completed_at"`
	CreatedAt     time.Time        `gorm:"column:created_at"`
	UpdatedAt     time.Time        `gorm:"column:updated_at"`
}

func (SequenceEnrollment) TableName() string { return "sequence_enrollments" }
