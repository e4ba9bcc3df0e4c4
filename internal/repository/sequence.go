package repository

import (
	"context"
	"errors"
	"time"

	"github.com/formaops/messaging-gateway/internal/model"
	"gorm.io/gorm"
)

var ErrSequenceNotFound = errors.New("SEQUENCE_NOT_FOUND")
var ErrSequenceStepNotFound = errors.New("SEQUENCE_STEP_NOT_FOUND")

type SequenceRepository interface {
	GetSequence(ctx context.Context, id int64) (*model.Sequence, error)
	GetStep(ctx context.Context, sequenceID int64, order int) (*model.SequenceStep, error)
	CountSteps(ctx context.Context, sequenceID int64) (int, error)
	CreateEnrollment(ctx context.Context, enrollment *model.SequenceEnrollment) error
	HasActiveEnrollment(ctx context.Context, tenantID string, sequenceID int64, phone string) (bool, error)
	FindDueEnrollments(ctx context.Context, now time.Time, limit int) ([]model.SequenceEnrollment, error)
	FindActiveStopOnReply(ctx context.Context, limit int) ([]model.SequenceEnrollment, error)
	UpdateEnrollment(ctx context.Context, enrollment *model.SequenceEnrollment) error
}

type Sequence struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &Sequence{db: db}
}

func (s *Sequence) GetSequence(ctx context.Context, id int64) (*model.Sequence, error) {
	var sequence model.Sequence

	err := s.db.WithContext(ctx).Where("id = ?", id).First(&sequence).Error
	if err == nil {
		return &sequence, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSequenceNotFound
	}

	return nil, err
}

func (s *Sequence) GetStep(ctx context.Context, sequenceID int64, order int) (*model.SequenceStep, error) {
	var step model.SequenceStep

	err := s.db.WithContext(ctx).
		Where("sequence_id = ? AND step_order = ?", sequenceID, order).
		First(&step).Error
	if err == nil {
		return &step, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSequenceStepNotFound
	}

	return nil, err
}

func (s *Sequence) CountSteps(ctx context.Context, sequenceID int64) (int, error) {
	var count int64

	err := s.db.WithContext(ctx).Model(&model.SequenceStep{}).
		Where("sequence_id = ?", sequenceID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

func (s *Sequence) CreateEnrollment(ctx context.Context, enrollment *model.SequenceEnrollment) error {
	db := GetTx(ctx, s.db)
	return db.Create(enrollment).Error
}

func (s *Sequence) HasActiveEnrollment(ctx context.Context, tenantID string, sequenceID int64, phone string) (bool, error) {
	var count int64

	err := s.db.WithContext(ctx).Model(&model.SequenceEnrollment{}).
		Where("tenant_id = ? AND sequence_id = ? AND phone = ? AND status = ?",
			tenantID, sequenceID, phone, model.EnrollmentStatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (s *Sequence) FindDueEnrollments(ctx context.Context, now time.Time, limit int) ([]model.SequenceEnrollment, error) {
	var enrollments []model.SequenceEnrollment

	err := s.db.WithContext(ctx).
		Where("status = ? AND next_step_at IS NOT NULL AND next_step_at <= ?",
			model.EnrollmentStatusActive, now).
		Order("next_step_at").
		Limit(limit).
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (s *Sequence) FindActiveStopOnReply(ctx context.Context, limit int) ([]model.SequenceEnrollment, error) {
	var enrollments []model.SequenceEnrollment

	err := s.db.WithContext(ctx).
		Joins("JOIN sequences ON sequences.id = sequence_enrollments.sequence_id").
		Where("sequence_enrollments.status = ? AND sequences.stop_on_reply = ?",
			model.EnrollmentStatusActive, true).
		Order("sequence_enrollments.id").
		Limit(limit).
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (s *Sequence) UpdateEnrollment(ctx context.Context, enrollment *model.SequenceEnrollment) error {
	db := GetTx(ctx, s.db)
	enrollment.UpdatedAt = time.Now()
	return db.Model(enrollment).Where("id = ?", enrollment.ID).Updates(enrollment).Error
}
