package service

import (
	"context"
	"errors"
	"time"

	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/formaops/messaging-gateway/internal/repository"
	"github.com/formaops/messaging-gateway/pkg/phone"
	"go.uber.org/zap"
)

const enrollmentBatchSize = 100

// minStepLeadTime is the clamp applied when a long-idle enrollment's
// computed due time is already in the past: the step is scheduled at
// least this far in the future rather than backdated.
const minStepLeadTime = time.Minute

type SequenceService interface {
	EnrollContact(ctx context.Context, tenantID string, sequenceID int64, phoneNumber string, contactID *int64) (int64, error)
	AdvanceSequences(ctx context.Context) (AdvanceStats, error)
	CheckStopConditions(ctx context.Context) (int, error)
}

type sequence struct {
	sequences  repository.SequenceRepository
	scheduled  repository.ScheduledMessageRepository
	messages   repository.MessageRepository
	tenantCfgs repository.TenantConfigRepository
	logger     *zap.Logger
}

func NewSequenceService(sequences repository.SequenceRepository, scheduled repository.ScheduledMessageRepository,
	messages repository.MessageRepository, tenantCfgs repository.TenantConfigRepository,
	logger *zap.Logger) SequenceService {
	return &sequence{
		sequences:  sequences,
		scheduled:  scheduled,
		messages:   messages,
		tenantCfgs: tenantCfgs,
		logger:     logger,
	}
}

// EnrollContact starts a contact on a sequence. The first step becomes
// due at referenceDate + its delay, clamped to at least one minute out;
// a contact already active on the sequence is not enrolled twice.
func (s *sequence) EnrollContact(ctx context.Context, tenantID string, sequenceID int64,
	phoneNumber string, contactID *int64) (int64, error) {
	seq, err := s.sequences.GetSequence(ctx, sequenceID)
	if err != nil {
		if errors.Is(err, repository.ErrSequenceNotFound) {
			return 0, ErrSequenceNotFound
		}
		return 0, ErrDatabase
	}

	if !seq.Active {
		return 0, ErrSequenceInactive
	}

	steps, err := s.sequences.CountSteps(ctx, sequenceID)
	if err != nil {
		return 0, ErrDatabase
	}
	if steps == 0 {
		return 0, ErrSequenceInactive
	}

	normalized := phone.Normalize(phoneNumber)

	active, err := s.sequences.HasActiveEnrollment(ctx, tenantID, sequenceID, normalized)
	if err != nil {
		return 0, ErrDatabase
	}
	if active {
		return 0, ErrAlreadyEnrolled
	}

	firstStep, err := s.sequences.GetStep(ctx, sequenceID, 1)
	if err != nil {
		return 0, ErrDatabase
	}

	now := time.Now()
	nextAt := now.AddDate(0, 0, firstStep.DelayDays)
	if earliest := now.Add(minStepLeadTime); nextAt.Before(earliest) {
		nextAt = earliest
	}

	enrollment := &model.SequenceEnrollment{
		TenantID:      tenantID,
		SequenceID:    sequenceID,
		ContactID:     contactID,
		Phone:         normalized,
		ReferenceDate: now,
		CurrentStep:   1,
		NextStepAt:    &nextAt,
		Status:        model.EnrollmentStatusActive,
	}

	if err := s.sequences.CreateEnrollment(ctx, enrollment); err != nil {
		s.logger.Error("Failed to create enrollment",
			zap.Error(err),
			zap.String("tenantID", tenantID),
			zap.Int64("sequenceID", sequenceID))
		return 0, ErrDatabase
	}

	s.logger.Info("Contact enrolled",
		zap.Int64("enrollmentID", enrollment.ID),
		zap.Int64("sequenceID", sequenceID),
		zap.String("tenantID", tenantID),
		zap.Time("firstStepAt", nextAt))

	return enrollment.ID, nil
}

// AdvanceSequences materializes the due step of every ACTIVE
// enrollment as an immediately scheduled message and moves the cursor
// forward. CurrentStep never decreases.
func (s *sequence) AdvanceSequences(ctx context.Context) (AdvanceStats, error) {
	var stats AdvanceStats

	due, err := s.sequences.FindDueEnrollments(ctx, time.Now(), enrollmentBatchSize)
	if err != nil {
		s.logger.Error("Failed to query due enrollments", zap.Error(err))
		return stats, ErrDatabase
	}

	for _, enrollment := range due {
		if err := s.advanceEnrollment(ctx, enrollment, &stats); err != nil {
			s.logger.Error("Failed to advance enrollment",
				zap.Error(err),
				zap.Int64("enrollmentID", enrollment.ID))
		}
	}

	if stats.Advanced > 0 || stats.Completed > 0 {
		s.logger.Info("Sequence advance finished",
			zap.Int("advanced", stats.Advanced),
			zap.Int("completed", stats.Completed))
	}

	return stats, nil
}

func (s *sequence) advanceEnrollment(ctx context.Context, enrollment model.SequenceEnrollment, stats *AdvanceStats) error {
	step, err := s.sequences.GetStep(ctx, enrollment.SequenceID, enrollment.CurrentStep)
	if err != nil {
		if errors.Is(err, repository.ErrSequenceStepNotFound) {
			// Cursor already past the last step; nothing left to send.
			return s.completeEnrollment(ctx, enrollment, stats)
		}
		return err
	}

	message := &model.ScheduledMessage{
		TenantID:     enrollment.TenantID,
		Phone:        enrollment.Phone,
		Content:      step.Content,
		TemplateKey:  step.TemplateKey,
		Channel:      step.Channel,
		ScheduledAt:  time.Now(),
		Status:       model.ScheduledStatusPending,
		MaxRetries:   defaultMaxRetries,
		EnrollmentID: &enrollment.ID,
		ContactID:    enrollment.ContactID,
	}

	if err := s.scheduled.Create(ctx, message); err != nil {
		return err
	}

	nextOrder := enrollment.CurrentStep + 1

	nextStep, err := s.sequences.GetStep(ctx, enrollment.SequenceID, nextOrder)
	if err != nil {
		if errors.Is(err, repository.ErrSequenceStepNotFound) {
			enrollment.CurrentStep = nextOrder
			return s.completeEnrollment(ctx, enrollment, stats)
		}
		return err
	}

	nextAt := enrollment.ReferenceDate.AddDate(0, 0, nextStep.DelayDays)
	if earliest := time.Now().Add(minStepLeadTime); nextAt.Before(earliest) {
		nextAt = earliest
	}

	enrollment.CurrentStep = nextOrder
	enrollment.NextStepAt = &nextAt

	if err := s.sequences.UpdateEnrollment(ctx, &enrollment); err != nil {
		return err
	}

	stats.Advanced++

	s.logger.Debug("Enrollment advanced",
		zap.Int64("enrollmentID", enrollment.ID),
		zap.Int("currentStep", enrollment.CurrentStep),
		zap.Time("nextStepAt", nextAt))

	return nil
}

func (s *sequence) completeEnrollment(ctx context.Context, enrollment model.SequenceEnrollment, stats *AdvanceStats) error {
	now := time.Now()
	enrollment.Status = model.EnrollmentStatusCompleted
	enrollment.CompletedAt = &now

	if err := s.sequences.UpdateEnrollment(ctx, &enrollment); err != nil {
		return err
	}

	stats.Completed++

	s.logger.Info("Enrollment completed",
		zap.Int64("enrollmentID", enrollment.ID),
		zap.Int64("sequenceID", enrollment.SequenceID))

	return nil
}

// CheckStopConditions stops enrollments of stop-on-reply sequences for
// which any inbound message arrived after enrollment. Reply content is
// never inspected, only presence.
func (s *sequence) CheckStopConditions(ctx context.Context) (int, error) {
	enrollments, err := s.sequences.FindActiveStopOnReply(ctx, enrollmentBatchSize)
	if err != nil {
		s.logger.Error("Failed to query stop-on-reply enrollments", zap.Error(err))
		return 0, ErrDatabase
	}

	countryCodes := make(map[string]string)
	stopped := 0

	for _, enrollment := range enrollments {
		countryCode, ok := countryCodes[enrollment.TenantID]
		if !ok {
			if cfg, err := s.tenantCfgs.GetByTenantID(ctx, enrollment.TenantID); err == nil {
				countryCode = cfg.CountryCode
			}
			countryCodes[enrollment.TenantID] = countryCode
		}

		variants := phone.Variants(enrollment.Phone, countryCode)

		replied, err := s.messages.ExistsInboundSince(ctx, enrollment.TenantID, variants, enrollment.CreatedAt)
		if err != nil {
			s.logger.Error("Failed to check inbound replies for enrollment",
				zap.Error(err),
				zap.Int64("enrollmentID", enrollment.ID))
			continue
		}

		if !replied {
			continue
		}

		now := time.Now()
		reason := "inbound reply received"
		enrollment.Status = model.EnrollmentStatusStoppedByReply
		enrollment.StoppedReason = &reason
		enrollment.CompletedAt = &now

		if err := s.sequences.UpdateEnrollment(ctx, &enrollment); err != nil {
			s.logger.Error("Failed to stop enrollment",
				zap.Error(err),
				zap.Int64("enrollmentID", enrollment.ID))
			continue
		}

		cancelled, err := s.scheduled.CancelPendingByEnrollment(ctx, enrollment.ID)
		if err != nil {
			s.logger.Error("Failed to cancel pending scheduled messages",
				zap.Error(err),
				zap.Int64("enrollmentID", enrollment.ID))
		}

		stopped++

		s.logger.Info("Enrollment stopped by reply",
			zap.Int64("enrollmentID", enrollment.ID),
			zap.Int64("cancelledScheduled", cancelled))
	}

	return stopped, nil
}
