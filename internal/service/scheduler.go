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

const dispatchBatchSize = 50
const defaultMaxRetries = 3

// retryBackoffMinutes is indexed by the new retry count minus one and
// clamped to its last entry. Deliberately a small fixed table, not
// unbounded exponential growth.
var retryBackoffMinutes = []int{5, 30, 120}

type SchedulerService interface {
	ScheduleMessage(ctx context.Context, tenantID string, cmd ScheduleMessageCommand) (int64, error)
	ProcessScheduledMessages(ctx context.Context) (DispatchStats, error)
	CancelScheduledMessage(ctx context.Context, id int64) error
}

type scheduler struct {
	scheduled repository.ScheduledMessageRepository
	router    Router
	logger    *zap.Logger
}

func NewSchedulerService(scheduled repository.ScheduledMessageRepository, router Router, logger *zap.Logger) SchedulerService {
	return &scheduler{scheduled: scheduled, router: router, logger: logger}
}

func (s *scheduler) ScheduleMessage(ctx context.Context, tenantID string, cmd ScheduleMessageCommand) (int64, error) {
	maxRetries := cmd.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	var templateKey *string
	if cmd.TemplateKey != "" {
		templateKey = &cmd.TemplateKey
	}

	message := &model.ScheduledMessage{
		TenantID:    tenantID,
		Phone:       phone.Normalize(cmd.To),
		Content:     cmd.Text,
		TemplateKey: templateKey,
		Channel:     cmd.Channel,
		ScheduledAt: time.Unix(cmd.ScheduledAt, 0),
		Status:      model.ScheduledStatusPending,
		MaxRetries:  maxRetries,
	}

	if err := s.scheduled.Create(ctx, message); err != nil {
		s.logger.Error("Failed to enqueue scheduled message",
			zap.Error(err),
			zap.String("tenantID", tenantID))
		return 0, ErrDatabase
	}

	return message.ID, nil
}

// ProcessScheduledMessages drains up to one batch of due PENDING rows,
// earliest first. Each row is claimed PROCESSING before the send so a
// concurrent invocation cannot dispatch it twice.
func (s *scheduler) ProcessScheduledMessages(ctx context.Context) (DispatchStats, error) {
	var stats DispatchStats

	due, err := s.scheduled.FindDue(ctx, time.Now(), dispatchBatchSize)
	if err != nil {
		s.logger.Error("Failed to query due scheduled messages", zap.Error(err))
		return stats, ErrDatabase
	}

	if len(due) == 0 {
		return stats, nil
	}

	s.logger.Info("Dispatching scheduled messages", zap.Int("due", len(due)))

	for _, message := range due {
		if err := s.scheduled.ClaimProcessing(ctx, message.ID); err != nil {
			if errors.Is(err, repository.ErrNoRowsAffected) {
				s.logger.Debug("Scheduled message claimed elsewhere",
					zap.Int64("scheduledID", message.ID))
				continue
			}

			s.logger.Error("Failed to claim scheduled message",
				zap.Error(err),
				zap.Int64("scheduledID", message.ID))
			continue
		}

		stats.Processed++

		cmd := SendMessageCommand{
			To:           message.Phone,
			Text:         message.Content,
			Channel:      message.Channel,
			ContactID:    message.ContactID,
			EnrollmentID: message.EnrollmentID,
		}
		if message.TemplateKey != nil {
			cmd.TemplateKey = *message.TemplateKey
		}

		result := s.router.SendMessage(ctx, message.TenantID, cmd)

		if result.Success {
			var logID *int64
			if result.MessageLogID != 0 {
				id := result.MessageLogID
				logID = &id
			}

			if err := s.scheduled.MarkSent(ctx, message.ID, logID); err != nil {
				s.logger.Error("Failed to mark scheduled message sent",
					zap.Error(err),
					zap.Int64("scheduledID", message.ID))
			}

			stats.Sent++
			continue
		}

		s.handleFailure(ctx, &message, result.ErrorText, &stats)
	}

	s.logger.Info("Scheduled dispatch finished",
		zap.Int("processed", stats.Processed),
		zap.Int("sent", stats.Sent),
		zap.Int("failed", stats.Failed),
		zap.Int("retried", stats.Retried))

	return stats, nil
}

func (s *scheduler) handleFailure(ctx context.Context, message *model.ScheduledMessage, lastError string, stats *DispatchStats) {
	retryCount := message.RetryCount + 1

	if retryCount >= message.MaxRetries {
		s.logger.Warn("Scheduled message exhausted retries",
			zap.Int64("scheduledID", message.ID),
			zap.Int("retryCount", retryCount),
			zap.String("lastError", lastError))

		if err := s.scheduled.MarkFailed(ctx, message.ID, retryCount, lastError); err != nil {
			s.logger.Error("Failed to mark scheduled message failed",
				zap.Error(err),
				zap.Int64("scheduledID", message.ID))
		}

		stats.Failed++
		return
	}

	nextAt := time.Now().Add(backoffDelay(retryCount))

	s.logger.Info("Scheduled message will retry",
		zap.Int64("scheduledID", message.ID),
		zap.Int("retryCount", retryCount),
		zap.Time("nextAttempt", nextAt))

	if err := s.scheduled.Reschedule(ctx, message.ID, retryCount, nextAt, lastError); err != nil {
		s.logger.Error("Failed to reschedule message",
			zap.Error(err),
			zap.Int64("scheduledID", message.ID))
	}

	stats.Retried++
}

func (s *scheduler) CancelScheduledMessage(ctx context.Context, id int64) error {
	err := s.scheduled.Cancel(ctx, id)
	if err == nil {
		return nil
	}

	if errors.Is(err, repository.ErrNoRowsAffected) {
		return ErrScheduledNotCancellable
	}

	return ErrDatabase
}

func backoffDelay(retryCount int) time.Duration {
	index := retryCount - 1
	if index >= len(retryBackoffMinutes) {
		index = len(retryBackoffMinutes) - 1
	}
	if index < 0 {
		index = 0
	}

	return time.Duration(retryBackoffMinutes[index]) * time.Minute
}
