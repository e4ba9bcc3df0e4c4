package repository

import (
	"context"
	"errors"
	"time"

	"github.com/formaops/messaging-gateway/internal/model"
	"gorm.io/gorm"
)

var ErrScheduledMessageNotFound = errors.New("SCHEDULED_MESSAGE_NOT_FOUND")

type ScheduledMessageRepository interface {
	Create(ctx context.Context, message *model.ScheduledMessage) error
	GetByID(ctx context.Context, id int64) (*model.ScheduledMessage, error)
	FindDue(ctx context.Context, now time.Time, limit int) ([]model.ScheduledMessage, error)
	ClaimProcessing(ctx context.Context, id int64) error
	MarkSent(ctx context.Context, id int64, messageID *int64) error
	MarkFailed(ctx context.Context, id int64, retryCount int, lastError string) error
	Reschedule(ctx context.Context, id int64, retryCount int, nextAt time.Time, lastError string) error
	Cancel(ctx context.Context, id int64) error
	CancelPendingByEnrollment(ctx context.Context, enrollmentID int64) (int64, error)
}

type ScheduledMessage struct {
	db *gorm.DB
}

func NewScheduledMessageRepository(db *gorm.DB) ScheduledMessageRepository {
	return &ScheduledMessage{db: db}
}

func (s *ScheduledMessage) Create(ctx context.Context, message *model.ScheduledMessage) error {
	db := GetTx(ctx, s.db)
	return db.Create(message).Error
}

func (s *ScheduledMessage) GetByID(ctx context.Context, id int64) (*model.ScheduledMessage, error) {
	var message model.ScheduledMessage

	err := s.db.WithContext(ctx).Where("id = ?", id).First(&message).Error
	if err == nil {
		return &message, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrScheduledMessageNotFound
	}

	return nil, err
}

func (s *ScheduledMessage) FindDue(ctx context.Context, now time.Time, limit int) ([]model.ScheduledMessage, error) {
	var messages []model.ScheduledMessage

	err := s.db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", model.ScheduledStatusPending, now).
		Order("scheduled_at").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// ClaimProcessing flips PENDING to PROCESSING only when the row is
// still PENDING, so a second invoker cannot dispatch the same row.
func (s *ScheduledMessage) ClaimProcessing(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Model(&model.ScheduledMessage{}).
		Where("id = ? AND status = ?", id, model.ScheduledStatusPending).
		Updates(map[string]interface{}{"status": model.ScheduledStatusProcessing, "updated_at": time.Now()})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

func (s *ScheduledMessage) MarkSent(ctx context.Context, id int64, messageID *int64) error {
	return s.db.WithContext(ctx).Model(&model.ScheduledMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.ScheduledStatusSent,
			"message_id": messageID,
			"updated_at": time.Now(),
		}).Error
}

func (s *ScheduledMessage) MarkFailed(ctx context.Context, id int64, retryCount int, lastError string) error {
	return s.db.WithContext(ctx).Model(&model.ScheduledMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      model.ScheduledStatusFailed,
			"retry_count": retryCount,
			"last_error":  lastError,
			"updated_at":  time.Now(),
		}).Error
}

func (s *ScheduledMessage) Reschedule(ctx context.Context, id int64, retryCount int, nextAt time.Time, lastError string) error {
	return s.db.WithContext(ctx).Model(&model.ScheduledMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       model.ScheduledStatusPending,
			"retry_count":  retryCount,
			"scheduled_at": nextAt,
			"last_error":   lastError,
			"updated_at":   time.Now(),
		}).Error
}

func (s *ScheduledMessage) Cancel(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Model(&model.ScheduledMessage{}).
		Where("id = ? AND status = ?", id, model.ScheduledStatusPending).
		Updates(map[string]interface{}{"status": model.ScheduledStatusCancelled, "updated_at": time.Now()})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

func (s *ScheduledMessage) CancelPendingByEnrollment(ctx context.Context, enrollmentID int64) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.ScheduledMessage{}).
		Where("enrollment_id = ? AND status = ?", enrollmentID, model.ScheduledStatusPending).
		Updates(map[string]interface{}{"status": model.ScheduledStatusCancelled, "updated_at": time.Now()})

	return result.RowsAffected, result.Error
}
