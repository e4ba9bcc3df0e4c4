package mocks

import (
	"context"
	"time"

	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/stretchr/testify/mock"
)

type ScheduledMessageRepository struct {
	mock.Mock
}

func (m *ScheduledMessageRepository) Create(ctx context.Context, message *model.ScheduledMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *ScheduledMessageRepository) GetByID(ctx context.Context, id int64) (*model.ScheduledMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScheduledMessage), args.Error(1)
}

func (m *ScheduledMessageRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]model.ScheduledMessage, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ScheduledMessage), args.Error(1)
}

func (m *ScheduledMessageRepository) ClaimProcessing(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ScheduledMessageRepository) MarkSent(ctx context.Context, id int64, messageID *int64) error {
	args := m.Called(ctx, id, messageID)
	return args.Error(0)
}

func (m *ScheduledMessageRepository) MarkFailed(ctx context.Context, id int64, retryCount int, lastError string) error {
	args := m.Called(ctx, id, retryCount, lastError)
	return args.Error(0)
}

func (m *ScheduledMessageRepository) Reschedule(ctx context.Context, id int64, retryCount int, nextAt time.Time, lastError string) error {
	args := m.Called(ctx, id, retryCount, nextAt, lastError)
	return args.Error(0)
}

func (m *ScheduledMessageRepository) Cancel(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ScheduledMessageRepository) CancelPendingByEnrollment(ctx context.Context, enrollmentID int64) (int64, error) {
	args := m.Called(ctx, enrollmentID)
	return args.Get(0).(int64), args.Error(1)
}
