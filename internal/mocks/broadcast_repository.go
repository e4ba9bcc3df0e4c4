package mocks

import (
	"context"
	"time"

	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/stretchr/testify/mock"
)

type BroadcastRepository struct {
	mock.Mock
}

func (m *BroadcastRepository) Create(ctx context.Context, broadcast *model.Broadcast, recipients []model.BroadcastRecipient) error {
	args := m.Called(ctx, broadcast, recipients)
	return args.Error(0)
}

func (m *BroadcastRepository) GetByID(ctx context.Context, id int64) (*model.Broadcast, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Broadcast), args.Error(1)
}

func (m *BroadcastRepository) ClaimStatus(ctx context.Context, id int64, from []model.BroadcastStatus, to model.BroadcastStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *BroadcastRepository) UpdateStatus(ctx context.Context, id int64, status model.BroadcastStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *BroadcastRepository) MarkStarted(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *BroadcastRepository) MarkCompleted(ctx context.Context, id int64, status model.BroadcastStatus, at time.Time) error {
	args := m.Called(ctx, id, status, at)
	return args.Error(0)
}

func (m *BroadcastRepository) IncrementSent(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *BroadcastRepository) IncrementFailed(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *BroadcastRepository) PendingRecipients(ctx context.Context, broadcastID int64) ([]model.BroadcastRecipient, error) {
	args := m.Called(ctx, broadcastID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BroadcastRecipient), args.Error(1)
}

func (m *BroadcastRepository) UpdateRecipient(ctx context.Context, recipient *model.BroadcastRecipient) error {
	args := m.Called(ctx, recipient)
	return args.Error(0)
}

func (m *BroadcastRepository) CountRecipients(ctx context.Context, broadcastID int64) (map[model.RecipientStatus]int, error) {
	args := m.Called(ctx, broadcastID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.RecipientStatus]int), args.Error(1)
}
