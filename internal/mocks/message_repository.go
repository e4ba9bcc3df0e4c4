package mocks

import (
	"context"
	"time"

	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/stretchr/testify/mock"
)

type MessageRepository struct {
	mock.Mock
}

func (m *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MessageRepository) UpdateStatusByProviderMsgID(ctx context.Context, tenantID string, providerMsgID string, status model.MessageStatus) error {
	args := m.Called(ctx, tenantID, providerMsgID, status)
	return args.Error(0)
}

func (m *MessageRepository) ExistsInboundSince(ctx context.Context, tenantID string, phones []string, since time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, phones, since)
	return args.Bool(0), args.Error(1)
}

func (m *MessageRepository) ListByPhone(ctx context.Context, tenantID string, phone string, limit int, offset int) ([]model.Message, error) {
	args := m.Called(ctx, tenantID, phone, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Message), args.Error(1)
}
