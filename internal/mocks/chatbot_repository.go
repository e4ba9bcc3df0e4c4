package mocks

import (
	"context"

	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/stretchr/testify/mock"
)

type ChatbotRepository struct {
	mock.Mock
}

func (m *ChatbotRepository) ActiveRules(ctx context.Context, tenantID string) ([]model.ChatbotRule, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ChatbotRule), args.Error(1)
}

func (m *ChatbotRepository) GetConversation(ctx context.Context, tenantID string, phone string) (*model.ChatbotConversation, error) {
	args := m.Called(ctx, tenantID, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChatbotConversation), args.Error(1)
}

func (m *ChatbotRepository) UpsertConversation(ctx context.Context, conversation *model.ChatbotConversation) error {
	args := m.Called(ctx, conversation)
	return args.Error(0)
}
