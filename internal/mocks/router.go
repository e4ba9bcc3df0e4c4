package mocks

import (
	"context"

	"github.com/formaops/messaging-gateway/internal/service"
	"github.com/stretchr/testify/mock"
)

type Router struct {
	mock.Mock
}

func (m *Router) SendMessage(ctx context.Context, tenantID string, cmd service.SendMessageCommand) service.SendResult {
	args := m.Called(ctx, tenantID, cmd)
	return args.Get(0).(service.SendResult)
}

func (m *Router) SendInteractive(ctx context.Context, tenantID string, cmd service.InteractiveCommand) service.SendResult {
	args := m.Called(ctx, tenantID, cmd)
	return args.Get(0).(service.SendResult)
}
