package mocks

import (
	"context"

	"github.com/formaops/messaging-gateway/pkg/msgprovider"
	"github.com/stretchr/testify/mock"
)

// Provider implements both the core send surface and the rich
// interactive surface.
type Provider struct {
	mock.Mock
}

func (m *Provider) SendTemplate(ctx context.Context, to string, name string, language string, params []string) msgprovider.Result {
	args := m.Called(ctx, to, name, language, params)
	return args.Get(0).(msgprovider.Result)
}

func (m *Provider) SendFreeform(ctx context.Context, to string, text string, channel string) msgprovider.Result {
	args := m.Called(ctx, to, text, channel)
	return args.Get(0).(msgprovider.Result)
}

func (m *Provider) SendButtons(ctx context.Context, to string, body string, buttons []msgprovider.Button) msgprovider.Result {
	args := m.Called(ctx, to, body, buttons)
	return args.Get(0).(msgprovider.Result)
}

func (m *Provider) SendList(ctx context.Context, to string, body string, buttonLabel string, sections []msgprovider.ListSection) msgprovider.Result {
	args := m.Called(ctx, to, body, buttonLabel, sections)
	return args.Get(0).(msgprovider.Result)
}

// BasicProvider implements only the core send surface, like the BSP
// gateway adapter.
type BasicProvider struct {
	mock.Mock
}

func (m *BasicProvider) SendTemplate(ctx context.Context, to string, name string, language string, params []string) msgprovider.Result {
	args := m.Called(ctx, to, name, language, params)
	return args.Get(0).(msgprovider.Result)
}

func (m *BasicProvider) SendFreeform(ctx context.Context, to string, text string, channel string) msgprovider.Result {
	args := m.Called(ctx, to, text, channel)
	return args.Get(0).(msgprovider.Result)
}
