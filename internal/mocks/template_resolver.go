package mocks

import (
	"context"

	"github.com/formaops/messaging-gateway/internal/service"
	"github.com/stretchr/testify/mock"
)

type TemplateResolver struct {
	mock.Mock
}

func (m *TemplateResolver) Resolve(ctx context.Context, tenantID string, key string, params []string) (*service.ResolvedTemplate, error) {
	args := m.Called(ctx, tenantID, key, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ResolvedTemplate), args.Error(1)
}
