package mocks

import (
	"context"

	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/stretchr/testify/mock"
)

type TenantConfigRepository struct {
	mock.Mock
}

func (m *TenantConfigRepository) GetByTenantID(ctx context.Context, tenantID string) (*model.TenantConfig, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TenantConfig), args.Error(1)
}
