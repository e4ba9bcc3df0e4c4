package mocks

import (
	"context"

	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/stretchr/testify/mock"
)

type TemplateRepository struct {
	mock.Mock
}

func (m *TemplateRepository) GetByKey(ctx context.Context, tenantID string, key string) (*model.TemplateMapping, error) {
	args := m.Called(ctx, tenantID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TemplateMapping), args.Error(1)
}
