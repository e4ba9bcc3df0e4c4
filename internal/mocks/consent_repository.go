package mocks

import (
	"context"

	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/stretchr/testify/mock"
)

type ConsentRepository struct {
	mock.Mock
}

func (m *ConsentRepository) GetByContactID(ctx context.Context, tenantID string, contactID int64) (*model.ConsentRecord, error) {
	args := m.Called(ctx, tenantID, contactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConsentRecord), args.Error(1)
}

func (m *ConsentRepository) Upsert(ctx context.Context, record *model.ConsentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}
