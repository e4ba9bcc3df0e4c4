package mocks

import (
	"context"

	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/formaops/messaging-gateway/internal/repository"
	"github.com/stretchr/testify/mock"
)

type ContactRepository struct {
	mock.Mock
}

func (m *ContactRepository) GetByID(ctx context.Context, tenantID string, id int64) (*model.Contact, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

func (m *ContactRepository) FindByPhoneVariants(ctx context.Context, tenantID string, variants []string) (*model.Contact, error) {
	args := m.Called(ctx, tenantID, variants)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

func (m *ContactRepository) FindStructural(ctx context.Context, tenantID string, filters repository.StructuralFilters, limit int) ([]model.Contact, error) {
	args := m.Called(ctx, tenantID, filters, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Contact), args.Error(1)
}

func (m *ContactRepository) FindByTags(ctx context.Context, tenantID string, tags []string, limit int) ([]model.Contact, error) {
	args := m.Called(ctx, tenantID, tags, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Contact), args.Error(1)
}

func (m *ContactRepository) FindBySources(ctx context.Context, tenantID string, sources []string, limit int) ([]model.Contact, error) {
	args := m.Called(ctx, tenantID, sources, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Contact), args.Error(1)
}
