package mocks

import (
	"context"
	"time"

	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/stretchr/testify/mock"
)

type SequenceRepository struct {
	mock.Mock
}

func (m *SequenceRepository) GetSequence(ctx context.Context, id int64) (*model.Sequence, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sequence), args.Error(1)
}

func (m *SequenceRepository) GetStep(ctx context.Context, sequenceID int64, order int) (*model.SequenceStep, error) {
	args := m.Called(ctx, sequenceID, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SequenceStep), args.Error(1)
}

func (m *SequenceRepository) CountSteps(ctx context.Context, sequenceID int64) (int, error) {
	args := m.Called(ctx, sequenceID)
	return args.Int(0), args.Error(1)
}

func (m *SequenceRepository) CreateEnrollment(ctx context.Context, enrollment *model.SequenceEnrollment) error {
	args := m.Called(ctx, enrollment)
	return args.Error(0)
}

func (m *SequenceRepository) HasActiveEnrollment(ctx context.Context, tenantID string, sequenceID int64, phone string) (bool, error) {
	args := m.Called(ctx, tenantID, sequenceID, phone)
	return args.Bool(0), args.Error(1)
}

func (m *SequenceRepository) FindDueEnrollments(ctx context.Context, now time.Time, limit int) ([]model.SequenceEnrollment, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SequenceEnrollment), args.Error(1)
}

func (m *SequenceRepository) FindActiveStopOnReply(ctx context.Context, limit int) ([]model.SequenceEnrollment, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SequenceEnrollment), args.Error(1)
}

func (m *SequenceRepository) UpdateEnrollment(ctx context.Context, enrollment *model.SequenceEnrollment) error {
	args := m.Called(ctx, enrollment)
	return args.Error(0)
}
