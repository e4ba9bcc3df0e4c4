package mocks

import (
	"context"

	"github.com/formaops/messaging-gateway/internal/service"
	"github.com/stretchr/testify/mock"
)

type ConsentService struct {
	mock.Mock
}

func (m *ConsentService) CheckConsentBeforeSend(ctx context.Context, tenantID string, phoneNumber string, contactID *int64, enrollmentID *int64) service.ConsentDecision {
	args := m.Called(ctx, tenantID, phoneNumber, contactID, enrollmentID)
	return args.Get(0).(service.ConsentDecision)
}

func (m *ConsentService) HandleOptOut(ctx context.Context, tenantID string, phoneNumber string, text string) (bool, string, error) {
	args := m.Called(ctx, tenantID, phoneNumber, text)
	return args.Bool(0), args.String(1), args.Error(2)
}
