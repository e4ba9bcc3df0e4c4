package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/formaops/messaging-gateway/internal/mocks"
	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/formaops/messaging-gateway/internal/repository"
	"github.com/formaops/messaging-gateway/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type consentFixture struct {
	consents   *mocks.ConsentRepository
	contacts   *mocks.ContactRepository
	tenantCfgs *mocks.TenantConfigRepository
	auditLog   *mocks.AuditLogRepository
	tx         *mocks.TxManager
	service    service.ConsentService
}

func newConsentFixture() *consentFixture {
	f := &consentFixture{
		consents:   &mocks.ConsentRepository{},
		contacts:   &mocks.ContactRepository{},
		tenantCfgs: &mocks.TenantConfigRepository{},
		auditLog:   &mocks.AuditLogRepository{},
		tx:         &mocks.TxManager{},
	}
	f.service = service.NewConsentService(f.consents, f.contacts, f.tenantCfgs,
		f.auditLog, f.tx, zap.NewNop())
	return f
}

func TestConsent_CheckConsentBeforeSend(t *testing.T) {
	ctx := context.Background()
	contactID := int64(7)
	enrollmentID := int64(99)

	t.Run("enrollment link always allows with contract basis", func(t *testing.T) {
		f := newConsentFixture()

		decision := f.service.CheckConsentBeforeSend(ctx, "tenant-1", "0612345678", &contactID, &enrollmentID)

		assert.True(t, decision.Allowed)
		assert.Equal(t, service.LegalBasisContract, decision.LegalBasis)
		f.contacts.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unlinked send is exempt", func(t *testing.T) {
		f := newConsentFixture()

		decision := f.service.CheckConsentBeforeSend(ctx, "tenant-1", "0612345678", nil, nil)

		assert.True(t, decision.Allowed)
		assert.Equal(t, service.LegalBasisExempt, decision.LegalBasis)
	})

	t.Run("learner contact allows with contract basis", func(t *testing.T) {
		f := newConsentFixture()
		f.contacts.On("GetByID", ctx, "tenant-1", contactID).
			Return(&model.Contact{ID: contactID, Kind: model.ContactKindLearner}, nil)

		decision := f.service.CheckConsentBeforeSend(ctx, "tenant-1", "0612345678", &contactID, nil)

		assert.True(t, decision.Allowed)
		assert.Equal(t, service.LegalBasisContract, decision.LegalBasis)
		f.consents.AssertNotCalled(t, "GetByContactID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("marketing contact without a record is blocked", func(t *testing.T) {
		f := newConsentFixture()
		f.contacts.On("GetByID", ctx, "tenant-1", contactID).
			Return(&model.Contact{ID: contactID, Kind: model.ContactKindMarketing}, nil)
		f.consents.On("GetByContactID", ctx, "tenant-1", contactID).
			Return(nil, repository.ErrConsentNotFound)

		decision := f.service.CheckConsentBeforeSend(ctx, "tenant-1", "0612345678", &contactID, nil)

		assert.False(t, decision.Allowed)
		assert.Equal(t, "no consent on file", decision.Reason)
	})

	t.Run("withdrawn consent is blocked with the withdrawal date", func(t *testing.T) {
		f := newConsentFixture()
		withdrawn := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
		f.contacts.On("GetByID", ctx, "tenant-1", contactID).
			Return(&model.Contact{ID: contactID, Kind: model.ContactKindMarketing}, nil)
		f.consents.On("GetByContactID", ctx, "tenant-1", contactID).
			Return(&model.ConsentRecord{ContactID: contactID, WithdrawnAt: &withdrawn}, nil)

		decision := f.service.CheckConsentBeforeSend(ctx, "tenant-1", "0612345678", &contactID, nil)

		assert.False(t, decision.Allowed)
		assert.Contains(t, decision.Reason, "2026-03-14")
	})

	t.Run("anonymized contact is blocked as erased", func(t *testing.T) {
		f := newConsentFixture()
		now := time.Now()
		f.contacts.On("GetByID", ctx, "tenant-1", contactID).
			Return(&model.Contact{ID: contactID, Kind: model.ContactKindMarketing}, nil)
		f.consents.On("GetByContactID", ctx, "tenant-1", contactID).
			Return(&model.ConsentRecord{ContactID: contactID, AnonymizedAt: &now}, nil)

		decision := f.service.CheckConsentBeforeSend(ctx, "tenant-1", "0612345678", &contactID, nil)

		assert.False(t, decision.Allowed)
		assert.Contains(t, decision.Reason, "erased")
	})

	t.Run("granted consent allows with consent basis", func(t *testing.T) {
		f := newConsentFixture()
		f.contacts.On("GetByID", ctx, "tenant-1", contactID).
			Return(&model.Contact{ID: contactID, Kind: model.ContactKindMarketing}, nil)
		f.consents.On("GetByContactID", ctx, "tenant-1", contactID).
			Return(&model.ConsentRecord{ContactID: contactID, ConsentGiven: true}, nil)

		decision := f.service.CheckConsentBeforeSend(ctx, "tenant-1", "0612345678", &contactID, nil)

		assert.True(t, decision.Allowed)
		assert.Equal(t, service.LegalBasisConsent, decision.LegalBasis)
	})

	t.Run("lookup failure fails open", func(t *testing.T) {
		f := newConsentFixture()
		f.contacts.On("GetByID", ctx, "tenant-1", contactID).
			Return(nil, assert.AnError)

		decision := f.service.CheckConsentBeforeSend(ctx, "tenant-1", "0612345678", &contactID, nil)

		assert.True(t, decision.Allowed)
		assert.Equal(t, service.LegalBasisExempt, decision.LegalBasis)
	})
}

func TestConsent_HandleOptOut(t *testing.T) {
	ctx := context.Background()

	contact := &model.Contact{ID: 7, Kind: model.ContactKindMarketing}

	expectWithdrawal := func(f *consentFixture) {
		f.tenantCfgs.On("GetByTenantID", ctx, "tenant-1").
			Return(&model.TenantConfig{TenantID: "tenant-1", CountryCode: "33"}, nil)
		f.contacts.On("FindByPhoneVariants", ctx, "tenant-1", mock.Anything).Return(contact, nil)
		f.tx.On("WithTx", ctx, mock.Anything).Return(nil)
		f.consents.On("Upsert", ctx, mock.MatchedBy(func(record *model.ConsentRecord) bool {
			return record.ContactID == 7 && !record.ConsentGiven &&
				record.Method == "opt-out" && record.WithdrawnAt != nil
		})).Return(nil)
		f.auditLog.On("Append", ctx, mock.MatchedBy(func(entry *model.AuditLog) bool {
			return entry.Actor == model.AuditActorSystem && entry.Action == model.AuditActionOptOut
		})).Return(nil)
	}

	t.Run("STOP withdraws consent and acknowledges", func(t *testing.T) {
		f := newConsentFixture()
		expectWithdrawal(f)

		handled, ack, err := f.service.HandleOptOut(ctx, "tenant-1", "+33612345678", "STOP")

		assert.NoError(t, err)
		assert.True(t, handled)
		assert.NotEmpty(t, ack)
		f.consents.AssertExpectations(t)
		f.auditLog.AssertExpectations(t)
	})

	t.Run("accented ARRÊTER matches", func(t *testing.T) {
		f := newConsentFixture()
		expectWithdrawal(f)

		handled, _, err := f.service.HandleOptOut(ctx, "tenant-1", "+33612345678", "Arrêter !")

		assert.NoError(t, err)
		assert.True(t, handled)
		f.consents.AssertExpectations(t)
	})

	t.Run("ordinary text is not an opt-out", func(t *testing.T) {
		f := newConsentFixture()

		handled, ack, err := f.service.HandleOptOut(ctx, "tenant-1", "+33612345678", "Merci pour stop les infos")

		assert.NoError(t, err)
		assert.False(t, handled)
		assert.Empty(t, ack)
		f.consents.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("unknown phone still acknowledges", func(t *testing.T) {
		f := newConsentFixture()
		f.tenantCfgs.On("GetByTenantID", ctx, "tenant-1").
			Return(&model.TenantConfig{TenantID: "tenant-1", CountryCode: "33"}, nil)
		f.contacts.On("FindByPhoneVariants", ctx, "tenant-1", mock.Anything).
			Return(nil, repository.ErrContactNotFound)

		handled, ack, err := f.service.HandleOptOut(ctx, "tenant-1", "+33699999999", "STOP")

		assert.NoError(t, err)
		assert.True(t, handled)
		assert.NotEmpty(t, ack)
		f.consents.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})
}
