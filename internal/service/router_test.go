package service_test

import (
	"context"
	"testing"

	"github.com/formaops/messaging-gateway/internal/constants"
	"github.com/formaops/messaging-gateway/internal/mocks"
	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/formaops/messaging-gateway/internal/repository"
	"github.com/formaops/messaging-gateway/internal/service"
	"github.com/formaops/messaging-gateway/pkg/msgprovider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func cloudConfig() *model.TenantConfig {
	return &model.TenantConfig{
		TenantID:        "tenant-1",
		Provider:        model.ProviderCloudAPI,
		Active:          true,
		AccessToken:     "token",
		PhoneNumberID:   "12345",
		DefaultLanguage: "fr",
	}
}

func bspConfig() *model.TenantConfig {
	return &model.TenantConfig{
		TenantID:        "tenant-1",
		Provider:        model.ProviderBSPGateway,
		Active:          true,
		GatewayURL:      "https://gw.example.com",
		GatewayUser:     "user",
		GatewayPassword: "pass",
	}
}

type routerFixture struct {
	tenantCfgs *mocks.TenantConfigRepository
	templates  *mocks.TemplateResolver
	consent    *mocks.ConsentService
	provider   *mocks.Provider
	messages   *mocks.MessageRepository
	contacts   *mocks.ContactRepository
	auditLog   *mocks.AuditLogRepository
	router     service.Router
}

func newRouterFixture() *routerFixture {
	f := &routerFixture{
		tenantCfgs: &mocks.TenantConfigRepository{},
		templates:  &mocks.TemplateResolver{},
		consent:    &mocks.ConsentService{},
		provider:   &mocks.Provider{},
		messages:   &mocks.MessageRepository{},
		contacts:   &mocks.ContactRepository{},
		auditLog:   &mocks.AuditLogRepository{},
	}

	factory := func(cfg *model.TenantConfig) (msgprovider.Provider, error) {
		return f.provider, nil
	}

	f.router = service.NewRouter(f.tenantCfgs, f.templates, f.consent, factory,
		f.messages, f.contacts, f.auditLog, zap.NewNop())

	return f
}

func (f *routerFixture) allowConsent() {
	f.consent.On("CheckConsentBeforeSend", mock.Anything, "tenant-1", mock.Anything, mock.Anything, mock.Anything).
		Return(service.ConsentDecision{Allowed: true, LegalBasis: service.LegalBasisExempt})
}

func (f *routerFixture) expectRecordOutcome() {
	f.contacts.On("FindByPhoneVariants", mock.Anything, "tenant-1", mock.Anything).
		Return(nil, repository.ErrContactNotFound)
	f.messages.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.auditLog.On("Append", mock.Anything, mock.Anything).Return(nil)
}

func TestRouter_SendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("sends free text through the provider", func(t *testing.T) {
		f := newRouterFixture()
		f.tenantCfgs.On("GetByTenantID", mock.Anything, "tenant-1").Return(cloudConfig(), nil)
		f.allowConsent()
		f.expectRecordOutcome()

		f.provider.On("SendFreeform", mock.Anything, "+33612345678", "Bonjour", "whatsapp").
			Return(msgprovider.Result{Success: true, MessageID: "wamid.1", Status: msgprovider.StatusSent})

		result := f.router.SendMessage(ctx, "tenant-1", service.SendMessageCommand{
			To:   "+33612345678",
			Text: "Bonjour",
		})

		assert.True(t, result.Success)
		assert.Equal(t, "wamid.1", result.MessageID)
		assert.Equal(t, service.LegalBasisExempt, result.LegalBasis)
		f.provider.AssertExpectations(t)
		f.messages.AssertExpectations(t)
		f.auditLog.AssertExpectations(t)
	})

	t.Run("fails without configuration", func(t *testing.T) {
		f := newRouterFixture()
		f.tenantCfgs.On("GetByTenantID", mock.Anything, "tenant-1").
			Return(nil, repository.ErrTenantConfigNotFound)

		result := f.router.SendMessage(ctx, "tenant-1", service.SendMessageCommand{To: "+33612345678", Text: "hi"})

		assert.False(t, result.Success)
		assert.Equal(t, constants.ErrCodeConfigMissing, result.ErrorCode)
		f.provider.AssertNotCalled(t, "SendFreeform", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("fails when configuration is inactive", func(t *testing.T) {
		f := newRouterFixture()
		cfg := cloudConfig()
		cfg.Active = false
		f.tenantCfgs.On("GetByTenantID", mock.Anything, "tenant-1").Return(cfg, nil)

		result := f.router.SendMessage(ctx, "tenant-1", service.SendMessageCommand{To: "+33612345678", Text: "hi"})

		assert.False(t, result.Success)
		assert.Equal(t, constants.ErrCodeConfigMissing, result.ErrorCode)
	})

	t.Run("fails when credentials are incomplete", func(t *testing.T) {
		f := newRouterFixture()
		cfg := cloudConfig()
		cfg.AccessToken = ""
		f.tenantCfgs.On("GetByTenantID", mock.Anything, "tenant-1").Return(cfg, nil)

		result := f.router.SendMessage(ctx, "tenant-1", service.SendMessageCommand{To: "+33612345678", Text: "hi"})

		assert.False(t, result.Success)
		assert.Equal(t, constants.ErrCodeConfigIncomplete, result.ErrorCode)
	})

	t.Run("consent block short-circuits before the provider", func(t *testing.T) {
		f := newRouterFixture()
		f.tenantCfgs.On("GetByTenantID", mock.Anything, "tenant-1").Return(cloudConfig(), nil)
		f.consent.On("CheckConsentBeforeSend", mock.Anything, "tenant-1", mock.Anything, mock.Anything, mock.Anything).
			Return(service.ConsentDecision{Allowed: false, Reason: "consent not given"})
		f.auditLog.On("Append", mock.Anything, mock.MatchedBy(func(entry *model.AuditLog) bool {
			return entry.Action == model.AuditActionMessageBlocked
		})).Return(nil)

		result := f.router.SendMessage(ctx, "tenant-1", service.SendMessageCommand{To: "+33612345678", Text: "promo"})

		assert.False(t, result.Success)
		assert.Equal(t, constants.ErrCodeConsentBlocked, result.ErrorCode)
		assert.Equal(t, "consent not given", result.ErrorText)
		f.provider.AssertNotCalled(t, "SendFreeform", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.auditLog.AssertExpectations(t)
	})

	t.Run("mapped template goes out as a provider template on cloud API", func(t *testing.T) {
		f := newRouterFixture()
		f.tenantCfgs.On("GetByTenantID", mock.Anything, "tenant-1").Return(cloudConfig(), nil)
		f.allowConsent()
		f.expectRecordOutcome()

		f.templates.On("Resolve", mock.Anything, "tenant-1", "session_reminder", []string{"Go avancé", "12/09"}).
			Return(&service.ResolvedTemplate{
				FromMapping:      true,
				ProviderTemplate: "session_reminder_fr",
				Language:         "fr",
				Text:             "Rappel : votre session Go avancé a lieu le 12/09.",
			}, nil)

		f.provider.On("SendTemplate", mock.Anything, "+33612345678", "session_reminder_fr", "fr", []string{"Go avancé", "12/09"}).
			Return(msgprovider.Result{Success: true, MessageID: "wamid.2", Status: msgprovider.StatusSent})

		result := f.router.SendMessage(ctx, "tenant-1", service.SendMessageCommand{
			To:          "+33612345678",
			TemplateKey: "session_reminder",
			Params:      []string{"Go avancé", "12/09"},
		})

		assert.True(t, result.Success)
		f.provider.AssertExpectations(t)
	})

	t.Run("mapped template falls back to text on BSP gateway", func(t *testing.T) {
		f := newRouterFixture()
		f.tenantCfgs.On("GetByTenantID", mock.Anything, "tenant-1").Return(bspConfig(), nil)
		f.allowConsent()
		f.expectRecordOutcome()

		f.templates.On("Resolve", mock.Anything, "tenant-1", "session_reminder", []string(nil)).
			Return(&service.ResolvedTemplate{
				FromMapping:      true,
				ProviderTemplate: "session_reminder_fr",
				Text:             "Rappel : votre session a lieu demain.",
			}, nil)

		f.provider.On("SendFreeform", mock.Anything, "0612345678", "Rappel : votre session a lieu demain.", "sms").
			Return(msgprovider.Result{Success: true, MessageID: "bsp-1", Status: msgprovider.StatusSent})

		result := f.router.SendMessage(ctx, "tenant-1", service.SendMessageCommand{
			To:          "0612345678",
			TemplateKey: "session_reminder",
		})

		assert.True(t, result.Success)
		f.provider.AssertNotCalled(t, "SendTemplate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown template key fails", func(t *testing.T) {
		f := newRouterFixture()
		f.tenantCfgs.On("GetByTenantID", mock.Anything, "tenant-1").Return(cloudConfig(), nil)
		f.allowConsent()

		f.templates.On("Resolve", mock.Anything, "tenant-1", "nope", []string(nil)).
			Return(nil, service.ErrTemplateNotFound)

		result := f.router.SendMessage(ctx, "tenant-1", service.SendMessageCommand{
			To:          "+33612345678",
			TemplateKey: "nope",
		})

		assert.False(t, result.Success)
		assert.Equal(t, constants.ErrCodeTemplateNotFound, result.ErrorCode)
	})

	t.Run("provider failure is recorded and returned", func(t *testing.T) {
		f := newRouterFixture()
		f.tenantCfgs.On("GetByTenantID", mock.Anything, "tenant-1").Return(cloudConfig(), nil)
		f.allowConsent()
		f.contacts.On("FindByPhoneVariants", mock.Anything, "tenant-1", mock.Anything).
			Return(nil, repository.ErrContactNotFound)
		f.messages.On("Create", mock.Anything, mock.MatchedBy(func(m *model.Message) bool {
			return m.Status == model.MessageStatusFailed && m.ErrorText != nil
		})).Return(nil)
		f.auditLog.On("Append", mock.Anything, mock.MatchedBy(func(entry *model.AuditLog) bool {
			return entry.Action == model.AuditActionMessageFailed
		})).Return(nil)

		f.provider.On("SendFreeform", mock.Anything, "+33612345678", "hi", "whatsapp").
			Return(msgprovider.Result{Success: false, Status: msgprovider.StatusFailed, ErrorText: "rate limited"})

		result := f.router.SendMessage(ctx, "tenant-1", service.SendMessageCommand{To: "+33612345678", Text: "hi"})

		assert.False(t, result.Success)
		assert.Equal(t, constants.ErrCodeProviderError, result.ErrorCode)
		assert.Equal(t, "rate limited", result.ErrorText)
		f.messages.AssertExpectations(t)
	})

	t.Run("persistence failure never overturns a delivered send", func(t *testing.T) {
		f := newRouterFixture()
		f.tenantCfgs.On("GetByTenantID", mock.Anything, "tenant-1").Return(cloudConfig(), nil)
		f.allowConsent()
		f.contacts.On("FindByPhoneVariants", mock.Anything, "tenant-1", mock.Anything).
			Return(nil, repository.ErrContactNotFound)
		f.messages.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)
		f.auditLog.On("Append", mock.Anything, mock.Anything).Return(assert.AnError)

		f.provider.On("SendFreeform", mock.Anything, "+33612345678", "hi", "whatsapp").
			Return(msgprovider.Result{Success: true, MessageID: "wamid.3", Status: msgprovider.StatusSent})

		result := f.router.SendMessage(ctx, "tenant-1", service.SendMessageCommand{To: "+33612345678", Text: "hi"})

		assert.True(t, result.Success)
		assert.Equal(t, "wamid.3", result.MessageID)
	})

	t.Run("explicit contact link is kept on the message row", func(t *testing.T) {
		f := newRouterFixture()
		f.tenantCfgs.On("GetByTenantID", mock.Anything, "tenant-1").Return(cloudConfig(), nil)
		f.allowConsent()
		contactID := int64(42)
		f.messages.On("Create", mock.Anything, mock.MatchedBy(func(m *model.Message) bool {
			return m.ContactID != nil && *m.ContactID == contactID
		})).Return(nil)
		f.auditLog.On("Append", mock.Anything, mock.Anything).Return(nil)

		f.provider.On("SendFreeform", mock.Anything, "+33612345678", "hi", "whatsapp").
			Return(msgprovider.Result{Success: true, MessageID: "wamid.4", Status: msgprovider.StatusSent})

		result := f.router.SendMessage(ctx, "tenant-1", service.SendMessageCommand{
			To:        "+33612345678",
			Text:      "hi",
			ContactID: &contactID,
		})

		assert.True(t, result.Success)
		f.contacts.AssertNotCalled(t, "FindByPhoneVariants", mock.Anything, mock.Anything, mock.Anything)
		f.messages.AssertExpectations(t)
	})
}

func TestRouter_SendInteractive(t *testing.T) {
	ctx := context.Background()

	sections := []msgprovider.ListSection{{
		Title: "Nos services",
		Rows:  []msgprovider.ListRow{{ID: "menu_hours", Title: "Horaires"}},
	}}

	t.Run("rich provider receives the list payload", func(t *testing.T) {
		f := newRouterFixture()
		f.tenantCfgs.On("GetByTenantID", mock.Anything, "tenant-1").Return(cloudConfig(), nil)
		f.expectRecordOutcome()

		f.provider.On("SendList", mock.Anything, "33612345678", "Bonjour !", "Voir les options", sections).
			Return(msgprovider.Result{Success: true, MessageID: "wamid.5", Status: msgprovider.StatusSent})

		result := f.router.SendInteractive(ctx, "tenant-1", service.InteractiveCommand{
			To:         "33612345678",
			Body:       "Bonjour !",
			ListButton: "Voir les options",
			Sections:   sections,
		})

		assert.True(t, result.Success)
		f.provider.AssertExpectations(t)
	})

	t.Run("plain provider gets a text rendering", func(t *testing.T) {
		tenantCfgs := &mocks.TenantConfigRepository{}
		templates := &mocks.TemplateResolver{}
		consent := &mocks.ConsentService{}
		basic := &mocks.BasicProvider{}
		messages := &mocks.MessageRepository{}
		contacts := &mocks.ContactRepository{}
		auditLog := &mocks.AuditLogRepository{}

		factory := func(cfg *model.TenantConfig) (msgprovider.Provider, error) { return basic, nil }
		router := service.NewRouter(tenantCfgs, templates, consent, factory,
			messages, contacts, auditLog, zap.NewNop())

		tenantCfgs.On("GetByTenantID", mock.Anything, "tenant-1").Return(bspConfig(), nil)
		contacts.On("FindByPhoneVariants", mock.Anything, "tenant-1", mock.Anything).
			Return(nil, repository.ErrContactNotFound)
		messages.On("Create", mock.Anything, mock.Anything).Return(nil)
		auditLog.On("Append", mock.Anything, mock.Anything).Return(nil)

		basic.On("SendFreeform", mock.Anything, "33612345678", "Bonjour !\n- Horaires", "sms").
			Return(msgprovider.Result{Success: true, MessageID: "bsp-2", Status: msgprovider.StatusSent})

		result := router.SendInteractive(ctx, "tenant-1", service.InteractiveCommand{
			To:       "33612345678",
			Body:     "Bonjour !",
			Sections: sections,
		})

		assert.True(t, result.Success)
		basic.AssertExpectations(t)
	})
}
