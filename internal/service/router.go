package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/formaops/messaging-gateway/internal/constants"
	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/formaops/messaging-gateway/internal/repository"
	"github.com/formaops/messaging-gateway/pkg/msgprovider"
	"github.com/formaops/messaging-gateway/pkg/phone"
	"go.uber.org/zap"
)

// ProviderFactory builds the adapter matching a tenant's stored
// provider selection. Injected so tests can substitute a fake.
type ProviderFactory func(cfg *model.TenantConfig) (msgprovider.Provider, error)

// InteractiveCommand is a rich chatbot reply: either Buttons or
// Sections is set, never both.
type InteractiveCommand struct {
	To         string
	Body       string
	Buttons    []msgprovider.Button
	ListButton string
	Sections   []msgprovider.ListSection
}

// Router is the sole path to the provider adapters. Every caller —
// API, broadcast loop, scheduler, sequence engine, chatbot — funnels
// sends through it so config, consent and audit are applied uniformly.
type Router interface {
	SendMessage(ctx context.Context, tenantID string, cmd SendMessageCommand) SendResult
	SendInteractive(ctx context.Context, tenantID string, cmd InteractiveCommand) SendResult
}

type router struct {
	tenantCfgs      repository.TenantConfigRepository
	templates       TemplateResolver
	consent         ConsentService
	providerFactory ProviderFactory
	messages        repository.MessageRepository
	contacts        repository.ContactRepository
	auditLog        repository.AuditLogRepository
	logger          *zap.Logger
}

func NewRouter(tenantCfgs repository.TenantConfigRepository, templates TemplateResolver,
	consent ConsentService, providerFactory ProviderFactory, messages repository.MessageRepository,
	contacts repository.ContactRepository, auditLog repository.AuditLogRepository,
	logger *zap.Logger) Router {
	return &router{
		tenantCfgs:      tenantCfgs,
		templates:       templates,
		consent:         consent,
		providerFactory: providerFactory,
		messages:        messages,
		contacts:        contacts,
		auditLog:        auditLog,
		logger:          logger,
	}
}

func (r *router) SendMessage(ctx context.Context, tenantID string, cmd SendMessageCommand) SendResult {
	cfg, provider, failed := r.resolveProvider(ctx, tenantID)
	if failed != nil {
		return *failed
	}

	if cmd.To == "" || (cmd.Text == "" && cmd.TemplateKey == "") {
		return failResult(constants.ErrCodeValidationError, "recipient and text or template key are required")
	}

	decision := r.consent.CheckConsentBeforeSend(ctx, tenantID, cmd.To, cmd.ContactID, cmd.EnrollmentID)
	if !decision.Allowed {
		r.logger.Info("Send blocked by consent gate",
			zap.String("tenantID", tenantID),
			zap.String("to", phone.Normalize(cmd.To)),
			zap.String("reason", decision.Reason))

		r.appendAudit(ctx, tenantID, model.AuditActionMessageBlocked, cmd.To, map[string]any{
			"reason": decision.Reason,
		})

		return SendResult{
			Success:   false,
			Status:    "blocked",
			ErrorCode: constants.ErrCodeConsentBlocked,
			ErrorText: decision.Reason,
		}
	}

	channel := cmd.Channel
	if channel == "" {
		channel = defaultChannel(cfg.Provider)
	}

	var result msgprovider.Result
	var content string
	var templateKey *string

	switch {
	case cmd.TemplateKey != "":
		resolved, err := r.templates.Resolve(ctx, tenantID, cmd.TemplateKey, cmd.Params)
		if err != nil {
			if errors.Is(err, ErrTemplateNotFound) {
				return failResult(constants.ErrCodeTemplateNotFound,
					fmt.Sprintf("no template mapping or fallback for key %q", cmd.TemplateKey))
			}
			return failResult(constants.ErrCodeInternalError, err.Error())
		}

		templateKey = &cmd.TemplateKey
		content = resolved.Text

		if resolved.FromMapping && cfg.Provider == model.ProviderCloudAPI {
			language := resolved.Language
			if language == "" {
				language = cfg.DefaultLanguage
			}
			result = provider.SendTemplate(ctx, cmd.To, resolved.ProviderTemplate, language, cmd.Params)
		} else {
			// BSP gateways cannot address opaque provider template
			// names; deliver the substituted fallback body instead.
			result = provider.SendFreeform(ctx, cmd.To, resolved.Text, channel)
		}

	default:
		content = cmd.Text
		result = provider.SendFreeform(ctx, cmd.To, cmd.Text, channel)
	}

	logID := r.recordOutcome(ctx, tenantID, cmd, channel, content, templateKey, result)

	sendResult := r.toSendResult(result, decision.LegalBasis)
	sendResult.MessageLogID = logID
	return sendResult
}

func (r *router) SendInteractive(ctx context.Context, tenantID string, cmd InteractiveCommand) SendResult {
	cfg, provider, failed := r.resolveProvider(ctx, tenantID)
	if failed != nil {
		return *failed
	}

	channel := defaultChannel(cfg.Provider)

	var result msgprovider.Result
	rich, ok := provider.(msgprovider.RichSender)

	switch {
	case ok && len(cmd.Buttons) > 0:
		result = rich.SendButtons(ctx, cmd.To, cmd.Body, cmd.Buttons)
	case ok && len(cmd.Sections) > 0:
		result = rich.SendList(ctx, cmd.To, cmd.Body, cmd.ListButton, cmd.Sections)
	default:
		result = provider.SendFreeform(ctx, cmd.To, renderInteractiveAsText(cmd), channel)
	}

	sendCmd := SendMessageCommand{To: cmd.To, Text: cmd.Body, Channel: channel}
	logID := r.recordOutcome(ctx, tenantID, sendCmd, channel, cmd.Body, nil, result)

	sendResult := r.toSendResult(result, LegalBasisExempt)
	sendResult.MessageLogID = logID
	return sendResult
}

func (r *router) resolveProvider(ctx context.Context, tenantID string) (*model.TenantConfig, msgprovider.Provider, *SendResult) {
	cfg, err := r.tenantCfgs.GetByTenantID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrTenantConfigNotFound) {
			failed := failResult(constants.ErrCodeConfigMissing, "no messaging configuration for tenant")
			return nil, nil, &failed
		}

		r.logger.Error("Tenant config lookup failed",
			zap.Error(err),
			zap.String("tenantID", tenantID))
		failed := failResult(constants.ErrCodeInternalError, err.Error())
		return nil, nil, &failed
	}

	if !cfg.Active {
		failed := failResult(constants.ErrCodeConfigMissing, "messaging is disabled for tenant")
		return nil, nil, &failed
	}

	if reason := validateCredentials(cfg); reason != "" {
		failed := failResult(constants.ErrCodeConfigIncomplete, reason)
		return nil, nil, &failed
	}

	provider, err := r.providerFactory(cfg)
	if err != nil {
		failed := failResult(constants.ErrCodeConfigIncomplete, err.Error())
		return nil, nil, &failed
	}

	return cfg, provider, nil
}

// recordOutcome persists the message log row and audit entry after the
// provider call. Both are best-effort: the provider already delivered
// (or definitively failed), and losing the local record is the lesser
// error.
func (r *router) recordOutcome(ctx context.Context, tenantID string, cmd SendMessageCommand,
	channel string, content string, templateKey *string, result msgprovider.Result) int64 {
	status := model.MessageStatusSent
	var errorText *string
	if !result.Success {
		status = model.MessageStatusFailed
		text := result.ErrorText
		errorText = &text
	}

	var providerMsgID *string
	if result.MessageID != "" {
		id := result.MessageID
		providerMsgID = &id
	}

	contactID := cmd.ContactID
	if contactID == nil {
		if contact, err := r.contacts.FindByPhoneVariants(ctx, tenantID, phone.Variants(cmd.To, "")); err == nil {
			contactID = &contact.ID
		}
	}

	message := &model.Message{
		TenantID:      tenantID,
		Direction:     model.DirectionOutbound,
		Channel:       channel,
		Status:        status,
		Phone:         phone.Normalize(cmd.To),
		Content:       content,
		TemplateKey:   templateKey,
		ProviderMsgID: providerMsgID,
		ContactID:     contactID,
		EnrollmentID:  cmd.EnrollmentID,
		ErrorText:     errorText,
	}

	if err := r.messages.Create(ctx, message); err != nil {
		r.logger.Error("Failed to persist message log row",
			zap.Error(err),
			zap.String("tenantID", tenantID),
			zap.String("to", phone.Normalize(cmd.To)))
	}

	action := model.AuditActionMessageSent
	if !result.Success {
		action = model.AuditActionMessageFailed
	}

	r.appendAudit(ctx, tenantID, action, cmd.To, map[string]any{
		"provider_msg_id": result.MessageID,
		"status":          result.Status,
		"error":           result.ErrorText,
	})

	return message.ID
}

func (r *router) appendAudit(ctx context.Context, tenantID string, action string, to string, payload map[string]any) {
	body, _ := json.Marshal(payload)

	entry := &model.AuditLog{
		TenantID: tenantID,
		Actor:    model.AuditActorSystem,
		Action:   action,
		Entity:   "message",
		EntityID: phone.Normalize(to),
		Payload:  string(body),
	}

	if err := r.auditLog.Append(ctx, entry); err != nil {
		r.logger.Error("Failed to append audit entry",
			zap.Error(err),
			zap.String("tenantID", tenantID),
			zap.String("action", action))
	}
}

func (r *router) toSendResult(result msgprovider.Result, legalBasis string) SendResult {
	if !result.Success {
		return SendResult{
			Success:   false,
			Status:    result.Status,
			ErrorCode: constants.ErrCodeProviderError,
			ErrorText: result.ErrorText,
		}
	}

	return SendResult{
		Success:    true,
		MessageID:  result.MessageID,
		Status:     result.Status,
		LegalBasis: legalBasis,
	}
}

func validateCredentials(cfg *model.TenantConfig) string {
	switch cfg.Provider {
	case model.ProviderCloudAPI:
		if cfg.AccessToken == "" || cfg.PhoneNumberID == "" {
			return "cloud API configuration requires access token and phone number id"
		}
	case model.ProviderBSPGateway:
		if cfg.GatewayURL == "" || cfg.GatewayUser == "" || cfg.GatewayPassword == "" {
			return "BSP gateway configuration requires url, user and password"
		}
	default:
		return fmt.Sprintf("unknown provider %q", cfg.Provider)
	}

	return ""
}

func defaultChannel(provider model.ProviderKind) string {
	if provider == model.ProviderBSPGateway {
		return "sms"
	}
	return "whatsapp"
}

func renderInteractiveAsText(cmd InteractiveCommand) string {
	var b strings.Builder
	b.WriteString(cmd.Body)

	for _, button := range cmd.Buttons {
		b.WriteString("\n- ")
		b.WriteString(button.Title)
	}

	for _, section := range cmd.Sections {
		for _, row := range section.Rows {
			b.WriteString("\n- ")
			b.WriteString(row.Title)
		}
	}

	return b.String()
}

func failResult(code string, text string) SendResult {
	return SendResult{
		Success:   false,
		Status:    "failed",
		ErrorCode: code,
		ErrorText: text,
	}
}
