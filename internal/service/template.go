package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/formaops/messaging-gateway/internal/repository"
	"go.uber.org/zap"
)

var ErrTemplateNotFound = errors.New("TEMPLATE_NOT_FOUND")

// builtinFallbacks covers the platform's stock notifications so a
// tenant without template mappings can still send transactional
// messages. Placeholders are positional: {{1}}, {{2}}, ...
var builtinFallbacks = map[string]string{
	"welcome_learner":  "Bienvenue {{1}} ! Votre inscription est confirmée.",
	"session_reminder": "Rappel : votre session {{1}} a lieu le {{2}}.",
	"document_ready":   "Votre document {{1}} est disponible dans votre espace.",
	"payment_reminder": "Rappel : un paiement de {{1}} est attendu avant le {{2}}.",
	"absence_notice":   "Nous avons noté votre absence à la session du {{1}}.",
}

// ResolvedTemplate is the outcome of template resolution. When
// FromMapping is set, ProviderTemplate/Language address a provider-side
// template; Text always carries the substituted fallback body for
// gateways that cannot use provider templates.
type ResolvedTemplate struct {
	FromMapping      bool
	ProviderTemplate string
	Language         string
	Text             string
}

type TemplateResolver interface {
	Resolve(ctx context.Context, tenantID string, key string, params []string) (*ResolvedTemplate, error)
}

type templateResolver struct {
	templates repository.TemplateRepository
	logger    *zap.Logger
}

func NewTemplateResolver(templates repository.TemplateRepository, logger *zap.Logger) TemplateResolver {
	return &templateResolver{templates: templates, logger: logger}
}

func (t *templateResolver) Resolve(ctx context.Context, tenantID string, key string, params []string) (*ResolvedTemplate, error) {
	mapping, err := t.templates.GetByKey(ctx, tenantID, key)
	if err == nil {
		return &ResolvedTemplate{
			FromMapping:      true,
			ProviderTemplate: mapping.ProviderTemplate,
			Language:         mapping.Language,
			Text:             substituteParams(mapping.FallbackText, params),
		}, nil
	}

	if !errors.Is(err, repository.ErrTemplateNotFound) {
		t.logger.Error("Template lookup failed",
			zap.Error(err),
			zap.String("tenantID", tenantID),
			zap.String("key", key))
		return nil, err
	}

	fallback, ok := builtinFallbacks[key]
	if !ok {
		return nil, ErrTemplateNotFound
	}

	t.logger.Debug("Using built-in fallback text",
		zap.String("tenantID", tenantID),
		zap.String("key", key))

	return &ResolvedTemplate{Text: substituteParams(fallback, params)}, nil
}

func substituteParams(text string, params []string) string {
	for i, p := range params {
		text = strings.ReplaceAll(text, fmt.Sprintf("{{%d}}", i+1), p)
	}
	return text
}
