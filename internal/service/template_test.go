package service_test

import (
	"context"
	"testing"

	"github.com/formaops/messaging-gateway/internal/mocks"
	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/formaops/messaging-gateway/internal/repository"
	"github.com/formaops/messaging-gateway/internal/service"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTemplateResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("mapping wins and substitutes fallback params", func(t *testing.T) {
		repo := &mocks.TemplateRepository{}
		resolver := service.NewTemplateResolver(repo, zap.NewNop())

		repo.On("GetByKey", ctx, "tenant-1", "session_reminder").Return(&model.TemplateMapping{
			TenantID:         "tenant-1",
			Key:              "session_reminder",
			ProviderTemplate: "session_reminder_fr",
			Language:         "fr",
			FallbackText:     "Rappel : votre session {{1}} a lieu le {{2}}.",
		}, nil)

		resolved, err := resolver.Resolve(ctx, "tenant-1", "session_reminder", []string{"Go avancé", "12/09"})

		assert.NoError(t, err)
		assert.True(t, resolved.FromMapping)
		assert.Equal(t, "session_reminder_fr", resolved.ProviderTemplate)
		assert.Equal(t, "fr", resolved.Language)
		assert.Equal(t, "Rappel : votre session Go avancé a lieu le 12/09.", resolved.Text)
	})

	t.Run("built-in fallback covers stock keys", func(t *testing.T) {
		repo := &mocks.TemplateRepository{}
		resolver := service.NewTemplateResolver(repo, zap.NewNop())

		repo.On("GetByKey", ctx, "tenant-1", "welcome_learner").
			Return(nil, repository.ErrTemplateNotFound)

		resolved, err := resolver.Resolve(ctx, "tenant-1", "welcome_learner", []string{"Marie"})

		assert.NoError(t, err)
		assert.False(t, resolved.FromMapping)
		assert.Equal(t, "Bienvenue Marie ! Votre inscription est confirmée.", resolved.Text)
	})

	t.Run("unknown key fails", func(t *testing.T) {
		repo := &mocks.TemplateRepository{}
		resolver := service.NewTemplateResolver(repo, zap.NewNop())

		repo.On("GetByKey", ctx, "tenant-1", "bogus").
			Return(nil, repository.ErrTemplateNotFound)

		resolved, err := resolver.Resolve(ctx, "tenant-1", "bogus", nil)

		assert.Nil(t, resolved)
		assert.ErrorIs(t, err, service.ErrTemplateNotFound)
	})

	t.Run("extra placeholders stay untouched", func(t *testing.T) {
		repo := &mocks.TemplateRepository{}
		resolver := service.NewTemplateResolver(repo, zap.NewNop())

		repo.On("GetByKey", ctx, "tenant-1", "session_reminder").
			Return(nil, repository.ErrTemplateNotFound)

		resolved, err := resolver.Resolve(ctx, "tenant-1", "session_reminder", []string{"Go avancé"})

		assert.NoError(t, err)
		assert.Equal(t, "Rappel : votre session Go avancé a lieu le {{2}}.", resolved.Text)
	})
}
