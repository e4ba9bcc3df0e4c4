package repository

import (
	"context"
	"errors"
	"time"

	"github.com/formaops/messaging-gateway/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrConversationNotFound = errors.New("CONVERSATION_NOT_FOUND")

type ChatbotRepository interface {
	ActiveRules(ctx context.Context, tenantID string) ([]model.ChatbotRule, error)
	GetConversation(ctx context.Context, tenantID string, phone string) (*model.ChatbotConversation, error)
	UpsertConversation(ctx context.Context, conversation *model.ChatbotConversation) error
}

type Chatbot struct {
	db *gorm.DB
}

func NewChatbotRepository(db *gorm.DB) ChatbotRepository {
	return &Chatbot{db: db}
}

func (c *Chatbot) ActiveRules(ctx context.Context, tenantID string) ([]model.ChatbotRule, error) {
	var rules []model.ChatbotRule

	err := c.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("priority DESC, id").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}

	return rules, nil
}

func (c *Chatbot) GetConversation(ctx context.Context, tenantID string, phone string) (*model.ChatbotConversation, error) {
	var conversation model.ChatbotConversation

	err := c.db.WithContext(ctx).
		Where("tenant_id = ? AND phone = ?", tenantID, phone).
		First(&conversation).Error
	if err == nil {
		return &conversation, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}

	return nil, err
}

// UpsertConversation writes the full automation state keyed by
// (tenant, phone). Concurrent entry points overwrite each other
// idempotently instead of racing on read-modify-write.
func (c *Chatbot) UpsertConversation(ctx context.Context, conversation *model.ChatbotConversation) error {
	conversation.UpdatedAt = time.Now()

	return c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"last_bot_reply_at", "handoff_active", "handoff_at", "last_menu", "updated_at",
		}),
	}).Create(conversation).Error
}
