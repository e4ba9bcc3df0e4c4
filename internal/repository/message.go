package repository

import (
	"context"
	"errors"
	"time"

	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrMessageNotFound  = errors.New("MESSAGE_NOT_FOUND")
	ErrMessageDuplicate = errors.New("MESSAGE_DUPLICATE")
)

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	UpdateStatusByProviderMsgID(ctx context.Context, tenantID string, providerMsgID string, status model.MessageStatus) error
	ExistsInboundSince(ctx context.Context, tenantID string, phones []string, since time.Time) (bool, error)
	ListByPhone(ctx context.Context, tenantID string, phone string, limit int, offset int) ([]model.Message, error)
}

type Message struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &Message{db: db}
}

func (m *Message) Create(ctx context.Context, message *model.Message) error {
	db := GetTx(ctx, m.db)
	err := db.Create(message).Error
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrMessageDuplicate
	}

	return err
}

func (m *Message) UpdateStatusByProviderMsgID(ctx context.Context, tenantID string, providerMsgID string, status model.MessageStatus) error {
	result := m.db.WithContext(ctx).Model(&model.Message{}).
		Where("tenant_id = ? AND provider_msg_id = ?", tenantID, providerMsgID).
		Update("status", status)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}

	return nil
}

func (m *Message) ExistsInboundSince(ctx context.Context, tenantID string, phones []string, since time.Time) (bool, error) {
	var count int64

	err := m.db.WithContext(ctx).Model(&model.Message{}).
		Where("tenant_id = ? AND direction = ? AND phone IN ? AND created_at > ?",
			tenantID, model.DirectionInbound, phones, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (m *Message) ListByPhone(ctx context.Context, tenantID string, phone string, limit int, offset int) ([]model.Message, error) {
	var messages []model.Message

	err := m.db.WithContext(ctx).
		Where("tenant_id = ? AND phone = ?", tenantID, phone).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}
