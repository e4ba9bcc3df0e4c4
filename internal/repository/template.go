package repository

import (
	"context"
	"errors"

	"github.com/formaops/messaging-gateway/internal/model"
	"gorm.io/gorm"
)

var ErrTemplateNotFound = errors.New("TEMPLATE_NOT_FOUND")

type TemplateRepository interface {
	GetByKey(ctx context.Context, tenantID string, key string) (*model.TemplateMapping, error)
}

type Template struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &Template{db: db}
}

func (t *Template) GetByKey(ctx context.Context, tenantID string, key string) (*model.TemplateMapping, error) {
	var mapping model.TemplateMapping

	err := t.db.WithContext(ctx).
		Where("tenant_id = ? AND template_key = ? AND active = ?", tenantID, key, true).
		First(&mapping).Error
	if err == nil {
		return &mapping, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTemplateNotFound
	}

	return nil, err
}
