package repository

import (
	"context"
	"errors"

	"github.com/formaops/messaging-gateway/internal/model"
	"gorm.io/gorm"
)

var ErrTenantConfigNotFound = errors.New("TENANT_CONFIG_NOT_FOUND")

type TenantConfigRepository interface {
	GetByTenantID(ctx context.Context, tenantID string) (*model.TenantConfig, error)
}

type TenantConfig struct {
	db *gorm.DB
}

func NewTenantConfigRepository(db *gorm.DB) TenantConfigRepository {
	return &TenantConfig{db: db}
}

func (t *TenantConfig) GetByTenantID(ctx context.Context, tenantID string) (*model.TenantConfig, error) {
	var cfg model.TenantConfig

	err := t.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&cfg).Error
	if err == nil {
		return &cfg, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTenantConfigNotFound
	}

	return nil, err
}
