package repository

import (
	"context"

	"github.com/formaops/messaging-gateway/internal/model"
	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Append(ctx context.Context, entry *model.AuditLog) error
}

type AuditLog struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &AuditLog{db: db}
}

func (a *AuditLog) Append(ctx context.Context, entry *model.AuditLog) error {
	db := GetTx(ctx, a.db)
	return db.Create(entry).Error
}
