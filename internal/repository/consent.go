package repository

import (
	"context"
	"errors"
	"time"

	"github.com/formaops/messaging-gateway/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrConsentNotFound = errors.New("CONSENT_NOT_FOUND")

type ConsentRepository interface {
	GetByContactID(ctx context.Context, tenantID string, contactID int64) (*model.ConsentRecord, error)
	Upsert(ctx context.Context, record *model.ConsentRecord) error
}

type Consent struct {
	db *gorm.DB
}

func NewConsentRepository(db *gorm.DB) ConsentRepository {
	return &Consent{db: db}
}

func (c *Consent) GetByContactID(ctx context.Context, tenantID string, contactID int64) (*model.ConsentRecord, error) {
	var record model.ConsentRecord

	err := c.db.WithContext(ctx).
		Where("tenant_id = ? AND contact_id = ?", tenantID, contactID).
		First(&record).Error
	if err == nil {
		return &record, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConsentNotFound
	}

	return nil, err
}

// Upsert keys on contact id so repeated opt-out processing stays
// idempotent.
func (c *Consent) Upsert(ctx context.Context, record *model.ConsentRecord) error {
	db := GetTx(ctx, c.db)
	record.UpdatedAt = time.Now()

	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "contact_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"consent_given", "method", "legal_basis", "withdrawn_at", "updated_at",
		}),
	}).Create(record).Error
}
