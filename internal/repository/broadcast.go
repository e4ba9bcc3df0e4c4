package repository

import (
	"context"
	"errors"
	"time"

	"github.com/formaops/messaging-gateway/internal/model"
	"gorm.io/gorm"
)

var ErrBroadcastNotFound = errors.New("BROADCAST_NOT_FOUND")

type BroadcastRepository interface {
	Create(ctx context.Context, broadcast *model.Broadcast, recipients []model.BroadcastRecipient) error
	GetByID(ctx context.Context, id int64) (*model.Broadcast, error)
	ClaimStatus(ctx context.Context, id int64, from []model.BroadcastStatus, to model.BroadcastStatus) error
	UpdateStatus(ctx context.Context, id int64, status model.BroadcastStatus) error
	MarkStarted(ctx context.Context, id int64, at time.Time) error
	MarkCompleted(ctx context.Context, id int64, status model.BroadcastStatus, at time.Time) error
	IncrementSent(ctx context.Context, id int64) error
	IncrementFailed(ctx context.Context, id int64) error
	PendingRecipients(ctx context.Context, broadcastID int64) ([]model.BroadcastRecipient, error)
	UpdateRecipient(ctx context.Context, recipient *model.BroadcastRecipient) error
	CountRecipients(ctx context.Context, broadcastID int64) (map[model.RecipientStatus]int, error)
}

type Broadcast struct {
	db *gorm.DB
}

func NewBroadcastRepository(db *gorm.DB) BroadcastRepository {
	return &Broadcast{db: db}
}

func (b *Broadcast) Create(ctx context.Context, broadcast *model.Broadcast, recipients []model.BroadcastRecipient) error {
	db := GetTx(ctx, b.db)

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(broadcast).Error; err != nil {
			return err
		}

		for i := range recipients {
			recipients[i].BroadcastID = broadcast.ID
		}

		if len(recipients) == 0 {
			return nil
		}

		return tx.CreateInBatches(recipients, 500).Error
	})
}

func (b *Broadcast) GetByID(ctx context.Context, id int64) (*model.Broadcast, error) {
	var broadcast model.Broadcast

	err := b.db.WithContext(ctx).Where("id = ?", id).First(&broadcast).Error
	if err == nil {
		return &broadcast, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBroadcastNotFound
	}

	return nil, err
}

// ClaimStatus transitions the broadcast only when its current status is
// one of the expected values; RowsAffected tells whether the claim won.
func (b *Broadcast) ClaimStatus(ctx context.Context, id int64, from []model.BroadcastStatus, to model.BroadcastStatus) error {
	result := b.db.WithContext(ctx).Model(&model.Broadcast{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

func (b *Broadcast) UpdateStatus(ctx context.Context, id int64, status model.BroadcastStatus) error {
	return b.db.WithContext(ctx).Model(&model.Broadcast{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
}

func (b *Broadcast) MarkStarted(ctx context.Context, id int64, at time.Time) error {
	return b.db.WithContext(ctx).Model(&model.Broadcast{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"started_at": at, "updated_at": time.Now()}).Error
}

func (b *Broadcast) MarkCompleted(ctx context.Context, id int64, status model.BroadcastStatus, at time.Time) error {
	return b.db.WithContext(ctx).Model(&model.Broadcast{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "completed_at": at, "updated_at": time.Now()}).Error
}

func (b *Broadcast) IncrementSent(ctx context.Context, id int64) error {
	return b.db.WithContext(ctx).Model(&model.Broadcast{}).
		Where("id = ?", id).
		Update("sent_count", gorm.Expr("sent_count + 1")).Error
}

func (b *Broadcast) IncrementFailed(ctx context.Context, id int64) error {
	return b.db.WithContext(ctx).Model(&model.Broadcast{}).
		Where("id = ?", id).
		Update("failed_count", gorm.Expr("failed_count + 1")).Error
}

func (b *Broadcast) PendingRecipients(ctx context.Context, broadcastID int64) ([]model.BroadcastRecipient, error) {
	var recipients []model.BroadcastRecipient

	err := b.db.WithContext(ctx).
		Where("broadcast_id = ? AND status = ?", broadcastID, model.RecipientStatusPending).
		Order("id").
		Find(&recipients).Error
	if err != nil {
		return nil, err
	}

	return recipients, nil
}

func (b *Broadcast) UpdateRecipient(ctx context.Context, recipient *model.BroadcastRecipient) error {
	return b.db.WithContext(ctx).Model(recipient).
		Where("id = ?", recipient.ID).
		Updates(recipient).Error
}

func (b *Broadcast) CountRecipients(ctx context.Context, broadcastID int64) (map[model.RecipientStatus]int, error) {
	type statusCount struct {
		Status model.RecipientStatus
		Count  int
	}

	var rows []statusCount

	err := b.db.WithContext(ctx).Model(&model.BroadcastRecipient{}).
		Select("status, COUNT(*) as count").
		Where("broadcast_id = ?", broadcastID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.RecipientStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}
