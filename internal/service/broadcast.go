package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/formaops/messaging-gateway/internal/repository"
	"github.com/formaops/messaging-gateway/pkg/phone"
	"go.uber.org/zap"
)

// strategyCap bounds each recipient-resolution query so a careless
// filter cannot pull the whole CRM into one campaign.
const strategyCap = 5000

const (
	recipientSourceStructural = "structural"
	recipientSourceTag        = "tag"
	recipientSourceOrigin     = "source"
)

type BroadcastService interface {
	ResolveRecipients(ctx context.Context, tenantID string, filters RecipientFilters) ([]model.BroadcastRecipient, error)
	CreateBroadcast(ctx context.Context, tenantID string, cmd CreateBroadcastCommand) (*CreateBroadcastResponse, error)
	StartBroadcast(ctx context.Context, broadcastID int64) error
	ResumeBroadcast(ctx context.Context, broadcastID int64) error
	PauseBroadcast(ctx context.Context, broadcastID int64) error
	CancelBroadcast(ctx context.Context, broadcastID int64) error
	GetBroadcastProgress(ctx context.Context, broadcastID int64) (*BroadcastProgress, error)
}

type broadcast struct {
	broadcasts   repository.BroadcastRepository
	contacts     repository.ContactRepository
	router       Router
	sendInterval time.Duration
	logger       *zap.Logger
}

func NewBroadcastService(broadcasts repository.BroadcastRepository, contacts repository.ContactRepository,
	router Router, sendInterval time.Duration, logger *zap.Logger) BroadcastService {
	if sendInterval <= 0 {
		// One message per second is the provider rate ceiling; the
		// dispatch loop is the only limiter.
		sendInterval = time.Second
	}

	return &broadcast{
		broadcasts:   broadcasts,
		contacts:     contacts,
		router:       router,
		sendInterval: sendInterval,
		logger:       logger,
	}
}

// ResolveRecipients unions three independent query strategies over the
// CRM: structural filters, tags, and acquisition sources. Contacts are
// deduplicated by normalized phone; a contact matching several
// strategies keeps the attribution of whichever resolved it first.
func (b *broadcast) ResolveRecipients(ctx context.Context, tenantID string, filters RecipientFilters) ([]model.BroadcastRecipient, error) {
	seen := make(map[string]struct{})
	var recipients []model.BroadcastRecipient

	collect := func(contacts []model.Contact, source string) {
		for _, contact := range contacts {
			normalized := phone.Normalize(contact.Phone)
			if normalized == "" {
				continue
			}
			if _, dup := seen[normalized]; dup {
				continue
			}

			seen[normalized] = struct{}{}
			contactID := contact.ID
			recipients = append(recipients, model.BroadcastRecipient{
				TenantID:  tenantID,
				Phone:     normalized,
				ContactID: &contactID,
				Source:    source,
				Status:    model.RecipientStatusPending,
			})
		}
	}

	structural, err := b.contacts.FindStructural(ctx, tenantID, filters.Structural, strategyCap)
	if err != nil {
		return nil, err
	}
	collect(structural, recipientSourceStructural)

	tagged, err := b.contacts.FindByTags(ctx, tenantID, filters.Tags, strategyCap)
	if err != nil {
		return nil, err
	}
	collect(tagged, recipientSourceTag)

	sourced, err := b.contacts.FindBySources(ctx, tenantID, filters.Sources, strategyCap)
	if err != nil {
		return nil, err
	}
	collect(sourced, recipientSourceOrigin)

	return recipients, nil
}

func (b *broadcast) CreateBroadcast(ctx context.Context, tenantID string, cmd CreateBroadcastCommand) (*CreateBroadcastResponse, error) {
	recipients, err := b.ResolveRecipients(ctx, tenantID, cmd.Filters)
	if err != nil {
		b.logger.Error("Failed to resolve broadcast recipients",
			zap.Error(err),
			zap.String("tenantID", tenantID))
		return nil, ErrDatabase
	}

	serialized, err := json.Marshal(cmd.Filters)
	if err != nil {
		return nil, err
	}

	var templateKey *string
	if cmd.TemplateKey != "" {
		templateKey = &cmd.TemplateKey
	}

	campaign := &model.Broadcast{
		TenantID:        tenantID,
		Name:            cmd.Name,
		Channel:         cmd.Channel,
		TemplateKey:     templateKey,
		Content:         cmd.Content,
		Filters:         string(serialized),
		TotalRecipients: len(recipients),
		Status:          model.BroadcastStatusDraft,
	}

	if err := b.broadcasts.Create(ctx, campaign, recipients); err != nil {
		b.logger.Error("Failed to create broadcast",
			zap.Error(err),
			zap.String("tenantID", tenantID),
			zap.String("name", cmd.Name))
		return nil, ErrDatabase
	}

	b.logger.Info("Broadcast created",
		zap.Int64("broadcastID", campaign.ID),
		zap.String("tenantID", tenantID),
		zap.Int("recipients", len(recipients)))

	return &CreateBroadcastResponse{BroadcastID: campaign.ID, TotalRecipients: len(recipients)}, nil
}

func (b *broadcast) StartBroadcast(ctx context.Context, broadcastID int64) error {
	return b.start(ctx, broadcastID, model.BroadcastStatusDraft)
}

// ResumeBroadcast picks a paused campaign back up; only recipients
// still PENDING are dispatched.
func (b *broadcast) ResumeBroadcast(ctx context.Context, broadcastID int64) error {
	return b.start(ctx, broadcastID, model.BroadcastStatusPaused)
}

func (b *broadcast) start(ctx context.Context, broadcastID int64, from model.BroadcastStatus) error {
	campaign, err := b.broadcasts.GetByID(ctx, broadcastID)
	if err != nil {
		if errors.Is(err, repository.ErrBroadcastNotFound) {
			return ErrBroadcastNotFound
		}
		return ErrDatabase
	}

	err = b.broadcasts.ClaimStatus(ctx, broadcastID, []model.BroadcastStatus{from}, model.BroadcastStatusSending)
	if err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			b.logger.Warn("Broadcast not claimable",
				zap.Int64("broadcastID", broadcastID),
				zap.String("expected", string(from)))
			return ErrBroadcastInvalidState
		}
		return ErrDatabase
	}

	if from == model.BroadcastStatusDraft {
		if err := b.broadcasts.MarkStarted(ctx, broadcastID, time.Now()); err != nil {
			b.logger.Error("Failed to record broadcast start time",
				zap.Error(err),
				zap.Int64("broadcastID", broadcastID))
		}
	}

	b.logger.Info("Broadcast dispatch starting",
		zap.Int64("broadcastID", broadcastID),
		zap.String("tenantID", campaign.TenantID))

	return b.runDispatchLoop(ctx, campaign)
}

// runDispatchLoop is the single sequential worker for one broadcast.
// The fixed inter-send sleep is the rate limiter; cancellation and
// pause are observed between sends by re-reading the campaign status.
func (b *broadcast) runDispatchLoop(ctx context.Context, campaign *model.Broadcast) error {
	recipients, err := b.broadcasts.PendingRecipients(ctx, campaign.ID)
	if err != nil {
		b.logger.Error("Failed to load pending recipients",
			zap.Error(err),
			zap.Int64("broadcastID", campaign.ID))
		return ErrDatabase
	}

	interrupted := false

	for i, recipient := range recipients {
		current, err := b.broadcasts.GetByID(ctx, campaign.ID)
		if err != nil {
			b.logger.Error("Failed to re-read broadcast status",
				zap.Error(err),
				zap.Int64("broadcastID", campaign.ID))
			return ErrDatabase
		}

		if current.Status != model.BroadcastStatusSending {
			b.logger.Info("Broadcast loop stopping on status change",
				zap.Int64("broadcastID", campaign.ID),
				zap.String("status", string(current.Status)))
			interrupted = true
			break
		}

		b.dispatchRecipient(ctx, campaign, recipient)

		if i < len(recipients)-1 {
			time.Sleep(b.sendInterval)
		}
	}

	if interrupted {
		return nil
	}

	return b.finalize(ctx, campaign.ID)
}

func (b *broadcast) dispatchRecipient(ctx context.Context, campaign *model.Broadcast, recipient model.BroadcastRecipient) {
	cmd := SendMessageCommand{
		To:        recipient.Phone,
		Text:      campaign.Content,
		Channel:   campaign.Channel,
		ContactID: recipient.ContactID,
	}
	if campaign.TemplateKey != nil {
		cmd.TemplateKey = *campaign.TemplateKey
	}

	result := b.router.SendMessage(ctx, campaign.TenantID, cmd)

	now := time.Now()
	if result.Success {
		recipient.Status = model.RecipientStatusSent
		recipient.SentAt = &now
		if result.MessageID != "" {
			id := result.MessageID
			recipient.ProviderMsgID = &id
		}
	} else {
		recipient.Status = model.RecipientStatusFailed
		text := result.ErrorText
		recipient.ErrorText = &text
	}

	if err := b.broadcasts.UpdateRecipient(ctx, &recipient); err != nil {
		b.logger.Error("Failed to update broadcast recipient",
			zap.Error(err),
			zap.Int64("broadcastID", campaign.ID),
			zap.Int64("recipientID", recipient.ID))
	}

	var err error
	if result.Success {
		err = b.broadcasts.IncrementSent(ctx, campaign.ID)
	} else {
		err = b.broadcasts.IncrementFailed(ctx, campaign.ID)
	}
	if err != nil {
		b.logger.Error("Failed to update broadcast counters",
			zap.Error(err),
			zap.Int64("broadcastID", campaign.ID))
	}
}

// finalize runs only when the loop drained every pending recipient:
// FAILED when every recipient failed, COMPLETED otherwise.
func (b *broadcast) finalize(ctx context.Context, broadcastID int64) error {
	counts, err := b.broadcasts.CountRecipients(ctx, broadcastID)
	if err != nil {
		return ErrDatabase
	}

	sent := counts[model.RecipientStatusSent]
	failed := counts[model.RecipientStatusFailed]

	final := model.BroadcastStatusCompleted
	if failed > 0 && sent == 0 {
		final = model.BroadcastStatusFailed
	}

	if err := b.broadcasts.MarkCompleted(ctx, broadcastID, final, time.Now()); err != nil {
		b.logger.Error("Failed to finalize broadcast",
			zap.Error(err),
			zap.Int64("broadcastID", broadcastID))
		return ErrDatabase
	}

	b.logger.Info("Broadcast finished",
		zap.Int64("broadcastID", broadcastID),
		zap.String("status", string(final)),
		zap.Int("sent", sent),
		zap.Int("failed", failed))

	return nil
}

func (b *broadcast) PauseBroadcast(ctx context.Context, broadcastID int64) error {
	return b.transition(ctx, broadcastID,
		[]model.BroadcastStatus{model.BroadcastStatusSending}, model.BroadcastStatusPaused)
}

func (b *broadcast) CancelBroadcast(ctx context.Context, broadcastID int64) error {
	return b.transition(ctx, broadcastID,
		[]model.BroadcastStatus{model.BroadcastStatusDraft, model.BroadcastStatusSending, model.BroadcastStatusPaused},
		model.BroadcastStatusCancelled)
}

func (b *broadcast) transition(ctx context.Context, broadcastID int64, from []model.BroadcastStatus, to model.BroadcastStatus) error {
	err := b.broadcasts.ClaimStatus(ctx, broadcastID, from, to)
	if err == nil {
		b.logger.Info("Broadcast status changed",
			zap.Int64("broadcastID", broadcastID),
			zap.String("status", string(to)))
		return nil
	}

	if errors.Is(err, repository.ErrNoRowsAffected) {
		return ErrBroadcastInvalidState
	}

	return ErrDatabase
}

func (b *broadcast) GetBroadcastProgress(ctx context.Context, broadcastID int64) (*BroadcastProgress, error) {
	campaign, err := b.broadcasts.GetByID(ctx, broadcastID)
	if err != nil {
		if errors.Is(err, repository.ErrBroadcastNotFound) {
			return nil, ErrBroadcastNotFound
		}
		return nil, ErrDatabase
	}

	counts, err := b.broadcasts.CountRecipients(ctx, broadcastID)
	if err != nil {
		return nil, ErrDatabase
	}

	sent := counts[model.RecipientStatusSent]
	failed := counts[model.RecipientStatusFailed]
	pending := counts[model.RecipientStatusPending]
	total := sent + failed + pending

	progress := 0
	if total > 0 {
		progress = int(math.Round(float64(sent+failed) / float64(total) * 100))
	}

	return &BroadcastProgress{
		BroadcastID: broadcastID,
		Status:      campaign.Status,
		Total:       total,
		Pending:     pending,
		Sent:        sent,
		Failed:      failed,
		Progress:    progress,
	}, nil
}
