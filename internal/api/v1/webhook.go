package v1

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/formaops/messaging-gateway/internal/repository"
	"github.com/formaops/messaging-gateway/internal/service"
	"github.com/formaops/messaging-gateway/pkg/phone"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// WebhookHandler ingests provider callbacks: delivery-status updates
// keyed by provider message id, and inbound user messages which feed
// the opt-out handler and the chatbot.
type WebhookHandler struct {
	logger     *zap.Logger
	tenantCfgs repository.TenantConfigRepository
	messages   repository.MessageRepository
	consent    service.ConsentService
	chatbot    service.ChatbotService
	sequences  service.SequenceService
	router     service.Router
}

func NewWebhookHandler(logger *zap.Logger, tenantCfgs repository.TenantConfigRepository,
	messages repository.MessageRepository, consent service.ConsentService,
	chatbot service.ChatbotService, sequences service.SequenceService,
	router service.Router) *WebhookHandler {
	return &WebhookHandler{
		logger:     logger,
		tenantCfgs: tenantCfgs,
		messages:   messages,
		consent:    consent,
		chatbot:    chatbot,
		sequences:  sequences,
		router:     router,
	}
}

type webhookStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type webhookText struct {
	Body string `json:"body"`
}

type webhookInteractiveReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type webhookInteractive struct {
	ButtonReply *webhookInteractiveReply `json:"button_reply"`
	ListReply   *webhookInteractiveReply `json:"list_reply"`
}

type webhookMessage struct {
	ID          string              `json:"id"`
	From        string              `json:"from"`
	Text        *webhookText        `json:"text"`
	Interactive *webhookInteractive `json:"interactive"`
}

type webhookPayload struct {
	Statuses []webhookStatus  `json:"statuses"`
	Messages []webhookMessage `json:"messages"`
}

// Verify answers the provider's challenge/token handshake.
func (h *WebhookHandler) Verify(c *fiber.Ctx) error {
	tenantID := c.Params("tenantID")

	cfg, err := h.tenantCfgs.GetByTenantID(c.UserContext(), tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrTenantConfigNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return err
	}

	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")

	if mode != "subscribe" || token == "" || token != cfg.WebhookVerifyToken {
		h.logger.Warn("Webhook verification rejected", zap.String("tenantID", tenantID))
		return c.SendStatus(fiber.StatusForbidden)
	}

	return c.SendString(c.Query("hub.challenge"))
}

// Receive processes one webhook delivery. It always answers 200 so the
// provider does not re-deliver on partial downstream failures.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	tenantID := c.Params("tenantID")

	var payload webhookPayload
	if err := c.BodyParser(&payload); err != nil {
		h.logger.Warn("Failed to parse webhook payload",
			zap.Error(err),
			zap.String("tenantID", tenantID))
		return c.SendStatus(fiber.StatusOK)
	}

	for _, status := range payload.Statuses {
		h.applyStatus(c, tenantID, status)
	}

	for _, message := range payload.Messages {
		h.processInbound(c, tenantID, message)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *WebhookHandler) applyStatus(c *fiber.Ctx, tenantID string, status webhookStatus) {
	mapped, ok := mapProviderStatus(status.Status)
	if !ok {
		h.logger.Warn("Unknown delivery status",
			zap.String("status", status.Status),
			zap.String("tenantID", tenantID))
		return
	}

	err := h.messages.UpdateStatusByProviderMsgID(c.UserContext(), tenantID, status.ID, mapped)
	if err != nil {
		h.logger.Error("Failed to apply delivery status",
			zap.Error(err),
			zap.String("providerMsgID", status.ID),
			zap.String("tenantID", tenantID))
	}
}

func (h *WebhookHandler) processInbound(c *fiber.Ctx, tenantID string, message webhookMessage) {
	ctx := c.UserContext()

	text := ""
	if message.Text != nil {
		text = message.Text.Body
	}

	interactiveID := ""
	if message.Interactive != nil {
		if message.Interactive.ButtonReply != nil {
			interactiveID = message.Interactive.ButtonReply.ID
			text = message.Interactive.ButtonReply.Title
		} else if message.Interactive.ListReply != nil {
			interactiveID = message.Interactive.ListReply.ID
			text = message.Interactive.ListReply.Title
		}
	}

	normalized := phone.Normalize(message.From)

	inbound := &model.Message{
		TenantID:  tenantID,
		Direction: model.DirectionInbound,
		Channel:   "whatsapp",
		Status:    model.MessageStatusReceived,
		Phone:     normalized,
		Content:   text,
		CreatedAt: time.Now(),
	}
	if message.ID != "" {
		inbound.ProviderMsgID = &message.ID
	}

	if err := h.messages.Create(ctx, inbound); err != nil {
		if errors.Is(err, repository.ErrMessageDuplicate) {
			// Provider redelivery of a message already ingested.
			h.logger.Debug("Inbound message already ingested",
				zap.String("providerMsgID", message.ID),
				zap.String("tenantID", tenantID))
			return
		}
		h.logger.Error("Failed to persist inbound message",
			zap.Error(err),
			zap.String("tenantID", tenantID))
	}

	if sequenceID, ok := parseEnrollmentReply(interactiveID); ok {
		h.enrollFromReply(ctx, tenantID, normalized, sequenceID)
		return
	}

	if interactiveID == "" {
		handled, ack, err := h.consent.HandleOptOut(ctx, tenantID, normalized, text)
		if err != nil {
			h.logger.Error("Opt-out handling failed",
				zap.Error(err),
				zap.String("tenantID", tenantID))
		}
		if handled {
			// The acknowledgement carries no contact links so the
			// just-withdrawn consent cannot block it.
			h.router.SendMessage(ctx, tenantID, service.SendMessageCommand{To: normalized, Text: ack})
			return
		}
	}

	replied, err := h.chatbot.ProcessInbound(ctx, tenantID, normalized, text, interactiveID)
	if err != nil {
		h.logger.Error("Chatbot processing failed",
			zap.Error(err),
			zap.String("tenantID", tenantID))
		return
	}

	h.logger.Debug("Inbound message processed",
		zap.String("tenantID", tenantID),
		zap.Bool("autoReplied", replied))
}

// enrollmentReplyPrefix tags interactive reply ids that carry a
// sequence enrollment request instead of a chatbot keyword.
const enrollmentReplyPrefix = "enroll:"

func parseEnrollmentReply(interactiveID string) (int64, bool) {
	raw, found := strings.CutPrefix(interactiveID, enrollmentReplyPrefix)
	if !found {
		return 0, false
	}

	sequenceID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || sequenceID <= 0 {
		return 0, false
	}

	return sequenceID, true
}

func (h *WebhookHandler) enrollFromReply(ctx context.Context, tenantID string, phoneNumber string, sequenceID int64) {
	_, err := h.sequences.EnrollContact(ctx, tenantID, sequenceID, phoneNumber, nil)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyEnrolled) {
			return
		}
		h.logger.Error("Enrollment from interactive reply failed",
			zap.Error(err),
			zap.String("tenantID", tenantID),
			zap.Int64("sequenceID", sequenceID))
	}
}

func mapProviderStatus(status string) (model.MessageStatus, bool) {
	switch status {
	case "sent":
		return model.MessageStatusSent, true
	case "delivered":
		return model.MessageStatusDelivered, true
	case "read":
		return model.MessageStatusRead, true
	case "failed":
		return model.MessageStatusFailed, true
	default:
		return "", false
	}
}
