package v1

import (
	"context"
	"errors"

	"github.com/formaops/messaging-gateway/internal/constants"
	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/formaops/messaging-gateway/internal/publishers"
	"github.com/formaops/messaging-gateway/internal/repository"
	"github.com/formaops/messaging-gateway/internal/service"
	"github.com/formaops/messaging-gateway/pkg/phone"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	logger     *zap.Logger
	validator  *validator.Validate
	router     service.Router
	broadcasts service.BroadcastService
	scheduler  service.SchedulerService
	sequences  service.SequenceService
	chatbot    service.ChatbotService
	messages   repository.MessageRepository
	publisher  publishers.BroadcastPublisher
}

func NewHandler(logger *zap.Logger, router service.Router, broadcasts service.BroadcastService,
	scheduler service.SchedulerService, sequences service.SequenceService,
	chatbot service.ChatbotService, messages repository.MessageRepository,
	publisher publishers.BroadcastPublisher) *Handler {
	return &Handler{
		logger:     logger,
		validator:  validator.New(),
		router:     router,
		broadcasts: broadcasts,
		scheduler:  scheduler,
		sequences:  sequences,
		chatbot:    chatbot,
		messages:   messages,
		publisher:  publisher,
	}
}

func (h *Handler) Pong(c *fiber.Ctx) error {
	return c.SendString("pong")
}

func (h *Handler) SendMessage(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var request SendMessageRequest
	if !h.parseAndValidate(c, &request) {
		return nil
	}

	result := h.router.SendMessage(ctx, request.TenantID, service.SendMessageCommand{
		To:           request.To,
		Text:         request.Text,
		TemplateKey:  request.TemplateKey,
		Params:       request.Params,
		Channel:      request.Channel,
		ContactID:    request.ContactID,
		EnrollmentID: request.EnrollmentID,
	})

	status := fiber.StatusOK
	if !result.Success && result.ErrorCode != "" {
		status = constants.GetHTTPStatus(result.ErrorCode)
	}

	return c.Status(status).JSON(result)
}

func (h *Handler) CreateBroadcast(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var request CreateBroadcastRequest
	if !h.parseAndValidate(c, &request) {
		return nil
	}

	resp, err := h.broadcasts.CreateBroadcast(ctx, request.TenantID, service.CreateBroadcastCommand{
		Name:        request.Name,
		Channel:     request.Channel,
		TemplateKey: request.TemplateKey,
		Content:     request.Content,
		Filters: service.RecipientFilters{
			Structural: repository.StructuralFilters{
				CohortIDs:    request.Filters.Structural.CohortIDs,
				SiteIDs:      request.Filters.Structural.SiteIDs,
				Statuses:     request.Filters.Structural.Statuses,
				ProgramNames: request.Filters.Structural.ProgramNames,
			},
			Tags:    request.Filters.Tags,
			Sources: request.Filters.Sources,
		},
	})
	if err != nil {
		return err
	}

	h.logger.Info("Broadcast created",
		zap.Int64("broadcastID", resp.BroadcastID),
		zap.Int("recipients", resp.TotalRecipients),
		zap.String("tenantID", request.TenantID))

	return c.Status(fiber.StatusCreated).JSON(CreateBroadcastResponse{
		BroadcastID:     resp.BroadcastID,
		TotalRecipients: resp.TotalRecipients,
		Status:          string(model.BroadcastStatusDraft),
	})
}

// StartBroadcast validates the state transition and hands the long
// dispatch loop to the broadcast worker over the queue.
func (h *Handler) StartBroadcast(c *fiber.Ctx) error {
	return h.publishStart(c, model.BroadcastStatusDraft, false)
}

func (h *Handler) ResumeBroadcast(c *fiber.Ctx) error {
	return h.publishStart(c, model.BroadcastStatusPaused, true)
}

func (h *Handler) publishStart(c *fiber.Ctx, required model.BroadcastStatus, resume bool) error {
	ctx := c.UserContext()

	broadcastID, err := c.ParamsInt("id")
	if err != nil {
		return h.invalidBody(c, "broadcast id must be numeric")
	}

	var request StartBroadcastRequest
	_ = c.BodyParser(&request)

	progress, err := h.broadcasts.GetBroadcastProgress(ctx, int64(broadcastID))
	if err != nil {
		return err
	}

	if progress.Status != required {
		return service.ErrBroadcastInvalidState
	}

	cmd := service.StartBroadcastCommand{
		BroadcastID: int64(broadcastID),
		TenantID:    request.TenantID,
		Resume:      resume,
	}

	if err := h.publisher.PublishStart(ctx, cmd); err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(BroadcastActionResponse{
		BroadcastID: int64(broadcastID),
		Status:      string(model.BroadcastStatusSending),
	})
}

func (h *Handler) PauseBroadcast(c *fiber.Ctx) error {
	return h.broadcastAction(c, h.broadcasts.PauseBroadcast, model.BroadcastStatusPaused)
}

func (h *Handler) CancelBroadcast(c *fiber.Ctx) error {
	return h.broadcastAction(c, h.broadcasts.CancelBroadcast, model.BroadcastStatusCancelled)
}

func (h *Handler) broadcastAction(c *fiber.Ctx, action func(ctx context.Context, id int64) error,
	status model.BroadcastStatus) error {
	broadcastID, err := c.ParamsInt("id")
	if err != nil {
		return h.invalidBody(c, "broadcast id must be numeric")
	}

	if err := action(c.UserContext(), int64(broadcastID)); err != nil {
		return err
	}

	return c.JSON(BroadcastActionResponse{BroadcastID: int64(broadcastID), Status: string(status)})
}

func (h *Handler) GetBroadcastProgress(c *fiber.Ctx) error {
	broadcastID, err := c.ParamsInt("id")
	if err != nil {
		return h.invalidBody(c, "broadcast id must be numeric")
	}

	progress, err := h.broadcasts.GetBroadcastProgress(c.UserContext(), int64(broadcastID))
	if err != nil {
		return err
	}

	return c.JSON(progress)
}

func (h *Handler) ScheduleMessage(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var request ScheduleMessageRequest
	if !h.parseAndValidate(c, &request) {
		return nil
	}

	id, err := h.scheduler.ScheduleMessage(ctx, request.TenantID, service.ScheduleMessageCommand{
		To:          request.To,
		Text:        request.Text,
		TemplateKey: request.TemplateKey,
		Channel:     request.Channel,
		ScheduledAt: request.ScheduledAt.Unix(),
		MaxRetries:  request.MaxRetries,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(ScheduleMessageResponse{
		ScheduledMessageID: id,
		Status:             string(model.ScheduledStatusPending),
	})
}

func (h *Handler) CancelScheduledMessage(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return h.invalidBody(c, "scheduled message id must be numeric")
	}

	if err := h.scheduler.CancelScheduledMessage(c.UserContext(), int64(id)); err != nil {
		if errors.Is(err, service.ErrScheduledNotCancellable) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"code":    constants.ErrCodeBroadcastInvalidState,
				"message": "scheduled message is no longer pending",
			})
		}
		return err
	}

	return c.JSON(fiber.Map{"scheduled_message_id": id, "status": string(model.ScheduledStatusCancelled)})
}

func (h *Handler) EnrollContact(c *fiber.Ctx) error {
	sequenceID, err := c.ParamsInt("id")
	if err != nil {
		return h.invalidBody(c, "sequence id must be numeric")
	}

	var request EnrollContactRequest
	if !h.parseAndValidate(c, &request) {
		return nil
	}

	enrollmentID, err := h.sequences.EnrollContact(c.UserContext(), request.TenantID,
		int64(sequenceID), request.Phone, request.ContactID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(EnrollContactResponse{
		EnrollmentID: enrollmentID,
		SequenceID:   int64(sequenceID),
		Status:       string(model.EnrollmentStatusActive),
	})
}

// ListMessages returns the message history of one conversation, newest
// first.
func (h *Handler) ListMessages(c *fiber.Ctx) error {
	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		return h.invalidBody(c, "tenant_id query parameter is required")
	}

	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	messages, err := h.messages.ListByPhone(c.UserContext(), tenantID,
		phone.Normalize(c.Params("phone")), limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"messages": messages, "count": len(messages)})
}

func (h *Handler) ClearHandoff(c *fiber.Ctx) error {
	var request ClearHandoffRequest
	if !h.parseAndValidate(c, &request) {
		return nil
	}

	phoneNumber := c.Params("phone")

	if err := h.chatbot.ClearHandoff(c.UserContext(), request.TenantID, phoneNumber); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"phone": phoneNumber, "handoff_active": false})
}

// parseAndValidate writes the error response itself and reports
// whether the request is usable.
func (h *Handler) parseAndValidate(c *fiber.Ctx, request any) bool {
	if err := c.BodyParser(request); err != nil {
		h.logger.Warn("Failed to parse body",
			zap.Error(err),
			zap.String("path", c.Path()))
		_ = h.invalidBody(c, constants.GetErrorMessage(constants.ErrCodeInvalidRequestBody))
		return false
	}

	if err := h.validator.Struct(request); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code":    constants.ErrCodeValidationError,
			"message": err.Error(),
		})
		return false
	}

	return true
}

func (h *Handler) invalidBody(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"code":    constants.ErrCodeInvalidRequestBody,
		"message": message,
	})
}
