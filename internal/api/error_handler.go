package api

import (
	"errors"

	"github.com/formaops/messaging-gateway/internal/constants"
	"github.com/formaops/messaging-gateway/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// NewErrorHandler maps service errors to the shared code/message envelope.
func NewErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var svcErr service.Error
		if errors.As(err, &svcErr) {
			return respond(c, svcErr.Code)
		}

		switch {
		case errors.Is(err, service.ErrTenantNotFound):
			return respond(c, constants.ErrCodeTenantNotFound)
		case errors.Is(err, service.ErrBroadcastNotFound):
			return respond(c, constants.ErrCodeBroadcastNotFound)
		case errors.Is(err, service.ErrBroadcastInvalidState):
			return respond(c, constants.ErrCodeBroadcastInvalidState)
		case errors.Is(err, service.ErrNoRecipients):
			return respond(c, constants.ErrCodeValidationError)
		case errors.Is(err, service.ErrSequenceNotFound):
			return respond(c, constants.ErrCodeSequenceNotFound)
		case errors.Is(err, service.ErrSequenceInactive):
			return respond(c, constants.ErrCodeSequenceInactive)
		case errors.Is(err, service.ErrAlreadyEnrolled):
			return respond(c, constants.ErrCodeAlreadyEnrolled)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"code":    constants.ErrCodeInternalError,
				"message": fiberErr.Message,
			})
		}

		logger.Error("Unhandled error", zap.Error(err), zap.String("path", c.Path()))

		return respond(c, constants.ErrCodeInternalError)
	}
}

func respond(c *fiber.Ctx, code string) error {
	return c.Status(constants.GetHTTPStatus(code)).JSON(fiber.Map{
		"code":    code,
		"message": constants.GetErrorMessage(code),
	})
}
