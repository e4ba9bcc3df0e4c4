package api

import (
	v1 "github.com/formaops/messaging-gateway/internal/api/v1"
	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(app *fiber.App, handler *v1.Handler, webhook *v1.WebhookHandler) {
	app.Get("/ping", handler.Pong)

	app.Post("/v1/messages", handler.SendMessage)

	app.Post("/v1/broadcasts", handler.CreateBroadcast)
	app.Post("/v1/broadcasts/:id/start", handler.StartBroadcast)
	app.Post("/v1/broadcasts/:id/pause", handler.PauseBroadcast)
	app.Post("/v1/broadcasts/:id/resume", handler.ResumeBroadcast)
	app.Post("/v1/broadcasts/:id/cancel", handler.CancelBroadcast)
	app.Get("/v1/broadcasts/:id/progress", handler.GetBroadcastProgress)

	app.Post("/v1/scheduled-messages", handler.ScheduleMessage)
	app.Post("/v1/scheduled-messages/:id/cancel", handler.CancelScheduledMessage)

	app.Post("/v1/sequences/:id/enrollments", handler.EnrollContact)

	app.Get("/v1/conversations/:phone/messages", handler.ListMessages)
	app.Post("/v1/conversations/:phone/handoff/clear", handler.ClearHandoff)

	app.Get("/webhook/:tenantID", webhook.Verify)
	app.Post("/webhook/:tenantID", webhook.Receive)
}
