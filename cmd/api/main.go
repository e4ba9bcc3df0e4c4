package main

import (
	"context"

	"github.com/formaops/messaging-gateway/internal/api"
	v1 "github.com/formaops/messaging-gateway/internal/api/v1"
	"github.com/formaops/messaging-gateway/internal/config"
	"github.com/formaops/messaging-gateway/internal/publishers"
	"github.com/formaops/messaging-gateway/internal/repository"
	"github.com/formaops/messaging-gateway/internal/service"
	"github.com/formaops/messaging-gateway/pkg/mq"
	"github.com/formaops/messaging-gateway/pkg/mysql"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,
			NewFiberApp,
			NewConnectionDB,
			NewMQConnection,
			NewMQPublisher,

			repository.NewTenantConfigRepository,
			repository.NewTemplateRepository,
			repository.NewMessageRepository,
			repository.NewContactRepository,
			repository.NewBroadcastRepository,
			repository.NewScheduledMessageRepository,
			repository.NewSequenceRepository,
			repository.NewChatbotRepository,
			repository.NewConsentRepository,
			repository.NewAuditLogRepository,
			repository.NewTransactionManager,

			service.NewProviderFactory,
			service.NewTemplateResolver,
			service.NewConsentService,
			service.NewRouter,
			NewBroadcastService,
			service.NewSchedulerService,
			service.NewSequenceService,
			service.NewChatbotService,

			publishers.NewBroadcastPublisher,
			v1.NewHandler,
			v1.NewWebhookHandler,
		),
		fx.Invoke(startServer),
	).Run()
}

func startServer(app *fiber.App, handler *v1.Handler, webhook *v1.WebhookHandler,
	cfg *config.Config, rabbit *mq.RabbitMQ, logger *zap.Logger, lc fx.Lifecycle) {
	api.SetupRoutes(app, handler, webhook)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rabbit.DeclareTopology([]string{publishers.QueueBroadcastStart}); err != nil {
				logger.Error("declare topology failed", zap.Error(err))
				return err
			}

			go app.Listen(cfg.API.Port)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := app.ShutdownWithContext(ctx); err != nil {
				return err
			}
			return rabbit.Close()
		},
	})
}

func NewFiberApp(logger *zap.Logger) *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: api.NewErrorHandler(logger)})
}

func NewConnectionDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	ctx := context.Background()
	return mysql.NewConnection(ctx, cfg.Database, logger)
}

func NewMQConnection(cfg *config.Config, logger *zap.Logger) (*mq.RabbitMQ, error) {
	return mq.NewConnection(cfg.RabbitMQ, logger)
}

func NewMQPublisher(rabbitMQ *mq.RabbitMQ) (mq.Publisher, error) {
	return rabbitMQ.CreatePublisher()
}

func NewBroadcastService(broadcasts repository.BroadcastRepository, contacts repository.ContactRepository,
	router service.Router, cfg *config.Config, logger *zap.Logger) service.BroadcastService {
	return service.NewBroadcastService(broadcasts, contacts, router, cfg.Broadcast.SendInterval, logger)
}
