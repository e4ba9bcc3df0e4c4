package main

import (
	"context"

	"github.com/formaops/messaging-gateway/internal/config"
	"github.com/formaops/messaging-gateway/internal/consumers"
	"github.com/formaops/messaging-gateway/internal/publishers"
	"github.com/formaops/messaging-gateway/internal/repository"
	"github.com/formaops/messaging-gateway/internal/service"
	"github.com/formaops/messaging-gateway/pkg/mq"
	"github.com/formaops/messaging-gateway/pkg/mysql"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,
			NewConnectionDB,
			NewMQConnection,
			NewMQConsumer,

			repository.NewTenantConfigRepository,
			repository.NewTemplateRepository,
			repository.NewMessageRepository,
			repository.NewContactRepository,
			repository.NewBroadcastRepository,
			repository.NewConsentRepository,
			repository.NewAuditLogRepository,
			repository.NewTransactionManager,

			service.NewProviderFactory,
			service.NewTemplateResolver,
			service.NewConsentService,
			service.NewRouter,
			NewBroadcastService,

			consumers.NewBroadcastConsumer,
		),
		fx.Invoke(runBroadcastConsumer),
	).Run()
}

func runBroadcastConsumer(consumer consumers.BroadcastConsumer, logger *zap.Logger,
	rabbit *mq.RabbitMQ, lc fx.Lifecycle) {
	appCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rabbit.DeclareTopology([]string{publishers.QueueBroadcastStart}); err != nil {
				logger.Error("declare topology failed", zap.Error(err))
				return err
			}

			go func() {
				if err := consumer.Consume(appCtx); err != nil {
					logger.Error("consumer exited", zap.Error(err))
				}
			}()

			logger.Info("broadcast consumer started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping broadcast consumer")
			cancel()
			return rabbit.Close()
		},
	})
}

func NewConnectionDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	ctx := context.Background()
	return mysql.NewConnection(ctx, cfg.Database, logger)
}

func NewMQConnection(cfg *config.Config, logger *zap.Logger) (*mq.RabbitMQ, error) {
	return mq.NewConnection(cfg.RabbitMQ, logger)
}

func NewMQConsumer(rabbitMQ *mq.RabbitMQ) (mq.Consumer, error) {
	return rabbitMQ.CreateConsumer()
}

func NewBroadcastService(broadcasts repository.BroadcastRepository, contacts repository.ContactRepository,
	router service.Router, cfg *config.Config, logger *zap.Logger) service.BroadcastService {
	return service.NewBroadcastService(broadcasts, contacts, router, cfg.Broadcast.SendInterval, logger)
}
