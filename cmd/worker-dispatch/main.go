package main

import (
	"context"
	"time"

	"github.com/formaops/messaging-gateway/internal/config"
	"github.com/formaops/messaging-gateway/internal/repository"
	"github.com/formaops/messaging-gateway/internal/service"
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

			repository.NewTenantConfigRepository,
			repository.NewTemplateRepository,
			repository.NewMessageRepository,
			repository.NewContactRepository,
			repository.NewScheduledMessageRepository,
			repository.NewSequenceRepository,
			repository.NewConsentRepository,
			repository.NewAuditLogRepository,
			repository.NewTransactionManager,

			service.NewProviderFactory,
			service.NewTemplateResolver,
			service.NewConsentService,
			service.NewRouter,
			service.NewSchedulerService,
			service.NewSequenceService,
		),
		fx.Invoke(runDispatchLoop),
	).Run()
}

// runDispatchLoop drives the three timed engines on one ticker: the
// scheduled-message drain, the sequence advance and the stop-on-reply
// scan.
func runDispatchLoop(cfg *config.Config, scheduler service.SchedulerService,
	sequences service.SequenceService, logger *zap.Logger, lc fx.Lifecycle) {
	appCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ticker := time.NewTicker(cfg.Worker.PollInterval)
				defer ticker.Stop()

				for {
					select {
					case <-ticker.C:
						runOnce(appCtx, scheduler, sequences, logger)
					case <-appCtx.Done():
						logger.Info("dispatch loop context cancelled")
						return
					}
				}
			}()

			logger.Info("dispatch worker started",
				zap.Duration("pollInterval", cfg.Worker.PollInterval))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping dispatch worker")
			cancel()
			return nil
		},
	})
}

func runOnce(ctx context.Context, scheduler service.SchedulerService,
	sequences service.SequenceService, logger *zap.Logger) {
	if stopped, err := sequences.CheckStopConditions(ctx); err != nil {
		logger.Error("stop-condition scan failed", zap.Error(err))
	} else if stopped > 0 {
		logger.Info("enrollments stopped by reply", zap.Int("stopped", stopped))
	}

	if _, err := sequences.AdvanceSequences(ctx); err != nil {
		logger.Error("sequence advance failed", zap.Error(err))
	}

	if stats, err := scheduler.ProcessScheduledMessages(ctx); err != nil {
		logger.Error("scheduled dispatch failed", zap.Error(err))
	} else if stats.Processed > 0 {
		logger.Info("scheduled dispatch finished",
			zap.Int("processed", stats.Processed),
			zap.Int("sent", stats.Sent),
			zap.Int("failed", stats.Failed),
			zap.Int("retried", stats.Retried))
	}
}

func NewConnectionDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	ctx := context.Background()
	return mysql.NewConnection(ctx, cfg.Database, logger)
}
