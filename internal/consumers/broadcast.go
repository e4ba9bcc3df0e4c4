package consumers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/formaops/messaging-gateway/internal/publishers"
	"github.com/formaops/messaging-gateway/internal/service"
	"github.com/formaops/messaging-gateway/pkg/mq"
	"go.uber.org/zap"
)

type BroadcastConsumer interface {
	Consume(ctx context.Context) error
}

type broadcastConsumer struct {
	service  service.BroadcastService
	consumer mq.Consumer
	logger   *zap.Logger
}

func NewBroadcastConsumer(service service.BroadcastService, consumer mq.Consumer, logger *zap.Logger) BroadcastConsumer {
	return &broadcastConsumer{
		service:  service,
		consumer: consumer,
		logger:   logger,
	}
}

func (b *broadcastConsumer) Consume(ctx context.Context) error {
	return b.consumer.Consume(ctx, 1, publishers.QueueBroadcastStart, b.handleStart)
}

func (b *broadcastConsumer) handleStart(ctx context.Context, body []byte) error {
	var cmd service.StartBroadcastCommand
	if err := json.Unmarshal(body, &cmd); err != nil {
		b.logger.Warn("invalid broadcast start command", zap.Error(err))
		return err
	}

	b.logger.Info("received broadcast start command",
		zap.Int64("broadcastID", cmd.BroadcastID),
		zap.Bool("resume", cmd.Resume))

	var err error
	if cmd.Resume {
		err = b.service.ResumeBroadcast(ctx, cmd.BroadcastID)
	} else {
		err = b.service.StartBroadcast(ctx, cmd.BroadcastID)
	}

	if err != nil {
		// Claim rejections mean another worker already owns the run or
		// an operator moved the broadcast on; redelivery cannot help.
		if errors.Is(err, service.ErrBroadcastInvalidState) || errors.Is(err, service.ErrBroadcastNotFound) {
			b.logger.Warn("broadcast start command dropped",
				zap.Error(err),
				zap.Int64("broadcastID", cmd.BroadcastID))
			return nil
		}
		return err
	}

	return nil
}
