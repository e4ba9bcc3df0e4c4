package publishers

import (
	"context"
	"encoding/json"

	"github.com/formaops/messaging-gateway/internal/service"
	"github.com/formaops/messaging-gateway/pkg/mq"
	"go.uber.org/zap"
)

const QueueBroadcastStart = "broadcast.start"

// BroadcastPublisher hands a broadcast start/resume command to the
// broadcast worker. The API process never runs the dispatch loop
// itself.
type BroadcastPublisher interface {
	PublishStart(ctx context.Context, cmd service.StartBroadcastCommand) error
}

type broadcastPublisher struct {
	publisher mq.Publisher
	logger    *zap.Logger
}

func NewBroadcastPublisher(publisher mq.Publisher, logger *zap.Logger) BroadcastPublisher {
	return &broadcastPublisher{publisher: publisher, logger: logger}
}

func (b *broadcastPublisher) PublishStart(ctx context.Context, cmd service.StartBroadcastCommand) error {
	body, _ := json.Marshal(cmd)

	if err := b.publisher.Publish(ctx, "", QueueBroadcastStart, body); err != nil {
		b.logger.Error("Failed to publish broadcast start command",
			zap.Error(err),
			zap.Int64("broadcastID", cmd.BroadcastID))
		return err
	}

	b.logger.Info("Broadcast start command published",
		zap.Int64("broadcastID", cmd.BroadcastID),
		zap.Bool("resume", cmd.Resume))

	return nil
}
