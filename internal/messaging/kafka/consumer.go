package kafka

import (
	"context"
	"errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// HandlerFunc processes one message. Returning ErrSkip commits the message
// without processing; any other error leaves it uncommitted for redelivery.
type HandlerFunc func(ctx context.Context, topic string, value []byte) error

var ErrSkip = errors.New("skip message")

func Consume(ctx context.Context, reader MessageReader, handle HandlerFunc, logger *zap.Logger) {
	log := logger.Named("kafka.consumer")
	log.Info("consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopped")
				return
			}
			log.Error("fetch message failed", zap.Error(err))
			continue
		}

		if err := handle(ctx, msg.Topic, msg.Value); err != nil && !errors.Is(err, ErrSkip) {
			log.Error("handle message failed",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message failed", zap.String("topic", msg.Topic), zap.Error(err))
			continue
		}
	}
}
