package nats

import (
	"context"

	"go-derma/internal/messaging/outbox"

	natsgo "github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type MsgPublisher interface {
	PublishMsg(m *natsgo.Msg) error
}

// Publisher relays outbox events to NATS, using the topic as the subject.
type Publisher struct {
	conn MsgPublisher
}

func NewPublisher(conn MsgPublisher) *Publisher {
	return &Publisher{conn: conn}
}

func (p *Publisher) Publish(ctx context.Context, event outbox.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := natsgo.NewMsg(event.Topic)
	msg.Data = event.Payload
	msg.Header.Set("event_type", event.EventType)
	msg.Header.Set("aggregate_type", event.AggregateType)
	msg.Header.Set("aggregate_id", event.AggregateID)
	msg.Header.Set("request_id", event.RequestID)
	return p.conn.PublishMsg(msg)
}

// Subscribe registers handle on every subject within one queue group, so
// several consumer processes share the work.
func Subscribe(
	ctx context.Context,
	conn *natsgo.Conn,
	queue string,
	subjects []string,
	handle func(ctx context.Context, subject string, data []byte) error,
	logger *zap.Logger,
) ([]*natsgo.Subscription, error) {
	log := logger.Named("nats.consumer")
	subs := make([]*natsgo.Subscription, 0, len(subjects))

	for _, subject := range subjects {
		sub, err := conn.QueueSubscribe(subject, queue, func(m *natsgo.Msg) {
			if err := handle(ctx, m.Subject, m.Data); err != nil {
				log.Error("handle message failed", zap.String("subject", m.Subject), zap.Error(err))
			}
		})
		if err != nil {
			for _, s := range subs {
				_ = s.Unsubscribe()
			}
			return nil, err
		}
		subs = append(subs, sub)
	}

	log.Info("subscribed", zap.Strings("subjects", subjects), zap.String("queue", queue))
	return subs, nil
}
