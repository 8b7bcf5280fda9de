package nats

import (
	"context"
	"testing"

	"go-derma/internal/messaging/outbox"

	natsgo "github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
)

type fakeConn struct {
	msgs []*natsgo.Msg
}

func (f *fakeConn) PublishMsg(m *natsgo.Msg) error {
	f.msgs = append(f.msgs, m)
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn)

	err := p.Publish(context.Background(), outbox.Event{
		AggregateID: "p-1",
		EventType:   "punch_completed",
		Topic:       "derma.punch.v1",
		Payload:     []byte(`{}`),
		RequestID:   "rid",
	})
	assert.NoError(t, err)
	assert.Len(t, conn.msgs, 1)
	assert.Equal(t, "derma.punch.v1", conn.msgs[0].Subject)
	assert.Equal(t, "punch_completed", conn.msgs[0].Header.Get("event_type"))
	assert.Equal(t, "rid", conn.msgs[0].Header.Get("request_id"))
}

func TestPublisher_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conn := &fakeConn{}
	err := NewPublisher(conn).Publish(ctx, outbox.Event{Topic: "x"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, conn.msgs)
}
