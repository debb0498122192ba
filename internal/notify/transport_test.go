package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	channel string
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	return redis.NewIntResult(1, f.err)
}

type fakeWriter struct {
	msgs []kafka.Message
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

type failingTransport struct {
	calls int
}

func (f *failingTransport) Push(context.Context, domain.PushMessage) error {
	f.calls++
	return errors.New("unreachable")
}

func testMessage() domain.PushMessage {
	return domain.PushMessage{
		NotificationID: uuid.New(),
		RecipientID:    "u1",
		Title:          "Order shipped",
		Body:           "on its way",
		Category:       "order",
	}
}

func TestRedisTransport(t *testing.T) {
	pub := &fakePublisher{}
	msg := testMessage()

	require.NoError(t, NewRedisTransport(pub, "orderflow:notifications").Push(t.Context(), msg))
	assert.Equal(t, "orderflow:notifications:u1", pub.channel)

	var decoded domain.PushMessage
	require.NoError(t, json.Unmarshal(pub.payload, &decoded))
	assert.Equal(t, msg, decoded)

	pub.err = errors.New("connection refused")
	err := NewRedisTransport(pub, "n").Push(t.Context(), msg)
	require.EqualError(t, err, "redis.Publish[n:u1]: connection refused")
}

func TestKafkaTransportKeysByRecipient(t *testing.T) {
	w := &fakeWriter{}

	require.NoError(t, NewKafkaTransport(w).Push(t.Context(), testMessage()))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("u1"), w.msgs[0].Key)
}

func TestFanoutJoinsErrors(t *testing.T) {
	w := &fakeWriter{}
	failing := &failingTransport{}

	err := Fanout{failing, NewKafkaTransport(w)}.Push(t.Context(), testMessage())
	require.EqualError(t, err, "unreachable")
	assert.Len(t, w.msgs, 1, "a failing transport does not block the others")
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	failing := &failingTransport{}
	b := NewBreakerTransport(failing, BreakerSettings{Name: "push", FailureThreshold: 2, Timeout: time.Minute})

	for i := 0; i < 2; i++ {
		require.Error(t, b.Push(t.Context(), testMessage()))
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	err := b.Push(t.Context(), testMessage())
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, failing.calls)
}
