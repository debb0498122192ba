package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/port"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisTransport publishes every message on a per-recipient channel, "<prefix>:<recipient id>".
type RedisTransport struct {
	client publisher
	prefix string
}

func NewRedisTransport(client publisher, prefix string) *RedisTransport {
	return &RedisTransport{client: client, prefix: prefix}
}

func (t *RedisTransport) Push(ctx context.Context, msg domain.PushMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	channel := t.prefix + ":" + msg.RecipientID
	if err := t.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis.Publish[%s]: %w", channel, err)
	}

	return nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaTransport keys messages by recipient so one recipient's messages stay ordered.
type KafkaTransport struct {
	writer messageWriter
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

func NewKafkaTransport(writer messageWriter) *KafkaTransport {
	return &KafkaTransport{writer: writer}
}

func (t *KafkaTransport) Push(ctx context.Context, msg domain.PushMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := t.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.RecipientID),
		Value: payload,
		Time:  time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("writer.WriteMessages: %w", err)
	}

	return nil
}

// Fanout pushes to every transport and joins their errors.
type Fanout []port.PushTransport

func (f Fanout) Push(ctx context.Context, msg domain.PushMessage) error {
	var errs []error
	for _, t := range f {
		if err := t.Push(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type BreakerSettings struct {
	Name             string
	FailureThreshold uint32
	Timeout          time.Duration
	PushTimeout      time.Duration
}

// BreakerTransport stops calling a failing transport until the breaker half-opens.
type BreakerTransport struct {
	next        port.PushTransport
	breaker     *gobreaker.CircuitBreaker[any]
	pushTimeout time.Duration
}

func NewBreakerTransport(next port.PushTransport, s BreakerSettings) *BreakerTransport {
	threshold := s.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})

	return &BreakerTransport{next: next, breaker: breaker, pushTimeout: s.PushTimeout}
}

func (t *BreakerTransport) Push(ctx context.Context, msg domain.PushMessage) error {
	_, err := t.breaker.Execute(func() (any, error) {
		if t.pushTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, t.pushTimeout)
			defer cancel()
		}
		return nil, t.next.Push(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("breaker[%s]: %w", t.breaker.Name(), err)
	}
	return nil
}

func (t *BreakerTransport) State() gobreaker.State {
	return t.breaker.State()
}
