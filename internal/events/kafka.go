package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var (
	// ErrBufferFull is returned when the producer inbox cannot take more events.
	ErrBufferFull = errors.New("kafka producer buffer full")
	ErrClosed     = errors.New("kafka producer closed")
)

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher queues events on a buffered inbox drained by one goroutine
// into a kafka writer. Messages are keyed by subject so one user's events
// stay ordered on a partition.
type KafkaPublisher struct {
	w     messageWriter
	inbox chan kafka.Message
	done  chan struct{}
	log   *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// NewKafkaPublisher creates a publisher for topic. Call Start before Publish.
func NewKafkaPublisher(brokers []string, topic string, buf int, log *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newKafkaPublisher(w, buf, log)
}

func newKafkaPublisher(w messageWriter, buf int, log *zap.Logger) *KafkaPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaPublisher{
		w:     w,
		inbox: make(chan kafka.Message, buf),
		done:  make(chan struct{}),
		log:   log,
	}
}

// Start runs the writer loop until Close drains the inbox.
func (p *KafkaPublisher) Start() {
	go func() {
		defer close(p.done)
		for m := range p.inbox {
			if err := p.w.WriteMessages(context.Background(), m); err != nil {
				p.log.Error("kafka write failed",
					zap.String("key", string(m.Key)),
					zap.Error(err),
				)
			}
		}
		if err := p.w.Close(); err != nil {
			p.log.Error("kafka writer close failed", zap.Error(err))
		}
	}()
}

// Publish enqueues env without waiting for the broker.
func (p *KafkaPublisher) Publish(ctx context.Context, env Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(env.Subject),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
		},
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// Close stops accepting events, flushes what is queued and waits for the
// writer to close or ctx to expire.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
	p.mu.Unlock()
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
