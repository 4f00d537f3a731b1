package kafka

import (
	"context"
	"encoding/json"
	"time"

	"go-storefront/internal/events"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the subset of *kafka.Writer the producer needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer forwards domain events to a Kafka topic from a single goroutine
type Producer struct {
	w       MessageWriter
	inbox   chan kafka.Message
	closeCh chan struct{}
	log     *zap.Logger
}

func NewProducer(brokers []string, topic string, buf int, log *zap.Logger) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return NewProducerWithWriter(w, buf, log)
}

func NewProducerWithWriter(w MessageWriter, buf int, log *zap.Logger) *Producer {
	if log == nil {
		log = zap.NewNop()
	}
	if buf <= 0 {
		buf = 256
	}
	return &Producer{
		w:       w,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		log:     log.Named("kafka"),
	}
}

// Start drains the inbox until ctx is cancelled, then flushes what is left and closes the writer
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				p.flush()
				if err := p.w.Close(); err != nil {
					p.log.Warn("close writer", zap.Error(err))
				}
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) flush() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		p.log.Warn("write message", zap.ByteString("key", m.Key), zap.Error(err))
	}
}

// Publish implements events.Publisher. Events are keyed by correlation id so
// everything about one order lands on one partition.
func (p *Producer) Publish(_ context.Context, env events.Envelope) {
	value, err := json.Marshal(env)
	if err != nil {
		p.log.Warn("encode event", zap.String("event_type", env.EventType), zap.Error(err))
		return
	}
	msg := kafka.Message{
		Key:   []byte(env.CorrelationID),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
		},
	}
	select {
	case <-p.closeCh:
		p.log.Warn("producer stopped, dropping event", zap.String("event_type", env.EventType))
	case p.inbox <- msg:
	default:
		p.log.Warn("producer inbox full, dropping event", zap.String("event_type", env.EventType))
	}
}

// WaitClosed blocks until the drain goroutine has exited
func (p *Producer) WaitClosed() { <-p.closeCh }
