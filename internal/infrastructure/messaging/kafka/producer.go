package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/agroledger/eudr-engine/internal/config"
	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
	"github.com/agroledger/eudr-engine/pkg/errors"
)

// writerIface abstracts kafka.Writer for testing.
type writerIface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes enveloped events, one topic per event type. It
// satisfies the EventPublisher interfaces of the application layer.
type Producer struct {
	writer writerIface
	prefix string
	logger logging.Logger
	closed atomic.Bool
	now    func() time.Time

	sent   atomic.Int64
	failed atomic.Int64
}

// NewProducer builds a producer over the configured brokers. The writer
// resolves topics per message, so one producer serves all event types.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) *Producer {
	if log == nil {
		log = logging.NewNop()
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.ProducerRetries + 1,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireAll,
	}
	return &Producer{
		writer: writer,
		prefix: cfg.TopicPrefix,
		logger: log.Named("kafka_producer"),
		now:    time.Now,
	}
}

// Publish wraps the payload in an envelope and writes it to the event's
// topic, keyed by envelope ID.
func (p *Producer) Publish(ctx context.Context, eventType string, payload interface{}) error {
	if p.closed.Load() {
		return errors.New(errors.ErrCodeMessageQueueError, "producer is closed")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event payload")
	}
	env := NewEnvelope(eventType, body, p.now())
	value, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event envelope")
	}

	msg := kafka.Message{
		Topic: TopicForEvent(p.prefix, eventType),
		Key:   []byte(env.ID),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.failed.Add(1)
		return errors.Wrap(err, errors.ErrCodeMessageQueueError, "failed to publish event")
	}

	p.sent.Add(1)
	p.logger.Debug("event published",
		logging.String("type", eventType),
		logging.String("event_id", env.ID))
	return nil
}

// Stats reports lifetime sent/failed counters.
func (p *Producer) Stats() (sent, failed int64) {
	return p.sent.Load(), p.failed.Load()
}

// Close flushes and closes the writer. Further publishes fail.
func (p *Producer) Close() error {
	p.closed.Store(true)
	return p.writer.Close()
}
