package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/agroledger/eudr-engine/internal/config"
	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
)

// Handler processes one decoded event. Returning an error sends the message
// to the dead-letter topic after the retry budget is exhausted.
type Handler func(ctx context.Context, env EventEnvelope) error

// readerIface abstracts kafka.Reader for testing.
type readerIface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer runs a fetch/handle/commit loop over one topic with bounded
// retries and dead-letter forwarding.
type Consumer struct {
	reader       readerIface
	deadLetters  writerIface
	topic        string
	maxRetries   int
	retryBackoff time.Duration
	logger       logging.Logger
}

// NewConsumer builds a group consumer for one topic. Failed messages are
// forwarded to the configured dead-letter topic.
func NewConsumer(cfg config.KafkaConfig, workerCfg config.WorkerConfig, topic string, log logging.Logger) *Consumer {
	if log == nil {
		log = logging.NewNop()
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          TopicForEvent(cfg.TopicPrefix, topic),
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		CommitInterval: 0, // explicit commits
	})
	deadLetters := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.DeadLetterTopic,
		RequiredAcks: kafka.RequireAll,
	}
	return &Consumer{
		reader:       reader,
		deadLetters:  deadLetters,
		topic:        topic,
		maxRetries:   workerCfg.MaxRetries,
		retryBackoff: workerCfg.RetryBackoff,
		logger:       log.Named("kafka_consumer").With(logging.String("topic", topic)),
	}
}

// Run consumes until ctx is cancelled. Each message is decoded, handled with
// retries, then committed; undecodable or permanently failing messages go to
// the dead-letter topic and are committed so the partition keeps moving.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		c.process(ctx, msg, handle)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("offset commit failed", logging.Err(err))
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message, handle Handler) {
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		c.logger.Error("undecodable event, forwarding to dead letters", logging.Err(err))
		c.deadLetter(ctx, msg)
		return
	}

	var err error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retryBackoff):
			}
		}
		if err = handle(ctx, env); err == nil {
			return
		}
		c.logger.Warn("event handling failed",
			logging.String("event_id", env.ID),
			logging.Int("attempt", attempt+1),
			logging.Err(err))
	}

	c.logger.Error("event handling exhausted retries, forwarding to dead letters",
		logging.String("event_id", env.ID), logging.Err(err))
	c.deadLetter(ctx, msg)
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message) {
	dead := kafka.Message{Key: msg.Key, Value: msg.Value, Headers: []kafka.Header{
		{Key: "origin-topic", Value: []byte(c.topic)},
	}}
	if err := c.deadLetters.WriteMessages(ctx, dead); err != nil {
		c.logger.Error("dead letter write failed", logging.Err(err))
	}
}

// Close shuts down the reader and dead-letter writer.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return err
	}
	return c.deadLetters.Close()
}
