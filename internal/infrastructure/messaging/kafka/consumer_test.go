package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
)

type fakeReader struct {
	queue     []kafka.Message
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.queue) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func envelopeMessage(t *testing.T, eventType string, payload string) kafka.Message {
	t.Helper()
	env := NewEnvelope(eventType, json.RawMessage(payload), time.Now())
	value, err := json.Marshal(env)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(env.ID), Value: value}
}

func newTestConsumer(r *fakeReader, dead *fakeWriter) *Consumer {
	return &Consumer{
		reader:       r,
		deadLetters:  dead,
		topic:        TopicStatementGenerated,
		maxRetries:   2,
		retryBackoff: time.Millisecond,
		logger:       logging.NewNop(),
	}
}

func runUntilDrained(t *testing.T, c *Consumer, r *fakeReader, handle Handler) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, handle) }()

	require.Eventually(t, func() bool { return len(r.queue) == 0 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestConsumer_HandlesAndCommits(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{
		envelopeMessage(t, TopicStatementGenerated, `{"reference":"r-1"}`),
	}}
	dead := &fakeWriter{}
	c := newTestConsumer(r, dead)

	var handled []EventEnvelope
	runUntilDrained(t, c, r, func(_ context.Context, env EventEnvelope) error {
		handled = append(handled, env)
		return nil
	})

	require.Len(t, handled, 1)
	assert.Equal(t, TopicStatementGenerated, handled[0].Type)
	assert.Len(t, r.committed, 1)
	assert.Empty(t, dead.messages)
}

func TestConsumer_RetriesThenDeadLetters(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{
		envelopeMessage(t, TopicStatementGenerated, `{}`),
	}}
	dead := &fakeWriter{}
	c := newTestConsumer(r, dead)

	attempts := 0
	runUntilDrained(t, c, r, func(context.Context, EventEnvelope) error {
		attempts++
		return assert.AnError
	})

	// maxRetries=2 means one initial attempt plus two retries.
	assert.Equal(t, 3, attempts)
	require.Len(t, dead.messages, 1)
	assert.Equal(t, "origin-topic", dead.messages[0].Headers[0].Key)
	// The poisoned message is still committed so the partition advances.
	assert.Len(t, r.committed, 1)
}

func TestConsumer_UndecodableGoesToDeadLetters(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{{Value: []byte("not json")}}}
	dead := &fakeWriter{}
	c := newTestConsumer(r, dead)

	runUntilDrained(t, c, r, func(context.Context, EventEnvelope) error {
		t.Fatal("handler must not run for undecodable messages")
		return nil
	})

	require.Len(t, dead.messages, 1)
	assert.Len(t, r.committed, 1)
}
