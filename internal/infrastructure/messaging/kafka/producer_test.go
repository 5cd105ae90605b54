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
	"github.com/agroledger/eudr-engine/pkg/errors"
)

type fakeWriter struct {
	messages []kafka.Message
	writeErr error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.writeErr != nil {
		return w.writeErr
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newTestProducer(w writerIface, prefix string) *Producer {
	return &Producer{
		writer: w,
		prefix: prefix,
		logger: logging.NewNop(),
		now:    func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestProducer_PublishEnvelope(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w, "")

	payload := map[string]string{"reference": "EUDR-DDS-20250601-abcd1234"}
	require.NoError(t, p.Publish(context.Background(), TopicStatementGenerated, payload))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, TopicStatementGenerated, msg.Topic)

	var env EventEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, TopicStatementGenerated, env.Type)
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, string(msg.Key), env.ID)
	assert.JSONEq(t, `{"reference":"EUDR-DDS-20250601-abcd1234"}`, string(env.Payload))

	sent, failed := p.Stats()
	assert.EqualValues(t, 1, sent)
	assert.EqualValues(t, 0, failed)
}

func TestProducer_TopicPrefix(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w, "staging")

	require.NoError(t, p.Publish(context.Background(), TopicTelemetryFlushed, nil))
	assert.Equal(t, "staging.telemetry.flushed", w.messages[0].Topic)
}

func TestProducer_WriteFailure(t *testing.T) {
	w := &fakeWriter{writeErr: assert.AnError}
	p := newTestProducer(w, "")

	err := p.Publish(context.Background(), TopicStatementGenerated, nil)
	assert.Equal(t, errors.ErrCodeMessageQueueError, errors.GetCode(err))

	_, failed := p.Stats()
	assert.EqualValues(t, 1, failed)
}

func TestProducer_ClosedRejectsPublish(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w, "")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)

	err := p.Publish(context.Background(), TopicStatementGenerated, nil)
	assert.Equal(t, errors.ErrCodeMessageQueueError, errors.GetCode(err))
}
