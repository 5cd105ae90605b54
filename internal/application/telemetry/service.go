package telemetry

import (
	"context"

	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
)

// EventPublisher emits telemetry lifecycle events onto the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// EventTelemetryFlushed is emitted once per successful aggregation.
const EventTelemetryFlushed = "telemetry.flushed"

// Service fronts the buffer store with eventing and logging.
type Service struct {
	store  *Store
	events EventPublisher
	logger logging.Logger
}

// NewService wires a buffer store into a telemetry service. A nil publisher
// disables eventing.
func NewService(store *Store, events EventPublisher, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	if events == nil {
		events = nopPublisher{}
	}
	return &Service{store: store, events: events, logger: logger.Named("telemetry")}
}

// Record buffers readings for a token.
func (s *Service) Record(ctx context.Context, tokenID string, readings ...Reading) error {
	if err := s.store.Append(tokenID, readings...); err != nil {
		return err
	}
	s.logger.Debug("readings buffered",
		logging.String("token_id", tokenID),
		logging.Int("count", len(readings)),
		logging.Int("pending", s.store.Pending(tokenID)))
	return nil
}

// Pending reports how many readings are buffered for a token.
func (s *Service) Pending(ctx context.Context, tokenID string) int {
	return s.store.Pending(tokenID)
}

// Aggregate flushes the token's buffer into a summary and announces it on
// the bus. Publish failures are logged, not returned: the aggregate is
// already computed and the buffer already cleared.
func (s *Service) Aggregate(ctx context.Context, tokenID string) (*Aggregate, error) {
	agg, err := s.store.Flush(tokenID)
	if err != nil {
		return nil, err
	}

	if err := s.events.Publish(ctx, EventTelemetryFlushed, agg); err != nil {
		s.logger.Error("telemetry event publish failed",
			logging.String("token_id", tokenID), logging.Err(err))
	}

	s.logger.Info("telemetry aggregated",
		logging.String("token_id", tokenID),
		logging.Int("reading_count", agg.ReadingCount),
		logging.Int("metric_count", len(agg.Metrics)))
	return agg, nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, interface{}) error { return nil }
