package compliance

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/agroledger/eudr-engine/internal/domain/statement"
	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
	"github.com/agroledger/eudr-engine/pkg/errors"
)

// EventPublisher emits domain events onto the message bus. Implemented by
// the kafka producer; a no-op stand-in serves tests and CLI runs.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// ReportCache memoizes validation reports keyed by geolocation content hash.
// The canonical hash makes equivalent payloads share one cache entry
// regardless of their input shape.
type ReportCache interface {
	GetReport(ctx context.Context, hash string) (*Report, bool)
	SetReport(ctx context.Context, hash string, report *Report)
}

// Metrics records engine throughput counters. Implemented by the prometheus
// collector.
type Metrics interface {
	ObserveValidation(valid bool, duration time.Duration)
	ObserveGeneration(riskLevel string, duration time.Duration)
	ObserveAnchor(success bool)
}

// Event types emitted by the service.
const (
	EventStatementGenerated  = "dds.generated"
	EventStatementAnchored   = "dds.anchored"
	EventGeolocationRejected = "geolocation.rejected"
)

// GenerateResult bundles the persisted statement with its storage locator.
type GenerateResult struct {
	Statement       *statement.DueDiligenceStatement `json:"statement"`
	DocumentLocator string                           `json:"document_locator,omitempty"`
}

// Service orchestrates the assembly pipeline against the persistence,
// storage, and messaging collaborators. All side effects live here; the
// Assembler below it stays pure.
type Service struct {
	assembler *Assembler
	repo      statement.Repository
	docs      statement.DocumentStore
	events    EventPublisher
	cache     ReportCache
	metrics   Metrics
	logger    logging.Logger
	sf        singleflight.Group
}

// ServiceOption customizes optional collaborators.
type ServiceOption func(*Service)

// WithEventPublisher attaches a message bus producer.
func WithEventPublisher(p EventPublisher) ServiceOption {
	return func(s *Service) { s.events = p }
}

// WithReportCache attaches a validation report cache.
func WithReportCache(c ReportCache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(m Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService wires the compliance service. Repository and document store are
// mandatory; events, cache and metrics are optional and default to no-ops.
func NewService(assembler *Assembler, repo statement.Repository, docs statement.DocumentStore, logger logging.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Service{
		assembler: assembler,
		repo:      repo,
		docs:      docs,
		events:    nopPublisher{},
		cache:     nopCache{},
		metrics:   nopMetrics{},
		logger:    logger.Named("compliance"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateGeolocation validates a raw payload, serving repeat submissions of
// equivalent geolocation from the report cache. Concurrent requests for the
// same canonical content share one computation via singleflight.
func (s *Service) ValidateGeolocation(ctx context.Context, raw json.RawMessage) (*Report, error) {
	start := time.Now()

	hash, err := s.assembler.HashGeolocation(raw)
	if err != nil {
		return nil, err
	}
	if report, ok := s.cache.GetReport(ctx, hash); ok {
		return report, nil
	}

	v, err, _ := s.sf.Do(hash, func() (interface{}, error) {
		report, err := s.assembler.ValidateGeolocation(raw)
		if err != nil {
			return nil, err
		}
		s.cache.SetReport(ctx, hash, report)
		s.metrics.ObserveValidation(report.Valid, time.Since(start))
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

// HashGeolocation returns the canonical content hash of a raw payload.
func (s *Service) HashGeolocation(ctx context.Context, raw json.RawMessage) (string, error) {
	return s.assembler.HashGeolocation(raw)
}

// Preview runs the assembly pipeline without persisting, storing, or
// emitting anything. Reference number and verification token are still
// freshly generated and will differ from a later committed generation.
func (s *Service) Preview(ctx context.Context, req GenerateRequest) (*statement.DueDiligenceStatement, error) {
	return s.assembler.Generate(req)
}

// Generate produces a statement and commits it: database row, document
// store object, and a generated event for the anchoring worker. A rejected
// geolocation additionally emits a rejection event before failing.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	start := time.Now()

	dds, err := s.assembler.Generate(req)
	if err != nil {
		if ae, ok := err.(*errors.AppError); ok && ae.Code == errors.ErrCodeGeoInvalid {
			s.publish(ctx, EventGeolocationRejected, map[string]string{
				"batch_id": req.Batch.BatchID,
				"detail":   ae.Detail,
			})
		}
		return nil, err
	}

	if err := s.repo.Save(ctx, dds); err != nil {
		return nil, err
	}

	locator, err := s.docs.Put(ctx, dds)
	if err != nil {
		// The database row is the source of truth; a failed document upload
		// degrades the result but does not void the statement.
		s.logger.Error("statement document upload failed",
			logging.String("reference", dds.ReferenceNumber), logging.Err(err))
		locator = ""
	}

	s.publish(ctx, EventStatementGenerated, map[string]string{
		"reference":        dds.ReferenceNumber,
		"geolocation_hash": dds.GeolocationHash,
		"risk_level":       dds.Risk.Level.String(),
	})
	s.metrics.ObserveGeneration(dds.Risk.Level.String(), time.Since(start))

	s.logger.Info("statement committed",
		logging.String("reference", dds.ReferenceNumber),
		logging.String("locator", locator))
	return &GenerateResult{Statement: dds, DocumentLocator: locator}, nil
}

// GetStatement loads a previously generated statement by reference number.
func (s *Service) GetStatement(ctx context.Context, reference string) (*statement.DueDiligenceStatement, error) {
	if reference == "" {
		return nil, errors.InvalidParam("reference number is required")
	}
	return s.repo.FindByReference(ctx, reference)
}

// ListByGeolocationHash lists every statement declared over the same
// canonical geolocation, newest first. Multiple statements over one plot set
// are legitimate (repeat shipments) but worth surfacing to auditors.
func (s *Service) ListByGeolocationHash(ctx context.Context, hash string) ([]*statement.DueDiligenceStatement, error) {
	if !strings.HasPrefix(hash, "0x") {
		return nil, errors.InvalidParam("geolocation hash must be 0x-prefixed hex")
	}
	return s.repo.FindByGeolocationHash(ctx, hash)
}

// publish emits an event, logging and swallowing failures. Event delivery
// is best effort from the API path; the worker reconciles from the database.
func (s *Service) publish(ctx context.Context, eventType string, payload interface{}) {
	if err := s.events.Publish(ctx, eventType, payload); err != nil {
		s.logger.Error("event publish failed",
			logging.String("event_type", eventType), logging.Err(err))
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, interface{}) error { return nil }

type nopCache struct{}

func (nopCache) GetReport(context.Context, string) (*Report, bool) { return nil, false }
func (nopCache) SetReport(context.Context, string, *Report)        {}

type nopMetrics struct{}

func (nopMetrics) ObserveValidation(bool, time.Duration)   {}
func (nopMetrics) ObserveGeneration(string, time.Duration) {}
func (nopMetrics) ObserveAnchor(bool)                      {}
