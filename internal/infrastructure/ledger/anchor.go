// Package ledger anchors statement content hashes on the configured ledger
// network and records the resulting receipts.
package ledger

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/agroledger/eudr-engine/internal/domain/statement"
	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
	"github.com/agroledger/eudr-engine/pkg/errors"
)

// anchorStore persists anchor receipts. Implemented by the postgres anchor
// repository.
type anchorStore interface {
	Save(ctx context.Context, rec *statement.AnchorRecord, network string, anchoredAt time.Time) error
	FindByReference(ctx context.Context, reference string) (*statement.AnchorRecord, error)
}

// eventPublisher announces anchor completions on the bus.
type eventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// EventStatementAnchored is emitted once per recorded anchor.
const EventStatementAnchored = "dds.anchored"

// Anchorer records content hashes on the ledger network. Anchoring is
// single-attempt: a failure surfaces to the caller, who decides whether to
// requeue.
type Anchorer struct {
	store   anchorStore
	events  eventPublisher
	network string
	now     func() time.Time
	logger  logging.Logger
}

// NewAnchorer wires an anchorer against a receipt store and event bus. A nil
// publisher disables eventing.
func NewAnchorer(store anchorStore, events eventPublisher, network string, log logging.Logger) *Anchorer {
	if log == nil {
		log = logging.NewNop()
	}
	if events == nil {
		events = nopPublisher{}
	}
	return &Anchorer{
		store:   store,
		events:  events,
		network: network,
		now:     time.Now,
		logger:  log.Named("ledger"),
	}
}

var _ statement.Anchorer = (*Anchorer)(nil)

// Anchor records the content hash for a statement and returns the receipt.
// The transaction reference binds network, statement, hash, and time, so a
// receipt can be re-derived and checked against the row.
func (a *Anchorer) Anchor(ctx context.Context, reference, contentHash string) (*statement.AnchorRecord, error) {
	if reference == "" || !strings.HasPrefix(contentHash, "0x") {
		return nil, errors.New(errors.ErrCodeAnchorFailed, "reference and 0x-prefixed content hash are required")
	}

	anchoredAt := a.now().UTC()
	rec := &statement.AnchorRecord{
		Reference:   reference,
		ContentHash: contentHash,
		TxRef:       txReference(a.network, reference, contentHash, anchoredAt),
		AnchoredAt:  anchoredAt.Format(time.RFC3339),
	}

	if err := a.store.Save(ctx, rec, a.network, anchoredAt); err != nil {
		if errors.IsConflict(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrCodeAnchorFailed, "failed to record anchor")
	}

	if err := a.events.Publish(ctx, EventStatementAnchored, rec); err != nil {
		a.logger.Error("anchor event publish failed",
			logging.String("reference", reference), logging.Err(err))
	}

	a.logger.Info("content hash anchored",
		logging.String("reference", reference),
		logging.String("tx_ref", rec.TxRef),
		logging.String("network", a.network))
	return rec, nil
}

// Receipt loads the recorded anchor receipt for a statement. Callers use it
// to surface the original transaction reference when a redelivered statement
// turns out to be anchored already.
func (a *Anchorer) Receipt(ctx context.Context, reference string) (*statement.AnchorRecord, error) {
	if reference == "" {
		return nil, errors.New(errors.ErrCodeBadRequest, "reference is required")
	}
	return a.store.FindByReference(ctx, reference)
}

// txReference derives the transaction reference: Keccak-256 over the anchor
// tuple, 0x-prefixed.
func txReference(network, reference, contentHash string, anchoredAt time.Time) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(network))
	h.Write([]byte{0})
	h.Write([]byte(reference))
	h.Write([]byte{0})
	h.Write([]byte(contentHash))
	h.Write([]byte{0})
	h.Write([]byte(anchoredAt.Format(time.RFC3339Nano)))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, interface{}) error { return nil }
