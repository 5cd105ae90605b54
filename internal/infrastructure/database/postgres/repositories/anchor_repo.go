package repositories

import (
	"context"
	"time"

	"github.com/agroledger/eudr-engine/internal/domain/statement"
	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
	"github.com/agroledger/eudr-engine/pkg/errors"
)

// AnchorRepository persists ledger anchor receipts, one per statement.
type AnchorRepository struct {
	db     querier
	logger logging.Logger
}

// NewAnchorRepository constructs a repository over a pgx pool.
func NewAnchorRepository(db querier, log logging.Logger) *AnchorRepository {
	if log == nil {
		log = logging.NewNop()
	}
	return &AnchorRepository{db: db, logger: log.Named("anchor_repo")}
}

const insertAnchorSQL = `
INSERT INTO dds_anchors (reference_number, content_hash, tx_ref, network, anchored_at)
VALUES ($1, $2, $3, $4, $5)`

// Save records one anchor receipt. Anchoring is single-attempt, so a second
// receipt for the same reference is a conflict.
func (r *AnchorRepository) Save(ctx context.Context, rec *statement.AnchorRecord, network string, anchoredAt time.Time) error {
	_, err := r.db.Exec(ctx, insertAnchorSQL,
		rec.Reference, rec.ContentHash, rec.TxRef, network, anchoredAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Newf(errors.ErrCodeConflict,
				"anchor for statement %s already recorded", rec.Reference)
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert anchor record")
	}

	r.logger.Debug("anchor recorded",
		logging.String("reference", rec.Reference),
		logging.String("tx_ref", rec.TxRef))
	return nil
}

const selectAnchorSQL = `
SELECT reference_number, content_hash, tx_ref, anchored_at
FROM dds_anchors WHERE reference_number = $1`

// FindByReference loads the anchor receipt for a statement.
func (r *AnchorRepository) FindByReference(ctx context.Context, reference string) (*statement.AnchorRecord, error) {
	var rec statement.AnchorRecord
	var anchoredAt time.Time
	err := r.db.QueryRow(ctx, selectAnchorSQL, reference).
		Scan(&rec.Reference, &rec.ContentHash, &rec.TxRef, &anchoredAt)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.Newf(errors.ErrCodeNotFound,
				"no anchor recorded for statement %s", reference)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query anchor record")
	}
	rec.AnchoredAt = anchoredAt.UTC().Format(time.RFC3339)
	return &rec, nil
}
