package repositories

import (
	"context"
	"encoding/json"

	"github.com/agroledger/eudr-engine/internal/domain/statement"
	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
	"github.com/agroledger/eudr-engine/pkg/errors"
)

// StatementRepository persists due diligence statements. The full statement
// document is stored as JSONB alongside the columns the API queries on.
type StatementRepository struct {
	db     querier
	logger logging.Logger
}

// NewStatementRepository constructs a repository over a pgx pool.
func NewStatementRepository(db querier, log logging.Logger) *StatementRepository {
	if log == nil {
		log = logging.NewNop()
	}
	return &StatementRepository{db: db, logger: log.Named("statement_repo")}
}

var _ statement.Repository = (*StatementRepository)(nil)

const insertStatementSQL = `
INSERT INTO dds_statements (
	reference_number, token_reference, geolocation_hash, risk_level,
	total_area_ha, plot_count, declared_at, document
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Save inserts a statement row. Reference numbers are unique; a duplicate
// fails with ErrCodeStatementExists.
func (r *StatementRepository) Save(ctx context.Context, dds *statement.DueDiligenceStatement) error {
	document, err := json.Marshal(dds)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to serialize statement")
	}

	_, err = r.db.Exec(ctx, insertStatementSQL,
		dds.ReferenceNumber,
		dds.TokenReference,
		dds.GeolocationHash,
		dds.Risk.Level.String(),
		dds.TotalAreaHa,
		dds.PlotCount,
		dds.DeclaredAt,
		document,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Newf(errors.ErrCodeStatementExists,
				"statement %s already exists", dds.ReferenceNumber)
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert statement")
	}

	r.logger.Debug("statement saved", logging.String("reference", dds.ReferenceNumber))
	return nil
}

const selectStatementSQL = `
SELECT document FROM dds_statements WHERE reference_number = $1`

// FindByReference loads the full statement document by reference number.
func (r *StatementRepository) FindByReference(ctx context.Context, reference string) (*statement.DueDiligenceStatement, error) {
	var document []byte
	err := r.db.QueryRow(ctx, selectStatementSQL, reference).Scan(&document)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.Newf(errors.ErrCodeStatementNotFound,
				"statement %s not found", reference)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query statement")
	}

	var dds statement.DueDiligenceStatement
	if err := json.Unmarshal(document, &dds); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode stored statement")
	}
	return &dds, nil
}

const selectByHashSQL = `
SELECT document FROM dds_statements WHERE geolocation_hash = $1 ORDER BY declared_at DESC`

// FindByGeolocationHash lists every statement declared over the same
// canonical geolocation, newest first. Supports duplicate-plot audits.
func (r *StatementRepository) FindByGeolocationHash(ctx context.Context, hash string) ([]*statement.DueDiligenceStatement, error) {
	rows, err := r.db.Query(ctx, selectByHashSQL, hash)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query statements by hash")
	}
	defer rows.Close()

	var result []*statement.DueDiligenceStatement
	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan statement row")
		}
		var dds statement.DueDiligenceStatement
		if err := json.Unmarshal(document, &dds); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode stored statement")
		}
		result = append(result, &dds)
	}
	return result, rows.Err()
}
