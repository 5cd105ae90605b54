package repositories

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroledger/eudr-engine/internal/domain/statement"
	"github.com/agroledger/eudr-engine/pkg/errors"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakeDB struct {
	execErr  error
	execArgs []any
	row      fakeRow
	queryErr error
}

func (f *fakeDB) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	f.execArgs = args
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return f.row
}

func (f *fakeDB) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, f.queryErr
}

func sampleStatement() *statement.DueDiligenceStatement {
	return &statement.DueDiligenceStatement{
		ReferenceNumber: "EUDR-DDS-20250601-abcd1234",
		SchemaVersion:   statement.SchemaVersion,
		GeolocationHash: "0xdeadbeef",
		TotalAreaHa:     1.236,
		PlotCount:       1,
		Risk:            statement.RiskAssessment{Level: statement.RiskNegligible},
		DeclaredAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestStatementRepository_Save(t *testing.T) {
	db := &fakeDB{}
	repo := NewStatementRepository(db, nil)

	require.NoError(t, repo.Save(context.Background(), sampleStatement()))
	require.Len(t, db.execArgs, 8)
	assert.Equal(t, "EUDR-DDS-20250601-abcd1234", db.execArgs[0])
	assert.Equal(t, "0xdeadbeef", db.execArgs[2])
	assert.Equal(t, "negligible", db.execArgs[3])
}

func TestStatementRepository_SaveDuplicate(t *testing.T) {
	db := &fakeDB{execErr: &pgconn.PgError{Code: uniqueViolationCode}}
	repo := NewStatementRepository(db, nil)

	err := repo.Save(context.Background(), sampleStatement())
	assert.Equal(t, errors.ErrCodeStatementExists, errors.GetCode(err))
}

func TestStatementRepository_FindByReference(t *testing.T) {
	document, err := json.Marshal(sampleStatement())
	require.NoError(t, err)

	db := &fakeDB{row: fakeRow{scan: func(dest ...any) error {
		*(dest[0].(*[]byte)) = document
		return nil
	}}}
	repo := NewStatementRepository(db, nil)

	dds, err := repo.FindByReference(context.Background(), "EUDR-DDS-20250601-abcd1234")
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", dds.GeolocationHash)
	assert.Equal(t, statement.RiskNegligible, dds.Risk.Level)
}

func TestStatementRepository_FindByReferenceNotFound(t *testing.T) {
	db := &fakeDB{row: fakeRow{scan: func(...any) error { return pgx.ErrNoRows }}}
	repo := NewStatementRepository(db, nil)

	_, err := repo.FindByReference(context.Background(), "EUDR-DDS-19700101-00000000")
	assert.Equal(t, errors.ErrCodeStatementNotFound, errors.GetCode(err))
}

func TestAnchorRepository_Save(t *testing.T) {
	db := &fakeDB{}
	repo := NewAnchorRepository(db, nil)

	rec := &statement.AnchorRecord{
		Reference:   "EUDR-DDS-20250601-abcd1234",
		ContentHash: "0xdeadbeef",
		TxRef:       "0xfeedface",
	}
	require.NoError(t, repo.Save(context.Background(), rec, "agroledger-dev", time.Now()))
	require.Len(t, db.execArgs, 5)
	assert.Equal(t, "agroledger-dev", db.execArgs[3])
}

func TestAnchorRepository_SaveConflict(t *testing.T) {
	db := &fakeDB{execErr: &pgconn.PgError{Code: uniqueViolationCode}}
	repo := NewAnchorRepository(db, nil)

	err := repo.Save(context.Background(), &statement.AnchorRecord{Reference: "x"}, "net", time.Now())
	assert.Equal(t, errors.ErrCodeConflict, errors.GetCode(err))
}
