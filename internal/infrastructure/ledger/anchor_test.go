package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroledger/eudr-engine/internal/domain/statement"
	"github.com/agroledger/eudr-engine/pkg/errors"
)

type fakeStore struct {
	saved   []*statement.AnchorRecord
	saveErr error
}

func (s *fakeStore) Save(_ context.Context, rec *statement.AnchorRecord, _ string, _ time.Time) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, rec)
	return nil
}

func (s *fakeStore) FindByReference(_ context.Context, reference string) (*statement.AnchorRecord, error) {
	for _, rec := range s.saved {
		if rec.Reference == reference {
			return rec, nil
		}
	}
	return nil, errors.Newf(errors.ErrCodeNotFound, "no anchor recorded for statement %s", reference)
}

type fakePublisher struct {
	types    []string
	payloads []interface{}
}

func (p *fakePublisher) Publish(_ context.Context, eventType string, payload interface{}) error {
	p.types = append(p.types, eventType)
	p.payloads = append(p.payloads, payload)
	return nil
}

func newTestAnchorer(store *fakeStore, pub *fakePublisher) *Anchorer {
	a := NewAnchorer(store, pub, "agroledger-dev", nil)
	a.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestAnchor_RecordsReceipt(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	a := newTestAnchorer(store, pub)

	rec, err := a.Anchor(context.Background(), "EUDR-DDS-20250601-abcd1234", "0xdeadbeef")
	require.NoError(t, err)

	assert.Equal(t, "EUDR-DDS-20250601-abcd1234", rec.Reference)
	assert.Equal(t, "0xdeadbeef", rec.ContentHash)
	assert.Regexp(t, `^0x[0-9a-f]{64}$`, rec.TxRef)
	assert.Equal(t, "2025-06-01T12:00:00Z", rec.AnchoredAt)

	require.Len(t, store.saved, 1)
	require.Equal(t, []string{EventStatementAnchored}, pub.types)
	assert.Equal(t, rec, pub.payloads[0])
}

func TestAnchor_TxRefIsDeterministicPerTuple(t *testing.T) {
	store := &fakeStore{}
	a := newTestAnchorer(store, &fakePublisher{})

	r1, err := a.Anchor(context.Background(), "ref-1", "0xaaaa")
	require.NoError(t, err)
	r2, err := a.Anchor(context.Background(), "ref-1", "0xaaaa")
	require.NoError(t, err)
	r3, err := a.Anchor(context.Background(), "ref-2", "0xaaaa")
	require.NoError(t, err)

	assert.Equal(t, r1.TxRef, r2.TxRef)
	assert.NotEqual(t, r1.TxRef, r3.TxRef)
}

func TestAnchor_RejectsBadInput(t *testing.T) {
	a := newTestAnchorer(&fakeStore{}, &fakePublisher{})

	_, err := a.Anchor(context.Background(), "", "0xdeadbeef")
	assert.Equal(t, errors.ErrCodeAnchorFailed, errors.GetCode(err))

	_, err = a.Anchor(context.Background(), "ref-1", "deadbeef")
	assert.Equal(t, errors.ErrCodeAnchorFailed, errors.GetCode(err))
}

func TestAnchor_StoreFailure(t *testing.T) {
	store := &fakeStore{saveErr: assert.AnError}
	pub := &fakePublisher{}
	a := newTestAnchorer(store, pub)

	_, err := a.Anchor(context.Background(), "ref-1", "0xdeadbeef")
	assert.Equal(t, errors.ErrCodeAnchorFailed, errors.GetCode(err))
	assert.Empty(t, pub.types)
}

func TestAnchor_ConflictPassesThrough(t *testing.T) {
	store := &fakeStore{saveErr: errors.New(errors.ErrCodeConflict, "anchor already recorded")}
	a := newTestAnchorer(store, &fakePublisher{})

	_, err := a.Anchor(context.Background(), "ref-1", "0xdeadbeef")
	assert.Equal(t, errors.ErrCodeConflict, errors.GetCode(err))
}

func TestReceipt_ReturnsRecordedAnchor(t *testing.T) {
	store := &fakeStore{}
	a := newTestAnchorer(store, &fakePublisher{})

	rec, err := a.Anchor(context.Background(), "EUDR-DDS-20250601-abcd1234", "0xdeadbeef")
	require.NoError(t, err)

	found, err := a.Receipt(context.Background(), "EUDR-DDS-20250601-abcd1234")
	require.NoError(t, err)
	assert.Equal(t, rec.TxRef, found.TxRef)

	_, err = a.Receipt(context.Background(), "EUDR-DDS-19700101-00000000")
	assert.Equal(t, errors.ErrCodeNotFound, errors.GetCode(err))

	_, err = a.Receipt(context.Background(), "")
	assert.Equal(t, errors.ErrCodeBadRequest, errors.GetCode(err))
}
