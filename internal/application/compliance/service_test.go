package compliance

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroledger/eudr-engine/internal/domain/statement"
	"github.com/agroledger/eudr-engine/internal/testutil"
	"github.com/agroledger/eudr-engine/pkg/errors"
)

type memRepo struct {
	saved map[string]*statement.DueDiligenceStatement
}

func newMemRepo() *memRepo {
	return &memRepo{saved: map[string]*statement.DueDiligenceStatement{}}
}

func (r *memRepo) Save(_ context.Context, dds *statement.DueDiligenceStatement) error {
	if _, ok := r.saved[dds.ReferenceNumber]; ok {
		return errors.New(errors.ErrCodeStatementExists, "statement already exists")
	}
	r.saved[dds.ReferenceNumber] = dds
	return nil
}

func (r *memRepo) FindByReference(_ context.Context, reference string) (*statement.DueDiligenceStatement, error) {
	dds, ok := r.saved[reference]
	if !ok {
		return nil, errors.New(errors.ErrCodeStatementNotFound, "statement not found")
	}
	return dds, nil
}

func (r *memRepo) FindByGeolocationHash(_ context.Context, hash string) ([]*statement.DueDiligenceStatement, error) {
	var result []*statement.DueDiligenceStatement
	for _, dds := range r.saved {
		if dds.GeolocationHash == hash {
			result = append(result, dds)
		}
	}
	return result, nil
}

type memDocs struct {
	puts int
	fail bool
}

func (d *memDocs) Put(_ context.Context, dds *statement.DueDiligenceStatement) (string, error) {
	d.puts++
	if d.fail {
		return "", errors.New(errors.ErrCodeDocumentStoreFailed, "upload failed")
	}
	return "statements/" + dds.GeolocationHash + ".json", nil
}

type recordedEvent struct {
	eventType string
	payload   interface{}
}

type memPublisher struct {
	events []recordedEvent
}

func (p *memPublisher) Publish(_ context.Context, eventType string, payload interface{}) error {
	p.events = append(p.events, recordedEvent{eventType, payload})
	return nil
}

type memCache struct {
	reports map[string]*Report
	gets    int
	sets    int
}

func newMemCache() *memCache { return &memCache{reports: map[string]*Report{}} }

func (c *memCache) GetReport(_ context.Context, hash string) (*Report, bool) {
	c.gets++
	r, ok := c.reports[hash]
	return r, ok
}

func (c *memCache) SetReport(_ context.Context, hash string, report *Report) {
	c.sets++
	c.reports[hash] = report
}

func newTestService(repo *memRepo, docs *memDocs, opts ...ServiceOption) *Service {
	return NewService(newTestAssembler(AssemblerConfig{}), repo, docs, nil, opts...)
}

func TestService_GenerateCommits(t *testing.T) {
	repo := newMemRepo()
	docs := &memDocs{}
	pub := &memPublisher{}
	svc := newTestService(repo, docs, WithEventPublisher(pub))

	res, err := svc.Generate(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Contains(t, repo.saved, res.Statement.ReferenceNumber)
	assert.Equal(t, 1, docs.puts)
	assert.Equal(t, "statements/"+res.Statement.GeolocationHash+".json", res.DocumentLocator)

	require.Len(t, pub.events, 1)
	assert.Equal(t, EventStatementGenerated, pub.events[0].eventType)
}

func TestService_GenerateRejectedEmitsEvent(t *testing.T) {
	repo := newMemRepo()
	pub := &memPublisher{}
	svc := newTestService(repo, &memDocs{}, WithEventPublisher(pub))

	req := validRequest()
	req.Geolocation = json.RawMessage(`{"type":"Point","coordinates":[9.1,4.1]}`)

	_, err := svc.Generate(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeGeoInvalid, errors.GetCode(err))
	assert.Empty(t, repo.saved)

	require.Len(t, pub.events, 1)
	assert.Equal(t, EventGeolocationRejected, pub.events[0].eventType)
}

func TestService_GenerateSurvivesDocumentStoreFailure(t *testing.T) {
	repo := newMemRepo()
	docs := &memDocs{fail: true}
	log := testutil.NewMockLogger()
	svc := NewService(newTestAssembler(AssemblerConfig{}), repo, docs, log)

	res, err := svc.Generate(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Empty(t, res.DocumentLocator)
	assert.Len(t, repo.saved, 1)
	assert.True(t, log.HasMessage("error", "statement document upload failed"))
}

func TestService_PreviewHasNoSideEffects(t *testing.T) {
	repo := newMemRepo()
	docs := &memDocs{}
	pub := &memPublisher{}
	svc := newTestService(repo, docs, WithEventPublisher(pub))

	dds, err := svc.Preview(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, dds.ReferenceNumber)

	assert.Empty(t, repo.saved)
	assert.Zero(t, docs.puts)
	assert.Empty(t, pub.events)
}

func TestService_GetStatement(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &memDocs{})

	res, err := svc.Generate(context.Background(), validRequest())
	require.NoError(t, err)

	found, err := svc.GetStatement(context.Background(), res.Statement.ReferenceNumber)
	require.NoError(t, err)
	assert.Equal(t, res.Statement.GeolocationHash, found.GeolocationHash)

	_, err = svc.GetStatement(context.Background(), "EUDR-DDS-19700101-deadbeef")
	assert.Equal(t, errors.ErrCodeStatementNotFound, errors.GetCode(err))

	_, err = svc.GetStatement(context.Background(), "")
	assert.Equal(t, errors.ErrCodeBadRequest, errors.GetCode(err))
}

func TestService_ListByGeolocationHash(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &memDocs{})

	res, err := svc.Generate(context.Background(), validRequest())
	require.NoError(t, err)

	listed, err := svc.ListByGeolocationHash(context.Background(), res.Statement.GeolocationHash)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, res.Statement.ReferenceNumber, listed[0].ReferenceNumber)

	_, err = svc.ListByGeolocationHash(context.Background(), "deadbeef")
	assert.Equal(t, errors.ErrCodeBadRequest, errors.GetCode(err))
}

func TestService_ValidateGeolocationUsesCache(t *testing.T) {
	cache := newMemCache()
	svc := newTestService(newMemRepo(), &memDocs{}, WithReportCache(cache))

	raw := json.RawMessage(validPolygonJSON)

	first, err := svc.ValidateGeolocation(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// An equivalent payload in a different input shape shares the cache
	// entry because the key is the canonical content hash.
	second, err := svc.ValidateGeolocation(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.Same(t, first, second)
}
