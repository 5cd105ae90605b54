package minio

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/agroledger/eudr-engine/internal/domain/statement"
	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
	"github.com/agroledger/eudr-engine/pkg/errors"
)

// DocumentStore persists serialized statements, keyed by geolocation hash and
// reference number. The hash groups declarations over the same plot set; the
// reference keeps each statement's document its own object, since repeat
// declarations over one plot set are legitimate and every stored statement is
// an immutable record.
type DocumentStore struct {
	client *Client
	logger logging.Logger
}

// NewDocumentStore builds a statement document store over a minio client.
func NewDocumentStore(client *Client, log logging.Logger) *DocumentStore {
	if log == nil {
		log = logging.NewNop()
	}
	return &DocumentStore{client: client, logger: log.Named("document_store")}
}

var _ statement.DocumentStore = (*DocumentStore)(nil)

// ObjectName derives the storage key for a statement from its geolocation
// hash and reference number.
func ObjectName(geolocationHash, reference string) string {
	return "statements/" + strings.TrimPrefix(geolocationHash, "0x") + "/" + reference + ".json"
}

// Put uploads the statement document and returns its locator.
func (s *DocumentStore) Put(ctx context.Context, dds *statement.DueDiligenceStatement) (string, error) {
	data, err := json.Marshal(dds)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSerialization, "failed to serialize statement document")
	}

	locator, err := s.client.PutJSON(ctx, ObjectName(dds.GeolocationHash, dds.ReferenceNumber), data)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeDocumentStoreFailed, "statement document upload failed")
	}

	s.logger.Debug("statement document stored",
		logging.String("reference", dds.ReferenceNumber),
		logging.String("locator", locator))
	return locator, nil
}

// DownloadURL produces a presigned, time-limited URL for a stored statement
// document.
func (s *DocumentStore) DownloadURL(ctx context.Context, geolocationHash, reference string) (string, error) {
	return s.client.PresignGet(ctx, ObjectName(geolocationHash, reference))
}
