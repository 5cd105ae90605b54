package statement

import "context"

// Repository persists generated statements. Implementations live in the
// infrastructure layer; the engine itself performs no I/O.
type Repository interface {
	// Save stores a freshly generated statement. Reference numbers are
	// unique; saving a duplicate fails with ErrCodeStatementExists.
	Save(ctx context.Context, dds *DueDiligenceStatement) error

	// FindByReference loads a statement by its reference number, failing
	// with ErrCodeStatementNotFound when absent.
	FindByReference(ctx context.Context, reference string) (*DueDiligenceStatement, error)

	// FindByGeolocationHash lists every statement declared over the same
	// canonical geolocation, newest first. Supports duplicate-plot audits;
	// an unknown hash yields an empty list, not an error.
	FindByGeolocationHash(ctx context.Context, hash string) ([]*DueDiligenceStatement, error)
}

// DocumentStore persists the serialized statement document and returns a
// retrievable locator. The engine does not perform the upload itself.
type DocumentStore interface {
	// Put stores the serialized statement JSON, keyed by its geolocation
	// hash, and returns the storage locator.
	Put(ctx context.Context, dds *DueDiligenceStatement) (string, error)
}

// AnchorRecord is the ledger collaborator's receipt for one anchored hash.
type AnchorRecord struct {
	Reference   string `json:"reference"`
	ContentHash string `json:"content_hash"`
	TxRef       string `json:"tx_ref"`
	AnchoredAt  string `json:"anchored_at"`
}

// Anchorer persists a content hash on an immutable ledger and returns a
// transaction reference. The engine makes no assumption about ledger
// identity; a single attempt is made and failures surface to the caller.
type Anchorer interface {
	Anchor(ctx context.Context, reference, contentHash string) (*AnchorRecord, error)
}
