package geometry

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"github.com/agroledger/eudr-engine/pkg/errors"
)

// Digest computes the deterministic content hash of a normalized collection:
// Keccak-256 over CanonicalJSON, returned as 0x-prefixed lowercase hex.
//
// Keccak-256 (the pre-NIST-padding SHA-3 variant) is used for compatibility
// with EVM-based ledgers, where the same digest can be recomputed on-chain.
// The hash is anchored externally, so both the hash function and the
// canonical serialization are fixed; see Collection.CanonicalJSON.
func Digest(c *Collection) (string, error) {
	data, err := c.CanonicalJSON()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSerialization, "failed to serialize collection for hashing")
	}

	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return "0x" + hex.EncodeToString(h.Sum(nil)), nil
}
