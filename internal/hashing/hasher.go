// Package hashing provides the content-addressed digest used to test chunk
// identity. Two chunks are "the same chunk" iff their digests are equal.
package hashing

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/kara-engine/kara/internal/domain"
)

// Hasher maps a content byte string to a fixed-width digest. Implementations
// must be deterministic and stable across process invocations and
// platforms — never a randomized hash.
type Hasher interface {
	Hash(content []byte) domain.Digest
}

// SHA256Hasher is the default Hasher: a 128-bit digest taken from the first
// half of SHA-256. Collision-resistant enough for multi-tenant corpora.
type SHA256Hasher struct{}

// Hash implements Hasher.
func (SHA256Hasher) Hash(content []byte) domain.Digest {
	sum := sha256.Sum256(content)
	var d domain.Digest
	copy(d[:], sum[:16])
	return d
}

// XXHasher is a fast, non-cryptographic alternative built on xxHash64, for
// throughput-sensitive, single-tenant corpora where SHA256Hasher's
// collision resistance is unnecessary overhead. It is never the default —
// a cryptographic digest is preferred whenever the corpus may be shared
// across trust boundaries.
type XXHasher struct{}

// Hash implements Hasher. Only the first 8 bytes of the digest are
// populated; the remainder is zero.
func (XXHasher) Hash(content []byte) domain.Digest {
	sum := xxhash.Sum64(content)
	var d domain.Digest
	binary.BigEndian.PutUint64(d[:8], sum)
	return d
}
