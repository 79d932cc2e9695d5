package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashString hashes a string payload
func HashString(s string) Hash {
	return NewHash([]byte(s))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Domain-specific hash types
type (
	// PromptHash fingerprints the exact prompt text sent to the generator.
	PromptHash Hash
	// BatchHash fingerprints a frozen evaluation batch so refinement runs
	// can prove they scored against the same cases.
	BatchHash Hash
)

// Constructors
func NewPromptHash(data []byte) PromptHash { return PromptHash(NewHash(data)) }
func NewBatchHash(data []byte) BatchHash   { return BatchHash(NewHash(data)) }

// String conversions
func (h PromptHash) String() string { return Hash(h).String() }
func (h BatchHash) String() string  { return Hash(h).String() }
