package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
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

// SweepFingerprint identifies one metric-set-over-slices evaluation
type SweepFingerprint Hash

func (f SweepFingerprint) String() string { return Hash(f).String() }

// ComputeSweepFingerprint hashes the metric declarations and the slice count
// so identical sweeps over identical inputs fingerprint identically.
// Declarations must already be in a deterministic order.
func ComputeSweepFingerprint(declarations []string, sliceCount int) SweepFingerprint {
	var data strings.Builder
	for _, d := range declarations {
		data.WriteString(d)
		data.WriteString("\n")
	}
	data.WriteString(fmt.Sprintf("slices=%d", sliceCount))
	return SweepFingerprint(NewHash([]byte(data.String())))
}
