package ratelimit

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint derives a stable identifier from request attributes without
// storing them in the clear.
func Fingerprint(parts ...string) string {
	sum := blake2b.Sum256([]byte(strings.Join(parts, "\x00")))
	return "fp_" + hex.EncodeToString(sum[:16])
}
