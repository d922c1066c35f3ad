// Package privacy provides the pseudonymization and PII-scrubbing
// primitives shared by every code path that logs user activity or forwards
// it to an external processor.
//
// There is exactly one pseudonymization implementation in the codebase.
// Callers must not re-derive the transform locally: a divergent copy would
// silently break correlation between AI interaction logs, research data,
// and data exports.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
)

// HandleLength is the length in hex characters of a correlation handle.
//
// 16 hex chars is 64 bits of SHA-256 output. That is deliberately short of
// the full digest: handles show up in log lines and research exports where
// readability matters, and 64 bits keeps the collision probability
// negligible at our user counts (birthday bound ~2^32 users). Do not
// truncate further.
const HandleLength = 16

// Pseudonymize derives the opaque correlation handle for a user identifier.
//
// The transform is deterministic and unsalted: the same identifier yields
// the same handle for the lifetime of the deployment, which is what makes
// the handle usable as a join key for AI interaction logs. It is one-way;
// no mapping from handle back to identifier is persisted anywhere.
func Pseudonymize(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])[:HandleLength]
}
