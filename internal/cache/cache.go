// Package cache provides run-scoped memoization of aggregation results.
// A store lives under the current run's scratch directory so that
// independently scheduled check processes sharing that directory see each
// other's entries; a new run (new scratch dir) naturally invalidates
// everything.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Store is a write-once, read-many key-value store. Callers are the
// single logical owner of their keys: the store avoids redundant
// recomputation, it is not a synchronization primitive.
type Store interface {
	// Get returns the payload for key, with ok=false when no entry
	// exists yet.
	Get(key string) (payload []byte, ok bool, err error)

	// Set writes the payload for key. The first write wins; later
	// writes for the same key are ignored, which is harmless because
	// writers produce identical output for the same key.
	Set(key string, payload []byte) error

	// Close releases the store.
	Close() error
}

// Key derives a deterministic fingerprint from a logical check
// identifier, a namespace and the run scratch location. Identical inputs
// always map to the same key within (and across) cooperating processes
// of one run.
func Key(checkID, namespace, scratchDir string) string {
	sum := sha256.Sum256([]byte(checkID + "\x00" + namespace + "\x00" + scratchDir))
	return fmt.Sprintf("%s.%s.%s", namespace, checkID, hex.EncodeToString(sum[:8]))
}
