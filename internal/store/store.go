package store

import (
	"context"
	"time"
)

// Store is the key-value capability the engine consumes: cached raw source
// payloads with a TTL, plus a durable set of show keys that have been looked
// up directly. Implementations must be safe for concurrent use; the engine
// never assumes exclusive access.
type Store interface {
	// Get returns the cached payload for key, reporting whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores payload under key for the given retention window.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// AddKnownShow registers a show key in the discovery set. Idempotent.
	AddKnownShow(ctx context.Context, key string) error
	// KnownShowKeys lists every registered show key. Order is unspecified.
	KnownShowKeys(ctx context.Context) ([]string, error)

	Close() error
}
