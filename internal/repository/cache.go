package repository

import "context"

// IDCache stores previously resolved identifiers, keyed by source identifier only.
//
// The key does not include the source/target endpoint pair, so one cache instance
// is valid for exactly one (from, to) pair. Sharing an instance between pairs makes
// hits return targets of the wrong namespace.
type IDCache interface {
	// Get returns the cached targets of id; ok is false on a miss
	Get(ctx context.Context, id string) (targets []string, ok bool, err error)

	// Put stores targets for id, replacing any previous value
	Put(ctx context.Context, id string, targets []string) error
}
