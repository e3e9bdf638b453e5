package storage

import "context"

// KV is the persistence adapter: string keys, JSON-serialized values.
// Get returns (nil, nil) for a missing key. Collections are stored as
// whole blobs and rewritten on every mutation; the last writer wins.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}
