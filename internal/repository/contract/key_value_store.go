package contract

import "context"

// KeyValueStore is the durable client storage every container persists through.
// Values are opaque bytes; the typed repositories store JSON.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
