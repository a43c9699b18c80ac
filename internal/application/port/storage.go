package port

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Store.Load for a key that was never saved
var ErrKeyNotFound = errors.New("store key not found")

// Store persists whole collection snapshots, one JSON document per key
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// Pinger is implemented by stores that can report their health
type Pinger interface {
	Ping(ctx context.Context) error
}
