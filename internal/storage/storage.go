package storage

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrUnsupportedBackend indicates a Target names a backend Open does not know.
	ErrUnsupportedBackend = errors.New("unsupported storage backend")
	// ErrInvalidTarget indicates a Target is missing required fields.
	ErrInvalidTarget = errors.New("invalid storage target")
	// ErrTxnClosed is returned when a transaction is used after Commit or Rollback.
	ErrTxnClosed = errors.New("transaction already closed")
)

// Client defines the object store methods the sinks need. Keys are relative
// to the bucket the client was opened on.
type Client interface {
	// Exists reports whether an object is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
	// NewWriter opens key for exclusive write; Close publishes the object,
	// replacing any existing one.
	NewWriter(ctx context.Context, key string) (io.WriteCloser, error)
	// Begin starts a transaction whose writes become visible on Commit.
	Begin(ctx context.Context) (Txn, error)
	// Close releases the underlying bucket handle.
	Close() error
}

// Txn batches object writes. Rollback after Commit is a no-op, so callers
// can always defer it.
type Txn interface {
	Create(key string) (io.WriteCloser, error)
	Commit(ctx context.Context) error
	Rollback() error
}
