// Package sink uploads crawl output to object storage: Arrow tables as
// Parquet datasets, and opaque blobs deduplicated by filename.
//
// Writers only exist once connected: OpenStructured and OpenUnstructured
// are the initialization step, so there is no unusable zero state.
package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

var (
	// ErrInvalidName indicates a table name or filename that is empty or
	// would resolve outside the writer's base path.
	ErrInvalidName = errors.New("invalid name")
	// ErrClosed is returned by writers used after Shutdown.
	ErrClosed = errors.New("sink is shut down")
)

// StructuredSink persists tables under a per-table path.
type StructuredSink interface {
	WriteTable(ctx context.Context, name string, tbl arrow.Table) error
	Shutdown(ctx context.Context) error
}

// UnstructuredSink persists blobs under their filename, skipping names
// already stored unless overwrite is set.
type UnstructuredSink interface {
	StoreBlob(ctx context.Context, filename string, data []byte, overwrite bool) error
	FlushCache(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// validName rejects names that are empty, absolute, or contain "." or ".."
// segments, so a key always stays below the target's base path.
func validName(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	if strings.HasPrefix(name, "/") {
		return fmt.Errorf("%w: %q is absolute", ErrInvalidName, name)
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "." || seg == ".." {
			return fmt.Errorf("%w: %q has a relative segment", ErrInvalidName, name)
		}
	}
	return nil
}
