package activities

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/yourorg/crawl-storage/internal/dataset"
	iopkg "github.com/yourorg/crawl-storage/internal/iopkg"
	"github.com/yourorg/crawl-storage/internal/sink"
	"github.com/yourorg/crawl-storage/internal/types"
)

type TableSink interface {
	sink.StructuredSink
	Path(name string) string
}

type Config struct {
	Tables TableSink
	Blobs  sink.UnstructuredSink
	// MaxBlob caps blobs read from SourceURI; zero means no cap.
	MaxBlob int64
}

type Activities struct {
	cfg Config
}

func New(cfg Config) *Activities { return &Activities{cfg: cfg} }

func (a *Activities) StoreBlob(ctx context.Context, p types.StoreBlobParams) error {
	data := p.Data
	if p.SourceURI != "" {
		b, err := iopkg.ReadAll(ctx, p.SourceURI, a.cfg.MaxBlob)
		if err != nil {
			return nonRetryable(fmt.Errorf("read %s: %w", p.SourceURI, err), iopkg.ErrTooLarge)
		}
		data = b
	}
	activity.GetLogger(ctx).Debug("storing blob", "filename", p.Filename, "bytes", len(data))
	return nonRetryable(a.cfg.Blobs.StoreBlob(ctx, p.Filename, data, p.Overwrite), sink.ErrInvalidName, sink.ErrClosed)
}

func (a *Activities) WriteTable(ctx context.Context, p types.WriteTableParams) (types.TableStats, error) {
	var r io.Reader = bytes.NewReader(p.IPC)
	if p.SourceURI != "" {
		rc, _, err := iopkg.Open(ctx, p.SourceURI)
		if err != nil {
			return types.TableStats{}, fmt.Errorf("open %s: %w", p.SourceURI, err)
		}
		defer rc.Close()
		r = rc
	}
	tbl, err := dataset.ReadIPCTable(r, memory.DefaultAllocator)
	if err != nil {
		return types.TableStats{}, temporal.NewNonRetryableApplicationError("decode arrow stream", "BadTable", err)
	}
	defer tbl.Release()

	if err := a.cfg.Tables.WriteTable(ctx, p.Table, tbl); err != nil {
		return types.TableStats{}, nonRetryable(err, sink.ErrInvalidName, sink.ErrClosed)
	}
	return types.TableStats{Table: p.Table, Path: a.cfg.Tables.Path(p.Table), Rows: tbl.NumRows()}, nil
}

func (a *Activities) FlushCache(ctx context.Context) error {
	return a.cfg.Blobs.FlushCache(ctx)
}

// nonRetryable marks err as not worth retrying when it wraps one of causes.
func nonRetryable(err error, causes ...error) error {
	if err == nil {
		return nil
	}
	for _, c := range causes {
		if errors.Is(err, c) {
			return temporal.NewNonRetryableApplicationError(err.Error(), "InvalidRequest", err)
		}
	}
	return err
}
