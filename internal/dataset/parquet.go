// Package dataset writes Arrow tables as Parquet datasets into object storage.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/google/uuid"

	"github.com/yourorg/crawl-storage/internal/storage"
)

// DefaultRowGroupSize is the number of rows per Parquet row group.
const DefaultRowGroupSize = 1 << 20

var errNilTable = errors.New("nil table")

// Writer serializes a table into part files under dir, staging them in txn.
type Writer interface {
	WriteDataset(ctx context.Context, tbl arrow.Table, dir string, txn storage.Txn) error
}

// ParquetWriter writes each table as one new part file named
// "<uuid>-0.parquet", so repeated writes to a directory append.
type ParquetWriter struct {
	codec        compress.Compression
	rowGroupSize int64
	basename     func() string
}

type Option func(*ParquetWriter)

// WithCompression sets the column codec; the default is snappy.
func WithCompression(c compress.Compression) Option {
	return func(w *ParquetWriter) { w.codec = c }
}

// WithRowGroupSize sets the rows per row group; non-positive values are ignored.
func WithRowGroupSize(n int64) Option {
	return func(w *ParquetWriter) {
		if n > 0 {
			w.rowGroupSize = n
		}
	}
}

func NewParquetWriter(opts ...Option) *ParquetWriter {
	w := &ParquetWriter{
		codec:        compress.Codecs.Snappy,
		rowGroupSize: DefaultRowGroupSize,
		basename:     func() string { return uuid.NewString() + "-0.parquet" },
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// ParseCompression maps config names to codecs.
func ParseCompression(s string) (compress.Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "brotli":
		return compress.Codecs.Brotli, nil
	case "none", "uncompressed":
		return compress.Codecs.Uncompressed, nil
	default:
		return compress.Codecs.Uncompressed, fmt.Errorf("unknown parquet compression %q", s)
	}
}

func (w *ParquetWriter) WriteDataset(ctx context.Context, tbl arrow.Table, dir string, txn storage.Txn) error {
	if tbl == nil {
		return errNilTable
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	key := path.Join(dir, w.basename())
	out, err := txn.Create(key)
	if err != nil {
		return err
	}
	props := parquet.NewWriterProperties(parquet.WithCompression(w.codec))
	arrProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
	if err := pqarrow.WriteTable(tbl, out, w.rowGroupSize, props, arrProps); err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	// WriteTable may already have closed out; staged writers tolerate a second Close.
	return out.Close()
}
