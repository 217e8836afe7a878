package config

import (
	"context"

	"go.uber.org/zap"

	"github.com/yourorg/crawl-storage/internal/dataset"
	"github.com/yourorg/crawl-storage/internal/sink"
)

// OpenSinks initializes both writers. On error nothing is left open.
func (c Config) OpenSinks(ctx context.Context, log *zap.Logger) (*sink.StructuredWriter, *sink.UnstructuredWriter, error) {
	tables, err := sink.OpenStructured(ctx, c.TableTarget(),
		sink.WithLogger(log.Named("tables")),
		sink.WithDatasetWriter(dataset.NewParquetWriter(c.Parquet...)),
	)
	if err != nil {
		return nil, nil, err
	}
	blobOpts := []sink.Option{sink.WithLogger(log.Named("blobs"))}
	if c.NameCache != "" {
		store, err := sink.OpenBadgerStore(c.NameCache)
		if err != nil {
			_ = tables.Shutdown(ctx)
			return nil, nil, &sink.ConnectionError{Target: "name store " + c.NameCache, Err: err}
		}
		blobOpts = append(blobOpts, sink.WithNameStore(store))
	}
	blobs, err := sink.OpenUnstructured(ctx, c.BlobTarget(), blobOpts...)
	if err != nil {
		_ = tables.Shutdown(ctx)
		return nil, nil, err
	}
	return tables, blobs, nil
}
