package sink

import (
	"context"

	"go.uber.org/zap"

	"github.com/yourorg/crawl-storage/internal/dataset"
	"github.com/yourorg/crawl-storage/internal/storage"
)

type options struct {
	log    *zap.Logger
	client storage.Client
	writer dataset.Writer
	store  NameStore
}

// Option configures a writer at open time.
type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithClient makes the writer use c instead of connecting itself. The
// caller keeps ownership: Shutdown does not close c.
func WithClient(c storage.Client) Option {
	return func(o *options) { o.client = c }
}

// WithDatasetWriter replaces the default Parquet writer.
func WithDatasetWriter(w dataset.Writer) Option {
	return func(o *options) { o.writer = w }
}

// WithNameStore persists the name cache across runs. The writer owns s and
// closes it on Shutdown, or right away if opening fails.
func WithNameStore(s NameStore) Option {
	return func(o *options) { o.store = s }
}

func buildOptions(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// connect returns the client to use and whether the writer owns it.
func (o options) connect(ctx context.Context, t storage.Target) (storage.Client, bool, error) {
	if o.client != nil {
		return o.client, false, nil
	}
	c, err := storage.Open(ctx, t)
	if err != nil {
		return nil, false, &ConnectionError{Target: t.URL(), Err: err}
	}
	return c, true, nil
}
