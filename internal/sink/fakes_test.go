package sink

import (
	"context"
	"io"

	"gocloud.dev/blob/memblob"

	"github.com/yourorg/crawl-storage/internal/storage"
)

// countingClient records calls against an in-memory bucket and can inject
// failures.
type countingClient struct {
	*storage.BucketClient
	existsCalls int
	writeCalls  int
	existsErr   error
	writeErr    error
	begins      int
	commits     int
	rollbacks   int
}

func newCountingClient() *countingClient {
	return &countingClient{BucketClient: storage.NewBucketClient(memblob.OpenBucket(nil))}
}

func (c *countingClient) Exists(ctx context.Context, key string) (bool, error) {
	c.existsCalls++
	if c.existsErr != nil {
		return false, c.existsErr
	}
	return c.BucketClient.Exists(ctx, key)
}

func (c *countingClient) NewWriter(ctx context.Context, key string) (io.WriteCloser, error) {
	c.writeCalls++
	if c.writeErr != nil {
		return nil, c.writeErr
	}
	return c.BucketClient.NewWriter(ctx, key)
}

func (c *countingClient) Begin(ctx context.Context) (storage.Txn, error) {
	c.begins++
	txn, err := c.BucketClient.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &countingTxn{Txn: txn, c: c}, nil
}

type countingTxn struct {
	storage.Txn
	c *countingClient
}

func (t *countingTxn) Commit(ctx context.Context) error {
	t.c.commits++
	return t.Txn.Commit(ctx)
}

func (t *countingTxn) Rollback() error {
	t.c.rollbacks++
	return t.Txn.Rollback()
}

func (c *countingClient) put(t interface{ Fatalf(string, ...any) }, key, body string) {
	w, err := c.BucketClient.NewWriter(context.Background(), key)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	_, _ = io.WriteString(w, body)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
