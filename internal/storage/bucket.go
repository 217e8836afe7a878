package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/memblob"
)

// BucketClient implements Client on top of a gocloud.dev bucket.
type BucketClient struct {
	bucket *blob.Bucket
}

// Open connects to the bucket described by t with read-write access.
func Open(ctx context.Context, t Target) (*BucketClient, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	var (
		b   *blob.Bucket
		err error
	)
	switch t.Backend {
	case BackendGCS:
		b, err = openGCS(ctx, t)
	case BackendS3:
		b, err = openS3(ctx, t)
	case BackendFile:
		b, err = openFile(t)
	case BackendMem:
		b = memblob.OpenBucket(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", t.URL(), err)
	}
	return &BucketClient{bucket: b}, nil
}

// NewBucketClient wraps an already opened bucket. The client takes ownership
// and closes it on Close.
func NewBucketClient(b *blob.Bucket) *BucketClient { return &BucketClient{bucket: b} }

func openFile(t Target) (*blob.Bucket, error) {
	dir := filepath.Join(t.Root, t.Bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return fileblob.OpenBucket(dir, nil)
}

func (c *BucketClient) Exists(ctx context.Context, key string) (bool, error) {
	return c.bucket.Exists(ctx, key)
}

func (c *BucketClient) NewWriter(ctx context.Context, key string) (io.WriteCloser, error) {
	return c.bucket.NewWriter(ctx, key, nil)
}

func (c *BucketClient) Begin(ctx context.Context) (Txn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &stagedTxn{bucket: c.bucket}, nil
}

// ReadAll returns the object stored under key.
func (c *BucketClient) ReadAll(ctx context.Context, key string) ([]byte, error) {
	return c.bucket.ReadAll(ctx, key)
}

// List returns the keys stored under prefix.
func (c *BucketClient) List(ctx context.Context, prefix string) ([]string, error) {
	it := c.bucket.List(&blob.ListOptions{Prefix: prefix})
	var keys []string
	for {
		obj, err := it.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !obj.IsDir {
			keys = append(keys, obj.Key)
		}
	}
	return keys, nil
}

func (c *BucketClient) Close() error { return c.bucket.Close() }
