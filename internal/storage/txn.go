package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"gocloud.dev/blob"
)

type staged struct {
	key  string
	data []byte
}

// stagedTxn buffers objects in memory and uploads them on Commit. Not safe
// for concurrent use.
type stagedTxn struct {
	bucket *blob.Bucket
	objs   []staged
	done   bool
}

// Create returns a writer whose content is staged when it is closed.
func (t *stagedTxn) Create(key string) (io.WriteCloser, error) {
	if t.done {
		return nil, ErrTxnClosed
	}
	var buf bytes.Buffer
	sc := &stagedWriter{Writer: &buf}
	sc.stage = func() error {
		if t.done {
			return ErrTxnClosed
		}
		t.objs = append(t.objs, staged{key: key, data: buf.Bytes()})
		return nil
	}
	return sc, nil
}

func (t *stagedTxn) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxnClosed
	}
	t.done = true
	objs := t.objs
	t.objs = nil
	for _, o := range objs {
		if err := t.bucket.WriteAll(ctx, o.key, o.data, nil); err != nil {
			return fmt.Errorf("commit %s: %w", o.key, err)
		}
	}
	return nil
}

func (t *stagedTxn) Rollback() error {
	t.done = true
	t.objs = nil
	return nil
}

// stagedWriter stages its buffer once, on the first Close.
type stagedWriter struct {
	io.Writer
	closed bool
	stage  func() error
}

func (w *stagedWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.stage()
}
