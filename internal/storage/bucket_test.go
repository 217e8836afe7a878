package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"gocloud.dev/blob/memblob"
)

func writeObject(t *testing.T, w io.WriteCloser, body string) {
	t.Helper()
	if _, err := io.WriteString(w, body); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestWriterReplacesObject(t *testing.T) {
	ctx := context.Background()
	c := NewBucketClient(memblob.OpenBucket(nil))
	defer c.Close()

	ok, err := c.Exists(ctx, "k")
	if err != nil || ok {
		t.Fatalf("Exists before write = %v,%v", ok, err)
	}
	for _, body := range []string{"first", "second"} {
		w, err := c.NewWriter(ctx, "k")
		if err != nil {
			t.Fatalf("NewWriter: %v", err)
		}
		writeObject(t, w, body)
	}
	b, err := c.ReadAll(ctx, "k")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(b) != "second" {
		t.Fatalf("content %q", b)
	}
}

func TestTxnCommitPublishes(t *testing.T) {
	ctx := context.Background()
	c := NewBucketClient(memblob.OpenBucket(nil))
	defer c.Close()

	txn, err := c.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	w, err := txn.Create("tbl/part-0")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	writeObject(t, w, "payload")
	if ok, _ := c.Exists(ctx, "tbl/part-0"); ok {
		t.Fatalf("object visible before commit")
	}
	if err := txn.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := txn.Rollback(); err != nil {
		t.Fatalf("Rollback after commit: %v", err)
	}
	b, err := c.ReadAll(ctx, "tbl/part-0")
	if err != nil || string(b) != "payload" {
		t.Fatalf("ReadAll = %q,%v", b, err)
	}
	if err := txn.Commit(ctx); !errors.Is(err, ErrTxnClosed) {
		t.Fatalf("second Commit: %v", err)
	}
}

func TestTxnRollbackDiscards(t *testing.T) {
	ctx := context.Background()
	c := NewBucketClient(memblob.OpenBucket(nil))
	defer c.Close()

	txn, _ := c.Begin(ctx)
	w, _ := txn.Create("tbl/part-0")
	writeObject(t, w, "payload")
	if err := txn.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if _, err := txn.Create("tbl/part-1"); !errors.Is(err, ErrTxnClosed) {
		t.Fatalf("Create after rollback: %v", err)
	}
	keys, err := c.List(ctx, "tbl/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("rolled back objects visible: %v", keys)
	}
}

func TestOpenFileBackend(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	c, err := Open(ctx, Target{Backend: BackendFile, Bucket: "data", BasePath: "crawl1", Root: root})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()
	w, err := c.NewWriter(ctx, "crawl1/a.txt")
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	writeObject(t, w, "abc")
	b, err := os.ReadFile(filepath.Join(root, "data", "crawl1", "a.txt"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(b) != "abc" {
		t.Fatalf("file content %q", b)
	}
}

func TestOpenRejectsBadTarget(t *testing.T) {
	if _, err := Open(context.Background(), Target{Backend: "ftp", Bucket: "b"}); !errors.Is(err, ErrUnsupportedBackend) {
		t.Fatalf("expected ErrUnsupportedBackend, got %v", err)
	}
}
