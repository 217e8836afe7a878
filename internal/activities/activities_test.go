package activities

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
	"gocloud.dev/blob/memblob"

	"github.com/yourorg/crawl-storage/internal/dataset/datasettest"
	"github.com/yourorg/crawl-storage/internal/sink"
	"github.com/yourorg/crawl-storage/internal/storage"
	"github.com/yourorg/crawl-storage/internal/types"
)

func newActivities(t *testing.T) (*Activities, *storage.BucketClient) {
	t.Helper()
	ctx := context.Background()
	client := storage.NewBucketClient(memblob.OpenBucket(nil))
	t.Cleanup(func() { _ = client.Close() })
	target := storage.Target{Backend: storage.BackendMem, Bucket: "data", BasePath: "crawl1"}
	tables, err := sink.OpenStructured(ctx, target, sink.WithClient(client))
	if err != nil {
		t.Fatalf("OpenStructured: %v", err)
	}
	blobs, err := sink.OpenUnstructured(ctx, target, sink.WithClient(client))
	if err != nil {
		t.Fatalf("OpenUnstructured: %v", err)
	}
	return New(Config{Tables: tables, Blobs: blobs, MaxBlob: 1 << 20}), client
}

func TestStoreBlobFromSource(t *testing.T) {
	acts, client := newActivities(t)
	src := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(src, []byte("<html></html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	env.RegisterActivity(acts)
	if _, err := env.ExecuteActivity(acts.StoreBlob, types.StoreBlobParams{Filename: "page_001.html", SourceURI: "file://" + src}); err != nil {
		t.Fatalf("StoreBlob: %v", err)
	}
	b, err := client.ReadAll(context.Background(), "crawl1/page_001.html")
	if err != nil || string(b) != "<html></html>" {
		t.Fatalf("stored %q,%v", b, err)
	}
}

func TestStoreBlobInvalidNameIsNonRetryable(t *testing.T) {
	acts, _ := newActivities(t)
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	env.RegisterActivity(acts)
	_, err := env.ExecuteActivity(acts.StoreBlob, types.StoreBlobParams{Filename: "", Data: []byte("x")})
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) || !appErr.NonRetryable() {
		t.Fatalf("expected non-retryable application error, got %v", err)
	}
}

func TestWriteTableInline(t *testing.T) {
	acts, client := newActivities(t)
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	env.RegisterActivity(acts)

	val, err := env.ExecuteActivity(acts.WriteTable, types.WriteTableParams{Table: "pages", IPC: datasettest.IPC(t, "https://a.example/")})
	if err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	var stats types.TableStats
	if err := val.Get(&stats); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if stats.Rows != 1 || stats.Path != "data/crawl1/pages" {
		t.Fatalf("stats %+v", stats)
	}
	keys, _ := client.List(context.Background(), "crawl1/pages/")
	if len(keys) != 1 {
		t.Fatalf("dataset files %v", keys)
	}
}
