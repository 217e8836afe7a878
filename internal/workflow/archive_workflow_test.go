package workflow

import (
	"context"
	"testing"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"gocloud.dev/blob/memblob"

	"github.com/yourorg/crawl-storage/internal/activities"
	"github.com/yourorg/crawl-storage/internal/dataset/datasettest"
	"github.com/yourorg/crawl-storage/internal/sink"
	"github.com/yourorg/crawl-storage/internal/storage"
	"github.com/yourorg/crawl-storage/internal/types"
)

func newEnv(t *testing.T) (*testsuite.TestWorkflowEnvironment, *storage.BucketClient) {
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
	acts := activities.New(activities.Config{Tables: tables, Blobs: blobs})

	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterActivityWithOptions(acts.StoreBlob, activity.RegisterOptions{Name: "Activities.StoreBlob"})
	env.RegisterActivityWithOptions(acts.WriteTable, activity.RegisterOptions{Name: "Activities.WriteTable"})
	env.RegisterActivityWithOptions(acts.FlushCache, activity.RegisterOptions{Name: "Activities.FlushCache"})
	env.RegisterWorkflow(ArchiveWorkflow)
	return env, client
}

func TestArchiveWorkflow(t *testing.T) {
	env, client := newEnv(t)
	env.ExecuteWorkflow(ArchiveWorkflow, types.ArchiveParams{
		Blobs: []types.StoreBlobParams{
			{Filename: "page_001.html", Data: []byte("<html>1</html>")},
			{Filename: "page_002.html", Data: []byte("<html>2</html>")},
		},
		Tables: []types.WriteTableParams{
			{Table: "http_requests", IPC: datasettest.IPC(t, "https://a.example/", "https://b.example/")},
		},
	})
	if !env.IsWorkflowCompleted() {
		t.Fatalf("workflow not completed")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}
	var stats types.ArchiveStats
	if err := env.GetWorkflowResult(&stats); err != nil {
		t.Fatalf("result: %v", err)
	}
	if stats.Blobs != 2 || len(stats.Tables) != 1 || stats.Tables[0].Rows != 2 {
		t.Fatalf("stats %+v", stats)
	}
	for _, k := range []string{"crawl1/page_001.html", "crawl1/page_002.html"} {
		if ok, _ := client.Exists(context.Background(), k); !ok {
			t.Fatalf("missing %s", k)
		}
	}
}

func TestArchiveWorkflowFailsOnInvalidBlob(t *testing.T) {
	env, _ := newEnv(t)
	env.ExecuteWorkflow(ArchiveWorkflow, types.ArchiveParams{
		Blobs: []types.StoreBlobParams{{Filename: "", Data: []byte("x")}},
	})
	if !env.IsWorkflowCompleted() {
		t.Fatalf("workflow not completed")
	}
	if env.GetWorkflowError() == nil {
		t.Fatalf("expected workflow error for empty filename")
	}
}
