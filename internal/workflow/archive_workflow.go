package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/yourorg/crawl-storage/internal/types"
)

// ArchiveWorkflow stores a crawl's blobs and tables, then flushes the blob
// name cache. Retries live here; the sinks never retry on their own.
func ArchiveWorkflow(ctx workflow.Context, p types.ArchiveParams) (types.ArchiveStats, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	// fan-out blob stores
	blobs := make([]workflow.Future, len(p.Blobs))
	for i, b := range p.Blobs {
		blobs[i] = workflow.ExecuteActivity(ctx, "Activities.StoreBlob", b)
	}
	for i := range blobs {
		if err := blobs[i].Get(ctx, nil); err != nil {
			return types.ArchiveStats{}, err
		}
	}

	stats := types.ArchiveStats{Blobs: len(p.Blobs), Tables: make([]types.TableStats, len(p.Tables))}
	tables := make([]workflow.Future, len(p.Tables))
	for i, t := range p.Tables {
		tables[i] = workflow.ExecuteActivity(ctx, "Activities.WriteTable", t)
	}
	for i := range tables {
		if err := tables[i].Get(ctx, &stats.Tables[i]); err != nil {
			return types.ArchiveStats{}, err
		}
	}

	if !p.SkipFlush {
		if err := workflow.ExecuteActivity(ctx, "Activities.FlushCache").Get(ctx, nil); err != nil {
			return types.ArchiveStats{}, err
		}
	}
	return stats, nil
}
