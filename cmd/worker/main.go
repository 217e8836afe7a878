package main

import (
	"context"
	"log"

	tactivity "go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/yourorg/crawl-storage/internal/activities"
	"github.com/yourorg/crawl-storage/internal/config"
	znmetrics "github.com/yourorg/crawl-storage/internal/metrics"
	"github.com/yourorg/crawl-storage/internal/workflow"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal("config:", err)
	}
	zl := cfg.Logger()
	defer zl.Sync()

	// Metrics server
	znmetrics.Init()
	go func() {
		if err := znmetrics.Serve(cfg.MetricsAddr); err != nil {
			zl.Warn("metrics server stopped", zap.Error(err))
		}
	}()

	ctx := context.Background()
	tables, blobs, err := cfg.OpenSinks(ctx, zl)
	if err != nil {
		zl.Fatal("open sinks", zap.Error(err))
	}
	defer func() {
		if err := blobs.FlushCache(ctx); err != nil {
			zl.Error("flush name cache", zap.Error(err))
		}
		_ = blobs.Shutdown(ctx)
		_ = tables.Shutdown(ctx)
	}()

	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddr, Namespace: cfg.Namespace})
	if err != nil {
		zl.Fatal("temporal client", zap.Error(err))
	}
	defer c.Close()

	w := worker.New(c, cfg.TaskQueue, worker.Options{})
	acts := activities.New(activities.Config{Tables: tables, Blobs: blobs, MaxBlob: cfg.MaxBlob})
	// Register activities with explicit names matching workflow.ExecuteActivity calls
	w.RegisterActivityWithOptions(acts.StoreBlob, tactivity.RegisterOptions{Name: "Activities.StoreBlob"})
	w.RegisterActivityWithOptions(acts.WriteTable, tactivity.RegisterOptions{Name: "Activities.WriteTable"})
	w.RegisterActivityWithOptions(acts.FlushCache, tactivity.RegisterOptions{Name: "Activities.FlushCache"})
	w.RegisterWorkflow(workflow.ArchiveWorkflow)

	zl.Info("worker started",
		zap.String("namespace", cfg.Namespace),
		zap.String("taskQueue", cfg.TaskQueue),
		zap.String("tables", cfg.TableTarget().URL()),
		zap.String("blobs", cfg.BlobTarget().URL()),
		zap.String("metrics", cfg.MetricsAddr))
	if err := w.Run(worker.InterruptCh()); err != nil {
		zl.Error("worker failed", zap.Error(err))
	}
}
