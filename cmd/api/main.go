package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/yourorg/crawl-storage/internal/api"
	"github.com/yourorg/crawl-storage/internal/config"
	znmetrics "github.com/yourorg/crawl-storage/internal/metrics"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl := cfg.Logger()
	defer zl.Sync()

	znmetrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tables, blobs, err := cfg.OpenSinks(ctx, zl)
	if err != nil {
		zl.Fatal("open sinks", zap.Error(err))
	}

	// Workflow routes are only mounted when Temporal is reachable.
	var wf *api.WorkflowHandler
	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalAddr,
		Namespace: cfg.Namespace,
	})
	if err != nil {
		zl.Warn("temporal unavailable, workflow routes disabled", zap.String("addr", cfg.TemporalAddr), zap.Error(err))
	} else {
		defer temporalClient.Close()
		wf = api.NewWorkflowHandler(temporalClient, cfg.TaskQueue, zl.Named("workflows"))
	}

	gin.SetMode(gin.ReleaseMode)
	limits := api.Limits{Blob: cfg.MaxBlob, Table: cfg.MaxTable}
	r := api.NewRouter(api.NewHandler(tables, blobs, limits, zl.Named("api")), wf, cfg.AllowOrigins)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		zl.Info("server starting", zap.String("addr", srv.Addr),
			zap.String("tables", cfg.TableTarget().URL()), zap.String("blobs", cfg.BlobTarget().URL()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("server failed", zap.Error(err))
			stop()
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Warn("server shutdown", zap.Error(err))
	}
	if err := blobs.FlushCache(shutdownCtx); err != nil {
		zl.Error("flush name cache", zap.Error(err))
	}
	_ = blobs.Shutdown(shutdownCtx)
	_ = tables.Shutdown(shutdownCtx)
}
