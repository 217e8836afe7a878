package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	znmetrics "github.com/yourorg/crawl-storage/internal/metrics"
)

// NewRouter wires the sink routes under /api/v1 plus health and metrics.
// The workflow routes are mounted only when wf is non-nil.
func NewRouter(h *Handler, wf *WorkflowHandler, allowOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  allowOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(znmetrics.Handler()))
	v1 := r.Group("/api/v1")
	h.Register(v1)
	if wf != nil {
		wf.Register(v1)
	}
	return r
}
