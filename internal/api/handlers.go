package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/crawl-storage/internal/dataset"
	"github.com/yourorg/crawl-storage/internal/sink"
)

// TableSink is a structured sink that can report where a table lands.
type TableSink interface {
	sink.StructuredSink
	Path(name string) string
}

// BlobSink is an unstructured sink that can report where a blob lands.
type BlobSink interface {
	sink.UnstructuredSink
	Path(filename string) string
}

// Limits caps request body sizes in bytes.
type Limits struct {
	Blob  int64
	Table int64
}

type Handler struct {
	tables TableSink
	blobs  BlobSink
	limits Limits
	log    *zap.Logger
}

func NewHandler(tables TableSink, blobs BlobSink, limits Limits, log *zap.Logger) *Handler {
	return &Handler{tables: tables, blobs: blobs, limits: limits, log: log}
}

// Register mounts the sink routes on g.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.PUT("/blobs/:filename", h.StoreBlob)
	g.POST("/tables/:table", h.WriteTable)
	g.POST("/cache/flush", h.FlushCache)
}

// StoreBlob stores the request body under :filename. ?overwrite=true
// replaces an existing object.
func (h *Handler) StoreBlob(c *gin.Context) {
	filename := c.Param("filename")
	overwrite, err := strconv.ParseBool(c.DefaultQuery("overwrite", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid overwrite flag"})
		return
	}
	body, ok := readBody(c, h.limits.Blob, "blob")
	if !ok {
		return
	}
	if err := h.blobs.StoreBlob(c.Request.Context(), filename, body, overwrite); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filename": filename, "path": h.blobs.Path(filename)})
}

// WriteTable decodes an Arrow IPC stream body and writes it as :table.
func (h *Handler) WriteTable(c *gin.Context) {
	name := c.Param("table")
	body, ok := readBody(c, h.limits.Table, "table")
	if !ok {
		return
	}
	tbl, err := dataset.ReadIPCTable(bytes.NewReader(body), memory.DefaultAllocator)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "decode arrow stream: " + err.Error()})
		return
	}
	defer tbl.Release()

	if err := h.tables.WriteTable(c.Request.Context(), name, tbl); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"table": name, "path": h.tables.Path(name), "rows": tbl.NumRows()})
}

// readBody reads at most limit bytes of the request body, answering 413
// past that. It reports false once a response has been written.
func readBody(c *gin.Context, limit int64, what string) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": what + " exceeds " + strconv.FormatInt(limit, 10) + " bytes"})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body: " + err.Error()})
		return nil, false
	}
	return body, true
}

func (h *Handler) FlushCache(c *gin.Context) {
	if err := h.blobs.FlushCache(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) fail(c *gin.Context, err error) {
	var (
		ue *sink.UploadError
		we *sink.WriteError
	)
	switch {
	case errors.Is(err, sink.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, sink.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.As(err, &ue), errors.As(err, &we):
		h.log.Warn("storage request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
