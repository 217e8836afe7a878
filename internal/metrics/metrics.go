package metrics

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BlobsWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "crawl_storage",
		Name:      "blobs_written_total",
		Help:      "Total blobs uploaded to object storage.",
	})
	BlobBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "crawl_storage",
		Name:      "blob_bytes_total",
		Help:      "Total blob bytes uploaded to object storage.",
	})
	BlobsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crawl_storage",
		Name:      "blobs_skipped_total",
		Help:      "Blobs not uploaded because they were already stored, by where that was detected (cache|remote).",
	}, []string{"reason"})
	TablesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "crawl_storage",
		Name:      "tables_written_total",
		Help:      "Total table writes committed.",
	})
	TableRows = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "crawl_storage",
		Name:      "table_rows_total",
		Help:      "Total rows written across all tables.",
	})
	Failures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crawl_storage",
		Name:      "failures_total",
		Help:      "Failed sink operations by operation (store_blob|write_table|flush_cache).",
	}, []string{"op"})
)

// Init registers collectors; call once from main.
func Init() {
	prometheus.MustRegister(BlobsWritten, BlobBytes, BlobsSkipped, TablesWritten, TableRows, Failures)
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// Serve starts a /metrics server on the given addr (e.g., ":9090"). Non-blocking when run in goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return http.ListenAndServe(addr, mux)
}

// AddrFromEnv returns listen address from METRICS_ADDR or default ":9090".
func AddrFromEnv() string {
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		return v
	}
	return ":9090"
}
