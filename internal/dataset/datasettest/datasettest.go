// Package datasettest builds small Arrow tables for tests.
package datasettest

import (
	"bytes"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// PageSchema mirrors a minimal crawl page table.
var PageSchema = arrow.NewSchema([]arrow.Field{
	{Name: "visit_id", Type: arrow.PrimitiveTypes.Int64},
	{Name: "url", Type: arrow.BinaryTypes.String},
}, nil)

// Record builds a record with one row per url; visit ids count from 1.
func Record(t testing.TB, urls ...string) arrow.Record {
	t.Helper()
	b := array.NewRecordBuilder(memory.DefaultAllocator, PageSchema)
	defer b.Release()
	for i, u := range urls {
		b.Field(0).(*array.Int64Builder).Append(int64(i + 1))
		b.Field(1).(*array.StringBuilder).Append(u)
	}
	return b.NewRecord()
}

// Table wraps Record in a table. The caller releases it.
func Table(t testing.TB, urls ...string) arrow.Table {
	t.Helper()
	rec := Record(t, urls...)
	defer rec.Release()
	return array.NewTableFromRecords(PageSchema, []arrow.Record{rec})
}

// IPC encodes a page record as an Arrow IPC stream.
func IPC(t testing.TB, urls ...string) []byte {
	t.Helper()
	rec := Record(t, urls...)
	defer rec.Release()
	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(PageSchema))
	if err := w.Write(rec); err != nil {
		t.Fatalf("ipc write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("ipc close: %v", err)
	}
	return buf.Bytes()
}
