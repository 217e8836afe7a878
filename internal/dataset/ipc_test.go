package dataset

import (
	"bytes"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/yourorg/crawl-storage/internal/dataset/datasettest"
)

func TestReadIPCTable(t *testing.T) {
	b := datasettest.IPC(t, "https://a.example/", "https://b.example/")
	tbl, err := ReadIPCTable(bytes.NewReader(b), memory.DefaultAllocator)
	if err != nil {
		t.Fatalf("ReadIPCTable: %v", err)
	}
	defer tbl.Release()
	if tbl.NumRows() != 2 || tbl.NumCols() != 2 {
		t.Fatalf("shape %dx%d", tbl.NumRows(), tbl.NumCols())
	}
}

func TestReadIPCTableGarbage(t *testing.T) {
	if _, err := ReadIPCTable(bytes.NewReader([]byte("not arrow")), memory.DefaultAllocator); err == nil {
		t.Fatalf("expected error for non-IPC input")
	}
}
