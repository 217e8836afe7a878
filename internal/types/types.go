package types

// StoreBlobParams asks the worker to store one blob. Exactly one of Data
// and SourceURI should be set; SourceURI wins when both are.
type StoreBlobParams struct {
	Filename  string `json:"filename"`
	Data      []byte `json:"data,omitempty"`
	SourceURI string `json:"source_uri,omitempty"` // file:// or s3://
	Overwrite bool   `json:"overwrite"`
}

// WriteTableParams asks the worker to write one table given as an Arrow
// IPC stream, inline or by URI.
type WriteTableParams struct {
	Table     string `json:"table"`
	IPC       []byte `json:"ipc,omitempty"`
	SourceURI string `json:"source_uri,omitempty"` // file:// or s3://
}

type TableStats struct {
	Table string `json:"table"`
	Path  string `json:"path"`
	Rows  int64  `json:"rows"`
}

// ArchiveParams is the input of ArchiveWorkflow.
type ArchiveParams struct {
	Blobs  []StoreBlobParams  `json:"blobs"`
	Tables []WriteTableParams `json:"tables"`
	// SkipFlush leaves the name cache unflushed after the run.
	SkipFlush bool `json:"skip_flush"`
}

type ArchiveStats struct {
	Blobs  int          `json:"blobs"`
	Tables []TableStats `json:"tables"`
}
