package storage

import (
	"fmt"
	"path"
	"strings"
)

// Backend selects the object store implementation behind a Target.
type Backend string

const (
	BackendGCS  Backend = "gs"
	BackendS3   Backend = "s3"
	BackendFile Backend = "file"
	BackendMem  Backend = "mem"
)

// ParseBackend accepts backend names as written in config ("gcs" and "gs"
// are equivalent).
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gs", "gcs":
		return BackendGCS, nil
	case "s3":
		return BackendS3, nil
	case "file":
		return BackendFile, nil
	case "mem":
		return BackendMem, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedBackend, s)
	}
}

// Target identifies where a sink writes. It is a value type; copy freely.
type Target struct {
	Backend  Backend
	Project  string
	Bucket   string
	BasePath string
	// Token is an OAuth2 access token or a path to a service account JSON
	// file. Empty means ambient credentials.
	Token string
	// Root is the local directory buckets live under for BackendFile.
	Root string
}

func (t Target) Validate() error {
	if t.Bucket == "" {
		return fmt.Errorf("%w: bucket is required", ErrInvalidTarget)
	}
	switch t.Backend {
	case BackendGCS:
		if t.Project == "" {
			return fmt.Errorf("%w: project is required for %s", ErrInvalidTarget, t.Backend)
		}
	case BackendFile:
		if t.Root == "" {
			return fmt.Errorf("%w: root is required for %s", ErrInvalidTarget, t.Backend)
		}
	case BackendS3, BackendMem:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedBackend, t.Backend)
	}
	return nil
}

// Key returns the bucket-relative object key for name: basePath/name.
func (t Target) Key(name string) string {
	return strings.TrimPrefix(path.Join(t.BasePath, name), "/")
}

// Path returns the full location of name: bucket/basePath/name.
func (t Target) Path(name string) string {
	return path.Join(t.Bucket, t.Key(name))
}

// URL renders the target base in scheme://bucket/basePath form for logs.
func (t Target) URL() string {
	return string(t.Backend) + "://" + path.Join(t.Bucket, t.BasePath)
}
