package iopkg

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/yourorg/crawl-storage/internal/storage"
)

// s3iface is the minimal subset of s3 client methods we use; allows test fakes.
type s3iface interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// newS3Client constructs an s3 client; overridden in tests.
var newS3Client = func(ctx context.Context) (s3iface, error) {
	return storage.NewS3(ctx)
}

// Open returns a ReadCloser and (if known) size for file:// or s3:// URIs.
// A bare path is treated as a local file.
func Open(ctx context.Context, uri string) (io.ReadCloser, int64, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, 0, err
	}
	switch u.Scheme {
	case "file", "":
		p := strings.TrimPrefix(uri, "file://")
		f, err := os.Open(p)
		if err != nil {
			return nil, 0, err
		}
		st, _ := f.Stat()
		var sz int64
		if st != nil {
			sz = st.Size()
		}
		return f, sz, nil
	case "s3":
		cl, err := newS3Client(ctx)
		if err != nil {
			return nil, 0, err
		}
		resp, err := cl.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(u.Host), Key: aws.String(strings.TrimPrefix(u.Path, "/")),
		})
		if err != nil {
			return nil, 0, err
		}
		var sz int64
		if resp.ContentLength != nil {
			sz = *resp.ContentLength
		}
		return resp.Body, sz, nil
	default:
		return nil, 0, errors.New("unsupported scheme: " + u.Scheme)
	}
}

// ReadAll loads the whole object at uri, refusing anything larger than max
// bytes when max > 0.
func ReadAll(ctx context.Context, uri string, max int64) ([]byte, error) {
	rc, sz, err := Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	if max > 0 && sz > max {
		return nil, ErrTooLarge
	}
	var r io.Reader = rc
	if max > 0 {
		r = io.LimitReader(rc, max+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if max > 0 && int64(len(b)) > max {
		return nil, ErrTooLarge
	}
	return b, nil
}

// ErrTooLarge is returned by ReadAll when the source exceeds the limit.
var ErrTooLarge = errors.New("source exceeds size limit")
