package sink

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	znmetrics "github.com/yourorg/crawl-storage/internal/metrics"
	"github.com/yourorg/crawl-storage/internal/storage"
)

// UnstructuredWriter stores blobs under bucket/basePath/<filename>. A name
// is uploaded once per writer unless overwrite is requested: the local
// NameCache answers for names this writer stored, a remote existence check
// answers for everything else.
type UnstructuredWriter struct {
	target     storage.Target
	client     storage.Client
	ownsClient bool
	cache      *NameCache
	store      NameStore
	log        *zap.Logger
	shutdown   atomic.Bool
}

var _ UnstructuredSink = (*UnstructuredWriter)(nil)

// OpenUnstructured connects to target and starts with an empty name cache,
// or with the names held by the configured NameStore.
func OpenUnstructured(ctx context.Context, target storage.Target, opts ...Option) (*UnstructuredWriter, error) {
	o := buildOptions(opts)
	client, owns, err := o.connect(ctx, target)
	if err != nil {
		if o.store != nil {
			_ = o.store.Close()
		}
		return nil, err
	}
	w := &UnstructuredWriter{
		target:     target,
		client:     client,
		ownsClient: owns,
		cache:      NewNameCache(),
		store:      o.store,
		log:        o.log,
	}
	if w.store != nil {
		names, err := w.store.Load(ctx)
		if err != nil {
			if owns {
				_ = client.Close()
			}
			_ = w.store.Close()
			return nil, &ConnectionError{Target: "name store", Err: err}
		}
		w.cache.Add(names...)
	}
	w.log.Info("unstructured sink ready", zap.String("target", target.URL()), zap.Int("cachedNames", w.cache.Len()))
	return w, nil
}

// Path returns where filename is stored.
func (u *UnstructuredWriter) Path(filename string) string { return u.target.Path(filename) }

// Cache exposes the name cache for inspection.
func (u *UnstructuredWriter) Cache() *NameCache { return u.cache }

// StoreBlob uploads blob as filename. Without overwrite, a name found in the
// cache or already present remotely is skipped and nil is returned. The
// cache is updated only after a successful upload; a skip because of a
// remote object does not add the name.
func (u *UnstructuredWriter) StoreBlob(ctx context.Context, filename string, blob []byte, overwrite bool) error {
	stored, err := u.storeBlob(ctx, filename, blob, overwrite)
	if err != nil {
		znmetrics.Failures.WithLabelValues("store_blob").Inc()
		return &UploadError{Filename: filename, Err: err}
	}
	if stored {
		u.cache.Add(filename)
		znmetrics.BlobsWritten.Inc()
		znmetrics.BlobBytes.Add(float64(len(blob)))
	}
	return nil
}

func (u *UnstructuredWriter) storeBlob(ctx context.Context, filename string, blob []byte, overwrite bool) (bool, error) {
	if u.shutdown.Load() {
		return false, ErrClosed
	}
	if err := validName(filename); err != nil {
		return false, err
	}
	key := u.target.Key(filename)
	if !overwrite {
		if u.cache.Has(filename) {
			u.skip(filename, "cache")
			return false, nil
		}
		exists, err := u.client.Exists(ctx, key)
		if err != nil {
			return false, fmt.Errorf("check existence: %w", err)
		}
		if exists {
			u.skip(filename, "remote")
			return false, nil
		}
	}
	if err := u.upload(ctx, key, blob); err != nil {
		return false, err
	}
	return true, nil
}

func (u *UnstructuredWriter) skip(filename, reason string) {
	znmetrics.BlobsSkipped.WithLabelValues(reason).Inc()
	u.log.Info("not saving out file as it already exists", zap.String("filename", filename), zap.String("detectedBy", reason))
}

func (u *UnstructuredWriter) upload(ctx context.Context, key string, blob []byte) (err error) {
	w, err := u.client.NewWriter(ctx, key)
	if err != nil {
		return fmt.Errorf("open %s: %w", key, err)
	}
	defer func() {
		if cerr := w.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", key, cerr)
		}
	}()
	if _, err := w.Write(blob); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// FlushCache persists the name cache when a NameStore is configured and is
// a no-op otherwise. Repeated calls write the same set.
func (u *UnstructuredWriter) FlushCache(ctx context.Context) error {
	if u.store == nil {
		return nil
	}
	if u.shutdown.Load() {
		return ErrClosed
	}
	names := u.cache.Names()
	if err := u.store.Save(ctx, names); err != nil {
		znmetrics.Failures.WithLabelValues("flush_cache").Inc()
		return fmt.Errorf("flush name cache: %w", err)
	}
	u.log.Debug("name cache flushed", zap.Int("names", len(names)))
	return nil
}

// Shutdown closes the name store and, if the writer opened it, the storage
// client. It does not flush; call FlushCache first. Safe to call more than
// once.
func (u *UnstructuredWriter) Shutdown(ctx context.Context) error {
	if u.shutdown.Swap(true) {
		return nil
	}
	var errs []error
	if u.store != nil {
		if err := u.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if u.ownsClient {
		if err := u.client.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
