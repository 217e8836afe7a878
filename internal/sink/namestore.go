package sink

import (
	"context"

	"github.com/dgraph-io/badger/v4"
)

// NameStore persists uploaded filenames between process runs.
type NameStore interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, names []string) error
	Close() error
}

var namePrefix = []byte("blob/")

// BadgerStore keeps names as keys in a local badger database.
type BadgerStore struct {
	db *badger.DB
}

func OpenBadgerStore(dir string) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Load(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = namePrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			k := it.Item().KeyCopy(nil)
			names = append(names, string(k[len(namePrefix):]))
		}
		return nil
	})
	return names, err
}

// Save writes names; existing names are overwritten in place.
func (s *BadgerStore) Save(ctx context.Context, names []string) error {
	wb := s.db.NewWriteBatch()
	for _, n := range names {
		if err := ctx.Err(); err != nil {
			wb.Cancel()
			return err
		}
		k := make([]byte, 0, len(namePrefix)+len(n))
		k = append(append(k, namePrefix...), n...)
		if err := wb.Set(k, []byte{1}); err != nil {
			wb.Cancel()
			return err
		}
	}
	return wb.Flush()
}

func (s *BadgerStore) Close() error { return s.db.Close() }
