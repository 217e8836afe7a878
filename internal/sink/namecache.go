package sink

import (
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
)

// NameCache is the set of filenames known to be uploaded. It only grows.
// Membership is safe for concurrent use; it does not serialize the
// check-then-write sequence of StoreBlob.
type NameCache struct {
	names *xsync.MapOf[string, struct{}]
}

func NewNameCache() *NameCache {
	return &NameCache{names: xsync.NewMapOf[string, struct{}]()}
}

func (c *NameCache) Has(name string) bool {
	_, ok := c.names.Load(name)
	return ok
}

func (c *NameCache) Add(names ...string) {
	for _, n := range names {
		c.names.Store(n, struct{}{})
	}
}

func (c *NameCache) Len() int { return c.names.Size() }

// Names returns the cached names sorted.
func (c *NameCache) Names() []string {
	out := make([]string, 0, c.names.Size())
	c.names.Range(func(k string, _ struct{}) bool {
		out = append(out, k)
		return true
	})
	sort.Strings(out)
	return out
}
