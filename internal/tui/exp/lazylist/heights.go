package lazylist

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// heightCache stores the last measured height per item id.
type heightCache interface {
	// Get returns the height without affecting eviction order.
	Get(id string) (float64, bool)
	Set(id string, height float64)
	// Touch marks id as recently used.
	Touch(id string)
	Remove(id string)
	Keys() []string
	Len() int
	// Reserve makes room for n entries without evicting any of them. A
	// bounded cache grows past its limit while n exceeds it and shrinks back
	// afterwards.
	Reserve(n int)
}

func newHeightCache(limit int) heightCache {
	if limit <= 0 {
		return mapCache{}
	}
	c, err := lru.New[string, float64](limit)
	if err != nil {
		return mapCache{}
	}
	return &lruCache{c: c, limit: limit, size: limit}
}

// mapCache never evicts: entries live until pruned.
type mapCache map[string]float64

func (m mapCache) Get(id string) (float64, bool) {
	h, ok := m[id]
	return h, ok
}

func (m mapCache) Set(id string, height float64) { m[id] = height }
func (m mapCache) Touch(string)                  {}
func (m mapCache) Remove(id string)              { delete(m, id) }
func (m mapCache) Len() int                      { return len(m) }
func (m mapCache) Reserve(int)                   {}

func (m mapCache) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

type lruCache struct {
	c     *lru.Cache[string, float64]
	limit int
	size  int
}

func (l *lruCache) Get(id string) (float64, bool) { return l.c.Peek(id) }
func (l *lruCache) Set(id string, height float64) { l.c.Add(id, height) }
func (l *lruCache) Touch(id string)               { l.c.Get(id) }
func (l *lruCache) Remove(id string)              { l.c.Remove(id) }
func (l *lruCache) Keys() []string                { return l.c.Keys() }
func (l *lruCache) Len() int                      { return l.c.Len() }

func (l *lruCache) Reserve(n int) {
	size := max(l.limit, n)
	if size == l.size {
		return
	}
	l.c.Resize(size)
	l.size = size
}
