// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import lru "github.com/hashicorp/golang-lru"

// LRU is a typed wrapper of golang-lru which counts hits and misses.
type LRU[K comparable, V any] struct {
	c     *lru.Cache
	stats Stats
}

// NewLRU create a LRU cache instance.
// maxSize should be > 0, or an error returned.
func NewLRU[K comparable, V any](maxSize int) (*LRU[K, V], error) {
	c, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{c: c}, nil
}

// Loader defines loader to load value.
type Loader[K comparable, V any] func(key K) (V, error)

func (l *LRU[K, V]) Get(key K) (V, bool) {
	if v, ok := l.c.Get(key); ok {
		l.stats.Hit()
		return v.(V), true
	}
	l.stats.Miss()
	var zero V
	return zero, false
}

func (l *LRU[K, V]) Add(key K, value V) {
	l.c.Add(key, value)
}

func (l *LRU[K, V]) Remove(key K) {
	l.c.Remove(key)
}

func (l *LRU[K, V]) Purge() {
	l.c.Purge()
}

func (l *LRU[K, V]) Len() int {
	return l.c.Len()
}

// Stats returns the hit and miss counts so far.
func (l *LRU[K, V]) Stats() Snapshot {
	return l.stats.Snapshot()
}

// RateChanged reports whether the hit rate moved since the previous call.
func (l *LRU[K, V]) RateChanged() (Snapshot, bool) {
	return l.stats.RateChanged()
}

// GetOrLoad first try to get from cache, do load if missed.
func (l *LRU[K, V]) GetOrLoad(key K, loader Loader[K, V]) (V, error) {
	if v, ok := l.Get(key); ok {
		return v, nil
	}
	v, err := loader(key)
	if err != nil {
		var zero V
		return zero, err
	}

	l.Add(key, v)
	return v, nil
}
