package ingest

import (
	"time"

	"github.com/coocood/freecache"
	"github.com/vmihailenco/msgpack/v5"
)

// Cacher wraps the cache implementation holding ingested snapshots.
type Cacher interface {
	Get(key string, value any) error
	Set(key string, value any, expiration time.Duration) error
	Delete(keys ...string) error
}

// MemoryCache is an in-process Cacher backed by freecache with msgpack
// encoded values.
type MemoryCache struct {
	cache  *freecache.Cache
	prefix string
}

// NewMemoryCache creates a cache of the given size in bytes.
func NewMemoryCache(size int) *MemoryCache {
	return &MemoryCache{
		cache:  freecache.NewCache(size),
		prefix: "eventhound:",
	}
}

func (m *MemoryCache) Get(key string, value any) error {
	data, err := m.cache.Get([]byte(m.prefix + key))
	if err != nil {
		return err
	}
	return msgpack.Unmarshal(data, value)
}

func (m *MemoryCache) Set(key string, value any, expiration time.Duration) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return err
	}
	return m.cache.Set([]byte(m.prefix+key), data, int(expiration.Seconds()))
}

func (m *MemoryCache) Delete(keys ...string) error {
	for _, key := range keys {
		m.cache.Del([]byte(m.prefix + key))
	}
	return nil
}
