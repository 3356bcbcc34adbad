package server

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultCacheSize = 128
	defaultCacheTTL  = 5 * time.Second
)

type cachedArtifact struct {
	data    []byte
	expires time.Time
}

// artifactCache 缓存即时生成的清单与归档，条目过期后重新生成。
type artifactCache struct {
	mu    sync.Mutex
	lru   *lru.Cache[string, cachedArtifact]
	ttl   time.Duration
	now   func() time.Time
	build map[string]*sync.Mutex
}

func newArtifactCache(size int, ttl time.Duration) (*artifactCache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	cache, err := lru.New[string, cachedArtifact](size)
	if err != nil {
		return nil, err
	}
	return &artifactCache{lru: cache, ttl: ttl, now: time.Now, build: make(map[string]*sync.Mutex)}, nil
}

// get 返回未过期的缓存内容，否则调用 build 生成；同一 key 的并发生成会被串行化。
func (c *artifactCache) get(key string, build func() ([]byte, error)) ([]byte, error) {
	if data, ok := c.fresh(key); ok {
		return data, nil
	}

	c.mu.Lock()
	lock := c.build[key]
	if lock == nil {
		lock = &sync.Mutex{}
		c.build[key] = lock
	}
	c.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	if data, ok := c.fresh(key); ok {
		return data, nil
	}
	data, err := build()
	if err != nil {
		return nil, err
	}
	c.lru.Add(key, cachedArtifact{data: data, expires: c.now().Add(c.ttl)})
	return data, nil
}

func (c *artifactCache) fresh(key string) ([]byte, bool) {
	entry, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expires) {
		c.lru.Remove(key)
		return nil, false
	}
	return entry.data, true
}
