// Package cache keeps translated catalogs fetched from the translation
// service between runs. Redis is the persistent backend; Memory only lives
// as long as its process and serves tests and library callers.
package cache

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Cache stores raw catalog bytes by key.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// Key builds the cache key of one locale's catalog.
func Key(project, version, locale, document string) string {
	return strings.Join([]string{project, version, locale, document}, ":")
}

// Open returns the cache described by rawURL. An empty URL disables caching
// and returns a nil Cache.
//
//	memory://            in-process only, for tests and embedding
//	redis://host:6379/0  shared redis instance
func Open(rawURL string, ttl time.Duration) (Cache, error) {
	if rawURL == "" {
		return nil, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid cache url %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "memory":
		return NewMemory(ttl), nil
	case "redis", "rediss":
		return NewRedis(RedisConfig{URL: rawURL, TTL: ttl})
	default:
		return nil, fmt.Errorf("unsupported cache scheme %q", u.Scheme)
	}
}
