// Package cache provides the key-value storage used to keep bound-provider
// artifacts warm between calls. It defines the Cache interface and a
// registry for pluggable backends.
//
// # Cache Interface
//
// The Cache interface provides four operations:
//
//   - Get retrieves a value by key, returning (value, found, error).
//   - Set stores a value with a key and TTL.
//   - Delete removes a key from the cache.
//   - Clear removes all entries.
//
// # Registry
//
// Cache backends register via init()-time side effects. Import a provider
// package for registration, then create instances via New.
//
// # Usage
//
// Exact caching with the in-memory provider:
//
//	import _ "github.com/onesdk/go-sdk/cache/providers/inmemory"
//
//	c, err := cache.New("inmemory", cache.Config{
//	    TTL:     5 * time.Minute,
//	    MaxSize: 1000,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = c.Set(ctx, "key", "value", 10*time.Minute)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	val, ok, err := c.Get(ctx, "key")
package cache
