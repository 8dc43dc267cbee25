// Package cache provides a small generic LRU cache.
//
// It backs the compiled kernel cache and the blur weight cache. Both are
// keyed by value and hit far more often than they miss.
//
//	c := cache.New[string, []uint32](32)
//	words, err := c.GetOrCreate("blur", compile)
//
// A Cache is safe for concurrent use and must not be copied.
package cache
