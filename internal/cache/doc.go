// Package cache provides a small generic LRU cache.
//
// The pipeline package keeps compiled SPIR-V in it, keyed by a hash of the
// WGSL source, so that registering the same shader under several names or
// rebuilding a registry does not run the compiler again.
//
//	c := cache.New[uint64, []uint32](64)
//	words, err := c.GetOrCreate(key, func() ([]uint32, error) { return compile(src) })
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
