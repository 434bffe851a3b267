// FILE: lixenwraith/keyprop/cache.go
package keyprop

import (
	"fmt"
	"reflect"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Cachable memoizes a Property's resolutions per Source instance.
// The memo is a bounded FIFO table: once it holds more than maxSize entries the
// earliest inserted entry is evicted, regardless of how recently it was read.
// Zero-source resolutions live in a separate slot that is never evicted.
type Cachable[T any] struct {
	delegate Property[T]
	maxSize  int

	mu       sync.RWMutex // Protects table, emptySet and empty
	table    *orderedmap.OrderedMap[Source, T]
	emptySet bool
	empty    T
}

// NewCachable wraps p with a FIFO memo of at most maxSize sources.
// A maxSize of zero or less selects DefaultMaxCacheSize.
func NewCachable[T any](p Property[T], maxSize int) *Cachable[T] {
	if maxSize <= 0 {
		maxSize = DefaultMaxCacheSize
	}
	return &Cachable[T]{
		delegate: p,
		maxSize:  maxSize,
		table:    orderedmap.New[Source, T](),
	}
}

// Key implements Property.
func (c *Cachable[T]) Key() string { return c.delegate.Key() }

// ExplicitResolve implements Property. It is never cached.
func (c *Cachable[T]) ExplicitResolve(src Source) (T, error) {
	return c.delegate.ExplicitResolve(src)
}

// TolerantResolve implements Property. It is never cached.
func (c *Cachable[T]) TolerantResolve(src Source) (T, bool, error) {
	return c.delegate.TolerantResolve(src)
}

// MaxSize returns the table bound.
func (c *Cachable[T]) MaxSize() int { return c.maxSize }

// Len returns the number of memoized sources, excluding the zero-source slot.
func (c *Cachable[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table.Len()
}

// Purge drops every memoized value, including the zero-source slot.
// Call it after the configuration behind a cached source has been reloaded.
func (c *Cachable[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.table = orderedmap.New[Source, T]()
	c.emptySet = false
	c.empty = zero
}

// Resolve implements Property.
// A chain with more than one source hits the cache if any of its members is memoized.
// On a full miss the chain result is memoized under the first source that, resolved
// on its own, produces an equal value.
func (c *Cachable[T]) Resolve(sources ...Source) (T, error) {
	var zero T
	if err := checkSources(sources); err != nil {
		return zero, err
	}
	if len(sources) == 0 {
		return c.resolveEmpty()
	}

	// Fast path: shared lock only
	c.mu.RLock()
	v, hit := c.probeLocked(sources)
	c.mu.RUnlock()
	if hit {
		return v, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another writer may have stored it while we waited
	if v, hit := c.probeLocked(sources); hit {
		return v, nil
	}

	v, err := c.delegate.Resolve(sources...)
	if err != nil {
		return zero, err
	}

	if len(sources) == 1 {
		c.storeLocked(sources[0], v)
	} else {
		c.attributeLocked(sources, v)
	}
	c.evictLocked()

	return v, nil
}

// resolveEmpty serves zero-source calls from the dedicated slot.
func (c *Cachable[T]) resolveEmpty() (T, error) {
	c.mu.RLock()
	if c.emptySet {
		v := c.empty
		c.mu.RUnlock()
		return v, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.emptySet {
		return c.empty, nil
	}
	v, err := c.delegate.Resolve()
	if err != nil {
		var zero T
		return zero, err
	}
	c.empty = v
	c.emptySet = true
	return v, nil
}

// probeLocked returns the memoized value of the first chain member found in the table.
// Caller must hold c.mu (read or write).
func (c *Cachable[T]) probeLocked(sources []Source) (T, bool) {
	for _, src := range sources {
		if !isComparable(src) {
			continue
		}
		if v, ok := c.table.Get(src); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// storeLocked memoizes v for src. An existing entry keeps its FIFO position.
// Caller must hold c.mu for writing.
func (c *Cachable[T]) storeLocked(src Source, v T) {
	if !isComparable(src) {
		return
	}
	c.table.Set(src, v)
}

// attributeLocked binds a chain result to the source that actually produced it.
// Each source claiming the key is re-resolved on its own; the first whose value
// equals the chain result gets the entry. A chain that fell back to a default
// usually attributes nothing.
// Caller must hold c.mu for writing.
func (c *Cachable[T]) attributeLocked(sources []Source, result T) {
	key := c.delegate.Key()
	for i, src := range sources {
		if !isComparable(src) || !src.ContainsKey(key) {
			continue
		}
		v, ok, err := c.delegate.TolerantResolve(src)
		if err != nil {
			Logger().Debug().Str("key", key).Int("source", i).Err(err).Msg("cache attribution probe failed")
			continue
		}
		if ok && reflect.DeepEqual(v, result) {
			c.storeLocked(src, result)
			return
		}
	}
}

// evictLocked removes the oldest entries until the table fits maxSize.
// Caller must hold c.mu for writing.
func (c *Cachable[T]) evictLocked() {
	for c.table.Len() > c.maxSize {
		oldest := c.table.Oldest()
		c.table.Delete(oldest.Key)
		Logger().Debug().Str("key", c.delegate.Key()).Int("max", c.maxSize).Msg("evicted oldest cached source")
	}
}

func (c *Cachable[T]) String() string {
	return fmt.Sprintf("Cachable(%v, max=%d)", c.delegate, c.maxSize)
}

// CachableDefault is a Cachable around a DefaultProperty.
type CachableDefault[T any] struct {
	*Cachable[T]
	defaults DefaultProperty[T]
}

// NewCachableDefault wraps p with a FIFO memo of at most maxSize sources.
func NewCachableDefault[T any](p DefaultProperty[T], maxSize int) *CachableDefault[T] {
	return &CachableDefault[T]{
		Cachable: NewCachable[T](p, maxSize),
		defaults: p,
	}
}

// Default implements DefaultProperty.
func (c *CachableDefault[T]) Default() T { return c.defaults.Default() }
