// FILE: lixenwraith/keyprop/supplier.go
package keyprop

import (
	"fmt"
	"sync"
)

// Supplier acquires a configuration Source on demand.
type Supplier interface {
	// Configuration returns the current source. Errors describe acquisition failures.
	Configuration() (Source, error)
	// Changed reports whether the underlying configuration changed since the last acquisition.
	Changed() bool
}

// SupplierFunc adapts a function as a Supplier that never reports a change.
type SupplierFunc func() (Source, error)

// Configuration implements Supplier.
func (f SupplierFunc) Configuration() (Source, error) { return f() }

// Changed implements Supplier.
func (f SupplierFunc) Changed() bool { return false }

// CachingSupplier memoizes the source of an inner Supplier until it reports a change.
type CachingSupplier struct {
	inner Supplier

	mu     sync.Mutex
	cached Source
}

// NewCachingSupplier wraps inner. inner must not be nil.
func NewCachingSupplier(inner Supplier) *CachingSupplier {
	if inner == nil {
		panic("keyprop: NewCachingSupplier with nil supplier")
	}
	return &CachingSupplier{inner: inner}
}

// Configuration returns the cached source, re-acquiring it when none is cached
// yet or the inner supplier reports a change. A failed acquisition clears the
// cache and is returned wrapped in ErrAcquisition.
func (s *CachingSupplier) Configuration() (Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && !s.inner.Changed() {
		return s.cached, nil
	}

	src, err := s.inner.Configuration()
	if err != nil {
		s.cached = nil
		return nil, fmt.Errorf("%w: %w", ErrAcquisition, err)
	}
	if src == nil {
		s.cached = nil
		return nil, fmt.Errorf("%w: supplier returned nil source", ErrAcquisition)
	}
	s.cached = src
	return src, nil
}

// Changed implements Supplier.
func (s *CachingSupplier) Changed() bool { return s.inner.Changed() }

// Invalidate drops the cached source so the next call re-acquires.
func (s *CachingSupplier) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// SupplierSource is a Source that asks its Supplier for the current configuration
// on every call. While acquisition fails it behaves as an empty source.
//
// Property caches key on the SupplierSource itself, not on the acquired source,
// so callers reloading configuration should Purge cachable properties.
type SupplierSource struct {
	supplier Supplier
}

// OfSupplier creates a SupplierSource that acquires through supplier on every call.
func OfSupplier(supplier Supplier) *SupplierSource {
	if supplier == nil {
		panic("keyprop: OfSupplier with nil supplier")
	}
	return &SupplierSource{supplier: supplier}
}

// OfSupplierCached is OfSupplier over a CachingSupplier.
func OfSupplierCached(supplier Supplier) *SupplierSource {
	if _, ok := supplier.(*CachingSupplier); ok {
		return OfSupplier(supplier)
	}
	return OfSupplier(NewCachingSupplier(supplier))
}

// Delegated returns the currently acquired source, or EmptySource on failure.
func (s *SupplierSource) Delegated() Source {
	src, err := s.supplier.Configuration()
	if err != nil || src == nil {
		Logger().Warn().Err(err).Msg("configuration acquisition failed, using empty source")
		return EmptySource()
	}
	return src
}

// Supplier returns the wrapped supplier.
func (s *SupplierSource) Supplier() Supplier { return s.supplier }

// ContainsKey implements Source.
func (s *SupplierSource) ContainsKey(key string) bool {
	return s.Delegated().ContainsKey(key)
}

// Get implements Source.
func (s *SupplierSource) Get(key string) (any, bool) {
	return s.Delegated().Get(key)
}

// Keys lists the keys of the acquired source when it can enumerate them.
func (s *SupplierSource) Keys() []string {
	if lister, ok := s.Delegated().(interface{ Keys() []string }); ok {
		return lister.Keys()
	}
	return nil
}

func (s *SupplierSource) String() string {
	return fmt.Sprintf("SupplierSource(%T)", s.supplier)
}
