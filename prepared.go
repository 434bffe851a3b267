// FILE: lixenwraith/keyprop/prepared.go
package keyprop

import "fmt"

// Prepared binds a Property to a supplier of sources that are consulted after
// the caller's own. The supplier is called on every resolution, so it may return
// sources that change over time (e.g. SupplierSource instances).
type Prepared[T any] struct {
	delegate Property[T]
	prepared func() []Source
}

// NewPrepared creates a Prepared property. prepared must not be nil.
func NewPrepared[T any](p Property[T], prepared func() []Source) *Prepared[T] {
	if prepared == nil {
		panic("keyprop: NewPrepared with nil source supplier")
	}
	return &Prepared[T]{delegate: p, prepared: prepared}
}

// Key implements Property.
func (p *Prepared[T]) Key() string { return p.delegate.Key() }

// ExplicitResolve implements Property.
func (p *Prepared[T]) ExplicitResolve(src Source) (T, error) {
	return p.delegate.ExplicitResolve(src)
}

// TolerantResolve implements Property.
func (p *Prepared[T]) TolerantResolve(src Source) (T, bool, error) {
	return p.delegate.TolerantResolve(src)
}

// Resolve scans the caller's sources followed by the prepared ones.
// Caller sources are validated like any chain; nil prepared sources are skipped.
func (p *Prepared[T]) Resolve(sources ...Source) (T, error) {
	var zero T
	v, ok, n, err := p.scan(sources)
	if err != nil {
		return zero, err
	}
	if ok {
		return v, nil
	}
	if n == 0 {
		return zero, noSources(p.Key())
	}
	return zero, notFound(p.Key(), n)
}

// scan resolves over the combined chain through the delegate's tolerant path.
// n is the number of sources actually consulted.
func (p *Prepared[T]) scan(sources []Source) (v T, ok bool, n int, err error) {
	if err := checkSources(sources); err != nil {
		return v, false, 0, err
	}

	combined := make([]Source, 0, len(sources))
	combined = append(combined, sources...)
	for _, src := range p.prepared() {
		if src != nil {
			combined = append(combined, src)
		}
	}

	key := p.Key()
	for i, src := range combined {
		if !src.ContainsKey(key) {
			continue
		}
		val, found, err := p.delegate.TolerantResolve(src)
		if err != nil {
			return v, false, len(combined), fmt.Errorf("key %q at source %d: %w", key, i, err)
		}
		if found {
			return val, true, len(combined), nil
		}
	}
	return v, false, len(combined), nil
}

func (p *Prepared[T]) String() string {
	return fmt.Sprintf("Prepared(%v)", p.delegate)
}

// PreparedDefault is a Prepared property with a default.
type PreparedDefault[T any] struct {
	*Prepared[T]
	defaults DefaultProperty[T]
}

// NewPreparedDefault creates a PreparedDefault property. prepared must not be nil.
func NewPreparedDefault[T any](p DefaultProperty[T], prepared func() []Source) *PreparedDefault[T] {
	return &PreparedDefault[T]{
		Prepared: NewPrepared[T](p, prepared),
		defaults: p,
	}
}

// Default implements DefaultProperty.
func (p *PreparedDefault[T]) Default() T { return p.defaults.Default() }

// Resolve is Prepared.Resolve falling back to the default.
func (p *PreparedDefault[T]) Resolve(sources ...Source) (T, error) {
	v, ok, _, err := p.scan(sources)
	if err != nil {
		var zero T
		return zero, err
	}
	if !ok {
		return p.Default(), nil
	}
	return v, nil
}
