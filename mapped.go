// FILE: lixenwraith/keyprop/mapped.go
package keyprop

import "fmt"

// Map returns a Property whose every operation delegates to p and then applies fn.
//
// Decorators are rewrapped rather than stacked: mapping a *Cachable produces a new
// *Cachable around the mapped delegate, so the transformed value is what gets
// memoized and fn is not re-applied on cache hits. *Prepared is rewrapped the same
// way, and a DefaultProperty is mapped with MapDefault so its default is kept.
// fn must not be nil.
func Map[T, U any](p Property[T], fn func(T) U) Property[U] {
	if fn == nil {
		panic("keyprop: Map with nil transform")
	}

	switch d := p.(type) {
	case DefaultProperty[T]:
		return MapDefault(d, fn)
	case *Cachable[T]:
		return NewCachable(Map(d.delegate, fn), d.maxSize)
	case *Prepared[T]:
		return NewPrepared(Map(d.delegate, fn), d.prepared)
	}
	return &mapped[T, U]{delegate: p, fn: fn}
}

// MapDefault is Map for a DefaultProperty. The default is transformed once, here.
func MapDefault[T, U any](p DefaultProperty[T], fn func(T) U) DefaultProperty[U] {
	if fn == nil {
		panic("keyprop: MapDefault with nil transform")
	}

	switch d := p.(type) {
	case *CachableDefault[T]:
		return NewCachableDefault(MapDefault(d.defaults, fn), d.maxSize)
	case *PreparedDefault[T]:
		return NewPreparedDefault(MapDefault(d.defaults, fn), d.prepared)
	}
	return &mappedDefault[T, U]{
		mapped: mapped[T, U]{delegate: p, fn: fn},
		def:    fn(p.Default()),
	}
}

// mapped applies fn to every value its delegate produces.
type mapped[T, U any] struct {
	delegate Property[T]
	fn       func(T) U
}

func (m *mapped[T, U]) Key() string { return m.delegate.Key() }

func (m *mapped[T, U]) Resolve(sources ...Source) (U, error) {
	v, err := m.delegate.Resolve(sources...)
	if err != nil {
		var zero U
		return zero, err
	}
	return m.fn(v), nil
}

func (m *mapped[T, U]) ExplicitResolve(src Source) (U, error) {
	v, err := m.delegate.ExplicitResolve(src)
	if err != nil {
		var zero U
		return zero, err
	}
	return m.fn(v), nil
}

func (m *mapped[T, U]) TolerantResolve(src Source) (U, bool, error) {
	var zero U
	v, ok, err := m.delegate.TolerantResolve(src)
	if err != nil || !ok {
		return zero, false, err
	}
	return m.fn(v), true, nil
}

func (m *mapped[T, U]) String() string {
	return fmt.Sprintf("Mapped(%v)", m.delegate)
}

// mappedDefault is mapped with an eagerly transformed default.
type mappedDefault[T, U any] struct {
	mapped[T, U]
	def U
}

func (m *mappedDefault[T, U]) Default() U { return m.def }

// Resolve scans the chain with the delegate's explicit conversion, so an exhausted
// chain yields the stored default and fn never runs on the default path.
func (m *mappedDefault[T, U]) Resolve(sources ...Source) (U, error) {
	if len(sources) == 0 {
		return m.def, nil
	}
	v, ok, err := resolveChain(m.Key(), Converter[T](m.delegate.ExplicitResolve), sources)
	if err != nil {
		var zero U
		return zero, err
	}
	if !ok {
		return m.def, nil
	}
	return m.fn(v), nil
}
