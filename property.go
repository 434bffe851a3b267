// FILE: lixenwraith/keyprop/property.go
package keyprop

import (
	"fmt"
)

// Property resolves a typed value for one key against an ordered chain of sources.
// Implementations are immutable after construction and safe for concurrent use.
type Property[T any] interface {
	// Key returns the configuration key the property reads.
	Key() string

	// Resolve returns the first value produced scanning sources left to right.
	// Sources after the first producing one are never consulted. A nil source
	// anywhere in the chain fails with ErrInvalidArgument before any lookup.
	// An exhausted chain fails with ErrNotFound unless the property has a default.
	Resolve(sources ...Source) (T, error)

	// ExplicitResolve converts from exactly one source and surfaces the
	// conversion error, for callers that need to know why a value is unreadable.
	ExplicitResolve(src Source) (T, error)

	// TolerantResolve converts from exactly one source with no default fallback.
	// A failed conversion or absent value reports false with a nil error.
	TolerantResolve(src Source) (T, bool, error)
}

// DefaultProperty is a Property that falls back to a default instead of failing with ErrNotFound.
type DefaultProperty[T any] interface {
	Property[T]

	// Default returns the value used when no source produces one.
	Default() T
}

// ResolveNonNil resolves p and fails with ErrNilValue if the result is nil.
// Use it when nil is never a legitimate value for the property's type.
func ResolveNonNil[T any](p Property[T], sources ...Source) (T, error) {
	v, err := p.Resolve(sources...)
	if err != nil {
		return v, err
	}
	if isNil(v) {
		var zero T
		return zero, fmt.Errorf("%w: key %q", ErrNilValue, p.Key())
	}
	return v, nil
}

// resolvable is the plain Property: a key bound to a converter.
type resolvable[T any] struct {
	key  string
	conv Converter[T]
}

// NewProperty creates a Property for key read by conv.
// Prefer NewBuilder, which validates its arguments.
func NewProperty[T any](key string, conv Converter[T]) Property[T] {
	return &resolvable[T]{key: key, conv: conv}
}

func (p *resolvable[T]) Key() string { return p.key }

func (p *resolvable[T]) Resolve(sources ...Source) (T, error) {
	var zero T
	if len(sources) == 0 {
		return zero, noSources(p.key)
	}
	v, ok, err := resolveChain(p.key, p.conv, sources)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, notFound(p.key, len(sources))
	}
	return v, nil
}

func (p *resolvable[T]) ExplicitResolve(src Source) (T, error) {
	return p.conv.Convert(src)
}

func (p *resolvable[T]) TolerantResolve(src Source) (T, bool, error) {
	return p.conv.Apply(src)
}

func (p *resolvable[T]) String() string {
	return fmt.Sprintf("Property(%s)", p.key)
}

// defaultResolvable is a resolvable with a default value.
type defaultResolvable[T any] struct {
	resolvable[T]
	def T
}

// NewDefaultProperty creates a DefaultProperty for key read by conv with fallback def.
// Prefer OfDefault, which validates its arguments.
func NewDefaultProperty[T any](key string, def T, conv Converter[T]) DefaultProperty[T] {
	return &defaultResolvable[T]{resolvable: resolvable[T]{key: key, conv: conv}, def: def}
}

func (p *defaultResolvable[T]) Default() T { return p.def }

func (p *defaultResolvable[T]) Resolve(sources ...Source) (T, error) {
	if len(sources) == 0 {
		return p.def, nil
	}
	v, ok, err := resolveChain(p.key, p.conv, sources)
	if err != nil {
		var zero T
		return zero, err
	}
	if !ok {
		return p.def, nil
	}
	return v, nil
}

func (p *defaultResolvable[T]) String() string {
	return fmt.Sprintf("DefaultProperty(%s, default=%v)", p.key, p.def)
}

// checkSources validates a whole chain up front so nil sources never yield partial results.
func checkSources(sources []Source) error {
	for i, src := range sources {
		if src == nil {
			return nilSource(i)
		}
	}
	return nil
}

// resolveChain scans sources in order and returns the first tolerant conversion
// from a source that claims the key. ok is false when the chain is exhausted.
func resolveChain[T any](key string, conv Converter[T], sources []Source) (v T, ok bool, err error) {
	if err := checkSources(sources); err != nil {
		return v, false, err
	}

	for i, src := range sources {
		if !src.ContainsKey(key) {
			continue
		}
		val, found, swallowed, err := conv.tolerate(src)
		if err != nil {
			return v, false, fmt.Errorf("key %q at source %d: %w", key, i, err)
		}
		if found {
			return val, true, nil
		}
		if swallowed != nil {
			Logger().Debug().Str("key", key).Int("source", i).Err(swallowed).Msg("value skipped, trying next source")
		}
	}
	return v, false, nil
}
