// FILE: lixenwraith/keyprop/builder.go
package keyprop

import (
	"fmt"
)

// Builder assembles a key, a converter, an optional default and a cachability
// flag into a Property. Builder is a value type: every With method returns a
// modified copy and leaves the receiver untouched.
type Builder[T any] struct {
	key          string
	conv         Converter[T]
	def          T
	defaultSet   bool
	cachable     bool
	maxCacheSize int
	err          error
}

// NewBuilder creates a builder without a default.
func NewBuilder[T any](key string, conv Converter[T]) Builder[T] {
	b := Builder[T]{key: key, conv: conv}
	switch {
	case key == "":
		b.err = fmt.Errorf("%w: key cannot be empty", ErrInvalidArgument)
	case conv == nil:
		b.err = fmt.Errorf("%w: converter for key %q is nil", ErrInvalidArgument, key)
	}
	return b
}

// OfDefault creates a builder with def pre-set as the default.
func OfDefault[T any](key string, def T, conv Converter[T]) Builder[T] {
	b := NewBuilder(key, conv)
	b.def = def
	b.defaultSet = true
	return b
}

// WithCachable sets whether built properties memoize resolutions per source.
func (b Builder[T]) WithCachable(cachable bool) Builder[T] {
	b.cachable = cachable
	return b
}

// WithMaxCacheSize sets the memo bound for cachable properties.
// Zero or less selects DefaultMaxCacheSize.
func (b Builder[T]) WithMaxCacheSize(n int) Builder[T] {
	b.maxCacheSize = n
	return b
}

// Key returns the key the built properties will read.
func (b Builder[T]) Key() string { return b.key }

// HasDefault reports whether a default was set.
func (b Builder[T]) HasDefault() bool { return b.defaultSet }

// IsCachable reports whether built properties will be cachable.
func (b Builder[T]) IsCachable() bool { return b.cachable }

// ToKeyProperty builds a Property without default fallback, even if a default was set.
func (b Builder[T]) ToKeyProperty() (Property[T], error) {
	if b.err != nil {
		return nil, b.err
	}
	p := NewProperty(b.key, b.conv)
	if b.cachable {
		return NewCachable(p, b.maxCacheSize), nil
	}
	return p, nil
}

// ToKeyDefaultProperty builds a DefaultProperty.
// It fails with ErrInvalidState if no default was set.
func (b Builder[T]) ToKeyDefaultProperty() (DefaultProperty[T], error) {
	if err := b.checkDefault(); err != nil {
		return nil, err
	}
	p := NewDefaultProperty(b.key, b.def, b.conv)
	if b.cachable {
		return NewCachableDefault(p, b.maxCacheSize), nil
	}
	return p, nil
}

// ToCachableDefaultProperty builds a cachable DefaultProperty regardless of WithCachable.
func (b Builder[T]) ToCachableDefaultProperty() (*CachableDefault[T], error) {
	if err := b.checkDefault(); err != nil {
		return nil, err
	}
	return NewCachableDefault(NewDefaultProperty(b.key, b.def, b.conv), b.maxCacheSize), nil
}

// ToPreparedKeyProperty builds a Property that also consults the sources returned by prepared.
func (b Builder[T]) ToPreparedKeyProperty(prepared func() []Source) (*Prepared[T], error) {
	p, err := b.ToKeyProperty()
	if err != nil {
		return nil, err
	}
	if prepared == nil {
		return nil, fmt.Errorf("%w: prepared source supplier for key %q is nil", ErrInvalidArgument, b.key)
	}
	return NewPrepared(p, prepared), nil
}

// ToPreparedKeyDefaultProperty is ToPreparedKeyProperty with default fallback.
func (b Builder[T]) ToPreparedKeyDefaultProperty(prepared func() []Source) (*PreparedDefault[T], error) {
	p, err := b.ToKeyDefaultProperty()
	if err != nil {
		return nil, err
	}
	if prepared == nil {
		return nil, fmt.Errorf("%w: prepared source supplier for key %q is nil", ErrInvalidArgument, b.key)
	}
	return NewPreparedDefault(p, prepared), nil
}

// ToPreparedCachableDefaultProperty is ToPreparedKeyDefaultProperty over a cachable property.
func (b Builder[T]) ToPreparedCachableDefaultProperty(prepared func() []Source) (*PreparedDefault[T], error) {
	return b.WithCachable(true).ToPreparedKeyDefaultProperty(prepared)
}

// MustKeyProperty is like ToKeyProperty but panics on error
func (b Builder[T]) MustKeyProperty() Property[T] {
	p, err := b.ToKeyProperty()
	if err != nil {
		panic(fmt.Sprintf("keyprop build failed: %v", err))
	}
	return p
}

// MustKeyDefaultProperty is like ToKeyDefaultProperty but panics on error
func (b Builder[T]) MustKeyDefaultProperty() DefaultProperty[T] {
	p, err := b.ToKeyDefaultProperty()
	if err != nil {
		panic(fmt.Sprintf("keyprop build failed: %v", err))
	}
	return p
}

func (b Builder[T]) checkDefault() error {
	if b.err != nil {
		return b.err
	}
	if !b.defaultSet {
		return fmt.Errorf("%w: default value was not set for key %q", ErrInvalidState, b.key)
	}
	return nil
}
