// FILE: lixenwraith/keyprop/convert.go
package keyprop

import (
	"errors"
	"fmt"
)

// Converter reads a typed value from a single Source.
// It must be stateless. A failed conversion is reported as an error matching
// ErrConversion and a legitimately absent value as an error matching ErrNoValue;
// anything else is treated as a programming or acquisition error.
type Converter[T any] func(src Source) (T, error)

// KeyConverter adapts a typed accessor such as Int or String to a Converter for key.
func KeyConverter[T any](key string, read func(Source, string) (T, error)) Converter[T] {
	return func(src Source) (T, error) {
		return read(src, key)
	}
}

// Convert applies the converter explicitly, surfacing every error to the caller.
func (c Converter[T]) Convert(src Source) (T, error) {
	if src == nil {
		var zero T
		return zero, fmt.Errorf("%w: nil source", ErrInvalidArgument)
	}
	return c(src)
}

// Apply is the tolerant form of Convert. Conversion failures, absent values and
// nil results report (zero, false, nil); any other error is returned unchanged.
func (c Converter[T]) Apply(src Source) (T, bool, error) {
	v, ok, _, err := c.tolerate(src)
	return v, ok, err
}

// tolerate is Apply that also hands back the swallowed error, if any, for logging.
func (c Converter[T]) tolerate(src Source) (v T, ok bool, swallowed error, err error) {
	var zero T
	v, err = c.Convert(src)
	if err != nil {
		if isTolerated(err) {
			return zero, false, err, nil
		}
		return zero, false, nil, err
	}
	if isNil(v) {
		return zero, false, nil, nil
	}
	return v, true, nil, nil
}

// isTolerated reports whether err degrades to "absent" on the tolerant path.
func isTolerated(err error) bool {
	return errors.Is(err, ErrConversion) || errors.Is(err, ErrNoValue)
}
