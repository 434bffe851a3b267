// FILE: lixenwraith/keyprop/errors.go
package keyprop

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match with errors.Is; returned errors wrap these with context.
var (
	// ErrConversion marks a value that exists but cannot be converted to the target type.
	// The tolerant path treats it as "absent at this source".
	ErrConversion = errors.New("conversion failed")

	// ErrNoValue marks a key that is legitimately absent from a single source.
	ErrNoValue = errors.New("no value")

	// ErrNotFound is returned when no source in the chain produced a value and no default exists.
	ErrNotFound = errors.New("value not found")

	// ErrNilValue is returned by ResolveNonNil when the resolved value is nil.
	ErrNilValue = errors.New("resolved value is nil")

	// ErrInvalidArgument covers nil sources, empty keys and nil converters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState is returned when a default-flavored property is built without a default.
	ErrInvalidState = errors.New("invalid state")

	// ErrAcquisition is returned when a Supplier fails to produce a configuration.
	ErrAcquisition = errors.New("configuration acquisition failed")

	// ErrSourceNotFound is returned by LoadFile when the file does not exist.
	ErrSourceNotFound = errors.New("configuration source not found")

	// ErrUnknownFormat is returned by LoadFile when the file format cannot be determined.
	ErrUnknownFormat = errors.New("unknown configuration format")

	// ErrArgsParse wraps command-line argument parsing failures.
	ErrArgsParse = errors.New("failed to parse command-line arguments")
)

// ConversionError describes a value that could not be converted for a key.
// It matches ErrConversion with errors.Is.
type ConversionError struct {
	Key    string
	Target string
	Value  any
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot convert %T %v to %s for key %q: %v", e.Value, e.Value, e.Target, e.Key, e.Err)
	}
	return fmt.Sprintf("cannot convert %T %v to %s for key %q", e.Value, e.Value, e.Target, e.Key)
}

func (e *ConversionError) Unwrap() error { return e.Err }

func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

// conversionError builds a *ConversionError for an accessor failure.
func conversionError(key, target string, value any, err error) error {
	return &ConversionError{Key: key, Target: target, Value: value, Err: err}
}

// noValue reports a missing or nil key at a single source.
func noValue(key string) error {
	return fmt.Errorf("%w for key %q", ErrNoValue, key)
}

// notFound reports an exhausted chain.
func notFound(key string, n int) error {
	return fmt.Errorf("%w: key %q in %d source(s)", ErrNotFound, key, n)
}

// noSources reports a zero-source call on a property without a default.
// It matches both ErrNotFound and ErrInvalidArgument.
func noSources(key string) error {
	return fmt.Errorf("%w: %w: no sources provided for key %q", ErrNotFound, ErrInvalidArgument, key)
}

// nilSource reports a nil element in a source chain.
func nilSource(i int) error {
	return fmt.Errorf("%w: source at index %d is nil", ErrInvalidArgument, i)
}
