// FILE: lixenwraith/keyprop/convenience.go
package keyprop

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Typed builders without a default. Build with ToKeyProperty.

// OfBool creates a builder reading a bool.
func OfBool(key string) Builder[bool] { return NewBuilder(key, KeyConverter(key, Bool)) }

// OfString creates a builder reading a string.
func OfString(key string) Builder[string] { return NewBuilder(key, KeyConverter(key, String)) }

// OfInt creates a builder reading an int.
func OfInt(key string) Builder[int] { return NewBuilder(key, KeyConverter(key, Int)) }

// OfInt64 creates a builder reading an int64.
func OfInt64(key string) Builder[int64] { return NewBuilder(key, KeyConverter(key, Int64)) }

// OfFloat32 creates a builder reading a float32.
func OfFloat32(key string) Builder[float32] { return NewBuilder(key, KeyConverter(key, Float32)) }

// OfFloat64 creates a builder reading a float64.
func OfFloat64(key string) Builder[float64] { return NewBuilder(key, KeyConverter(key, Float64)) }

// OfBigInt creates a builder reading an arbitrary precision integer.
func OfBigInt(key string) Builder[*big.Int] { return NewBuilder(key, KeyConverter(key, BigInt)) }

// OfDecimal creates a builder reading an arbitrary precision decimal.
func OfDecimal(key string) Builder[*apd.Decimal] {
	return NewBuilder(key, KeyConverter(key, Decimal))
}

// OfStrings creates a builder reading a string slice.
func OfStrings(key string) Builder[[]string] { return NewBuilder(key, KeyConverter(key, Strings)) }

// OfDuration creates a builder reading a time.Duration.
func OfDuration(key string) Builder[time.Duration] {
	return NewBuilder(key, KeyConverter(key, Duration))
}

// OfType creates a builder decoding the value (or section) at key into T.
func OfType[T any](key string) Builder[T] { return NewBuilder(key, KeyConverter(key, Decode[T])) }

// Typed builders with a default. Build with ToKeyDefaultProperty.

// OfBoolDefault creates a builder reading a bool with fallback def.
func OfBoolDefault(key string, def bool) Builder[bool] {
	return OfDefault(key, def, KeyConverter(key, Bool))
}

// OfStringDefault creates a builder reading a string with fallback def.
func OfStringDefault(key, def string) Builder[string] {
	return OfDefault(key, def, KeyConverter(key, String))
}

// OfIntDefault creates a builder reading an int with fallback def.
func OfIntDefault(key string, def int) Builder[int] {
	return OfDefault(key, def, KeyConverter(key, Int))
}

// OfInt64Default creates a builder reading an int64 with fallback def.
func OfInt64Default(key string, def int64) Builder[int64] {
	return OfDefault(key, def, KeyConverter(key, Int64))
}

// OfFloat32Default creates a builder reading a float32 with fallback def.
func OfFloat32Default(key string, def float32) Builder[float32] {
	return OfDefault(key, def, KeyConverter(key, Float32))
}

// OfFloat64Default creates a builder reading a float64 with fallback def.
func OfFloat64Default(key string, def float64) Builder[float64] {
	return OfDefault(key, def, KeyConverter(key, Float64))
}

// OfBigIntDefault creates a builder reading an arbitrary precision integer with fallback def.
func OfBigIntDefault(key string, def *big.Int) Builder[*big.Int] {
	return OfDefault(key, def, KeyConverter(key, BigInt))
}

// OfDecimalDefault creates a builder reading an arbitrary precision decimal with fallback def.
func OfDecimalDefault(key string, def *apd.Decimal) Builder[*apd.Decimal] {
	return OfDefault(key, def, KeyConverter(key, Decimal))
}

// OfStringsDefault creates a builder reading a string slice with fallback def.
func OfStringsDefault(key string, def []string) Builder[[]string] {
	return OfDefault(key, def, KeyConverter(key, Strings))
}

// OfDurationDefault creates a builder reading a time.Duration with fallback def.
func OfDurationDefault(key string, def time.Duration) Builder[time.Duration] {
	return OfDefault(key, def, KeyConverter(key, Duration))
}

// OfTypeDefault creates a builder decoding into T with fallback def.
func OfTypeDefault[T any](key string, def T) Builder[T] {
	return OfDefault(key, def, KeyConverter(key, Decode[T]))
}

// Derived properties. These are cachable default string properties mapped
// through a parser, so the parsed result is what gets memoized.

// OfList reads a ListDelim-separated list. def uses the same syntax.
func OfList(key, def string) (DefaultProperty[[]string], error) {
	return OfListDelim(key, ListDelim, def)
}

// OfListDelim reads a list split on any rune of delims.
// Tokens are trimmed and blank tokens dropped.
func OfListDelim(key, delims, def string) (DefaultProperty[[]string], error) {
	if delims == "" {
		return nil, fmt.Errorf("%w: list delimiter for key %q cannot be empty", ErrInvalidArgument, key)
	}
	p, err := OfStringDefault(key, def).ToCachableDefaultProperty()
	if err != nil {
		return nil, err
	}
	return MapDefault[string, []string](p, func(s string) []string {
		return splitTokens(s, delims)
	}), nil
}

// OfSet reads a ListDelim-separated set, keeping first-seen order.
func OfSet(key, def string) (DefaultProperty[[]string], error) {
	return OfSetDelim(key, ListDelim, def)
}

// OfSetDelim is OfListDelim with duplicates removed.
func OfSetDelim(key, delims, def string) (DefaultProperty[[]string], error) {
	list, err := OfListDelim(key, delims, def)
	if err != nil {
		return nil, err
	}
	return MapDefault(list, uniqueTokens), nil
}

// EnumMatch returns the value whose String() equals name, ignoring case.
func EnumMatch[E fmt.Stringer](values []E, name string) (E, bool) {
	for _, v := range values {
		if strings.EqualFold(v.String(), name) {
			return v, true
		}
	}
	var zero E
	return zero, false
}

// OfEnum reads one of values by name, ignoring case. An unknown name is logged
// and resolves to def. def is always a candidate even when absent from values.
func OfEnum[E fmt.Stringer](key string, def E, values ...E) (DefaultProperty[E], error) {
	candidates := append([]E{def}, values...)
	p, err := OfStringDefault(key, def.String()).ToCachableDefaultProperty()
	if err != nil {
		return nil, err
	}
	return MapDefault[string, E](p, func(name string) E {
		if v, ok := EnumMatch(candidates, name); ok {
			return v
		}
		Logger().Error().Str("key", key).Str("name", name).Str("default", def.String()).Msg("unknown enum name")
		return def
	}), nil
}

// OfEnums reads a ListDelim-separated set of names mapped onto values.
// Unknown names are logged and dropped. defaults is the set used when no source has the key.
func OfEnums[E fmt.Stringer](key string, values []E, defaults ...E) (DefaultProperty[[]E], error) {
	names := make([]string, len(defaults))
	for i, d := range defaults {
		names[i] = d.String()
	}

	set, err := OfSet(key, strings.Join(names, ListDelim))
	if err != nil {
		return nil, err
	}

	candidates := append(append([]E{}, values...), defaults...)
	return MapDefault(set, func(names []string) []E {
		matched := make([]E, 0, len(names))
		for _, name := range names {
			v, ok := EnumMatch(candidates, name)
			if !ok {
				Logger().Error().Str("key", key).Str("name", name).Msg("unknown enum name")
				continue
			}
			matched = append(matched, v)
		}
		return matched
	}), nil
}
