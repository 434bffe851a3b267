// FILE: lixenwraith/keyprop/type.go
package keyprop

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/spf13/cast"
)

// Typed accessors over a single Source. Each returns an ErrNoValue error when the
// key is missing or holds nil, and a *ConversionError when the stored value cannot
// be converted. These are the explicit converters the convenience builders use.

// lookup fetches a raw value, mapping missing and nil values to ErrNoValue.
func lookup(src Source, key string) (any, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrInvalidArgument)
	}
	val, found := src.Get(key)
	if !found || val == nil {
		return nil, noValue(key)
	}
	return val, nil
}

// String retrieves a string value.
func String(src Source, key string) (string, error) {
	val, err := lookup(src, key)
	if err != nil {
		return "", err
	}
	s, err := cast.ToStringE(val)
	if err != nil {
		return "", conversionError(key, "string", val, err)
	}
	return s, nil
}

// Bool retrieves a boolean value.
// Numbers convert as 0=false, non-zero=true; strings accept strconv.ParseBool forms.
func Bool(src Source, key string) (bool, error) {
	val, err := lookup(src, key)
	if err != nil {
		return false, err
	}
	b, err := cast.ToBoolE(val)
	if err != nil {
		return false, conversionError(key, "bool", val, err)
	}
	return b, nil
}

// Int retrieves an int value.
func Int(src Source, key string) (int, error) {
	val, err := lookup(src, key)
	if err != nil {
		return 0, err
	}
	if err := checkIntRange(val, math.MinInt, math.MaxInt); err != nil {
		return 0, conversionError(key, "int", val, err)
	}
	i, err := cast.ToIntE(normalizeNumber(val))
	if err != nil {
		return 0, conversionError(key, "int", val, err)
	}
	return i, nil
}

// Int64 retrieves an int64 value.
func Int64(src Source, key string) (int64, error) {
	val, err := lookup(src, key)
	if err != nil {
		return 0, err
	}
	if err := checkIntRange(val, math.MinInt64, math.MaxInt64); err != nil {
		return 0, conversionError(key, "int64", val, err)
	}
	i, err := cast.ToInt64E(normalizeNumber(val))
	if err != nil {
		return 0, conversionError(key, "int64", val, err)
	}
	return i, nil
}

// Float32 retrieves a float32 value.
func Float32(src Source, key string) (float32, error) {
	val, err := lookup(src, key)
	if err != nil {
		return 0, err
	}
	f, err := cast.ToFloat32E(normalizeNumber(val))
	if err != nil {
		return 0, conversionError(key, "float32", val, err)
	}
	return f, nil
}

// Float64 retrieves a float64 value.
func Float64(src Source, key string) (float64, error) {
	val, err := lookup(src, key)
	if err != nil {
		return 0, err
	}
	f, err := cast.ToFloat64E(normalizeNumber(val))
	if err != nil {
		return 0, conversionError(key, "float64", val, err)
	}
	return f, nil
}

// BigInt retrieves an arbitrary precision integer.
// Strings are parsed with base prefix detection ("0x", "0o", "0b").
func BigInt(src Source, key string) (*big.Int, error) {
	val, err := lookup(src, key)
	if err != nil {
		return nil, err
	}

	switch v := val.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case string, json.Number:
		s := strings.TrimSpace(fmt.Sprint(v))
		n, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return nil, conversionError(key, "big.Int", val, nil)
		}
		return n, nil
	case float32, float64:
		x := cast.ToFloat64(v)
		if math.IsNaN(x) {
			return nil, conversionError(key, "big.Int", val, fmt.Errorf("NaN is not an integer"))
		}
		f := new(big.Float).SetFloat64(x)
		if !f.IsInt() {
			return nil, conversionError(key, "big.Int", val, fmt.Errorf("%v is not integral", v))
		}
		n, _ := f.Int(nil)
		return n, nil
	}

	if err := checkIntRange(val, math.MinInt64, math.MaxInt64); err == nil {
		i, err := cast.ToInt64E(val)
		if err != nil {
			return nil, conversionError(key, "big.Int", val, err)
		}
		return big.NewInt(i), nil
	}
	// Unsigned values above MaxInt64 still fit a big.Int
	if rv := reflect.ValueOf(val); rv.CanUint() {
		return new(big.Int).SetUint64(rv.Uint()), nil
	}
	return nil, conversionError(key, "big.Int", val, nil)
}

// Decimal retrieves an arbitrary precision decimal.
func Decimal(src Source, key string) (*apd.Decimal, error) {
	val, err := lookup(src, key)
	if err != nil {
		return nil, err
	}

	switch v := val.(type) {
	case *apd.Decimal:
		return new(apd.Decimal).Set(v), nil
	case float32, float64:
		d, err := new(apd.Decimal).SetFloat64(cast.ToFloat64(v))
		if err != nil {
			return nil, conversionError(key, "decimal", val, err)
		}
		return d, nil
	case string, json.Number:
		d, _, err := apd.NewFromString(strings.TrimSpace(fmt.Sprint(v)))
		if err != nil {
			return nil, conversionError(key, "decimal", val, err)
		}
		return d, nil
	}

	i, err := cast.ToInt64E(val)
	if err != nil {
		return nil, conversionError(key, "decimal", val, err)
	}
	return apd.New(i, 0), nil
}

// Strings retrieves a string slice. A scalar string yields a single element;
// use OfList for delimiter-separated values.
func Strings(src Source, key string) ([]string, error) {
	val, err := lookup(src, key)
	if err != nil {
		return nil, err
	}
	if s, ok := val.(string); ok {
		return []string{s}, nil
	}
	ss, err := cast.ToStringSliceE(val)
	if err != nil {
		return nil, conversionError(key, "[]string", val, err)
	}
	return ss, nil
}

// Duration retrieves a time.Duration. Strings use time.ParseDuration syntax;
// bare numbers are nanoseconds.
func Duration(src Source, key string) (time.Duration, error) {
	val, err := lookup(src, key)
	if err != nil {
		return 0, err
	}
	d, err := cast.ToDurationE(normalizeNumber(val))
	if err != nil {
		return 0, conversionError(key, "duration", val, err)
	}
	return d, nil
}

// GetOr reads key with read and returns def on any error.
// It is the get-or-default counterpart of the typed accessors.
func GetOr[T any](src Source, key string, read func(Source, string) (T, error), def T) T {
	v, err := read(src, key)
	if err != nil {
		return def
	}
	return v
}

// StringOr is GetOr for String.
func StringOr(src Source, key, def string) string { return GetOr(src, key, String, def) }

// BoolOr is GetOr for Bool.
func BoolOr(src Source, key string, def bool) bool { return GetOr(src, key, Bool, def) }

// IntOr is GetOr for Int.
func IntOr(src Source, key string, def int) int { return GetOr(src, key, Int, def) }

// Float64Or is GetOr for Float64.
func Float64Or(src Source, key string, def float64) float64 { return GetOr(src, key, Float64, def) }

// checkIntRange rejects numbers cast would silently wrap when narrowing to [lo, hi].
// Other kinds pass through for cast to handle.
func checkIntRange(val any, lo, hi int64) error {
	rv := reflect.ValueOf(val)
	switch {
	case rv.CanInt():
		if i := rv.Int(); i < lo || i > hi {
			return fmt.Errorf("%d overflows range [%d, %d]", i, lo, hi)
		}
	case rv.CanUint():
		if u := rv.Uint(); u > uint64(hi) {
			return fmt.Errorf("unsigned %d overflows %d", u, hi)
		}
	case rv.CanFloat():
		// -float64(lo) is exactly 2^(bits-1), the first value past hi
		if f := rv.Float(); math.IsNaN(f) || f < float64(lo) || f >= -float64(lo) {
			return fmt.Errorf("%v overflows range [%d, %d]", f, lo, hi)
		}
	}
	return nil
}

// normalizeNumber unwraps json.Number, which LoadFile produces for JSON documents.
func normalizeNumber(val any) any {
	if n, ok := val.(json.Number); ok {
		return n.String()
	}
	return val
}
