// FILE: lixenwraith/keyprop/cache_test.go
package keyprop

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intSource(name string, v any) *MapSource {
	return NewMapSource(name, map[string]any{"n": v})
}

func TestCachable(t *testing.T) {
	t.Run("Idempotent", func(t *testing.T) {
		var calls atomic.Int32
		c := NewCachable(NewProperty("n", countingIntConverter("n", &calls)), 0)
		src := intSource("a", 7)

		for range 3 {
			v, err := c.Resolve(src)
			require.NoError(t, err)
			assert.Equal(t, 7, v)
		}
		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, 1, c.Len())
		assert.Equal(t, DefaultMaxCacheSize, c.MaxSize())
	})

	t.Run("KeyedByIdentity", func(t *testing.T) {
		var calls atomic.Int32
		c := NewCachable(NewProperty("n", countingIntConverter("n", &calls)), 0)

		_, err := c.Resolve(intSource("a", 7))
		require.NoError(t, err)
		_, err = c.Resolve(intSource("a", 7))
		require.NoError(t, err)

		assert.Equal(t, int32(2), calls.Load(), "equal content in distinct sources is not shared")
		assert.Equal(t, 2, c.Len())
	})

	t.Run("ErrorsNotCached", func(t *testing.T) {
		var calls atomic.Int32
		c := NewCachable(NewProperty("n", countingIntConverter("n", &calls)), 0)
		src := intSource("a", "bad")

		_, err := c.Resolve(src)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = c.Resolve(src)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, int32(2), calls.Load())
		assert.Zero(t, c.Len())
	})

	t.Run("ExplicitAndTolerantBypassCache", func(t *testing.T) {
		var calls atomic.Int32
		c := NewCachable(NewProperty("n", countingIntConverter("n", &calls)), 0)
		src := intSource("a", 3)

		_, err := c.ExplicitResolve(src)
		require.NoError(t, err)
		_, _, err = c.TolerantResolve(src)
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
		assert.Zero(t, c.Len())
	})
}

func TestCachableFIFO(t *testing.T) {
	t.Run("EvictsAtMaxPlusOne", func(t *testing.T) {
		var calls atomic.Int32
		c := NewCachable(NewProperty("n", countingIntConverter("n", &calls)), 2)
		s1, s2, s3 := intSource("1", 1), intSource("2", 2), intSource("3", 3)

		for _, s := range []Source{s1, s2, s3} {
			_, err := c.Resolve(s)
			require.NoError(t, err)
		}
		assert.Equal(t, 2, c.Len())
		assert.Equal(t, int32(3), calls.Load())

		// s3 is still cached, s1 was evicted
		_, err := c.Resolve(s3)
		require.NoError(t, err)
		assert.Equal(t, int32(3), calls.Load())

		v, err := c.Resolve(s1)
		require.NoError(t, err)
		assert.Equal(t, 1, v)
		assert.Equal(t, int32(4), calls.Load())
		assert.Equal(t, 2, c.Len())
	})

	t.Run("InsertionOrderNotAccess", func(t *testing.T) {
		var calls atomic.Int32
		c := NewCachable(NewProperty("n", countingIntConverter("n", &calls)), 2)
		s1, s2, s3 := intSource("1", 1), intSource("2", 2), intSource("3", 3)

		_, _ = c.Resolve(s1)
		_, _ = c.Resolve(s2)
		_, _ = c.Resolve(s1) // read does not refresh s1
		_, _ = c.Resolve(s3)
		require.Equal(t, int32(3), calls.Load())

		_, _ = c.Resolve(s2)
		assert.Equal(t, int32(3), calls.Load(), "s2 survives")
		_, _ = c.Resolve(s1)
		assert.Equal(t, int32(4), calls.Load(), "s1 was evicted first")
	})
}

func TestCachableMultiSource(t *testing.T) {
	t.Run("AttributesToProducingSource", func(t *testing.T) {
		var calls atomic.Int32
		c := NewCachable(NewProperty("n", countingIntConverter("n", &calls)), 0)
		a := NewMapSource("a", map[string]any{"other": 1})
		b := intSource("b", 42)

		v, err := c.Resolve(a, b)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.Equal(t, 1, c.Len())
		afterMiss := calls.Load()

		v, err = c.Resolve(b)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.Equal(t, afterMiss, calls.Load(), "b alone hits the attributed entry")

		other := NewMapSource("other", map[string]any{})
		v, err = c.Resolve(other, b)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.Equal(t, afterMiss, calls.Load(), "any cached chain member is a hit")
	})

	t.Run("SkipsUnconvertibleSource", func(t *testing.T) {
		var calls atomic.Int32
		c := NewCachable(NewProperty("n", countingIntConverter("n", &calls)), 0)
		bad := intSource("bad", "oops")
		good := intSource("good", 5)

		v, err := c.Resolve(bad, good)
		require.NoError(t, err)
		assert.Equal(t, 5, v)
		assert.Equal(t, 1, c.Len())

		before := calls.Load()
		_, err = c.Resolve(good)
		require.NoError(t, err)
		assert.Equal(t, before, calls.Load())
	})

	t.Run("DefaultAttributesNothing", func(t *testing.T) {
		c := NewCachableDefault(OfIntDefault("n", 30).MustKeyDefaultProperty(), 0)

		v, err := c.Resolve(EmptySource(), NewMapSource("x", map[string]any{"n": "oops"}))
		require.NoError(t, err)
		assert.Equal(t, 30, v)
		assert.Zero(t, c.Len())
		assert.Equal(t, 30, c.Default())
	})

	t.Run("NilSourceBeatsCacheHit", func(t *testing.T) {
		c := NewCachable(OfInt("n").MustKeyProperty(), 0)
		src := intSource("a", 1)
		_, err := c.Resolve(src)
		require.NoError(t, err)

		_, err = c.Resolve(src, nil)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestCachableEmptySlot(t *testing.T) {
	var calls atomic.Int32
	conv := Converter[string](func(src Source) (string, error) {
		calls.Add(1)
		return String(src, "lang")
	})
	c := NewCachableDefault(OfDefault("lang", "en", conv).MustKeyDefaultProperty(), 1)

	for range 3 {
		v, err := c.Resolve()
		require.NoError(t, err)
		assert.Equal(t, "en", v)
	}
	assert.Zero(t, calls.Load())

	// Filling the table does not evict the empty slot
	_, _ = c.Resolve(NewMapSource("a", map[string]any{"lang": "de"}))
	_, _ = c.Resolve(NewMapSource("b", map[string]any{"lang": "fr"}))
	assert.Equal(t, 1, c.Len())

	v, err := c.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "en", v)

	t.Run("NoDefault", func(t *testing.T) {
		nd := NewCachable(OfString("lang").MustKeyProperty(), 0)
		_, err := nd.Resolve()
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = nd.Resolve()
		assert.ErrorIs(t, err, ErrNotFound, "errors are not stored in the empty slot")
	})
}

func TestCachablePurge(t *testing.T) {
	var calls atomic.Int32
	c := NewCachable(NewProperty("n", countingIntConverter("n", &calls)), 0)
	src := intSource("a", 1)

	_, _ = c.Resolve(src)
	_, _ = c.Resolve(src)
	require.Equal(t, int32(1), calls.Load())

	c.Purge()
	assert.Zero(t, c.Len())

	_, _ = c.Resolve(src)
	assert.Equal(t, int32(2), calls.Load())
}

// uncomparableSource is a value type holding a map, so it cannot be a map key.
type uncomparableSource struct {
	values map[string]any
}

func (s uncomparableSource) ContainsKey(key string) bool { _, ok := s.values[key]; return ok }
func (s uncomparableSource) Get(key string) (any, bool)  { v, ok := s.values[key]; return v, ok }

// boxedSource is comparable by type, but not when v holds a slice or map.
type boxedSource struct {
	v any
}

func (s boxedSource) ContainsKey(key string) bool { return key == "n" }
func (s boxedSource) Get(key string) (any, bool) {
	if key != "n" {
		return nil, false
	}
	return 7, true
}

func TestCachableUncomparableSource(t *testing.T) {
	t.Run("DynamicValue", func(t *testing.T) {
		var calls atomic.Int32
		c := NewCachable(NewProperty("n", countingIntConverter("n", &calls)), 0)
		src := boxedSource{v: []int{1}}

		for range 2 {
			v, err := c.Resolve(src)
			require.NoError(t, err)
			assert.Equal(t, 7, v)
		}
		assert.Equal(t, int32(2), calls.Load())
		assert.Zero(t, c.Len())

		v, err := c.Resolve(boxedSource{v: map[string]int{}}, intSource("b", 9))
		require.NoError(t, err)
		assert.Equal(t, 7, v)
		assert.Zero(t, c.Len())
	})

	t.Run("ComparableValueCached", func(t *testing.T) {
		var calls atomic.Int32
		c := NewCachable(NewProperty("n", countingIntConverter("n", &calls)), 0)
		src := boxedSource{v: 1}

		for range 2 {
			_, err := c.Resolve(src)
			require.NoError(t, err)
		}
		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, 1, c.Len())
	})


	var calls atomic.Int32
	c := NewCachable(NewProperty("n", countingIntConverter("n", &calls)), 0)
	src := uncomparableSource{values: map[string]any{"n": 4}}

	for range 2 {
		v, err := c.Resolve(src)
		require.NoError(t, err)
		assert.Equal(t, 4, v)
	}
	assert.Equal(t, int32(2), calls.Load())
	assert.Zero(t, c.Len())

	v, err := c.Resolve(src, intSource("b", 9))
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}

func TestCachableConcurrent(t *testing.T) {
	const maxSize = 5
	c := NewCachable(OfInt("n").MustKeyProperty(), maxSize)

	sources := make([]*MapSource, 20)
	for i := range sources {
		sources[i] = intSource(strconv.Itoa(i), i)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for g := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				idx := (g + i) % len(sources)
				v, err := c.Resolve(sources[idx])
				if err != nil {
					errs <- err
					return
				}
				if v != idx {
					errs <- fmt.Errorf("source %d resolved to %d", idx, v)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.LessOrEqual(t, c.Len(), maxSize)
}

func TestCachableMap(t *testing.T) {
	var fnCalls atomic.Int32
	c := NewCachable(OfInt("n").MustKeyProperty(), 3)

	m := Map[int, string](c, func(v int) string {
		fnCalls.Add(1)
		return strconv.Itoa(v * 2)
	})

	mc, ok := m.(*Cachable[string])
	require.True(t, ok, "mapping a cachable rewraps it")
	assert.Equal(t, 3, mc.MaxSize())

	src := intSource("a", 21)
	for range 3 {
		v, err := m.Resolve(src)
		require.NoError(t, err)
		assert.Equal(t, "42", v)
	}
	assert.Equal(t, int32(1), fnCalls.Load(), "transformed value is memoized")
}
