// FILE: lixenwraith/keyprop/log_test.go
package keyprop

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	t.Cleanup(func() { SetLogger(zerolog.Nop()) })

	t.Run("SwallowedConversion", func(t *testing.T) {
		buf.Reset()
		p := OfIntDefault("timeout", 30).MustKeyDefaultProperty()
		_, err := p.Resolve(NewMapSource("user", map[string]any{"timeout": "oops"}))
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, `"key":"timeout"`)
		assert.Contains(t, out, `"source":0`)
		assert.Contains(t, out, "value skipped")
	})

	t.Run("Eviction", func(t *testing.T) {
		buf.Reset()
		c := NewCachable(OfInt("n").MustKeyProperty(), 1)
		_, _ = c.Resolve(intSource("a", 1))
		_, _ = c.Resolve(intSource("b", 2))
		assert.Contains(t, buf.String(), "evicted oldest cached source")
	})

	t.Run("LevelFilters", func(t *testing.T) {
		buf.Reset()
		SetLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))
		p := OfIntDefault("timeout", 30).MustKeyDefaultProperty()
		_, _ = p.Resolve(NewMapSource("user", map[string]any{"timeout": "oops"}))
		assert.Empty(t, buf.String())
	})
}
