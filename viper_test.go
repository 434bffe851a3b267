// FILE: lixenwraith/keyprop/viper_test.go
package keyprop

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViperSource(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
server:
  host: viper.local
  port: 8080
`)))
	v.Set("server.port", "9090")

	src := NewViperSource(v)
	assert.Same(t, v, src.Viper())

	t.Run("Lookup", func(t *testing.T) {
		assert.True(t, src.ContainsKey("server.host"))
		assert.True(t, src.ContainsKey("server"))
		assert.False(t, src.ContainsKey("client.host"))

		_, ok := src.Get("client.host")
		assert.False(t, ok)
	})

	t.Run("OverrideWins", func(t *testing.T) {
		port, err := OfInt("server.port").MustKeyProperty().Resolve(src)
		require.NoError(t, err)
		assert.Equal(t, 9090, port)
	})

	t.Run("InChain", func(t *testing.T) {
		file := NewMapSource("file", map[string]any{"server.timeout": 45})
		timeout := OfIntDefault("server.timeout", 30).MustKeyDefaultProperty()

		got, err := timeout.Resolve(src, file)
		require.NoError(t, err)
		assert.Equal(t, 45, got)
	})

	t.Run("Section", func(t *testing.T) {
		type server struct {
			Host string `toml:"host"`
			Port int    `toml:"port"`
		}
		s, err := OfType[server]("server").MustKeyProperty().Resolve(src)
		require.NoError(t, err)
		assert.Equal(t, "viper.local", s.Host)
		assert.Equal(t, 9090, s.Port)
	})

	t.Run("Keys", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"server.host", "server.port"}, src.Keys())
	})
}
