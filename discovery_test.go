// FILE: lixenwraith/keyprop/discovery_test.go
package keyprop

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())

	t.Run("EnvVar", func(t *testing.T) {
		t.Setenv("MYAPP_CONFIG", "/explicit/path.toml")
		path, ok := FindFile(DefaultDiscoveryOptions("myapp"))
		assert.True(t, ok)
		assert.Equal(t, "/explicit/path.toml", path)
	})

	t.Run("CLIFlag", func(t *testing.T) {
		opts := DefaultDiscoveryOptions("myapp")
		opts.EnvVar = ""

		opts.Args = []string{"--verbose", "--config", "/from/flag.yaml"}
		path, ok := FindFile(opts)
		assert.True(t, ok)
		assert.Equal(t, "/from/flag.yaml", path)

		opts.Args = []string{"--config=/from/equals.yaml"}
		path, ok = FindFile(opts)
		assert.True(t, ok)
		assert.Equal(t, "/from/equals.yaml", path)
	})

	t.Run("CurrentDir", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		writeFile(t, dir, "myapp.yaml", "a: 1\n")

		opts := DefaultDiscoveryOptions("myapp")
		opts.EnvVar = ""
		path, ok := FindFile(opts)
		assert.True(t, ok)
		assert.Equal(t, "myapp.yaml", filepath.Base(path))
	})

	t.Run("ExtensionOrder", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "myapp.json", "{}")
		writeFile(t, dir, "myapp.toml", "")

		opts := DefaultDiscoveryOptions("myapp")
		opts.EnvVar = ""
		opts.UseCurrentDir = false
		opts.Paths = []string{dir}
		path, ok := FindFile(opts)
		assert.True(t, ok)
		assert.Equal(t, filepath.Join(dir, "myapp.toml"), path)
	})

	t.Run("XDG", func(t *testing.T) {
		xdg := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", xdg)
		writeFile(t, makeDir(t, filepath.Join(xdg, "myapp")), "myapp.toml", "")

		opts := DefaultDiscoveryOptions("myapp")
		opts.EnvVar = ""
		opts.UseCurrentDir = false
		path, ok := FindFile(opts)
		assert.True(t, ok)
		assert.Equal(t, filepath.Join(xdg, "myapp", "myapp.toml"), path)
	})

	t.Run("NotFound", func(t *testing.T) {
		opts := DefaultDiscoveryOptions("myapp-none")
		opts.EnvVar = ""
		opts.UseCurrentDir = false
		opts.UseXDG = false
		opts.Paths = []string{t.TempDir()}
		_, ok := FindFile(opts)
		assert.False(t, ok)
	})
}

func makeDir(t *testing.T, dir string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	return dir
}
