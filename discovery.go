// FILE: lixenwraith/keyprop/discovery.go
package keyprop

import (
	"os"
	"path/filepath"
	"strings"
)

// DiscoveryOptions configures automatic config file discovery
type DiscoveryOptions struct {
	// Base name of config file (without extension)
	Name string

	// Extensions to try (in order)
	Extensions []string

	// Custom search paths, searched after the current and XDG directories
	Paths []string

	// Environment variable to check for explicit path
	EnvVar string

	// CLI flag to check (e.g., "--config")
	CLIFlag string

	// Args scanned for CLIFlag
	Args []string

	// Whether to search in XDG config directories
	UseXDG bool

	// Whether to search in current directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns sensible defaults
func DefaultDiscoveryOptions(appName string) DiscoveryOptions {
	return DiscoveryOptions{
		Name:          appName,
		Extensions:    []string{".toml", ".yaml", ".yml", ".json", ".env"},
		EnvVar:        strings.ToUpper(appName) + "_CONFIG",
		CLIFlag:       "--config",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// FindFile locates a configuration file. An explicit path from EnvVar or CLIFlag
// is returned as is, without checking it exists; otherwise the first existing
// Name+extension in the current directory, the XDG directories and Paths wins.
// Not finding a file is not an error: callers fall back to env and defaults.
func FindFile(opts DiscoveryOptions) (string, bool) {
	if path, ok := explicitPath(opts); ok {
		return path, true
	}

	for _, dir := range searchDirs(opts) {
		for _, ext := range opts.Extensions {
			path := filepath.Join(dir, opts.Name+ext)
			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}
			Logger().Debug().Str("path", path).Msg("configuration file discovered")
			return path, true
		}
	}
	return "", false
}

// explicitPath returns a path named by the environment or the argument list.
func explicitPath(opts DiscoveryOptions) (string, bool) {
	if opts.EnvVar != "" {
		if path := os.Getenv(opts.EnvVar); path != "" {
			return path, true
		}
	}
	if opts.CLIFlag == "" {
		return "", false
	}

	for i, arg := range opts.Args {
		if path, ok := strings.CutPrefix(arg, opts.CLIFlag+"="); ok && path != "" {
			return path, true
		}
		if arg == opts.CLIFlag && i+1 < len(opts.Args) {
			return opts.Args[i+1], true
		}
	}
	return "", false
}

func searchDirs(opts DiscoveryOptions) []string {
	var dirs []string
	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			dirs = append(dirs, cwd)
		}
	}
	if opts.UseXDG {
		dirs = append(dirs, xdgConfigPaths(opts.Name)...)
	}
	return append(dirs, opts.Paths...)
}

// xdgConfigPaths lists $XDG_CONFIG_HOME/app (or ~/.config/app) followed by
// each $XDG_CONFIG_DIRS entry, falling back to /etc/xdg/app and /etc/app.
func xdgConfigPaths(app string) []string {
	home := os.Getenv("XDG_CONFIG_HOME")
	if home == "" {
		if h := os.Getenv("HOME"); h != "" {
			home = filepath.Join(h, ".config")
		}
	}

	var paths []string
	if home != "" {
		paths = append(paths, filepath.Join(home, app))
	}

	system := filepath.SplitList(os.Getenv("XDG_CONFIG_DIRS"))
	if len(system) == 0 {
		system = []string{"/etc/xdg", "/etc"}
	}
	for _, dir := range system {
		if dir != "" {
			paths = append(paths, filepath.Join(dir, app))
		}
	}
	return paths
}
