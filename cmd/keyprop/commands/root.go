// FILE: lixenwraith/keyprop/cmd/keyprop/commands/root.go
// Package commands provides the CLI commands for keyprop.
package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lixenwraith/keyprop"
)

// Version information set at build time
var Version = "0.1.0"

// Global flags
var (
	logLevel  string
	files     []string
	envPrefix string
	overrides []string
)

var rootCmd = &cobra.Command{
	Use:   "keyprop",
	Short: "Resolve typed configuration keys across ordered sources",
	Long: `keyprop reads configuration from override flags, environment variables
and files, in that order of precedence, and resolves typed values for keys.

With no --file, $KEYPROP_CONFIG is used, or a keyprop.{toml,yaml,yml,json,env}
file is discovered in the current directory, $XDG_CONFIG_HOME/keyprop and /etc/keyprop.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringArrayVarP(&files, "file", "f", nil, "Configuration file, repeatable, earlier files take precedence")
	rootCmd.PersistentFlags().StringVar(&envPrefix, "env-prefix", "", "Read environment variables with this prefix (APP reads APP_SERVER_PORT as server.port)")
	rootCmd.PersistentFlags().StringArrayVar(&overrides, "set", nil, "Override key=value, repeatable, highest precedence")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(dumpCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initLogger routes library logs to a console writer on stderr.
func initLogger(level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
	keyprop.SetLogger(logger)
	return nil
}

// chain holds the sources built from the global flags, highest precedence first.
type chain struct {
	sources   []keyprop.Source
	suppliers []*keyprop.FileSupplier
}

// buildChain assembles overrides, environment and files into a source chain.
// Files are read through caching suppliers so edits are picked up on the next resolve.
func buildChain() (*chain, error) {
	c := &chain{}

	if len(overrides) > 0 {
		v := viper.New()
		for _, kv := range overrides {
			key, value, ok := strings.Cut(kv, "=")
			if !ok || strings.TrimSpace(key) == "" {
				return nil, fmt.Errorf("%w: override %q is not key=value", keyprop.ErrInvalidArgument, kv)
			}
			v.Set(strings.TrimSpace(key), value)
		}
		c.sources = append(c.sources, keyprop.NewViperSource(v))
	}

	if envPrefix != "" {
		c.sources = append(c.sources, keyprop.LoadEnv(envPrefix))
	}

	paths := files
	if len(paths) == 0 {
		opts := keyprop.DefaultDiscoveryOptions("keyprop")
		opts.CLIFlag = "" // -f is handled by cobra
		if path, ok := keyprop.FindFile(opts); ok {
			paths = []string{path}
		}
	}

	for _, path := range paths {
		supplier := keyprop.NewFileSupplier(path)
		// Fail early on a missing or unreadable file instead of resolving against an empty source
		if _, err := supplier.Configuration(); err != nil {
			return nil, err
		}
		c.suppliers = append(c.suppliers, supplier)
		c.sources = append(c.sources, keyprop.OfSupplierCached(supplier))
	}

	return c, nil
}
