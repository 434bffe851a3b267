// FILE: lixenwraith/keyprop/cmd/keyprop/commands/get.go
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/keyprop"
)

var (
	valueType  string
	defaultVal string
	watch      bool
)

var getCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Resolve one key and print its value",
	Long: `Resolve KEY across the source chain and print the typed value.

A value that cannot be converted to --type at one source is skipped and the
next source is consulted. Without --default, a key no source can produce is an error.

Examples:
  keyprop get server.timeout --type int --default 30 -f app.toml --env-prefix APP
  keyprop get features --type set -f app.yaml --set features="a;b;a"
  keyprop get server.timeout --type duration -f app.toml --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVarP(&valueType, "type", "t", "string", "Value type (string|bool|int|float|bigint|decimal|duration|list|set)")
	getCmd.Flags().StringVarP(&defaultVal, "default", "d", "", "Default value, parsed as --type")
	getCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-resolve and print whenever a configuration file changes")
}

func runGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	r, err := newResolver(key, valueType, defaultVal, cmd.Flags().Changed("default"))
	if err != nil {
		return err
	}

	c, err := buildChain()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	show := func() {
		v, err := r.resolve(c.sources...)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
			return
		}
		fmt.Fprintln(out, v)
	}

	if !watch {
		v, err := r.resolve(c.sources...)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, v)
		return nil
	}

	if len(c.suppliers) == 0 {
		return fmt.Errorf("--watch requires a configuration file")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	changes, err := watchAll(ctx, c.suppliers)
	if err != nil {
		return err
	}

	show()
	for path := range changes {
		keyprop.Logger().Info().Str("path", path).Msg("configuration changed")
		r.purge()
		show()
	}
	return nil
}

// watchAll fans in change notifications from every file supplier.
// The returned channel closes once ctx ends and all watchers have stopped.
func watchAll(ctx context.Context, suppliers []*keyprop.FileSupplier) (<-chan string, error) {
	merged := make(chan string)
	var wg sync.WaitGroup

	for _, s := range suppliers {
		ch, err := s.Watch(ctx, keyprop.DefaultWatchOptions())
		if err != nil {
			return nil, err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range ch {
				select {
				case merged <- path:
				case <-ctx.Done():
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(merged)
	}()
	return merged, nil
}

// resolver is a typed property erased to string output.
type resolver struct {
	resolve func(sources ...keyprop.Source) (string, error)
	purge   func()
}

func newResolver(key, typ, def string, hasDefault bool) (*resolver, error) {
	switch strings.ToLower(typ) {
	case "string":
		return typed(key, def, hasDefault, keyprop.String)
	case "bool":
		return typed(key, def, hasDefault, keyprop.Bool)
	case "int":
		return typed(key, def, hasDefault, keyprop.Int64)
	case "float":
		return typed(key, def, hasDefault, keyprop.Float64)
	case "bigint":
		return typed(key, def, hasDefault, keyprop.BigInt)
	case "decimal":
		return typed(key, def, hasDefault, keyprop.Decimal)
	case "duration":
		return typed(key, def, hasDefault, keyprop.Duration)
	case "list":
		p, err := keyprop.OfList(key, def)
		if err != nil {
			return nil, err
		}
		return fromProperty(p, joinList), nil
	case "set":
		p, err := keyprop.OfSet(key, def)
		if err != nil {
			return nil, err
		}
		return fromProperty(p, joinList), nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", keyprop.ErrInvalidArgument, typ)
	}
}

// typed builds a cachable property reading with read. The default string is
// parsed with the same accessor as configuration values.
func typed[T any](key, def string, hasDefault bool, read func(keyprop.Source, string) (T, error)) (*resolver, error) {
	conv := keyprop.KeyConverter(key, read)

	if !hasDefault {
		p, err := keyprop.NewBuilder(key, conv).WithCachable(true).ToKeyProperty()
		if err != nil {
			return nil, err
		}
		return fromProperty(p, func(v T) string { return fmt.Sprint(v) }), nil
	}

	defValue, err := read(keyprop.NewMapSource("default", map[string]any{key: def}), key)
	if err != nil {
		return nil, fmt.Errorf("invalid --default %q: %w", def, err)
	}
	p, err := keyprop.OfDefault(key, defValue, conv).WithCachable(true).ToKeyDefaultProperty()
	if err != nil {
		return nil, err
	}
	return fromProperty(p, func(v T) string { return fmt.Sprint(v) }), nil
}

func fromProperty[T any](p keyprop.Property[T], format func(T) string) *resolver {
	r := &resolver{
		resolve: func(sources ...keyprop.Source) (string, error) {
			v, err := p.Resolve(sources...)
			if err != nil {
				return "", err
			}
			return format(v), nil
		},
		purge: func() {},
	}
	if c, ok := p.(interface{ Purge() }); ok {
		r.purge = c.Purge
	}
	return r
}

func joinList(v []string) string {
	return strings.Join(v, keyprop.ListDelim)
}
