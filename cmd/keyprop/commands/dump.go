// FILE: lixenwraith/keyprop/cmd/keyprop/commands/dump.go
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/keyprop"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the merged source chain as TOML",
	Long: `Merge every key of every source, the highest precedence source winning
per key, and print the result as a TOML document.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildChain()
		if err != nil {
			return err
		}
		return merge(c.sources).Dump(cmd.OutOrStdout())
	},
}

// merge flattens sources into one MapSource. Sources that cannot list their keys are skipped.
func merge(sources []keyprop.Source) *keyprop.MapSource {
	values := make(map[string]any)
	// Lowest precedence first so earlier sources overwrite
	for i := len(sources) - 1; i >= 0; i-- {
		lister, ok := sources[i].(interface{ Keys() []string })
		if !ok {
			keyprop.Logger().Warn().Str("source", fmt.Sprint(sources[i])).Msg("source cannot list keys, skipped")
			continue
		}
		for _, key := range lister.Keys() {
			if v, ok := sources[i].Get(key); ok {
				values[key] = v
			}
		}
	}
	return keyprop.NewMapSource("merged", values)
}
