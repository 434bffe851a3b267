// FILE: lixenwraith/keyprop/cmd/keyprop/main.go
// Command keyprop resolves configuration keys across files, environment and overrides.
package main

import (
	"fmt"
	"os"

	"github.com/lixenwraith/keyprop/cmd/keyprop/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
