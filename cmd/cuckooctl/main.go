// Command cuckooctl creates, mutates, and inspects serialized cuckoo
// filters from the command line, exercising the dimensioning, codec, and
// facade packages end to end (SPEC_FULL.md §6.5).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "cuckooctl",
		Short: "Create, mutate, and inspect cuckoo filter files",
	}

	root.AddCommand(createCmd())
	root.AddCommand(addCmd())
	root.AddCommand(containsCmd())
	root.AddCommand(removeCmd())
	root.AddCommand(inspectCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
