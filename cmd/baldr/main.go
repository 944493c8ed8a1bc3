// Command baldr configures, builds and runs CMake projects.
package main

import (
	"fmt"
	"os"

	"github.com/baldr/baldr/pkg/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.NewCLI(version).Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error encountered: %v\n", err)
		os.Exit(1)
	}
}
