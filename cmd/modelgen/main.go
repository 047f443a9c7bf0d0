// Command modelgen generates SQL, Go, Java, TypeScript, translation and
// GraphQL sources from YAML model files, and imports models from existing
// databases.
//
//	modelgen generate --watch
//	modelgen check
//	modelgen import --config shop/modelgen.yaml
package main

import (
	"os"

	"github.com/fatih/color"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
