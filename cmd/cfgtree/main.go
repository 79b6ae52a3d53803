// FILE: lixenwraith/cfgtree/cmd/cfgtree/main.go

// Command cfgtree reads, edits, converts and validates configuration files
// in JSON, TOML, YAML and CBOR.
package main

import (
	"os"
)

// version is set at build time
var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
