// Command yogan-boot brings up the framework components described by a config
// directory and keeps them running until interrupted.
package main

import (
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs"
)

// version is set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
