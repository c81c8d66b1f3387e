// Command deadnix is the CLI front end for the dead-code analyzer (spec
// §6), wired the way cuelang.org/go/cmd/cue/cmd builds its root command:
// a single cobra.Command with flag-bound options and an Execute-then-exit
// shape in main.
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
