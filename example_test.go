package deadnix_test

import (
	"fmt"

	"github.com/nix-community/deadnix-go"
	"github.com/nix-community/deadnix-go/syntax"
)

// Example mirrors the library's canonical entry point: parse a file, run
// the analyzer over the resulting tree, and report the unused bindings it
// finds.
func Example() {
	content := []byte(`
    let
      foo = {};
      inherit (foo) bar baz;
    in baz
`)

	tree, errs := syntax.Parse(content)
	if len(errs) > 0 {
		panic(errs[0])
	}

	results := deadnix.Settings{}.FindDeadCode(tree)
	for _, r := range results {
		fmt.Printf("unused binding: %s\n", r.Binding.NameText(content))
	}
	// Output: unused binding: bar
}
