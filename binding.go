// Package deadnix finds (and can describe the removal of) unused variable
// bindings in Nix expressions: lambda arguments and patterns, let-in
// entries, and inherit clauses. Recursive attribute sets are tracked as
// scopes, but their members are never reported.
package deadnix

import "github.com/nix-community/deadnix-go/syntax"

// Binding identifies one declared name. It is immutable once constructed.
//
// DeclNode is the smallest CST node that can be deleted to remove the
// binding entirely: the pattern entry, the let/rec attrpath-value entry,
// the lambda's identifier argument, the pattern's @-bind, or, for an
// inherited name, the whole inherit clause (shared by every name that
// clause lists). Two Bindings from the same analysis pass are the same
// declaration iff DeclNode and Name.Text agree — DeclNode identity is
// node-pointer identity, never structural equality.
type Binding struct {
	Name     *syntax.Node // the identifier node backing this declaration
	DeclNode *syntax.Node
	Mortal   bool
}

// Key returns the (DeclNode, name text) identity pair used to deduplicate
// and to index the analyzer's working set.
func (b Binding) Key(src []byte) bindingKey {
	return bindingKey{node: b.DeclNode, name: b.Name.Text(src)}
}

type bindingKey struct {
	node *syntax.Node
	name string
}

// NameText returns the binding's declared name.
func (b Binding) NameText(src []byte) string { return b.Name.Text(src) }
