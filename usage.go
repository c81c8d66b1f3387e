package deadnix

import "github.com/nix-community/deadnix-go/syntax"

// usage reports whether node's subtree references the identifier name,
// respecting inner scopes that shadow or re-inherit it.
func usage(src []byte, name string, node *syntax.Node) bool {
	if s, ok := ScopeFrom(node); ok {
		if s.InheritsFrom(src, name) {
			return true
		}
		for _, b := range s.Bindings(src) {
			if b.Name.Text(src) == name {
				return false // shadowed throughout this subtree
			}
		}
		for _, body := range s.Bodies() {
			if usage(src, name, body) {
				return true
			}
		}
		return false
	}

	switch node.Kind {
	case syntax.KindIdent:
		return node.Text(src) == name

	case syntax.KindAttrpath:
		for _, c := range node.Children() {
			switch c.Kind {
			case syntax.KindAttrDynamic, syntax.KindAttrString:
				if usage(src, name, c) {
					return true
				}
			}
		}
		return false
	}

	for _, c := range node.Children() {
		if usage(src, name, c) {
			return true
		}
	}
	return false
}
