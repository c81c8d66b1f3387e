package deadnix

import (
	"strings"

	"github.com/nix-community/deadnix-go/syntax"
)

// ScopeKind tags which syntactic construct a Scope was built from.
type ScopeKind string

const (
	ScopeLambdaArg     ScopeKind = "lambda_arg"
	ScopeLambdaPattern ScopeKind = "lambda_pattern"
	ScopeLetIn         ScopeKind = "let_in"
	ScopeRecAttrSet    ScopeKind = "rec_attrset"
)

// Category is the human label a reporter shows for a scope kind.
func (k ScopeKind) Category() string {
	switch k {
	case ScopeLambdaArg:
		return "lambda argument"
	case ScopeLambdaPattern:
		return "lambda pattern"
	case ScopeLetIn:
		return "let binding"
	case ScopeRecAttrSet:
		return "rec attrset"
	default:
		return "unknown"
	}
}

// Color is the fatih/color name the report package renders this scope kind
// with.
func (k ScopeKind) Color() string {
	switch k {
	case ScopeLambdaArg:
		return "cyan"
	case ScopeLambdaPattern:
		return "magenta"
	case ScopeLetIn:
		return "yellow"
	case ScopeRecAttrSet:
		return "red"
	default:
		return "white"
	}
}

// Scope is the AST subtree that declares variables: a lambda argument or
// pattern, a let-in block, or a recursive attribute set. It is a tagged
// union over those four constructs, built by ScopeFrom.
type Scope struct {
	Kind ScopeKind
	node *syntax.Node

	// lambdaBody is the lambda's body subtree (LambdaArg/LambdaPattern).
	lambdaBody *syntax.Node
	// pattern is set for ScopeLambdaPattern.
	pattern *syntax.Node
	// identParam is set for ScopeLambdaArg.
	identParam *syntax.Node
}

// ScopeFrom returns a Scope if node opens one, or (Scope{}, false) if it
// does not.
func ScopeFrom(node *syntax.Node) (Scope, bool) {
	switch node.Kind {
	case syntax.KindLambda:
		arg := node.ChildByField("arg")
		body := node.ChildByField("body")
		if arg == nil || body == nil {
			return Scope{}, false
		}
		switch arg.Kind {
		case syntax.KindIdentParam:
			return Scope{Kind: ScopeLambdaArg, node: node, lambdaBody: body, identParam: arg}, true
		case syntax.KindPattern:
			return Scope{Kind: ScopeLambdaPattern, node: node, lambdaBody: body, pattern: arg}, true
		}
		return Scope{}, false

	case syntax.KindLetIn:
		return Scope{Kind: ScopeLetIn, node: node}, true

	case syntax.KindAttrSet:
		if node.Recursive {
			return Scope{Kind: ScopeRecAttrSet, node: node}, true
		}
		return Scope{}, false
	}
	return Scope{}, false
}

// Node returns the CST node this scope was built from.
func (s Scope) Node() *syntax.Node { return s.node }

// Bindings yields every name this scope introduces. src is the file's
// source text, needed to test leading-underscore mortality rules.
func (s Scope) Bindings(src []byte) []Binding {
	switch s.Kind {
	case ScopeLambdaPattern:
		var out []Binding
		for _, c := range s.pattern.Children() {
			if c.Kind == syntax.KindPatBind {
				if name := c.ChildByField("name"); name != nil {
					out = append(out, Binding{Name: name, DeclNode: c, Mortal: true})
				}
			}
		}
		for _, c := range s.pattern.Children() {
			if c.Kind == syntax.KindPatEntry {
				if name := c.ChildByField("name"); name != nil {
					out = append(out, Binding{Name: name, DeclNode: c, Mortal: true})
				}
			}
		}
		return out

	case ScopeLambdaArg:
		mortal := !strings.HasPrefix(s.identParam.Text(src), "_")
		return []Binding{{Name: s.identParam, DeclNode: s.identParam, Mortal: mortal}}

	case ScopeLetIn:
		return attrBindings(s.node, true)

	case ScopeRecAttrSet:
		return attrBindings(s.node, false)
	}
	return nil
}

// Bodies yields the CST subtrees across which this scope's bindings are
// visible.
func (s Scope) Bodies() []*syntax.Node {
	switch s.Kind {
	case ScopeLambdaPattern:
		var out []*syntax.Node
		for _, c := range s.pattern.Children() {
			if c.Kind == syntax.KindPatEntry {
				out = append(out, c)
			}
		}
		return append(out, s.lambdaBody)

	case ScopeLambdaArg:
		return []*syntax.Node{s.lambdaBody}

	case ScopeLetIn:
		out := inheritAndEntryBodies(s.node)
		if body := s.node.ChildByField("body"); body != nil {
			out = append(out, body)
		}
		return out

	case ScopeRecAttrSet:
		return inheritAndEntryBodies(s.node)
	}
	return nil
}

// inheritAndEntryBodies returns, for each INHERIT child, its INHERIT_FROM
// subtree when present (the only place such a clause's text could
// reference an outer name) or the clause itself otherwise, plus every
// ATTRPATH_VALUE child.
func inheritAndEntryBodies(scopeNode *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	for _, c := range scopeNode.Children() {
		switch c.Kind {
		case syntax.KindInherit:
			if from := inheritFromNode(c); from != nil {
				out = append(out, from)
			} else {
				out = append(out, c)
			}
		case syntax.KindAttrpathValue:
			out = append(out, c)
		}
	}
	return out
}

func inheritFromNode(inheritNode *syntax.Node) *syntax.Node {
	for _, c := range inheritNode.Children() {
		if c.Kind == syntax.KindInheritFrom {
			return c
		}
	}
	return nil
}

// InheritsFrom reports whether any inherit clause of this scope pulls in a
// binding called name from the outer scope. For a bare
// `inherit name;` the clause itself counts as a use; for
// `inherit (expr) name;` expr is searched for a use of name.
func (s Scope) InheritsFrom(src []byte, name string) bool {
	if s.Kind != ScopeLetIn && s.Kind != ScopeRecAttrSet {
		return false
	}
	for _, c := range s.node.Children() {
		if c.Kind != syntax.KindInherit {
			continue
		}
		if from := inheritFromNode(c); from != nil {
			if usage(src, name, from) {
				return true
			}
			continue
		}
		for _, attr := range c.Children() {
			if attr.Kind == syntax.KindAttrIdent && attr.Text(src) == name {
				return true
			}
		}
	}
	return false
}

// IsLambdaPatternName reports whether s is a LambdaPattern whose pattern
// entries (not its @-bind) include name.
func (s Scope) IsLambdaPatternName(src []byte, name string) bool {
	if s.Kind != ScopeLambdaPattern {
		return false
	}
	for _, c := range s.pattern.Children() {
		if c.Kind != syntax.KindPatEntry {
			continue
		}
		if n := c.ChildByField("name"); n != nil && n.Text(src) == name {
			return true
		}
	}
	return false
}

// attrBindings collects the bindings a LET_IN/rec ATTR_SET introduces: one
// per IDENT attribute of each INHERIT, plus one per ATTRPATH_VALUE whose
// path is a single IDENT segment. Dotted, dynamic, and string first
// segments never introduce a binding.
func attrBindings(scopeNode *syntax.Node, mortal bool) []Binding {
	var out []Binding
	for _, c := range scopeNode.Children() {
		switch c.Kind {
		case syntax.KindInherit:
			for _, attr := range c.Children() {
				if attr.Kind == syntax.KindAttrIdent {
					out = append(out, Binding{Name: attr, DeclNode: c, Mortal: mortal})
				}
			}
		case syntax.KindAttrpathValue:
			path := c.ChildByField("path")
			if path == nil {
				continue
			}
			segs := path.Children()
			if len(segs) != 1 || segs[0].Kind != syntax.KindAttrIdent {
				continue
			}
			out = append(out, Binding{Name: segs[0], DeclNode: c, Mortal: mortal})
		}
	}
	return out
}
