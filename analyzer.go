package deadnix

import (
	"sort"
	"strings"

	"github.com/nix-community/deadnix-go/syntax"
)

// Settings configures which bindings the analyzer is allowed to report,
// mirroring the CLI flags of the same name.
type Settings struct {
	// NoLambdaArg skips all LambdaArg scopes entirely.
	NoLambdaArg bool
	// NoLambdaPatternNames skips any LambdaPattern pattern-entry binding
	// whose name matches a pattern entry (preserves callPackage-style
	// function signatures).
	NoLambdaPatternNames bool
	// NoUnderscore skips all bindings whose name begins with "_".
	NoUnderscore bool
	// WarnUsedUnderscore additionally reports used bindings whose name
	// begins with "_".
	WarnUsedUnderscore bool
}

// Result is one dead-code record: a binding, the scope that introduced it,
// and whether it is reported because it is unused or (with
// WarnUsedUnderscore) because it is a used "_"-prefixed name.
type Result struct {
	Scope   Scope
	Binding Binding
	Unused  bool
}

// FindDeadCode walks tree.Root and returns every dead (or, with
// WarnUsedUnderscore, used-but-warned) binding, ordered by the byte offset
// of its name token.
func (s Settings) FindDeadCode(tree *syntax.Tree) []Result {
	a := &analysis{
		src:         tree.Src,
		tree:        tree,
		settings:    s,
		dead:        map[bindingKey]bool{},
		deadNodeAny: map[*syntax.Node]bool{},
		results:     map[bindingKey]Result{},
	}
	for {
		prev := len(a.results)
		a.visit(tree.Root)
		if len(a.results) == prev {
			break
		}
	}
	out := make([]Result, 0, len(a.results))
	for _, r := range a.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		si, _ := out[i].Binding.Name.TextRange()
		sj, _ := out[j].Binding.Name.TextRange()
		return si < sj
	})
	return out
}

type analysis struct {
	src         []byte
	tree        *syntax.Tree
	settings    Settings
	dead        map[bindingKey]bool      // (decl_node, name) known dead this run
	deadNodeAny map[*syntax.Node]bool    // decl_node with >=1 dead binding
	results     map[bindingKey]Result
}

func (a *analysis) visit(node *syntax.Node) {
	if s, ok := ScopeFrom(node); ok {
		a.visitScope(s)
	}
	for _, c := range node.Children() {
		a.visit(c)
	}
}

func (a *analysis) visitScope(s Scope) {
	if a.settings.NoLambdaArg && s.Kind == ScopeLambdaArg {
		return
	}
	for _, b := range s.Bindings(a.src) {
		name := b.NameText(a.src)
		if a.settings.NoUnderscore && strings.HasPrefix(name, "_") {
			continue
		}
		if a.settings.NoLambdaPatternNames && s.IsLambdaPatternName(a.src, name) {
			continue
		}
		if !b.Mortal {
			continue
		}
		if a.hasSkipPragma(b) {
			continue
		}

		key := b.Key(a.src)
		unused := true
		for _, body := range s.Bodies() {
			if body == b.DeclNode {
				continue
			}
			if a.bodyIsDead(body) {
				continue
			}
			if a.isDeadInheritFrom(body) {
				continue
			}
			if usage(a.src, name, body) {
				unused = false
				break
			}
		}

		usedUnderscore := a.settings.WarnUsedUnderscore && !unused && strings.HasPrefix(name, "_")
		if unused || usedUnderscore {
			a.dead[key] = true
			a.deadNodeAny[b.DeclNode] = true
			a.results[key] = Result{Scope: s, Binding: b, Unused: unused}
		}
	}
}

// bodyIsDead reports whether body (one of a scope's Bodies() subtrees) is
// itself an already-dead declaration, so a textual reference inside it
// must not count as a use. For most decl_nodes (ATTRPATH_VALUE, pattern
// entries) there is exactly one binding per node, so "any dead binding on
// this node" is exact; an INHERIT clause can carry several bindings on one
// shared node, so it needs the all-attributes-dead form instead.
func (a *analysis) bodyIsDead(body *syntax.Node) bool {
	if body.Kind == syntax.KindInherit {
		return allInheritAttrsDead(a.dead, a.src, body)
	}
	return a.deadNodeAny[body]
}

// isDeadInheritFrom reports whether body is the parenthesized INHERIT_FROM
// expression of an inherit clause whose every attribute is already known
// dead — so a reference inside it still counts as dead.
func (a *analysis) isDeadInheritFrom(body *syntax.Node) bool {
	if body.Kind != syntax.KindInheritFrom {
		return false
	}
	inheritNode := body.Parent()
	if inheritNode == nil || inheritNode.Kind != syntax.KindInherit {
		return false
	}
	return allInheritAttrsDead(a.dead, a.src, inheritNode)
}

func allInheritAttrsDead(dead map[bindingKey]bool, src []byte, inheritNode *syntax.Node) bool {
	any := false
	for _, attr := range inheritNode.Children() {
		if attr.Kind != syntax.KindAttrIdent {
			continue
		}
		any = true
		if !dead[bindingKey{node: inheritNode, name: attr.Text(src)}] {
			return false
		}
	}
	return any
}

// hasSkipPragma walks tokens backward from b's first token: accumulate
// line breaks from WHITESPACE tokens, stop after two; a COMMENT containing
// "deadnix: skip" seen along the way suppresses the report.
func (a *analysis) hasSkipPragma(b Binding) bool {
	tok := b.Name.FirstToken()
	if tok == nil {
		return false
	}
	lineBreaks := 0
	for {
		tok = tok.PrevToken(a.tree)
		if tok == nil {
			return false
		}
		switch tok.Kind {
		case syntax.TokWhitespace:
			lineBreaks += strings.Count(tok.Text(a.src), "\n")
			if lineBreaks >= 2 {
				return false
			}
		case syntax.TokComment:
			if strings.Contains(tok.Text(a.src), "deadnix: skip") {
				return true
			}
		}
	}
}
