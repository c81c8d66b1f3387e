// Package edit turns a list of dead-code records into a trivia-preserving
// rewrite of the original source: each record synthesizes at most one
// byte-range patch, patches apply in a single left-to-right sweep, and a
// second pass cleans up containers left empty by the first.
package edit

import (
	"fmt"
	"sort"

	"github.com/nix-community/deadnix-go"
	"github.com/nix-community/deadnix-go/syntax"
)

// patch is one [start, end) replacement over the source bytes.
type patch struct {
	start, end  int
	replacement string
}

// RemoveDead deletes every dead binding in results from src (and, where a
// LambdaArg binding is merely unused-but-mortal, renames it with a leading
// "_"), then removes any let-in or inherit clause left empty by those
// deletions. It returns the rewritten text and whether anything changed.
func RemoveDead(src []byte, results []deadnix.Result) ([]byte, bool, error) {
	patches := make([]patch, 0, len(results))
	for _, r := range results {
		if !r.Unused {
			continue // warn-used-underscore records are diagnostics only
		}
		if p, ok := synthesize(src, r); ok {
			patches = append(patches, p)
		}
	}
	if len(patches) == 0 {
		return src, false, nil
	}

	edited := apply(src, patches)

	tree, errs := syntax.Parse(edited)
	if len(errs) > 0 {
		return nil, false, fmt.Errorf("edit: rewritten source does not re-parse: %v", errs[0])
	}
	var cleanupPatches []patch
	scanEmptyContainers(tree.Root, &cleanupPatches)
	if len(cleanupPatches) == 0 {
		return edited, true, nil
	}
	return apply(edited, cleanupPatches), true, nil
}

// synthesize builds the single patch a dead-code record contributes, per
// the scope kind that introduced its binding.
func synthesize(src []byte, r deadnix.Result) (patch, bool) {
	switch r.Scope.Kind {
	case deadnix.ScopeLambdaPattern:
		decl := r.Binding.DeclNode
		if decl.Kind == syntax.KindPatBind {
			return patBindEdit(decl), true
		}
		return patEntryEdit(decl), true

	case deadnix.ScopeLambdaArg:
		return lambdaArgEdit(src, r.Binding), true

	case deadnix.ScopeLetIn:
		decl := r.Binding.DeclNode
		if decl.Kind == syntax.KindInherit {
			return inheritAttrEdit(r.Binding.Name), true
		}
		return deletionEdit(decl), true

	case deadnix.ScopeRecAttrSet:
		// immortal; the analyzer never reports these, but defend anyway.
		return patch{}, false
	}
	return patch{}, false
}

// deletionEdit deletes node outright, trimming a preceding WHITESPACE
// sibling so no blank line remains.
func deletionEdit(node *syntax.Node) patch {
	start, end := node.TextRange()
	start = trimLeadingWhitespace(node.PrevSiblingOrToken(), start)
	return patch{start: start, end: end, replacement: ""}
}

// patEntryEdit deletes a LambdaPattern PAT_ENTRY, extending forward over a
// following COMMA, or (absent one) over any run of trailing whitespace up
// to the next non-whitespace, non-comma token.
func patEntryEdit(entry *syntax.Node) patch {
	start, end := entry.TextRange()
	start = trimLeadingWhitespace(entry.PrevSiblingOrToken(), start)

	next := entry.NextSiblingOrToken()
	if tk, ok := next.TokKind(); ok && tk == syntax.TokComma {
		_, e := next.TextRange()
		return patch{start: start, end: e, replacement: ""}
	}
	cur := next
	for {
		tk, ok := cur.TokKind()
		if !ok || tk != syntax.TokWhitespace {
			break
		}
		_, e := cur.TextRange()
		end = e
		cur = nextElem(cur)
	}
	return patch{start: start, end: end, replacement: ""}
}

// patBindEdit deletes a LambdaPattern @-bind (either `x @ { ... }` or
// `{ ... } @ x` form), extending forward over one following WHITESPACE
// token if present.
func patBindEdit(bind *syntax.Node) patch {
	start, end := bind.TextRange()
	start = trimLeadingWhitespace(bind.PrevSiblingOrToken(), start)

	next := bind.NextSiblingOrToken()
	if tk, ok := next.TokKind(); ok && tk == syntax.TokWhitespace {
		_, e := next.TextRange()
		end = e
	}
	return patch{start: start, end: end, replacement: ""}
}

// lambdaArgEdit replaces a LambdaArg's identifier text with the same text
// prefixed by "_", marking it intentionally unused rather than deleting it
// (the argument position must stay filled).
func lambdaArgEdit(src []byte, b deadnix.Binding) patch {
	start, end := b.DeclNode.TextRange()
	return patch{start: start, end: end, replacement: "_" + b.DeclNode.Text(src)}
}

// inheritAttrEdit deletes a single attribute identifier inside an `inherit`
// clause, leaving the clause and its other attributes untouched.
func inheritAttrEdit(attr *syntax.Node) patch {
	start, end := attr.TextRange()
	start = trimLeadingWhitespace(attr.PrevSiblingOrToken(), start)
	return patch{start: start, end: end, replacement: ""}
}

func trimLeadingWhitespace(prev syntax.Elem, start int) int {
	if tk, ok := prev.TokKind(); ok && tk == syntax.TokWhitespace {
		s, _ := prev.TextRange()
		return s
	}
	return start
}

func nextElem(e syntax.Elem) syntax.Elem {
	if e.Token != nil {
		return e.Token.NextSiblingOrToken()
	}
	if e.Node != nil {
		return e.Node.NextSiblingOrToken()
	}
	return syntax.Elem{}
}

// apply sorts patches by (start, end) ascending, collapses any that overlap
// by keeping the widest, then sweeps left to right over src, copying
// untouched spans and splicing in replacements.
func apply(src []byte, patches []patch) []byte {
	sort.Slice(patches, func(i, j int) bool {
		if patches[i].start != patches[j].start {
			return patches[i].start < patches[j].start
		}
		return patches[i].end < patches[j].end
	})

	kept := patches[:0:0]
	for _, p := range patches {
		if n := len(kept); n > 0 && p.start < kept[n-1].end {
			if p.end > kept[n-1].end {
				kept[n-1].end = p.end
			}
			continue
		}
		kept = append(kept, p)
	}

	out := make([]byte, 0, len(src))
	pos := 0
	for _, p := range kept {
		out = append(out, src[pos:p.start]...)
		out = append(out, p.replacement...)
		pos = p.end
	}
	out = append(out, src[pos:]...)
	return out
}

// scanEmptyContainers walks the re-parsed tree for LET_IN blocks and
// INHERIT clauses left with no bindings, scheduling their removal (spec
// §4.4.3).
func scanEmptyContainers(node *syntax.Node, patches *[]patch) {
	switch node.Kind {
	case syntax.KindLetIn:
		if letInIsEmpty(node) {
			body := node.ChildByField("body")
			if body != nil {
				start, _ := node.TextRange()
				start = trimLeadingWhitespace(node.PrevSiblingOrToken(), start)
				bodyStart, _ := body.TextRange()
				*patches = append(*patches, patch{start: start, end: bodyStart, replacement: ""})
			}
		}
	case syntax.KindInherit:
		if inheritIsEmpty(node) {
			start, end := node.TextRange()
			start = trimLeadingWhitespace(node.PrevSiblingOrToken(), start)
			*patches = append(*patches, patch{start: start, end: end, replacement: ""})
		}
	}
	for _, c := range node.Children() {
		scanEmptyContainers(c, patches)
	}
}

func letInIsEmpty(letIn *syntax.Node) bool {
	for _, c := range letIn.Children() {
		switch c.Kind {
		case syntax.KindAttrpathValue:
			return false
		case syntax.KindInherit:
			if !inheritIsEmpty(c) {
				return false
			}
		}
	}
	return true
}

func inheritIsEmpty(inherit *syntax.Node) bool {
	for _, c := range inherit.Children() {
		if c.Kind == syntax.KindAttrIdent || c.Kind == syntax.KindAttrDynamic || c.Kind == syntax.KindAttrString {
			return false
		}
	}
	return true
}
