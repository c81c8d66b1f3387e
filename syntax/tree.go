package syntax

import "fmt"

// Tree is a fully parsed document: its Root node plus the flat,
// document-ordered list of every token (including trivia), which backs
// Token.PrevToken/NextToken.
type Tree struct {
	Root   *Node
	Src    []byte
	tokens []*Token
}

// ParseError is one diagnostic produced while parsing. Line/Column are
// 1-based, computed by scanning the source for newlines up to Pos.
type ParseError struct {
	Pos     int
	Line    int
	Column  int
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// newToken creates a Token and records its document-order index. Parsers
// must call this at the point a token is consumed from the lexer stream, so
// that docIdx reflects true document order regardless of which node ends up
// owning the token (node subtrees are finished bottom-up, which would
// otherwise scramble the order tokens are appended in).
func (tr *Tree) newToken(kind TokKind, start, end int) *Token {
	t := &Token{Kind: kind, Start: start, End: end, docIdx: len(tr.tokens)}
	tr.tokens = append(tr.tokens, t)
	return t
}

// finish attaches parent pointers and sibling indices to every node/token
// under b and returns the built Node.
func (tr *Tree) finish(b *nodeBuilder, end int) *Node {
	n := &Node{
		Kind:      b.kind,
		Start:     b.start,
		End:       end,
		fields:    b.fields,
		Recursive: b.recursive,
	}
	n.elems = make([]Elem, len(b.elems))
	for i, e := range b.elems {
		switch {
		case e.Token != nil:
			t := e.Token
			t.parent = n
			t.elemIdx = i
			n.elems[i] = Elem{Token: t}
		case e.Node != nil:
			sub := e.Node
			sub.parent = n
			sub.elemIdx = i
			n.elems[i] = Elem{Node: sub}
		}
	}
	return n
}

// Walk calls fn for every node in the tree, pre-order (the node itself, then
// its children left to right, recursively) — the traversal shape the
// dead-code analyzer and editor both build on.
func Walk(root *Node, fn func(*Node)) {
	fn(root)
	for _, c := range root.Children() {
		Walk(c, fn)
	}
}
