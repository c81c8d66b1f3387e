package syntax

// Token is a single lexeme: whitespace, a comment, punctuation, a keyword,
// or a literal fragment. Every byte of the source is covered by exactly one
// Token or is inside the range of some Node's descendant Token — the tree is
// lossless.
type Token struct {
	Kind  TokKind
	Start int
	End   int

	parent  *Node
	elemIdx int // index of this token within parent.elems
	docIdx  int // index within the flat, document-ordered token list
}

// TextRange returns the byte offsets [start, end) this token spans.
func (t *Token) TextRange() (int, int) { return t.Start, t.End }

// Text returns the token's source text.
func (t *Token) Text(src []byte) string { return string(src[t.Start:t.End]) }

// Parent returns the node that contains this token, or nil for a token that
// has not been attached to a tree yet.
func (t *Token) Parent() *Node { return t.parent }

// PrevSiblingOrToken returns the element immediately before this token under
// the same parent, or a zero Elem if this is the parent's first child.
func (t *Token) PrevSiblingOrToken() Elem {
	if t.parent == nil || t.elemIdx <= 0 {
		return Elem{}
	}
	return t.parent.elems[t.elemIdx-1]
}

// NextSiblingOrToken returns the element immediately after this token under
// the same parent, or a zero Elem if this is the parent's last child.
func (t *Token) NextSiblingOrToken() Elem {
	if t.parent == nil || t.elemIdx+1 >= len(t.parent.elems) {
		return Elem{}
	}
	return t.parent.elems[t.elemIdx+1]
}

// PrevToken returns the token immediately preceding this one in the whole
// document (crossing parent boundaries), or nil if this is the first token.
func (t *Token) PrevToken(tree *Tree) *Token {
	if t.docIdx <= 0 {
		return nil
	}
	return tree.tokens[t.docIdx-1]
}

// NextToken returns the token immediately following this one in the whole
// document, or nil if this is the last token.
func (t *Token) NextToken(tree *Tree) *Token {
	if t.docIdx+1 >= len(tree.tokens) {
		return nil
	}
	return tree.tokens[t.docIdx+1]
}

// Elem is a tagged union over a Node or a Token, mirroring rnix's
// `SyntaxElement` — the unit yielded by ChildrenWithTokens, PrevSiblingOrToken
// and NextSiblingOrToken.
type Elem struct {
	Node  *Node
	Token *Token
}

// IsZero reports whether this Elem holds neither a Node nor a Token (i.e. it
// was returned for "no such sibling").
func (e Elem) IsZero() bool { return e.Node == nil && e.Token == nil }

// IsToken reports whether this element is a Token.
func (e Elem) IsToken() bool { return e.Token != nil }

// TokKind returns the token kind and true if this element is a token.
func (e Elem) TokKind() (TokKind, bool) {
	if e.Token == nil {
		return 0, false
	}
	return e.Token.Kind, true
}

// NodeKind returns the node kind and true if this element is a node.
func (e Elem) NodeKind() (Kind, bool) {
	if e.Node == nil {
		return 0, false
	}
	return e.Node.Kind, true
}

// TextRange returns the byte range of whichever of Node/Token is set.
func (e Elem) TextRange() (int, int) {
	if e.Token != nil {
		return e.Token.TextRange()
	}
	if e.Node != nil {
		return e.Node.TextRange()
	}
	return -1, -1
}
