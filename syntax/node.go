package syntax

// Node is an interior node of the concrete syntax tree. Its children are an
// ordered, interleaved mix of Nodes and Tokens (including WHITESPACE and
// COMMENT) — nothing in the source is discarded.
type Node struct {
	Kind  Kind
	Start int
	End   int

	// Recursive marks a KindAttrSet built from `rec { ... }`.
	Recursive bool

	parent  *Node
	elemIdx int // index of this node within parent.elems; -1 for the root
	elems   []Elem

	// Field records named-child lookups the parser recorded while
	// building this node (e.g. "body" on a LAMBDA), the way rnix/rowan
	// grammars expose ChildByFieldName. Optional; only populated where
	// the analyzer needs it.
	fields map[string]*Node
}

// TextRange returns the byte offsets [start, end) this node spans.
func (n *Node) TextRange() (int, int) { return n.Start, n.End }

// Text returns the node's source text.
func (n *Node) Text(src []byte) string { return string(src[n.Start:n.End]) }

// Parent returns the enclosing node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns only the Node children, in document order.
func (n *Node) Children() []*Node {
	var out []*Node
	for _, e := range n.elems {
		if e.Node != nil {
			out = append(out, e.Node)
		}
	}
	return out
}

// ChildrenWithTokens returns every child element (nodes and tokens
// interleaved) in document order.
func (n *Node) ChildrenWithTokens() []Elem { return n.elems }

// ChildByField returns a child node previously recorded under the given
// field name by the parser (e.g. "body", "name", "value"), or nil.
func (n *Node) ChildByField(name string) *Node {
	if n.fields == nil {
		return nil
	}
	return n.fields[name]
}

// FirstToken returns the left-most token in this node's subtree.
func (n *Node) FirstToken() *Token {
	for _, e := range n.elems {
		if e.Token != nil {
			return e.Token
		}
		if e.Node != nil {
			if t := e.Node.FirstToken(); t != nil {
				return t
			}
		}
	}
	return nil
}

// LastToken returns the right-most token in this node's subtree.
func (n *Node) LastToken() *Token {
	for i := len(n.elems) - 1; i >= 0; i-- {
		e := n.elems[i]
		if e.Token != nil {
			return e.Token
		}
		if e.Node != nil {
			if t := e.Node.LastToken(); t != nil {
				return t
			}
		}
	}
	return nil
}

// PrevToken returns the token immediately preceding this node's first token
// in the whole document, or nil.
func (n *Node) PrevToken(tree *Tree) *Token {
	first := n.FirstToken()
	if first == nil {
		return nil
	}
	return first.PrevToken(tree)
}

// PrevSiblingOrToken returns the element immediately before this node under
// its parent, or a zero Elem if it is the first child.
func (n *Node) PrevSiblingOrToken() Elem {
	if n.parent == nil || n.elemIdx <= 0 {
		return Elem{}
	}
	return n.parent.elems[n.elemIdx-1]
}

// NextSiblingOrToken returns the element immediately after this node under
// its parent, or a zero Elem if it is the last child.
func (n *Node) NextSiblingOrToken() Elem {
	if n.parent == nil || n.elemIdx+1 >= len(n.parent.elems) {
		return Elem{}
	}
	return n.parent.elems[n.elemIdx+1]
}

// Self returns this node wrapped as an Elem, for comparing against values
// returned from ChildrenWithTokens/PrevSiblingOrToken/NextSiblingOrToken.
func (n *Node) Self() Elem { return Elem{Node: n} }

// nodeBuilder accumulates elements for one node while the parser descends;
// it is finalized into a *Node by (*Tree).finish.
type nodeBuilder struct {
	kind      Kind
	start     int
	elems     []Elem
	fields    map[string]*Node
	recursive bool
}

func newBuilder(kind Kind, start int) *nodeBuilder {
	return &nodeBuilder{kind: kind, start: start}
}

func (b *nodeBuilder) pushToken(t *Token) { b.elems = append(b.elems, Elem{Token: t}) }
func (b *nodeBuilder) pushNode(n *Node)   { b.elems = append(b.elems, Elem{Node: n}) }

func (b *nodeBuilder) field(name string, n *Node) {
	if b.fields == nil {
		b.fields = map[string]*Node{}
	}
	b.fields[name] = n
}
