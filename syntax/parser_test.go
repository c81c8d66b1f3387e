package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mustParse(t *testing.T, src string) *Tree {
	t.Helper()
	tree, errs := Parse([]byte(src))
	assert.Empty(t, errs, "unexpected parse errors for %q", src)
	return tree
}

func TestParseLosslessRoundTrip(t *testing.T) {
	cases := []string{
		`1`,
		`  1  `,
		`let x = 1; in x`,
		`{ a = 1; b = 2; }`,
		`rec { a = 1; b = a; }`,
		`x: x + 1`,
		`{ a, b ? 1, ... }: a + b`,
		`a @ { b, ... }: b`,
		`{ b, ... } @ a: b`,
		"with foo; bar",
		"assert true; 1",
		"if true then 1 else 2",
		`{ inherit a b; }`,
		`let inherit (pkgs) foo bar; in foo`,
		`''indented ${x} string''`,
		`"interp ${x} string"`,
		`{ ${x} = 1; }`,
		`{ "key" = 1; }`,
		`a.b.c`,
		`a.b or c`,
		`[ 1 2 (-3) ]`,
		`1 + 2 * 3`,
		`a -> b`,
		`a // b`,
		`<nixpkgs>`,
		`./relative/path`,
		"# comment\n1",
	}
	for _, src := range cases {
		tree, errs := Parse([]byte(src))
		assert.Empty(t, errs, "parse errors for %q: %v", src, errs)
		start, end := tree.Root.TextRange()
		assert.Equal(t, 0, start)
		assert.Equal(t, len(src), end, "root span must cover entire source for %q", src)
	}
}

func TestParseLetInBindings(t *testing.T) {
	tree := mustParse(t, `let a = 1; b = 2; in a + b`)
	letIn := tree.Root.Children()[0]
	assert.Equal(t, KindLetIn, letIn.Kind)

	var entries []*Node
	for _, c := range letIn.Children() {
		if c.Kind == KindAttrpathValue {
			entries = append(entries, c)
		}
	}
	assert.Len(t, entries, 2)

	body := letIn.ChildByField("body")
	assert.NotNil(t, body)
}

func TestParseInheritWithFrom(t *testing.T) {
	src := `let inherit (pkgs) foo bar; in foo`
	tree := mustParse(t, src)
	letIn := tree.Root.Children()[0]
	var inh *Node
	for _, c := range letIn.Children() {
		if c.Kind == KindInherit {
			inh = c
		}
	}
	if assert.NotNil(t, inh) {
		var from *Node
		var attrs []*Node
		for _, c := range inh.Children() {
			switch c.Kind {
			case KindInheritFrom:
				from = c
			case KindAttrIdent:
				attrs = append(attrs, c)
			}
		}
		assert.NotNil(t, from)
		assert.Equal(t, "pkgs", from.Text([]byte(src))[1:len(from.Text([]byte(src)))-1])
		assert.Len(t, attrs, 2)
	}
}

func TestParseLambdaPatternNameIsOwnNode(t *testing.T) {
	src := `{ a, b ? 1, ... }: a`
	tree := mustParse(t, src)
	lambda := tree.Root.Children()[0]
	assert.Equal(t, KindLambda, lambda.Kind)
	pattern := lambda.ChildByField("arg")
	assert.Equal(t, KindPattern, pattern.Kind)

	var entryA, entryB *Node
	for _, c := range pattern.Children() {
		if c.Kind != KindPatEntry {
			continue
		}
		name := c.ChildByField("name")
		if name.Text([]byte(src)) == "a" {
			entryA = c
		} else if name.Text([]byte(src)) == "b" {
			entryB = c
		}
	}
	if assert.NotNil(t, entryA) {
		name := entryA.ChildByField("name")
		assert.Equal(t, "a", name.Text([]byte(src)))
		s, e := name.TextRange()
		assert.Equal(t, e-s, len("a"))
	}
	if assert.NotNil(t, entryB) {
		// b's own node spans past its default value; its name field must not.
		name := entryB.ChildByField("name")
		assert.Equal(t, "b", name.Text([]byte(src)))
		def := entryB.ChildByField("default")
		assert.NotNil(t, def)
		ns, ne := name.TextRange()
		ds, _ := def.TextRange()
		assert.True(t, ne <= ds, "name range must end before default starts")
		assert.Equal(t, 1, ne-ns)
	}
}

func TestParsePatBindLeadingAndTrailing(t *testing.T) {
	srcLeading := `a @ { b }: b`
	tree := mustParse(t, srcLeading)
	lambda := tree.Root.Children()[0]
	pattern := lambda.ChildByField("arg")
	var bind *Node
	for _, c := range pattern.Children() {
		if c.Kind == KindPatBind {
			bind = c
		}
	}
	if assert.NotNil(t, bind) {
		name := bind.ChildByField("name")
		assert.Equal(t, "a", name.Text([]byte(srcLeading)))
	}

	srcTrailing := `{ b } @ a: b`
	tree2 := mustParse(t, srcTrailing)
	lambda2 := tree2.Root.Children()[0]
	pattern2 := lambda2.ChildByField("arg")
	var bind2 *Node
	for _, c := range pattern2.Children() {
		if c.Kind == KindPatBind {
			bind2 = c
		}
	}
	if assert.NotNil(t, bind2) {
		name := bind2.ChildByField("name")
		assert.Equal(t, "a", name.Text([]byte(srcTrailing)))
	}
}

func TestParseRecAttrSetMarked(t *testing.T) {
	tree := mustParse(t, `rec { a = 1; b = a; }`)
	set := tree.Root.Children()[0]
	assert.Equal(t, KindAttrSet, set.Kind)
	assert.True(t, set.Recursive)

	tree2 := mustParse(t, `{ a = 1; }`)
	set2 := tree2.Root.Children()[0]
	assert.False(t, set2.Recursive)
}

func TestParseDynamicAndStringAttrKeys(t *testing.T) {
	src := `{ ${x} = 1; "y" = 2; }`
	tree := mustParse(t, src)
	set := tree.Root.Children()[0]
	var kinds []Kind
	for _, c := range set.Children() {
		if c.Kind == KindAttrpathValue {
			path := c.ChildByField("path")
			for _, seg := range path.Children() {
				kinds = append(kinds, seg.Kind)
			}
		}
	}
	assert.Contains(t, kinds, KindAttrDynamic)
	assert.Contains(t, kinds, KindAttrString)
}

func TestParseStringInterpolation(t *testing.T) {
	src := `"a${x}b"`
	tree := mustParse(t, src)
	str := tree.Root.Children()[0]
	assert.Equal(t, KindString, str.Kind)
	var interp *Node
	for _, c := range str.Children() {
		if c.Kind == KindInterpolation {
			interp = c
		}
	}
	assert.NotNil(t, interp)
}

func TestParseOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3): root EXPR's right child spans "2 * 3".
	src := `1 + 2 * 3`
	tree := mustParse(t, src)
	root := tree.Root.Children()[0]
	assert.Equal(t, KindExpr, root.Kind)
	children := root.Children()
	assert.Len(t, children, 2)
	rhs := children[1]
	s, e := rhs.TextRange()
	assert.Equal(t, "2 * 3", src[s:e])
}

func TestParseRightAssociativeUpdate(t *testing.T) {
	// a // b // c should parse as a // (b // c).
	src := `a // b // c`
	tree := mustParse(t, src)
	root := tree.Root.Children()[0]
	children := root.Children()
	assert.Len(t, children, 2)
	rhs := children[1]
	s, e := rhs.TextRange()
	assert.Equal(t, "b // c", src[s:e])
}

func TestParseSearchPathAndPathLiterals(t *testing.T) {
	tree := mustParse(t, `<nixpkgs>`)
	assert.Len(t, tree.Root.Children(), 1)

	tree2, errs := Parse([]byte(`./foo/bar.nix`))
	assert.Empty(t, errs)
	assert.NotNil(t, tree2.Root)
}

func TestParseErrorRecoveryStillCoversSource(t *testing.T) {
	src := `let x = ; in x`
	tree, errs := Parse([]byte(src))
	assert.NotEmpty(t, errs)
	start, end := tree.Root.TextRange()
	assert.Equal(t, 0, start)
	assert.Equal(t, len(src), end)
}

func TestPositionLineColumn(t *testing.T) {
	src := []byte("ab\ncd")
	line, col := Position(src, 4)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)
}

func TestTokenPrevNextToken(t *testing.T) {
	tree := mustParse(t, `x: x`)
	lambda := tree.Root.Children()[0]
	body := lambda.ChildByField("body")
	tok := body.LastToken()
	assert.NotNil(t, tok)
	assert.Equal(t, TokIdent, tok.Kind)

	prev := tok.PrevToken(tree)
	assert.NotNil(t, prev)
	assert.Equal(t, TokWhitespace, prev.Kind)

	next := prev.NextToken(tree)
	assert.Equal(t, tok, next)
}
