package deadnix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nix-community/deadnix-go/syntax"
)

func mustParse(t *testing.T, src string) *syntax.Tree {
	t.Helper()
	tree, errs := syntax.Parse([]byte(src))
	require.Empty(t, errs, "unexpected parse errors for %q", src)
	return tree
}

func TestScopeFromLambdaArg(t *testing.T) {
	tree := mustParse(t, "x: x")
	s, ok := ScopeFrom(tree.Root.Children()[0])
	require.True(t, ok)
	assert.Equal(t, ScopeLambdaArg, s.Kind)

	bindings := s.Bindings(tree.Src)
	require.Len(t, bindings, 1)
	assert.Equal(t, "x", bindings[0].NameText(tree.Src))
	assert.True(t, bindings[0].Mortal)
}

func TestScopeFromLambdaArgUnderscoreIsImmortal(t *testing.T) {
	tree := mustParse(t, "_x: 1")
	s, _ := ScopeFrom(tree.Root.Children()[0])
	bindings := s.Bindings(tree.Src)
	require.Len(t, bindings, 1)
	assert.False(t, bindings[0].Mortal)
}

func TestScopeFromLambdaPatternBindingsIncludeAtBind(t *testing.T) {
	tree := mustParse(t, "all@{ a, b }: a")
	s, ok := ScopeFrom(tree.Root.Children()[0])
	require.True(t, ok)
	assert.Equal(t, ScopeLambdaPattern, s.Kind)

	var names []string
	for _, b := range s.Bindings(tree.Src) {
		names = append(names, b.NameText(tree.Src))
	}
	assert.ElementsMatch(t, []string{"all", "a", "b"}, names)
}

func TestScopeFromLetInSkipsNonIdentFirstSegment(t *testing.T) {
	tree := mustParse(t, `let a = 1; "b" = 2; in a`)
	s, ok := ScopeFrom(tree.Root.Children()[0])
	require.True(t, ok)
	assert.Equal(t, ScopeLetIn, s.Kind)

	bindings := s.Bindings(tree.Src)
	require.Len(t, bindings, 1)
	assert.Equal(t, "a", bindings[0].NameText(tree.Src))
}

func TestScopeFromRecAttrSetBindingsAreImmortal(t *testing.T) {
	tree := mustParse(t, "rec { a = 1; b = a; }")
	s, ok := ScopeFrom(tree.Root.Children()[0])
	require.True(t, ok)
	assert.Equal(t, ScopeRecAttrSet, s.Kind)

	for _, b := range s.Bindings(tree.Src) {
		assert.False(t, b.Mortal, "rec attrset member %q must be immortal", b.NameText(tree.Src))
	}
}

func TestScopeFromPlainAttrSetIsNotAScope(t *testing.T) {
	tree := mustParse(t, "{ a = 1; }")
	_, ok := ScopeFrom(tree.Root.Children()[0])
	assert.False(t, ok)
}

func TestScopeBodiesInheritPrefersFromSubtree(t *testing.T) {
	tree := mustParse(t, "let inherit (pkgs) foo bar; in foo")
	s, ok := ScopeFrom(tree.Root.Children()[0])
	require.True(t, ok)

	bodies := s.Bodies()
	require.NotEmpty(t, bodies)
	assert.Equal(t, syntax.KindInheritFrom, bodies[0].Kind)
}

func TestScopeInheritsFromBarePlainInherit(t *testing.T) {
	tree := mustParse(t, "let alive = 1; in let inherit alive; in alive")
	inner := tree.Root.Children()[0].ChildByField("body")
	s, ok := ScopeFrom(inner)
	require.True(t, ok)
	assert.True(t, s.InheritsFrom(tree.Src, "alive"))
}
