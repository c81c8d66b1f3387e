package deadnix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindingKeyDistinguishesSameNameDifferentDecl(t *testing.T) {
	tree := mustParse(t, "let a = 1; in let a = 2; in a")
	outer, _ := ScopeFrom(tree.Root.Children()[0])
	outerBindings := outer.Bindings(tree.Src)

	inner, _ := ScopeFrom(tree.Root.Children()[0].ChildByField("body"))
	innerBindings := inner.Bindings(tree.Src)

	assert.NotEqual(t, outerBindings[0].Key(tree.Src), innerBindings[0].Key(tree.Src))
	assert.Equal(t, "a", outerBindings[0].NameText(tree.Src))
	assert.Equal(t, "a", innerBindings[0].NameText(tree.Src))
}

func TestBindingKeySameForRepeatedCall(t *testing.T) {
	tree := mustParse(t, "let a = 1; in a")
	s, _ := ScopeFrom(tree.Root.Children()[0])
	b := s.Bindings(tree.Src)[0]
	assert.Equal(t, b.Key(tree.Src), b.Key(tree.Src))
}
