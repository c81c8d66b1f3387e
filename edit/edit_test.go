package edit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nix-community/deadnix-go"
	"github.com/nix-community/deadnix-go/edit"
	"github.com/nix-community/deadnix-go/syntax"
)

func findDead(t *testing.T, src string, settings deadnix.Settings) []deadnix.Result {
	t.Helper()
	tree, errs := syntax.Parse([]byte(src))
	require.Empty(t, errs)
	return settings.FindDeadCode(tree)
}

func TestRemoveDeadLetInEntry(t *testing.T) {
	src := "let a = 1; b = 2; in b"
	results := findDead(t, src, deadnix.Settings{})
	out, changed, err := edit.RemoveDead([]byte(src), results)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "let b = 2; in b", string(out))
}

func TestRemoveDeadLetInEntryEmptiesContainer(t *testing.T) {
	src := "let a = 1; in 2"
	results := findDead(t, src, deadnix.Settings{})
	out, changed, err := edit.RemoveDead([]byte(src), results)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "2", string(out))
}

func TestRemoveDeadInheritAttribute(t *testing.T) {
	src := "let inherit (pkgs) a b; in b"
	results := findDead(t, src, deadnix.Settings{})
	out, changed, err := edit.RemoveDead([]byte(src), results)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "let inherit (pkgs) b; in b", string(out))
}

func TestRemoveDeadInheritEmptiesClause(t *testing.T) {
	src := "let inherit (pkgs) a; in 1"
	results := findDead(t, src, deadnix.Settings{})
	out, changed, err := edit.RemoveDead([]byte(src), results)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "1", string(out))
}

func TestRemoveDeadLambdaArgRenamed(t *testing.T) {
	src := "dead: 1"
	results := findDead(t, src, deadnix.Settings{})
	out, changed, err := edit.RemoveDead([]byte(src), results)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "_dead: 1", string(out))
}

func TestRemoveDeadLambdaArgAlreadyUnderscoreImmortal(t *testing.T) {
	src := "_dead: 1"
	results := findDead(t, src, deadnix.Settings{})
	assert.Empty(t, results)
	out, changed, err := edit.RemoveDead([]byte(src), results)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, src, string(out))
}

func TestRemoveDeadPatternEntryLeading(t *testing.T) {
	src := "{ dead, b }: b"
	results := findDead(t, src, deadnix.Settings{})
	out, changed, err := edit.RemoveDead([]byte(src), results)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "{ b }: b", string(out))
}

func TestRemoveDeadPatternEntryBeforeEllipsis(t *testing.T) {
	src := "{ b, dead, ... }: b"
	results := findDead(t, src, deadnix.Settings{})
	out, changed, err := edit.RemoveDead([]byte(src), results)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "{ b, ... }: b", string(out))
}

func TestRemoveDeadPatternAtBindLeading(t *testing.T) {
	src := "dead @ { b }: b"
	results := findDead(t, src, deadnix.Settings{})
	out, changed, err := edit.RemoveDead([]byte(src), results)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "{ b }: b", string(out))
}

func TestRemoveDeadNoOpWhenNothingDead(t *testing.T) {
	src := "let a = 1; in a"
	results := findDead(t, src, deadnix.Settings{})
	assert.Empty(t, results)
	out, changed, err := edit.RemoveDead([]byte(src), results)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, src, string(out))
}

func TestRemoveDeadIdempotent(t *testing.T) {
	src := "let a = 1; b = a; in 2"
	results := findDead(t, src, deadnix.Settings{})
	out, changed, err := edit.RemoveDead([]byte(src), results)
	require.NoError(t, err)
	assert.True(t, changed)

	results2 := findDead(t, string(out), deadnix.Settings{})
	assert.Empty(t, results2, "re-analyzing the edited text must find nothing dead")
}
