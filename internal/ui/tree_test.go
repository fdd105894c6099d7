package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var plain = lipgloss.NewStyle()

func TestRenderJoinsBlocksAndLines(t *testing.T) {
	tree := Group(
		Text("head"),
		Line(Text("a"), Text("b")),
		Text("tail"),
	)
	assert.Equal(t, "head\nab\ntail", tree.Render())
}

func TestRenderSkipsHiddenAndEmpty(t *testing.T) {
	hidden := Text("secret")
	hidden.Hidden = true
	tree := Group(
		Text("shown"),
		hidden,
		Text(""),
	)
	assert.Equal(t, "shown", tree.Render())
	assert.Equal(t, "", (*Node)(nil).Render())
}

func TestBindingsSkipsHiddenSubtrees(t *testing.T) {
	gated := Group(
		Control(Binding{EntityID: "pr:1", Action: "approve", Key: "a"}, plain, []string{"Admin"}),
	)
	gated.Hidden = true
	tree := Group(
		Control(Binding{EntityID: "pr:1", Action: "edit", Key: "e"}, plain, nil),
		gated,
	)

	got := Bindings(tree)
	require.Len(t, got, 1)
	assert.Equal(t, "edit", got[0].Action)
}

func TestWalkVisitsDepthFirst(t *testing.T) {
	tree := Group(Text("a"), Group(Text("b"), Text("c")))
	var seen []string
	Walk(tree, func(n *Node) {
		if n.Text != "" {
			seen = append(seen, n.Text)
		}
	})
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}
