// Package ui is the declarative tree the renderer produces. Nodes are plain
// data so views can be asserted in tests without a terminal; lipgloss styles
// are applied only when the tree is flattened to a string.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Binding identifies one interactive control: the entity it acts on, the
// action name, and the key that triggers it while the entity is selected.
type Binding struct {
	EntityID string
	Action   string
	Key      string
	Label    string
}

// Node is one element of the rendered tree. Roles lists the roles allowed to
// see it (empty means everyone); Hidden is set by the visibility pass and
// never by the renderer itself.
type Node struct {
	Text     string
	Style    lipgloss.Style
	Inline   bool // children joined without newlines
	Roles    []string
	Hidden   bool
	Binding  *Binding
	Children []*Node
}

func Text(s string) *Node { return &Node{Text: s} }

func Styled(style lipgloss.Style, s string) *Node {
	return &Node{Text: s, Style: style}
}

// Group stacks children vertically.
func Group(children ...*Node) *Node { return &Node{Children: children} }

// Line lays children out on one line.
func Line(children ...*Node) *Node { return &Node{Inline: true, Children: children} }

// Control is an interactive element tagged with the roles permitted to use
// it. It is always emitted; the visibility pass decides whether it shows.
func Control(b Binding, style lipgloss.Style, roles []string) *Node {
	return &Node{
		Text:    b.Label,
		Style:   style,
		Roles:   roles,
		Binding: &b,
	}
}

// Render flattens the tree to a styled string. Hidden subtrees contribute
// nothing.
func (n *Node) Render() string {
	if n == nil || n.Hidden {
		return ""
	}
	if len(n.Children) == 0 {
		if n.Text == "" {
			return ""
		}
		return n.Style.Render(n.Text)
	}
	parts := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		s := c.Render()
		if s == "" && !n.Inline {
			continue
		}
		parts = append(parts, s)
	}
	sep := "\n"
	if n.Inline {
		sep = ""
	}
	out := strings.Join(parts, sep)
	if n.Text != "" {
		if n.Inline {
			out = n.Style.Render(n.Text) + out
		} else {
			out = n.Style.Render(n.Text) + sep + out
		}
	}
	return out
}

// Walk visits every node depth-first.
func Walk(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Bindings collects the bindings of every visible control, keyed by entity id
// and action name. Hidden subtrees are skipped entirely.
func Bindings(n *Node) []Binding {
	var out []Binding
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil || n.Hidden {
			return
		}
		if n.Binding != nil {
			out = append(out, *n.Binding)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}
