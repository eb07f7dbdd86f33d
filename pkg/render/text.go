package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/matzehuels/arbor/pkg/ecs"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	branchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Text renders src as an indented tree. The title, or "(roots)" when empty,
// is the top line.
func Text(src Source, opts Options) string {
	title := opts.Title
	if title == "" {
		title = "(roots)"
	}

	root := tree.Root(titleStyle.Render(title)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(branchStyle)

	nodes := map[ecs.Entity]*tree.Tree{0: root}
	Walk(src, func(e, parent ecs.Entity, _ int) {
		node := tree.Root(opts.Display(e))
		nodes[e] = node
		nodes[parent].Child(node)
	})
	return root.String()
}
