package content

import (
	"doc2scorm/utils/debug"
)

// Dump returns readable tree of the forest. It exists solely for manual
// inspection and debug reports.
func Dump(forest []*Node, res ResourceBundle) string {
	tw := debug.NewTreeWriter()

	tw.Line(0, "Resources: css[%d] js[%d]", len(res.CSS), len(res.JS))
	tw.Line(0, "Nodes: %d top level, %d total", len(forest), Count(forest))
	Walk(forest, func(n *Node, depth int) {
		tw.Line(depth+1, "Node level[%d] title=%q file[%s] prev[%s] next[%s] children[%d]",
			n.Level, n.Title, n.Filename, n.Prev, n.Next, len(n.Children))
		tw.Excerpt(depth+2, "Content", n.Content, debug.DefaultExcerptLen)
	})
	return tw.String()
}
