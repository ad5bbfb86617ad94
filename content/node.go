// Package content turns flat document markup into hierarchical course
// structure: global assets are pulled out, body is segmented on configured
// split tags, repeated sibling titles are disambiguated and nodes are linked
// into one linear reading sequence.
package content

import (
	"fmt"
)

const (
	// IntroductionTitle is given to the synthetic node holding markup found
	// before the first split tag.
	IntroductionTitle = "Introduction"
	// UntitledTitle replaces empty split tag text.
	UntitledTitle = "Untitled"
)

// Node is a single course unit. It owns its children exclusively. Content
// holds node own markup (starting with split tag itself) in document order and
// never contains markup of any descendant.
type Node struct {
	Title    string
	Level    int
	Content  string
	Children []*Node

	// assigned by Link
	Filename string
	Prev     string
	Next     string
}

// PageFilename returns name of the page for node at (1 based) position in
// global pre-order sequence.
func PageFilename(index int) string {
	return fmt.Sprintf("sco_%d.html", index)
}

// Walk visits every node of the forest in pre-order (parent before children,
// document order) passing node depth (0 for top level nodes).
func Walk(forest []*Node, fn func(n *Node, depth int)) {
	type frame struct {
		node  *Node
		depth int
	}
	stack := make([]frame, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, frame{forest[i], 0})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(f.node, f.depth)
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], f.depth + 1})
		}
	}
}

// Flatten returns all nodes of the forest in global pre-order.
func Flatten(forest []*Node) []*Node {
	var out []*Node
	Walk(forest, func(n *Node, _ int) {
		out = append(out, n)
	})
	return out
}

// Count returns total number of nodes in the forest.
func Count(forest []*Node) int {
	total := 0
	Walk(forest, func(*Node, int) { total++ })
	return total
}
