package content

// Link assigns page filenames in global pre-order and chains all nodes into
// single reading sequence through Prev and Next. The forest is linked in
// place and keeps its shape. Returned slice holds the same forest nodes in
// pre-order, pages are rendered in that order.
func Link(forest []*Node) []*Node {
	flat := Flatten(forest)
	for i, n := range flat {
		n.Filename = PageFilename(i + 1)
	}
	for i, n := range flat {
		n.Prev, n.Next = "", ""
		if i > 0 {
			n.Prev = flat[i-1].Filename
		}
		if i < len(flat)-1 {
			n.Next = flat[i+1].Filename
		}
	}
	return flat
}
