package content

import "fmt"

// Retitle disambiguates runs of consecutive siblings sharing the same title by
// appending "(i/k)" ordinal to each of them. Siblings with the same title
// separated by something else are left alone. Every sibling list of the forest
// is processed independently.
func Retitle(forest []*Node) []*Node {
	lists := [][]*Node{forest}
	for len(lists) > 0 {
		siblings := lists[len(lists)-1]
		lists = lists[:len(lists)-1]

		retitleRuns(siblings)
		for _, n := range siblings {
			if len(n.Children) > 0 {
				lists = append(lists, n.Children)
			}
		}
	}
	return forest
}

func retitleRuns(siblings []*Node) {
	for start := 0; start < len(siblings); {
		end := start + 1
		for end < len(siblings) && siblings[end].Title == siblings[start].Title {
			end++
		}
		if k := end - start; k > 1 {
			title := siblings[start].Title
			for i, n := range siblings[start:end] {
				n.Title = fmt.Sprintf("%s (%d/%d)", title, i+1, k)
			}
		}
		start = end
	}
}
