package content

import (
	"testing"
)

func sampleForest() []*Node {
	return []*Node{
		{Title: "A", Level: 1, Children: []*Node{
			{Title: "A.1", Level: 2, Children: leaves("A.1.a")},
			{Title: "A.2", Level: 2},
		}},
		{Title: "B", Level: 1},
		{Title: "C", Level: 1, Children: leaves("C.1")},
	}
}

func TestLink(t *testing.T) {
	forest := sampleForest()

	flat := Link(forest)

	wantOrder := []string{"A", "A.1", "A.1.a", "A.2", "B", "C", "C.1"}
	if got := titles(flat); !equalStrings(got, wantOrder) {
		t.Fatalf("order = %v, want %v", got, wantOrder)
	}
	if len(flat) != Count(forest) {
		t.Fatalf("len(flat) = %d, Count() = %d", len(flat), Count(forest))
	}

	seen := make(map[string]bool)
	for i, n := range flat {
		if want := PageFilename(i + 1); n.Filename != want {
			t.Errorf("node %q filename = %q, want %q", n.Title, n.Filename, want)
		}
		if seen[n.Filename] {
			t.Errorf("duplicate filename %q", n.Filename)
		}
		seen[n.Filename] = true
	}

	if flat[0].Prev != "" {
		t.Errorf("first prev = %q, want empty", flat[0].Prev)
	}
	if last := flat[len(flat)-1]; last.Next != "" {
		t.Errorf("last next = %q, want empty", last.Next)
	}
	for i := 0; i+1 < len(flat); i++ {
		a, b := flat[i], flat[i+1]
		if a.Next != b.Filename || b.Prev != a.Filename {
			t.Errorf("pair %q/%q: next=%q prev=%q", a.Title, b.Title, a.Next, b.Prev)
		}
	}
}

func TestLink_InPlace(t *testing.T) {
	forest := sampleForest()

	flat := Link(forest)

	if len(forest) != 3 || len(forest[0].Children) != 2 || len(forest[2].Children) != 1 {
		t.Fatalf("forest shape changed: %d roots", len(forest))
	}
	if forest[0].Filename != "sco_1.html" || forest[0].Children[0].Children[0].Filename != "sco_3.html" {
		t.Errorf("forest nodes not linked: %q, %q", forest[0].Filename, forest[0].Children[0].Children[0].Filename)
	}
	for i, n := range Flatten(forest) {
		if flat[i] != n {
			t.Errorf("flat[%d] is not forest node %q", i, n.Title)
		}
	}
	if c := forest[2].Children[0]; c.Prev != "sco_6.html" || c.Next != "" {
		t.Errorf("C.1 prev=%q next=%q", c.Prev, c.Next)
	}
}

func TestLink_Single(t *testing.T) {
	flat := Link(leaves("Only"))
	if len(flat) != 1 {
		t.Fatalf("len(flat) = %d", len(flat))
	}
	n := flat[0]
	if n.Filename != "sco_1.html" || n.Prev != "" || n.Next != "" {
		t.Errorf("node = %+v", n)
	}
}

func TestLink_Empty(t *testing.T) {
	if flat := Link(nil); len(flat) != 0 {
		t.Errorf("Link(nil) = %v", flat)
	}
}
