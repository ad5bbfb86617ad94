package content

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func mustTags(t *testing.T, names ...string) SplitTags {
	t.Helper()
	tags, err := ParseSplitTags(names)
	if err != nil {
		t.Fatalf("ParseSplitTags(%v) error = %v", names, err)
	}
	return tags
}

func titles(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Title)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSegment_Hierarchy(t *testing.T) {
	body := `<h1>A</h1><p>x</p><h2>B</h2><p>y</p><h1>A</h1><p>z</p>`

	forest, err := Segment(body, mustTags(t, "h1", "h2"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}

	if got := titles(forest); !equalStrings(got, []string{"A", "A"}) {
		t.Fatalf("top level titles = %v", got)
	}
	first, second := forest[0], forest[1]
	if first.Content != "<h1>A</h1><p>x</p>" {
		t.Errorf("first content = %q", first.Content)
	}
	if len(first.Children) != 1 || first.Children[0].Title != "B" {
		t.Fatalf("first children = %v", titles(first.Children))
	}
	b := first.Children[0]
	if b.Level != 2 || b.Content != "<h2>B</h2><p>y</p>" {
		t.Errorf("child = level %d content %q", b.Level, b.Content)
	}
	if second.Content != "<h1>A</h1><p>z</p>" || len(second.Children) != 0 {
		t.Errorf("second = content %q children %d", second.Content, len(second.Children))
	}
	if Count(forest) != 3 {
		t.Errorf("Count() = %d, want 3", Count(forest))
	}
}

func TestSegment_Headerless(t *testing.T) {
	body := `<p>one</p><table><tr><td>cell</td></tr></table>`

	forest, err := Segment(body, mustTags(t, "h1", "h2"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(forest) != 1 {
		t.Fatalf("len(forest) = %d, want 1", len(forest))
	}
	intro := forest[0]
	if intro.Title != IntroductionTitle || intro.Level != 1 {
		t.Errorf("intro = %q level %d", intro.Title, intro.Level)
	}
	for _, want := range []string{"<p>one</p>", "<td>cell</td>"} {
		if !strings.Contains(intro.Content, want) {
			t.Errorf("intro content %q does not contain %q", intro.Content, want)
		}
	}
}

func TestSegment_Introduction(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantIntro bool
	}{
		{name: "leading paragraph", body: `<p>lead</p><h1>A</h1>`, wantIntro: true},
		{name: "leading whitespace", body: "\n  \n<h1>A</h1>", wantIntro: false},
		{name: "nothing before", body: `<h1>A</h1><p>x</p>`, wantIntro: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest, err := Segment(tt.body, mustTags(t, "h1"), zaptest.NewLogger(t))
			if err != nil {
				t.Fatalf("Segment() error = %v", err)
			}
			gotIntro := len(forest) > 0 && forest[0].Title == IntroductionTitle
			if gotIntro != tt.wantIntro {
				t.Errorf("intro present = %v, want %v (titles %v)", gotIntro, tt.wantIntro, titles(forest))
			}
			if tt.wantIntro && forest[0].Content != "<p>lead</p>" {
				t.Errorf("intro content = %q", forest[0].Content)
			}
		})
	}
}

func TestSegment_WrapperDissolved(t *testing.T) {
	body := `<div class="wrap"><section><h1>T</h1><p>a</p></section><p>b</p></div>` +
		`<div class="atomic"><p>c</p></div>`

	forest, err := Segment(body, mustTags(t, "h1"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(forest) != 1 {
		t.Fatalf("titles = %v", titles(forest))
	}
	got := forest[0].Content
	want := `<h1>T</h1><p>a</p><p>b</p><div class="atomic"><p>c</p></div>`
	if got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
	for _, wrapper := range []string{`class="wrap"`, "<section"} {
		if strings.Contains(got, wrapper) {
			t.Errorf("wrapper %s leaked into content", wrapper)
		}
	}
}

func deepWrapped(depth int) string {
	return strings.Repeat("<div>", depth) + "<h1>Deep</h1><p>x</p>" + strings.Repeat("</div>", depth)
}

func TestSegment_DeepWrapper(t *testing.T) {
	forest, err := Segment(deepWrapped(MaxMarkupDepth-20), mustTags(t, "h1"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(forest) != 1 || forest[0].Title != "Deep" {
		t.Fatalf("titles = %v", titles(forest))
	}
	if strings.Contains(forest[0].Content, "<div") {
		t.Errorf("content contains wrapper markup: %q", forest[0].Content)
	}
}

func TestSegment_TooDeep(t *testing.T) {
	_, err := Segment(deepWrapped(MaxMarkupDepth+100), mustTags(t, "h1"), zaptest.NewLogger(t))
	if !errors.Is(err, ErrMarkupTooDeep) {
		t.Errorf("Segment() error = %v, want ErrMarkupTooDeep", err)
	}
}

func TestSegment_NonContiguousLevels(t *testing.T) {
	body := `<h1>A</h1><h3>C</h3><p>c</p><h1>B</h1><h3>D</h3>`

	forest, err := Segment(body, mustTags(t, "h1", "h3"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if got := titles(forest); !equalStrings(got, []string{"A", "B"}) {
		t.Fatalf("top level titles = %v", got)
	}
	if got := titles(forest[0].Children); !equalStrings(got, []string{"C"}) {
		t.Errorf("A children = %v", got)
	}
	if forest[0].Children[0].Level != 3 {
		t.Errorf("C level = %d, want 3", forest[0].Children[0].Level)
	}
	if got := titles(forest[1].Children); !equalStrings(got, []string{"D"}) {
		t.Errorf("B children = %v", got)
	}
}

func TestSegment_ShallowerClosesDeeper(t *testing.T) {
	body := `<h1>A</h1><h2>B</h2><h3>C</h3><h2>D</h2><h1>E</h1>`

	forest, err := Segment(body, mustTags(t, "h1", "h2", "h3"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if got := titles(forest); !equalStrings(got, []string{"A", "E"}) {
		t.Fatalf("top level titles = %v", got)
	}
	if got := titles(forest[0].Children); !equalStrings(got, []string{"B", "D"}) {
		t.Errorf("A children = %v", got)
	}
	if got := titles(forest[0].Children[0].Children); !equalStrings(got, []string{"C"}) {
		t.Errorf("B children = %v", got)
	}
}

func TestSegment_Titles(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "inline markup", body: "<h1>  Hel<b>lo</b>\n   world </h1>", want: "Hello world"},
		{name: "empty", body: "<h1></h1>", want: UntitledTitle},
		{name: "whitespace only", body: "<h1> <br/> </h1>", want: UntitledTitle},
		{name: "entities", body: "<h1>Q&amp;A</h1>", want: "Q&A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest, err := Segment(tt.body, mustTags(t, "h1"), zaptest.NewLogger(t))
			if err != nil {
				t.Fatalf("Segment() error = %v", err)
			}
			if len(forest) != 1 || forest[0].Title != tt.want {
				t.Errorf("titles = %v, want [%s]", titles(forest), tt.want)
			}
		})
	}
}

func TestSegment_ElementVisitedOnce(t *testing.T) {
	body := `<h1>A</h1><p id="once">x</p><div><h2>B</h2></div>`

	forest, err := Segment(body, mustTags(t, "h1", "h2"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	total := 0
	Walk(forest, func(n *Node, _ int) {
		total += strings.Count(n.Content, `id="once"`)
	})
	if total != 1 {
		t.Errorf("element found %d times, want 1", total)
	}
}

func TestSegment_NoTags(t *testing.T) {
	_, err := Segment("<p>x</p>", nil, zaptest.NewLogger(t))
	if !errors.Is(err, ErrNoSplitTags) {
		t.Errorf("Segment() error = %v, want %v", err, ErrNoSplitTags)
	}
}
