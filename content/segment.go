package content

import (
	"bytes"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Segment converts body markup into forest of nodes. Split tags open new
// nodes (closing all open nodes of the same or deeper level), elements holding
// split tags somewhere inside are dissolved and their children processed in
// place of them, everything else is appended verbatim to the node currently
// open. Markup preceding first split tag becomes leading "Introduction" node.
func Segment(body string, tags SplitTags, log *zap.Logger) ([]*Node, error) {
	if len(tags) == 0 {
		return nil, ErrNoSplitTags
	}

	roots, err := html.ParseFragment(strings.NewReader(body), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, parseError("body markup", err)
	}

	s := &segmenter{
		tags:    tags,
		holders: splitHolders(roots, tags),
		stack:   []*Node{{Level: 0}},
	}
	if err := s.run(roots); err != nil {
		return nil, err
	}

	root := s.stack[0]
	forest := root.Children
	if strings.TrimSpace(root.Content) != "" {
		forest = append([]*Node{{Title: IntroductionTitle, Level: 1, Content: root.Content}}, forest...)
	}

	log.Debug("Body segmented", zap.Int("top", len(forest)), zap.Int("nodes", Count(forest)), zap.Int("dissolved", s.dissolved))
	return forest, nil
}

type segmenter struct {
	tags SplitTags
	// elements which have split tags among descendants
	holders map[*html.Node]bool
	// stack[0] is invisible root, never popped
	stack     []*Node
	dissolved int
	buf       bytes.Buffer
}

func (s *segmenter) top() *Node {
	return s.stack[len(s.stack)-1]
}

// run walks markup in document order with explicit work list so nesting depth
// of wrappers does not affect goroutine stack.
func (s *segmenter) run(roots []*html.Node) error {
	work := make([]*html.Node, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		work = append(work, roots[i])
	}

	for len(work) > 0 {
		n := work[len(work)-1]
		work = work[:len(work)-1]

		switch {
		case n.Type == html.DoctypeNode:
			continue
		case n.Type != html.ElementNode:
			if err := s.appendMarkup(n); err != nil {
				return err
			}
		case s.isSplit(n):
			if err := s.open(n); err != nil {
				return err
			}
		case s.holders[n]:
			s.dissolved++
			for c := n.LastChild; c != nil; c = c.PrevSibling {
				work = append(work, c)
			}
		default:
			if err := s.appendMarkup(n); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *segmenter) isSplit(n *html.Node) bool {
	_, ok := s.tags.Level(n.Data)
	return n.Type == html.ElementNode && ok
}

// open closes every node with level greater or equal to the split tag level
// and starts new child of whatever is left on top.
func (s *segmenter) open(n *html.Node) error {
	level, _ := s.tags.Level(n.Data)
	for len(s.stack) > 1 && s.top().Level >= level {
		s.stack = s.stack[:len(s.stack)-1]
	}

	markup, err := s.render(n)
	if err != nil {
		return err
	}
	title := textOf(n)
	if title == "" {
		title = UntitledTitle
	}
	node := &Node{Title: title, Level: level, Content: markup}

	parent := s.top()
	parent.Children = append(parent.Children, node)
	s.stack = append(s.stack, node)
	return nil
}

func (s *segmenter) appendMarkup(n *html.Node) error {
	markup, err := s.render(n)
	if err != nil {
		return err
	}
	s.top().Content += markup
	return nil
}

func (s *segmenter) render(n *html.Node) (string, error) {
	s.buf.Reset()
	if err := html.Render(&s.buf, n); err != nil {
		return "", fmt.Errorf("unable to render <%s>: %w", n.Data, err)
	}
	return s.buf.String(), nil
}

// splitHolders marks every element which has a split tag among its
// descendants.
func splitHolders(roots []*html.Node, tags SplitTags) map[*html.Node]bool {
	holders := make(map[*html.Node]bool)

	work := append([]*html.Node(nil), roots...)
	for len(work) > 0 {
		n := work[len(work)-1]
		work = work[:len(work)-1]

		if n.Type == html.ElementNode {
			if _, ok := tags.Level(n.Data); ok {
				// ancestors of a marked element are marked already
				for p := n.Parent; p != nil && !holders[p]; p = p.Parent {
					holders[p] = true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			work = append(work, c)
		}
	}
	return holders
}

// textOf returns element text with whitespace runs collapsed.
func textOf(n *html.Node) string {
	var sb strings.Builder

	work := []*html.Node{n}
	for len(work) > 0 {
		c := work[len(work)-1]
		work = work[:len(work)-1]

		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
			continue
		}
		for cc := c.LastChild; cc != nil; cc = cc.PrevSibling {
			work = append(work, cc)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
