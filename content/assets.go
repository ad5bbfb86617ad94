package content

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"doc2scorm/css"
)

// ResourceBundle aggregates global page assets in document order. Tags are
// kept verbatim so external references pass through untouched.
type ResourceBundle struct {
	CSS string
	JS  string
}

// Merge appends other bundle after this one.
func (b *ResourceBundle) Merge(other ResourceBundle) {
	b.CSS += other.CSS
	b.JS += other.JS
}

// ExtractAssets removes global <style>, <script> and stylesheet <link> tags
// from the markup and returns remaining body markup and collected assets.
func ExtractAssets(markup string) (string, ResourceBundle, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", ResourceBundle{}, parseError("markup", err)
	}

	var (
		styles, scripts strings.Builder
		serr            error
	)
	doc.Find("style, script, link").Each(func(_ int, sel *goquery.Selection) {
		if serr != nil {
			return
		}
		name := goquery.NodeName(sel)
		if name == "link" && !isStylesheet(sel) {
			return
		}
		tag, err := goquery.OuterHtml(sel)
		if err != nil {
			serr = fmt.Errorf("unable to serialize <%s>: %w", name, err)
			return
		}
		if name == "script" {
			scripts.WriteString(tag)
		} else {
			styles.WriteString(tag)
		}
		sel.Remove()
	})
	if serr != nil {
		return "", ResourceBundle{}, serr
	}

	body, err := doc.Find("body").First().Html()
	if err != nil {
		return "", ResourceBundle{}, fmt.Errorf("unable to serialize body: %w", err)
	}
	return body, ResourceBundle{CSS: styles.String(), JS: scripts.String()}, nil
}

func isStylesheet(sel *goquery.Selection) bool {
	rel, _ := sel.Attr("rel")
	for _, token := range strings.Fields(rel) {
		if strings.EqualFold(token, "stylesheet") {
			return true
		}
	}
	return false
}

// References lists files global assets point to: stylesheet links, script
// sources and url()/@import targets of inline styles. Only references local
// to the page are returned, without query and fragment.
func (b ResourceBundle) References(log *zap.Logger) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(b.CSS + b.JS))
	if err != nil {
		return nil, parseError("assets", err)
	}

	var refs []string
	doc.Find("style, link[href], script[src]").Each(func(_ int, sel *goquery.Selection) {
		switch goquery.NodeName(sel) {
		case "style":
			refs = append(refs, css.References([]byte(sel.Text()), log)...)
		case "link":
			refs = append(refs, sel.AttrOr("href", ""))
		case "script":
			refs = append(refs, sel.AttrOr("src", ""))
		}
	})

	local := refs[:0]
	for _, ref := range refs {
		if css.IsLocal(ref) {
			local = append(local, css.LocalPath(ref))
		}
	}
	return local, nil
}
