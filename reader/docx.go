package reader

import (
	"fmt"
	"html"
	"os"
	"path"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fumiama/go-docx"
	"go.uber.org/zap"
)

const (
	imageAlt = "Document image"

	// colon within that many leading characters marks a definition paragraph
	definitionColonWindow = 50
)

var definitionPrefixes = []string{"definición:", "nota:"}

// docxWriter renders go-docx body items as HTML fragment.
type docxWriter struct {
	doc *docx.Docx
	log *zap.Logger
	sb  strings.Builder
}

// docxParagraph is a single rendered paragraph: formatted markup, plain
// text for classification and pictures found in its runs.
type docxParagraph struct {
	markup strings.Builder
	text   strings.Builder
	images []string
}

func readDOCX(path string, log *zap.Logger) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	w := &docxWriter{doc: doc, log: log}
	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			w.writeParagraph(v)
		case *docx.Table:
			w.writeTable(v)
		}
	}
	return w.sb.String(), nil
}

func (w *docxWriter) writeParagraph(para *docx.Paragraph) {
	p := w.renderParagraph(para)
	if text := strings.TrimSpace(p.text.String()); text != "" {
		switch level := headingLevel(para); {
		case level > 0:
			fmt.Fprintf(&w.sb, "<h%d>%s</h%d>\n", level, html.EscapeString(text), level)
		case isDefinition(text):
			fmt.Fprintf(&w.sb, "<div class=\"definition\"><p>%s</p></div>\n", strings.TrimSpace(p.markup.String()))
		default:
			fmt.Fprintf(&w.sb, "<p>%s</p>\n", strings.TrimSpace(p.markup.String()))
		}
	}
	for _, src := range p.images {
		fmt.Fprintf(&w.sb, "<div class=\"image\">%s</div>\n", imageTag(src))
	}
}

func (w *docxWriter) writeTable(table *docx.Table) {
	w.sb.WriteString("<table>\n")
	for _, row := range table.TableRows {
		w.sb.WriteString("<tr>")
		for _, cell := range row.TableCells {
			w.sb.WriteString("<td>")
			var parts []string
			for _, para := range cell.Paragraphs {
				p := w.renderParagraph(para)
				if s := strings.TrimSpace(p.markup.String()); s != "" {
					parts = append(parts, s)
				}
				for _, src := range p.images {
					parts = append(parts, imageTag(src))
				}
			}
			w.sb.WriteString(strings.Join(parts, "<br/>"))
			for _, nested := range cell.Tables {
				w.writeTable(nested)
			}
			w.sb.WriteString("</td>")
		}
		w.sb.WriteString("</tr>\n")
	}
	w.sb.WriteString("</table>\n")
}

func (w *docxWriter) renderParagraph(para *docx.Paragraph) *docxParagraph {
	p := &docxParagraph{}
	for _, child := range para.Children {
		switch v := child.(type) {
		case *docx.Run:
			w.renderRun(p, v)
		case *docx.Hyperlink:
			target, err := w.doc.ReferTarget(v.ID)
			if err != nil {
				w.renderRun(p, &v.Run)
				continue
			}
			fmt.Fprintf(&p.markup, "<a href=\"%s\">", html.EscapeString(target))
			w.renderRun(p, &v.Run)
			p.markup.WriteString("</a>")
		}
	}
	return p
}

func (w *docxWriter) renderRun(p *docxParagraph, run *docx.Run) {
	var seg strings.Builder
	for _, rc := range run.Children {
		switch v := rc.(type) {
		case *docx.Text:
			seg.WriteString(html.EscapeString(v.Text))
			p.text.WriteString(v.Text)
		case *docx.Tab:
			seg.WriteString("\t")
			p.text.WriteString("\t")
		case *docx.BarterRabbet:
			seg.WriteString("<br/>")
			p.text.WriteString(" ")
		case *docx.Drawing:
			if src := w.drawingSource(v); src != "" {
				p.images = append(p.images, src)
			}
		}
	}

	text := seg.String()
	if strings.TrimSpace(text) == "" {
		// whitespace carries no formatting
		p.markup.WriteString(text)
		return
	}
	bold, italic := runFormatting(run)
	switch {
	case bold && italic:
		p.markup.WriteString("<strong><em>" + text + "</em></strong>")
	case bold:
		p.markup.WriteString("<strong>" + text + "</strong>")
	case italic:
		p.markup.WriteString("<em>" + text + "</em>")
	default:
		p.markup.WriteString(text)
	}
}

// drawingSource resolves picture relationship to data URI, empty string
// when picture cannot be located.
func (w *docxWriter) drawingSource(d *docx.Drawing) string {
	id := blipEmbed(d)
	if id == "" {
		return ""
	}
	target, err := w.doc.ReferTarget(id)
	if err != nil {
		w.log.Warn("Unable to resolve image relationship, skipping", zap.String("id", id), zap.Error(err))
		return ""
	}
	media := w.doc.Media(path.Base(target))
	if media == nil || len(media.Data) == 0 {
		w.log.Warn("Image is missing from document, skipping", zap.String("target", target))
		return ""
	}
	return dataURI(sniffMime(media.Data), media.Data)
}

func blipEmbed(d *docx.Drawing) string {
	var g *docx.AGraphic
	switch {
	case d.Inline != nil:
		g = d.Inline.Graphic
	case d.Anchor != nil:
		g = d.Anchor.Graphic
	}
	if g == nil || g.GraphicData == nil || g.GraphicData.Pic == nil || g.GraphicData.Pic.BlipFill == nil {
		return ""
	}
	return g.GraphicData.Pic.BlipFill.Blip.Embed
}

func runFormatting(run *docx.Run) (bold, italic bool) {
	if run.RunProperties == nil {
		return false, false
	}
	return run.RunProperties.Bold != nil, run.RunProperties.Italic != nil
}

func imageTag(src string) string {
	return fmt.Sprintf("<img src=\"%s\" alt=\"%s\"/>", src, imageAlt)
}

func isDefinition(text string) bool {
	lower := strings.ToLower(text)
	for _, prefix := range definitionPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	head := text
	if utf8.RuneCountInString(head) > definitionColonWindow {
		head = string([]rune(head)[:definitionColonWindow])
	}
	return strings.Contains(head, ":")
}

// headingLevel understands both style ids ("Heading2") and names ("heading 2").
func headingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	rest, ok := strings.CutPrefix(style, "heading")
	if !ok {
		return 0
	}
	level, err := strconv.Atoi(rest)
	if err != nil || level < 1 || level > 6 {
		return 0
	}
	return level
}
