package reader

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"doc2scorm/archive"
)

const odtContent = "content.xml"

func readODT(path string) (string, error) {
	data, err := archive.ReadEntry(path, odtContent)
	if err != nil {
		return "", err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return "", fmt.Errorf("unable to parse %s: %w", odtContent, err)
	}
	root := doc.Root()
	if root == nil {
		return "", fmt.Errorf("%s has no root element", odtContent)
	}
	body := childElement(root, "office", "body")
	if body == nil {
		return "", fmt.Errorf("%s has no office:body", odtContent)
	}
	text := childElement(body, "office", "text")
	if text == nil {
		return "", fmt.Errorf("%s is not a text document", odtContent)
	}

	var sb strings.Builder
	writeODTBlocks(&sb, text)
	return sb.String(), nil
}

func childElement(el *etree.Element, space, tag string) *etree.Element {
	for _, c := range el.ChildElements() {
		if c.Space == space && c.Tag == tag {
			return c
		}
	}
	return nil
}

// writeODTBlocks converts block level children of el in document order.
func writeODTBlocks(sb *strings.Builder, el *etree.Element) {
	for _, c := range el.ChildElements() {
		switch {
		case c.Space == "text" && c.Tag == "h":
			level, err := strconv.Atoi(c.SelectAttrValue("text:outline-level", "1"))
			if err != nil || level < 1 {
				level = 1
			}
			level = min(level, 6)
			if t := odtText(c); t != "" {
				fmt.Fprintf(sb, "<h%d>%s</h%d>\n", level, html.EscapeString(t), level)
			}
		case c.Space == "text" && c.Tag == "p":
			if t := odtText(c); t != "" {
				fmt.Fprintf(sb, "<p>%s</p>\n", html.EscapeString(t))
			}
		case c.Space == "text" && c.Tag == "list":
			sb.WriteString("<ul>\n")
			for _, item := range c.ChildElements() {
				if item.Space != "text" || (item.Tag != "list-item" && item.Tag != "list-header") {
					continue
				}
				sb.WriteString("<li>\n")
				writeODTBlocks(sb, item)
				sb.WriteString("</li>\n")
			}
			sb.WriteString("</ul>\n")
		case c.Space == "table" && c.Tag == "table":
			writeODTTable(sb, c)
		case c.Space == "text" && c.Tag == "section":
			writeODTBlocks(sb, c)
		}
	}
}

func writeODTTable(sb *strings.Builder, table *etree.Element) {
	sb.WriteString("<table>\n")
	for _, row := range table.FindElements(".//table:table-row") {
		sb.WriteString("<tr>")
		for _, cell := range row.ChildElements() {
			if cell.Space != "table" || cell.Tag != "table-cell" {
				continue
			}
			sb.WriteString("<td>")
			var cellText []string
			for _, p := range cell.ChildElements() {
				if t := odtText(p); t != "" {
					cellText = append(cellText, html.EscapeString(t))
				}
			}
			sb.WriteString(strings.Join(cellText, "<br/>"))
			sb.WriteString("</td>")
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("</table>\n")
}

// odtText extracts paragraph text expanding text:s, text:tab and
// text:line-break.
func odtText(el *etree.Element) string {
	var sb strings.Builder
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, tok := range e.Child {
			switch v := tok.(type) {
			case *etree.CharData:
				sb.WriteString(v.Data)
			case *etree.Element:
				if v.Space != "text" {
					walk(v)
					continue
				}
				switch v.Tag {
				case "s":
					n, err := strconv.Atoi(v.SelectAttrValue("text:c", "1"))
					if err != nil || n < 1 {
						n = 1
					}
					sb.WriteString(strings.Repeat(" ", n))
				case "tab":
					sb.WriteString("\t")
				case "line-break":
					sb.WriteString("\n")
				case "note":
					// footnote bodies do not belong to running text
				default:
					walk(v)
				}
			}
		}
	}
	walk(el)
	return strings.TrimSpace(sb.String())
}
