// Package scorm builds SCORM 1.2 content packages out of linked content
// forest.
package scorm

import (
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"doc2scorm/content"
)

const (
	ManifestName = "imsmanifest.xml"

	nsIMSCP  = "http://www.imsproject.org/xsd/imscp_rootv1p1p2"
	nsADLCP  = "http://www.adlnet.org/xsd/adlcp_rootv1p2"
	nsXSI    = "http://www.w3.org/2001/XMLSchema-instance"
	schemaLo = nsIMSCP + " imscp_rootv1p1p2.xsd " + nsADLCP + " adlcp_rootv1p2.xsd"

	ScormTypeSCO   = "sco"
	ScormTypeAsset = "asset"
)

// Identifier prefixes keep item, resource and organization identifier spaces
// apart.
const (
	prefixManifest = "MANIFEST-"
	prefixOrg      = "ORG-"
	prefixItem     = "ITEM-"
	prefixResource = "RES-"
)

// Item is navigable entry of organization tree, one per content node.
type Item struct {
	Identifier    string
	IdentifierRef string
	Title         string
	Children      []*Item
}

// Resource is single entry of flat resources list.
type Resource struct {
	Identifier string
	Type       string
	ScormType  string
	Href       string
	// files belonging to resource, Href alone when empty
	Files []string
}

// Manifest is in-memory imsmanifest.xml.
type Manifest struct {
	Identifier   string
	Organization string
	Title        string
	Items        []*Item
	Resources    []*Resource
}

type manifestOptions struct {
	identifier string
	assetFiles map[string][]string
}

type ManifestOption func(*manifestOptions)

// WithIdentifier sets manifest@identifier, random one is generated otherwise.
func WithIdentifier(id string) ManifestOption {
	return func(o *manifestOptions) {
		o.identifier = id
	}
}

// WithAssetFiles lists files for asset hrefs which are directories.
func WithAssetFiles(files map[string][]string) ManifestOption {
	return func(o *manifestOptions) {
		o.assetFiles = files
	}
}

func newID(prefix string) string {
	return prefix + uuid.NewString()
}

// BuildManifest mirrors forest into item tree and collects flat resource list:
// one "sco" resource per node in pre-order, then one "asset" resource per
// asset href. Assets get no items. Nodes must be linked already.
func BuildManifest(courseTitle string, forest []*content.Node, assets []string, opts ...ManifestOption) *Manifest {
	var o manifestOptions
	for _, opt := range opts {
		opt(&o)
	}

	m := &Manifest{
		Identifier:   o.identifier,
		Organization: newID(prefixOrg),
		Title:        sanitizeTitle(courseTitle),
	}
	if m.Identifier == "" {
		m.Identifier = newID(prefixManifest)
	}

	type frame struct {
		node  *content.Node
		items *[]*Item
	}
	stack := make([]frame, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, frame{forest[i], &m.Items})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		res := &Resource{
			Identifier: newID(prefixResource),
			Type:       "webcontent",
			ScormType:  ScormTypeSCO,
			Href:       f.node.Filename,
		}
		m.Resources = append(m.Resources, res)

		item := &Item{
			Identifier:    newID(prefixItem),
			IdentifierRef: res.Identifier,
			Title:         sanitizeTitle(f.node.Title),
		}
		*f.items = append(*f.items, item)

		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], &item.Children})
		}
	}

	for _, href := range assets {
		m.Resources = append(m.Resources, &Resource{
			Identifier: newID(prefixResource),
			Type:       "webcontent",
			ScormType:  ScormTypeAsset,
			Href:       href,
			Files:      o.assetFiles[href],
		})
	}
	return m
}

// Document serializes manifest.
func (m *Manifest) Document(pretty bool) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("manifest")
	root.CreateAttr("identifier", m.Identifier)
	root.CreateAttr("version", "1.2")
	root.CreateAttr("xmlns", nsIMSCP)
	root.CreateAttr("xmlns:adlcp", nsADLCP)
	root.CreateAttr("xmlns:xsi", nsXSI)
	root.CreateAttr("xsi:schemaLocation", schemaLo)

	metadata := root.CreateElement("metadata")
	metadata.CreateElement("schema").SetText("ADL SCORM")
	metadata.CreateElement("schemaversion").SetText("1.2")

	orgs := root.CreateElement("organizations")
	orgs.CreateAttr("default", m.Organization)
	org := orgs.CreateElement("organization")
	org.CreateAttr("identifier", m.Organization)
	org.CreateElement("title").SetText(m.Title)
	writeItems(org, m.Items)

	resources := root.CreateElement("resources")
	for _, r := range m.Resources {
		el := resources.CreateElement("resource")
		el.CreateAttr("identifier", r.Identifier)
		el.CreateAttr("type", r.Type)
		el.CreateAttr("adlcp:scormtype", r.ScormType)
		el.CreateAttr("href", r.Href)
		files := r.Files
		if len(files) == 0 {
			files = []string{r.Href}
		}
		for _, f := range files {
			el.CreateElement("file").CreateAttr("href", f)
		}
	}

	if pretty {
		doc.Indent(2)
	}
	return doc
}

func writeItems(parent *etree.Element, items []*Item) {
	for _, it := range items {
		el := parent.CreateElement("item")
		el.CreateAttr("identifier", it.Identifier)
		el.CreateAttr("identifierref", it.IdentifierRef)
		el.CreateElement("title").SetText(it.Title)
		writeItems(el, it.Children)
	}
}

// ItemCount returns number of items in the whole organization tree.
func (m *Manifest) ItemCount() int {
	total := 0
	stack := append([]*Item(nil), m.Items...)
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = append(stack[:len(stack)-1], it.Children...)
		total++
	}
	return total
}

var unsafeTitleChars = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s.,;:!?¿¡'"()\[\]/&%+#@-]`)

// sanitizeTitle drops characters outside of letters, digits, whitespace and
// common punctuation, XML control characters included.
func sanitizeTitle(title string) string {
	title = unsafeTitleChars.ReplaceAllString(norm.NFC.String(title), "")
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return content.UntitledTitle
	}
	return title
}
