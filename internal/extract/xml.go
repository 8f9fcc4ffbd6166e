package extract

import (
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/nao1215/warcsift/internal/model"
)

// XMLStrategy parses the document as well-formed XML. Documents that are
// not well-formed, or that contain no element at all, are declined.
type XMLStrategy struct{}

// Name implements Strategy.
func (XMLStrategy) Name() string { return string(model.ContentTypeXML) }

// Extract implements Strategy.
func (XMLStrategy) Extract(doc string) (Result, bool) {
	root, err := xmlquery.Parse(strings.NewReader(doc))
	if err != nil || !hasElement(root) {
		return Result{}, false
	}

	var b strings.Builder
	collectXMLText(root, &b)

	var title string
	if node := xmlquery.FindOne(root, "//title"); node != nil {
		title = strings.TrimSpace(node.InnerText())
	}
	return Result{Text: b.String(), Title: title, Type: model.ContentTypeXML}, true
}

func hasElement(n *xmlquery.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return true
		}
	}
	return false
}

func collectXMLText(n *xmlquery.Node, b *strings.Builder) {
	switch n.Type {
	case xmlquery.TextNode, xmlquery.CharDataNode:
		joinText(b, n.Data)
		return
	case xmlquery.CommentNode, xmlquery.DeclarationNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectXMLText(c, b)
	}
}
