package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/warcsift/internal/model"
)

// nonContent are elements removed before text extraction.
const nonContent = "script, style, nav, footer, header, aside"

// textSources are tried in order; the first present element supplies the text.
var textSources = []string{"article", "main", "body"}

// HTMLStrategy parses the document leniently as HTML.
type HTMLStrategy struct{}

// Name implements Strategy.
func (HTMLStrategy) Name() string { return string(model.ContentTypeHTML) }

// Extract implements Strategy. It declines only empty documents.
func (HTMLStrategy) Extract(doc string) (Result, bool) {
	if strings.TrimSpace(doc) == "" {
		return Result{}, false
	}
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return Result{}, false
	}
	d := goquery.NewDocumentFromNode(root)

	title := strings.TrimSpace(d.Find("title").First().Text())
	d.Find(nonContent).Remove()

	var b strings.Builder
	for _, sel := range textSources {
		if s := d.Find(sel).First(); s.Length() > 0 {
			for _, n := range s.Nodes {
				collectHTMLText(n, &b)
			}
			break
		}
	}
	return Result{Text: b.String(), Title: title, Type: model.ContentTypeHTML}, true
}

func collectHTMLText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		joinText(b, n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if n.Data == "noscript" || n.Data == "template" {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectHTMLText(c, b)
	}
}
