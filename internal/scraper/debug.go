package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// InspectLayout fetches a profile page and lists every descendant of each
// stat cell with its index, so the field offsets can be checked against
// the live markup.
func (s *Scraper) InspectLayout(ctx context.Context, username string) (*PageLayout, error) {
	body, err := s.Fetch(ctx, username)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse HTML: %v", ErrParsing, err)
	}

	layout := DescribeLayout(doc)
	layout.Username = username

	s.logger.Debug("inspected page layout",
		"user", username,
		"title", strings.TrimSpace(doc.Find("title").Text()),
		"cells", len(layout.Cells))

	return layout, nil
}

// DescribeLayout builds the layout of an already parsed page
func DescribeLayout(doc *goquery.Document) *PageLayout {
	layout := &PageLayout{}

	doc.Find(cellSelector).Each(func(i int, sel *goquery.Selection) {
		var nodes []LayoutNode
		for idx, n := range descendants(sel.Get(0)) {
			nodes = append(nodes, LayoutNode{
				Index: idx,
				Kind:  nodeKind(n),
				Text:  strings.TrimSpace(nodeText(n)),
			})
		}
		layout.Cells = append(layout.Cells, nodes)
	})

	layout.WatcherText = strings.TrimSpace(doc.Find(watcherSelector).First().Text())
	return layout
}

func nodeKind(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return "text"
	case html.ElementNode:
		return "<" + n.Data + ">"
	case html.CommentNode:
		return "comment"
	default:
		return "other"
	}
}
