package scraper

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	cellSelector    = "div.cell"
	watcherSelector = `a[target="_blank"]`
)

var firstNumber = regexp.MustCompile(`\d+`)

// statField locates one counter inside the page: the cell it lives in and
// its position within that cell's descendant sequence.
type statField struct {
	name   string
	cell   int
	offset int
}

var (
	viewsField       = statField{name: "views", cell: 0, offset: 3}
	submissionsField = statField{name: "submissions", cell: 0, offset: 8}
	favouritesField  = statField{name: "favourites", cell: 0, offset: 13}
	commentsField    = statField{name: "comments", cell: 1, offset: 3}
)

// minCells is the number of stat cells the fields above index into
const minCells = 2

// FieldPosition tells where in the stat cells a counter is read from
type FieldPosition struct {
	Name   string
	Cell   int
	Offset int
}

// FieldPositions lists the cell-based counters in column order. Watchers
// are read from the watcher link instead.
func FieldPositions() []FieldPosition {
	fields := []statField{viewsField, submissionsField, favouritesField, commentsField}
	out := make([]FieldPosition, len(fields))
	for i, f := range fields {
		out[i] = FieldPosition{Name: f.name, Cell: f.cell, Offset: f.offset}
	}
	return out
}

// ParseProfileHTML parses a raw profile page
func ParseProfileHTML(body string) (*ProfileStats, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse HTML: %v", ErrParsing, err)
	}
	return ParseProfileStats(doc)
}

// ParseProfileStats extracts the five statistics from a profile document
func ParseProfileStats(doc *goquery.Document) (*ProfileStats, error) {
	cells := doc.Find(cellSelector)
	if cells.Length() < minCells {
		return nil, fmt.Errorf("%w: found %d stat cells, need %d", ErrParsing, cells.Length(), minCells)
	}

	flat := make([][]*html.Node, cells.Length())
	for i, n := range cells.Nodes {
		flat[i] = descendants(n)
	}

	stats := &ProfileStats{}
	var err error
	if stats.Views, err = readField(flat, viewsField); err != nil {
		return nil, err
	}
	if stats.Submissions, err = readField(flat, submissionsField); err != nil {
		return nil, err
	}
	if stats.Favourites, err = readField(flat, favouritesField); err != nil {
		return nil, err
	}
	if stats.Comments, err = readField(flat, commentsField); err != nil {
		return nil, err
	}
	if stats.Watchers, err = parseWatchers(doc); err != nil {
		return nil, err
	}

	return stats, nil
}

// readField returns the trimmed text found at the field's position
func readField(cells [][]*html.Node, f statField) (string, error) {
	nodes := cells[f.cell]
	if f.offset >= len(nodes) {
		return "", &OffsetError{Field: f.name, Offset: f.offset, Length: len(nodes)}
	}

	value := strings.TrimSpace(nodeText(nodes[f.offset]))
	if value == "" {
		return "", fmt.Errorf("%w: empty value for %s at offset %d", ErrParsing, f.name, f.offset)
	}
	return value, nil
}

// parseWatchers reads the watcher count from the first external link, whose
// text looks like "123 Watchers".
func parseWatchers(doc *goquery.Document) (string, error) {
	link := doc.Find(watcherSelector).First()
	if link.Length() == 0 {
		return "", fmt.Errorf("%w: watcher link not found", ErrParsing)
	}

	count, ok := extractNumber(link.Text())
	if !ok {
		return "", fmt.Errorf("%w: no watcher count in %q", ErrParsing, strings.TrimSpace(link.Text()))
	}
	return count, nil
}

// extractNumber returns the first run of digits in text
func extractNumber(text string) (string, bool) {
	match := firstNumber.FindString(text)
	if match == "" {
		return "", false
	}
	return strings.TrimSpace(match), true
}

// descendants flattens the subtree below n in document order, text and
// comment nodes included, n itself excluded.
func descendants(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(parent *html.Node) {
		for child := parent.FirstChild; child != nil; child = child.NextSibling {
			out = append(out, child)
			walk(child)
		}
	}
	walk(n)
	return out
}

// nodeText returns the text of a text node, or the concatenated text below
// an element.
func nodeText(n *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(n, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer)
	}
}
