package scraper

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// profileFixture mirrors the statistics block of a profile page. The
// whitespace between tags matters: text nodes count towards the offsets.
const profileFixture = `<html>
<head><title>Userpage of tester</title></head>
<body>
<div class="userpage-layout">
<div class="cell">
<b>Page Visits:</b> 12,345<br>
<b>Submissions:</b> 67<br>
<b>Favs:</b> 890<br>
</div>
<div class="cell">
<b>Comments Earned:</b> 42<br>
<b>Comments Made:</b> 17<br>
</div>
<a href="/watchlist/to/tester/" target="_blank">123 Watchers</a>
</div>
</body>
</html>`

func TestExtractNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"watcher link", "123 Watchers", "123", true},
		{"number only", "7", "7", true},
		{"leading text", "Watched by 56 users", "56", true},
		{"multiple numbers", "12 of 34", "12", true},
		{"no number", "no numbers here", "", false},
		{"empty string", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := extractNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseProfileHTML(t *testing.T) {
	stats, err := ParseProfileHTML(profileFixture)
	require.NoError(t, err)

	assert.Equal(t, &ProfileStats{
		Views:       "12,345",
		Submissions: "67",
		Favourites:  "890",
		Comments:    "42",
		Watchers:    "123",
	}, stats)

	for _, v := range []string{stats.Views, stats.Submissions, stats.Favourites, stats.Comments, stats.Watchers} {
		assert.NotEmpty(t, v)
		assert.Equal(t, strings.TrimSpace(v), v)
	}
}

func TestParseProfileHTML_ExtraCellsIgnored(t *testing.T) {
	page := strings.Replace(profileFixture, `<a href="/watchlist`, `<div class="cell">unrelated</div><a href="/watchlist`, 1)

	stats, err := ParseProfileHTML(page)
	require.NoError(t, err)
	assert.Equal(t, "42", stats.Comments)
}

func TestParseProfileHTML_MissingMarkup(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"empty document", ""},
		{"no cells", `<html><body><p>Nothing to see</p></body></html>`},
		{"single cell", `<html><body><div class="cell"><b>Page Visits:</b> 1<br></div></body></html>`},
		{"cells under another tag", `<span class="cell">1</span><span class="cell">2</span>`},
		{"no watcher link", strings.Replace(profileFixture, `target="_blank"`, "", 1)},
		{"watcher link without count", strings.Replace(profileFixture, "123 Watchers", "Watchers", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := ParseProfileHTML(tt.html)
			assert.Nil(t, stats)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParsing), "unexpected error: %v", err)
		})
	}
}

func TestParseProfileHTML_ShortCell(t *testing.T) {
	page := `<html><body>
<div class="cell"><b>Page Visits:</b> 1</div>
<div class="cell"><b>Comments Earned:</b> 2<br>
</div>
<a target="_blank">3 Watchers</a>
</body></html>`

	_, err := ParseProfileHTML(page)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParsing))

	var offsetErr *OffsetError
	require.True(t, errors.As(err, &offsetErr))
	assert.Equal(t, "views", offsetErr.Field)
	assert.Equal(t, 3, offsetErr.Offset)
	assert.Equal(t, 3, offsetErr.Length)
}

func TestParseProfileHTML_EmptyValue(t *testing.T) {
	page := strings.Replace(profileFixture, "<b>Page Visits:</b> 12,345<br>", "<b>Page Visits:</b>   <br>", 1)

	_, err := ParseProfileHTML(page)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParsing))
	assert.Contains(t, err.Error(), "views")
}

func TestDescendants(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div id="x">a<b>b<i>c</i></b>d</div>`))
	require.NoError(t, err)

	nodes := descendants(doc.Find("#x").Get(0))

	var kinds []string
	for _, n := range nodes {
		kinds = append(kinds, nodeKind(n))
	}
	assert.Equal(t, []string{"text", "<b>", "text", "<i>", "text", "text"}, kinds)
	assert.Equal(t, "bc", nodeText(nodes[1]))
	assert.Equal(t, "d", nodeText(nodes[5]))
}

func TestDescribeLayout(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(profileFixture))
	require.NoError(t, err)

	layout := DescribeLayout(doc)

	require.Len(t, layout.Cells, 2)
	assert.Equal(t, "123 Watchers", layout.WatcherText)

	views := layout.Cells[0][viewsField.offset]
	assert.Equal(t, viewsField.offset, views.Index)
	assert.Equal(t, "text", views.Kind)
	assert.Equal(t, "12,345", views.Text)

	assert.Equal(t, "<b>", layout.Cells[0][1].Kind)
	assert.Equal(t, "Page Visits:", layout.Cells[0][2].Text)
	assert.Equal(t, "42", layout.Cells[1][commentsField.offset].Text)
}

func TestFieldPositions(t *testing.T) {
	assert.Equal(t, []FieldPosition{
		{Name: "views", Cell: 0, Offset: 3},
		{Name: "submissions", Cell: 0, Offset: 8},
		{Name: "favourites", Cell: 0, Offset: 13},
		{Name: "comments", Cell: 1, Offset: 3},
	}, FieldPositions())
}
