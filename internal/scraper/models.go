package scraper

import "time"

// ProfileStats holds the five counters shown on a profile page. Values are
// kept as the raw trimmed text since the site formats them inconsistently.
type ProfileStats struct {
	Views       string `json:"views"`
	Submissions string `json:"submissions"`
	Favourites  string `json:"favourites"`
	Comments    string `json:"comments"`
	Watchers    string `json:"watchers"`
}

// ProfileResponse is the API view of a single lookup
type ProfileResponse struct {
	Username  string       `json:"username"`
	Stats     ProfileStats `json:"stats"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// PageLayout describes the statistics markup of a profile page, used when
// the field offsets need re-tuning.
type PageLayout struct {
	Username    string         `json:"username"`
	Cells       [][]LayoutNode `json:"cells"`
	WatcherText string         `json:"watcher_text"`
}

// LayoutNode is one entry of a cell's descendant sequence
type LayoutNode struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	Text  string `json:"text"`
}

// ErrorResponse represents API error responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
