package record

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderTable writes records to w as a rounded table with the log's columns.
func RenderTable(w io.Writer, records []Record) {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	header := make(table.Row, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	t.AppendHeader(header)

	for _, r := range records {
		row := make(table.Row, 0, len(Header))
		for _, v := range r.row() {
			row = append(row, v)
		}
		t.AppendRow(row)
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
