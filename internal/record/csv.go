// Package record persists scraped profile statistics to an append-only CSV log.
package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"fastats/internal/scraper"
)

// TimeLayout is the timestamp format of the first column
const TimeLayout = time.RFC3339

// Header is the first row of every log file
var Header = []string{"Time", "User", "Views", "Submissions", "Favourites", "Comments", "Watchers"}

// Record is one profile's statistics at a point in time
type Record struct {
	Time  time.Time
	User  string
	Stats scraper.ProfileStats
}

func (r Record) row() []string {
	return []string{
		r.Time.Format(TimeLayout),
		r.User,
		r.Stats.Views,
		r.Stats.Submissions,
		r.Stats.Favourites,
		r.Stats.Comments,
		r.Stats.Watchers,
	}
}

// AppendCSV appends records to the log at path. The header is written only
// when the file is new or empty, so repeated runs against the same file
// never duplicate it.
func AppendCSV(path string, records []Record) error {
	needsHeader := true
	if info, err := os.Stat(path); err == nil {
		needsHeader = info.Size() == 0
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if needsHeader {
		if err := writer.Write(Header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for _, r := range records {
		if err := writer.Write(r.row()); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", r.User, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return file.Close()
}

// ReadCSV reads every data row of the log at path
func ReadCSV(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Read(file)
}

// Read parses a log written by AppendCSV. The header row is skipped
// wherever it appears.
func Read(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Header)

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if row[0] == Header[0] {
			continue
		}

		ts, err := time.Parse(TimeLayout, row[0])
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: invalid time %q: %w", line, row[0], err)
		}
		records = append(records, Record{
			Time: ts,
			User: row[1],
			Stats: scraper.ProfileStats{
				Views:       row[2],
				Submissions: row[3],
				Favourites:  row[4],
				Comments:    row[5],
				Watchers:    row[6],
			},
		})
	}

	return records, nil
}

// FilterUsers keeps only the records of the given users. An empty list
// keeps everything.
func FilterUsers(records []Record, users []string) []Record {
	if len(users) == 0 {
		return records
	}

	wanted := make(map[string]bool, len(users))
	for _, u := range users {
		wanted[u] = true
	}

	var out []Record
	for _, r := range records {
		if wanted[r.User] {
			out = append(out, r)
		}
	}
	return out
}
