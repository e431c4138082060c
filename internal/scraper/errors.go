package scraper

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch covers transport failures, non-200 responses and pages that
	// demand a login. The profile is skipped.
	ErrFetch = errors.New("fetch failed")

	// ErrAuthRequired is returned alongside ErrFetch when the page is only
	// visible to registered users and the supplied cookies did not help.
	ErrAuthRequired = errors.New("authentication required")

	// ErrParsing means the expected statistics markup was not found.
	ErrParsing = errors.New("parsing failed")
)

// OffsetError reports a container that exists but is shorter than the
// offset a field is read from. It matches ErrParsing.
type OffsetError struct {
	Field  string
	Offset int
	Length int
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("%s: offset %d out of range for %s (cell has %d nodes)", ErrParsing, e.Offset, e.Field, e.Length)
}

func (e *OffsetError) Is(target error) bool {
	return target == ErrParsing
}
