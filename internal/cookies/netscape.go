// Package cookies loads browser-exported Netscape cookie files into a jar.
package cookies

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"fastats/pkg/config"
)

const httpOnlyPrefix = "#HttpOnly_"

var magicHeaders = []string{"# Netscape HTTP Cookie File", "# HTTP Cookie File"}

// Load reads the cookie file at path into a new jar. It returns the jar and
// the number of cookies stored. Session cookies and expired cookies are
// discarded.
func Load(path string) (*cookiejar.Jar, int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, fmt.Errorf("%w: cookie file not found: %s", config.ErrConfiguration, path)
		}
		return nil, 0, fmt.Errorf("%w: failed to open cookie file: %v", config.ErrConfiguration, err)
	}
	defer f.Close()

	parsed, err := Parse(f, time.Now())
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", config.ErrConfiguration, path, err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, 0, err
	}
	for _, c := range parsed {
		jar.SetCookies(c.origin(), []*http.Cookie{c.cookie})
	}

	return jar, len(parsed), nil
}

// Entry is one cookie line together with the host it was issued for.
type Entry struct {
	Host   string
	cookie *http.Cookie
}

// Cookie returns the parsed cookie.
func (e Entry) Cookie() *http.Cookie {
	return e.cookie
}

func (e Entry) origin() *url.URL {
	scheme := "http"
	if e.cookie.Secure {
		scheme = "https"
	}
	return &url.URL{Scheme: scheme, Host: e.Host, Path: e.cookie.Path}
}

// Parse reads cookie lines from r. The first line must be one of the known
// magic headers. Cookies without an expiry or expired before now are skipped.
func Parse(r io.Reader, now time.Time) ([]Entry, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("empty cookie file")
	}
	if !hasMagicHeader(scanner.Text()) {
		return nil, errors.New("does not look like a Netscape format cookies file")
	}

	var entries []Entry
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")

		httpOnly := false
		if strings.HasPrefix(line, httpOnlyPrefix) {
			httpOnly = true
			line = strings.TrimPrefix(line, httpOnlyPrefix)
		}
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		entry, keep, err := parseLine(line, now)
		if err != nil {
			return nil, fmt.Errorf("invalid cookie line %d: %w", lineNo, err)
		}
		if !keep {
			continue
		}
		entry.cookie.HttpOnly = httpOnly
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func hasMagicHeader(line string) bool {
	for _, h := range magicHeaders {
		if strings.HasPrefix(line, h) {
			return true
		}
	}
	return false
}

// parseLine splits one tab separated cookie line:
// domain, include-subdomains, path, secure, expires, name, value.
func parseLine(line string, now time.Time) (Entry, bool, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 7 {
		return Entry{}, false, fmt.Errorf("expected 7 tab separated fields, got %d", len(fields))
	}

	domain := strings.TrimSpace(fields[0])
	if domain == "" {
		return Entry{}, false, errors.New("missing domain")
	}
	includeSubdomains := strings.EqualFold(fields[1], "TRUE")
	path := fields[2]
	if path == "" {
		path = "/"
	}
	secure := strings.EqualFold(fields[3], "TRUE")

	var expires time.Time
	if raw := strings.TrimSpace(fields[4]); raw != "" {
		sec, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Entry{}, false, fmt.Errorf("invalid expiry %q", raw)
		}
		if sec > 0 {
			expires = time.Unix(sec, 0)
		}
	}

	// Session and expired cookies are dropped.
	if expires.IsZero() || !expires.After(now) {
		return Entry{}, false, nil
	}

	host := strings.TrimPrefix(domain, ".")
	cookie := &http.Cookie{
		Name:    fields[5],
		Value:   fields[6],
		Path:    path,
		Secure:  secure,
		Expires: expires,
	}
	if includeSubdomains || strings.HasPrefix(domain, ".") {
		cookie.Domain = host
	}

	return Entry{Host: host, cookie: cookie}, true, nil
}
