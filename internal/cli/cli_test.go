package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fastats/internal/record"
)

const profilePage = `<html><body>
<div class="cell">
<b>Page Visits:</b> 100<br>
<b>Submissions:</b> 20<br>
<b>Favs:</b> 30<br>
</div>
<div class="cell">
<b>Comments Earned:</b> 4<br>
</div>
<a target="_blank" href="/watchlist/">55 Watchers</a>
</body></html>`

type upstream struct {
	*httptest.Server
	requests atomic.Int32
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()

	u := &upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.requests.Add(1)
		switch r.URL.Path {
		case "/user/p1", "/user/alice", "/user/bob", "/user/carol":
			w.Write([]byte(profilePage))
		case "/user/private":
			if c, err := r.Cookie("session"); err == nil && c.Value == "valid" {
				w.Write([]byte(profilePage))
				return
			}
			w.Write([]byte("The owner of this page has elected to make it available to registered users only."))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(u.Close)

	t.Setenv("FASTATS_BASE_URL", u.URL)
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("FASTATS_REQUEST_INTERVAL", "0")
	return u
}

func run(args ...string) (int, string) {
	var out bytes.Buffer
	code := Execute(context.Background(), args, &out)
	return code, out.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestScrape_SkipsFailedProfile(t *testing.T) {
	newUpstream(t)
	out := filepath.Join(t.TempDir(), "stats.csv")

	code, logs := run("-p", "p1", "-p", "p2", "-f", out)

	assert.Equal(t, 0, code)
	assert.Equal(t, 1, strings.Count(logs, "level=ERROR"))
	assert.Contains(t, logs, "user=p2")
	assert.Contains(t, logs, `msg="wrote profiles to file" count=1`)

	records, err := record.ReadCSV(out)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "p1", records[0].User)
	assert.Equal(t, "100", records[0].Stats.Views)
	assert.Equal(t, "20", records[0].Stats.Submissions)
	assert.Equal(t, "30", records[0].Stats.Favourites)
	assert.Equal(t, "4", records[0].Stats.Comments)
	assert.Equal(t, "55", records[0].Stats.Watchers)
}

func TestScrape_NameFileAfterFlags(t *testing.T) {
	newUpstream(t)
	names := writeFile(t, "names.txt", "alice\n\nbob\n  \ncarol\n")
	out := filepath.Join(t.TempDir(), "stats.csv")

	code, _ := run("-p", "carol", "--name-file", names, "-f", out)
	require.Equal(t, 0, code)

	records, err := record.ReadCSV(out)
	require.NoError(t, err)

	var users []string
	for _, r := range records {
		users = append(users, r.User)
	}
	assert.Equal(t, []string{"carol", "alice", "bob", "carol"}, users)
}

func TestScrape_RepeatedRunsKeepOneHeader(t *testing.T) {
	newUpstream(t)
	out := filepath.Join(t.TempDir(), "stats.csv")

	code, _ := run("-p", "alice", "-f", out)
	require.Equal(t, 0, code)
	code, _ = run("-p", "bob", "-f", out)
	require.Equal(t, 0, code)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), "Time,User,Views,Submissions,Favourites,Comments,Watchers"))

	records, err := record.ReadCSV(out)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestScrape_WithoutOutputFile(t *testing.T) {
	newUpstream(t)

	code, output := run("-p", "alice")

	assert.Equal(t, 0, code)
	assert.Contains(t, output, "alice")
	assert.Contains(t, output, "WATCHERS")
	assert.NotContains(t, output, "wrote profiles to file")
}

func TestScrape_CookiesAuthenticate(t *testing.T) {
	newUpstream(t)
	cookieFile := writeFile(t, "cookies.txt", "# Netscape HTTP Cookie File\n127.0.0.1\tFALSE\t/\tFALSE\t4102444800\tsession\tvalid\n")
	out := filepath.Join(t.TempDir(), "stats.csv")

	t.Run("positional", func(t *testing.T) {
		code, logs := run(cookieFile, "-p", "private", "-f", out, "-v")
		assert.Equal(t, 0, code)
		assert.NotContains(t, logs, "level=ERROR")
		assert.Contains(t, logs, "cookies loaded")
	})

	t.Run("flag", func(t *testing.T) {
		code, logs := run("--cookies", cookieFile, "-p", "private")
		assert.Equal(t, 0, code)
		assert.NotContains(t, logs, "level=ERROR")
	})

	t.Run("no cookies", func(t *testing.T) {
		code, logs := run("-p", "private")
		assert.Equal(t, 0, code)
		assert.Contains(t, logs, "kind=auth")
	})
}

func TestScrape_ConfigurationErrors(t *testing.T) {
	u := newUpstream(t)
	cookieFile := writeFile(t, "cookies.txt", "# Netscape HTTP Cookie File\n")

	tests := []struct {
		name string
		args []string
	}{
		{"missing cookie file", []string{"--cookies", filepath.Join(t.TempDir(), "nope.txt"), "-p", "alice"}},
		{"invalid cookie file", []string{writeFile(t, "bad.txt", "garbage\n"), "-p", "alice"}},
		{"missing name file", []string{"--name-file", filepath.Join(t.TempDir(), "nope.txt")}},
		{"no profiles", []string{}},
		{"conflicting cookie paths", []string{cookieFile, "--cookies", "other.txt", "-p", "alice"}},
		{"too many arguments", []string{cookieFile, "extra", "-p", "alice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, logs := run(tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, logs, "fatal error")
		})
	}

	assert.Equal(t, int32(0), u.requests.Load(), "configuration errors must stop before any request")
}

func TestHistory(t *testing.T) {
	newUpstream(t)
	out := filepath.Join(t.TempDir(), "stats.csv")

	code, _ := run("-p", "alice", "-p", "bob", "-f", out)
	require.Equal(t, 0, code)

	code, output := run("history", "-f", out, "-p", "bob")
	assert.Equal(t, 0, code)
	assert.Contains(t, output, "bob")
	assert.NotContains(t, output, "alice")

	code, output = run("history", "-f", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Equal(t, 1, code)
	assert.Contains(t, output, "log file not found")
}

func TestDebug(t *testing.T) {
	newUpstream(t)

	code, output := run("debug", "alice")
	assert.Equal(t, 0, code)
	assert.Contains(t, output, "Page Visits:")
	assert.Contains(t, output, "views")
	assert.Contains(t, output, "comments")
	assert.Contains(t, output, "55 Watchers")

	code, _ = run("debug", "ghost")
	assert.Equal(t, 1, code)
}
