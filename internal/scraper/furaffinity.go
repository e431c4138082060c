package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// authRequiredMarker appears on profile pages hidden from guests.
const authRequiredMarker = "registered users only"

// Options configures a Scraper
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// Jar, when set, supplies the cookies of a logged in browser session.
	Jar    http.CookieJar
	Logger *slog.Logger
}

// Scraper fetches profile pages and extracts their statistics
type Scraper struct {
	client  *resty.Client
	baseURL string
	logger  *slog.Logger
}

// NewScraper creates a new profile scraper. Requests are never retried.
func NewScraper(opts Options) *Scraper {
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8").
		SetHeader("DNT", "1").
		SetHeader("Upgrade-Insecure-Requests", "1")

	if opts.Jar != nil {
		client.SetCookieJar(opts.Jar)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scraper{
		client:  client,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		logger:  logger,
	}
}

// ProfileURL returns the statistics page address for username
func (s *Scraper) ProfileURL(username string) string {
	return fmt.Sprintf("%s/user/%s", s.baseURL, url.PathEscape(username))
}

// Fetch downloads the profile page of username and returns its body.
func (s *Scraper) Fetch(ctx context.Context, username string) (string, error) {
	profileURL := s.ProfileURL(username)
	s.logger.Debug("fetching profile page", "url", profileURL)

	resp, err := s.client.R().SetContext(ctx).Get(profileURL)
	if err != nil {
		return "", fmt.Errorf("%w: request for %s: %v", ErrFetch, username, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%w: page status code was %d for %s", ErrFetch, resp.StatusCode(), username)
	}

	body := resp.String()
	if strings.Contains(body, authRequiredMarker) {
		return "", fmt.Errorf("%w: %w: profile %s requires authentication and authentication failed", ErrFetch, ErrAuthRequired, username)
	}

	return body, nil
}

// GetProfileStats fetches and parses the statistics of one profile
func (s *Scraper) GetProfileStats(ctx context.Context, username string) (*ProfileStats, error) {
	body, err := s.Fetch(ctx, username)
	if err != nil {
		return nil, err
	}

	stats, err := ParseProfileHTML(body)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", username, err)
	}

	s.logger.Debug("parsed profile stats",
		"user", username,
		"views", stats.Views,
		"submissions", stats.Submissions,
		"favourites", stats.Favourites,
		"comments", stats.Comments,
		"watchers", stats.Watchers)

	return stats, nil
}
