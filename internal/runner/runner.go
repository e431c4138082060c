// Package runner drives a batch of profile lookups, one after another.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"fastats/internal/record"
	"fastats/internal/scraper"
)

// StatsFetcher is the part of the scraper a batch needs
type StatsFetcher interface {
	GetProfileStats(ctx context.Context, username string) (*scraper.ProfileStats, error)
}

// Runner fetches profiles sequentially and collects the successful results
type Runner struct {
	fetcher StatsFetcher
	logger  *slog.Logger
	limiter *rate.Limiter
	now     func() time.Time
}

// Options configures a Runner
type Options struct {
	// Interval is the minimum delay between two requests. Zero disables pacing.
	Interval time.Duration
	Logger   *slog.Logger
	// Now stamps records; defaults to time.Now.
	Now func() time.Time
}

// New creates a Runner around fetcher
func New(fetcher StatsFetcher, opts Options) *Runner {
	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Runner{
		fetcher: fetcher,
		logger:  logger,
		limiter: rate.NewLimiter(limit, 1),
		now:     now,
	}
}

// Run looks up every profile in order. Failures are logged and skipped; the
// returned records hold only the successes, stamped at extraction time.
func (r *Runner) Run(ctx context.Context, profiles []string) []record.Record {
	var records []record.Record

	for _, profile := range profiles {
		if err := r.limiter.Wait(ctx); err != nil {
			r.logger.Warn("batch interrupted", "remaining_from", profile, "err", err)
			break
		}

		r.logger.Info("retrieving statistics", "user", profile)

		stats, err := r.fetcher.GetProfileStats(ctx, profile)
		if err != nil {
			r.logger.Error("failed to get statistics", "user", profile, "kind", errorKind(err), "err", err)
			continue
		}

		records = append(records, record.Record{
			Time:  r.now(),
			User:  profile,
			Stats: *stats,
		})
	}

	return records
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, scraper.ErrAuthRequired):
		return "auth"
	case errors.Is(err, scraper.ErrFetch):
		return "fetch"
	case errors.Is(err, scraper.ErrParsing):
		return "parsing"
	default:
		return "unknown"
	}
}
