package scraper

import "context"

// Interface defines the contract for profile scraping operations
type Interface interface {
	GetProfileStats(ctx context.Context, username string) (*ProfileStats, error)
	InspectLayout(ctx context.Context, username string) (*PageLayout, error)
}
