package domain

import "context"

// Page is one page of marketplace offers for a release.
type Page struct {
	Rows []RawListing
	Last bool
}

// PageFetcher retrieves marketplace offer rows for a release, one page at a
// time starting at page 1. Unavailable rows are filtered by the implementation.
type PageFetcher interface {
	FetchPage(ctx context.Context, releaseID int64, page int) (Page, error)
}

// StatsFetcher retrieves the historical sale statistics of a release.
type StatsFetcher interface {
	Stats(ctx context.Context, releaseID int64, url string) (Stats, error)
}
