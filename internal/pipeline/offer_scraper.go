package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// OfferScraper aggregates the marketplace pages of a release into one list of
// raw rows.
type OfferScraper struct {
	fetcher domain.PageFetcher
	logger  *slog.Logger
}

// NewOfferScraper creates a new OfferScraper.
func NewOfferScraper(fetcher domain.PageFetcher, logger *slog.Logger) *OfferScraper {
	return &OfferScraper{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Collect pages through the offers of releaseID starting at page 1 until a
// page reports Last. Rows keep page order then in-page order. Any page
// failure aborts the release and is returned as a *domain.TransportError.
func (s *OfferScraper) Collect(ctx context.Context, releaseID int64) ([]domain.RawListing, error) {
	var rows []domain.RawListing

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, &domain.TransportError{ReleaseID: releaseID, Page: page, Err: err}
		}

		p, err := s.fetcher.FetchPage(ctx, releaseID, page)
		if err != nil {
			var te *domain.TransportError
			if errors.As(err, &te) {
				return nil, err
			}
			return nil, &domain.TransportError{ReleaseID: releaseID, Page: page, Err: err}
		}

		rows = append(rows, p.Rows...)
		s.logger.DebugContext(ctx, "collected offer page",
			slog.Int64("release_id", releaseID),
			slog.Int("page", page),
			slog.Int("page_rows", len(p.Rows)),
			slog.Int("total_rows", len(rows)),
		)

		if p.Last {
			break
		}
	}

	return rows, nil
}
