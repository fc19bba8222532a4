// Package matcher filters scraped marketplace listings against the resolved
// price ceilings and the minimum media and sleeve grades.
package matcher

import (
	"errors"
	"fmt"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// Matcher selects the good offers of a pass.
type Matcher struct {
	minMedia  domain.Condition
	minSleeve domain.Condition
	rates     domain.RateTable
	reference string
}

// New creates a Matcher. Prices in other currencies than reference are
// converted with rates before comparison; a listing whose currency has no
// rate is reported instead of being skipped silently.
func New(minMedia, minSleeve domain.Condition, rates domain.RateTable, reference string) *Matcher {
	return &Matcher{
		minMedia:  minMedia,
		minSleeve: minSleeve,
		rates:     rates,
		reference: reference,
	}
}

// IncomparableListing is a listing that could not be compared with its
// item's ceiling.
type IncomparableListing struct {
	Listing domain.Listing
	Err     error
}

func (e *IncomparableListing) Error() string {
	return fmt.Sprintf("matcher: listing %s of item %d: %v", e.Listing.URL, e.Listing.ItemID, e.Err)
}

func (e *IncomparableListing) Unwrap() error { return e.Err }

// Match walks items in want-list order and, for every item with a ceiling,
// keeps its listings (in scrape order) that are priced at or below the
// ceiling and meet both minimum grades. Listings are keyed by want-list item
// id and are only checked against that item's own ceiling.
//
// Every listing that cannot be compared contributes an *IncomparableListing
// to the joined error; the offers found are returned either way.
func (m *Matcher) Match(items []domain.WantlistItem, listings map[int64][]domain.Listing, ceilings map[int64]domain.Price) ([]domain.GoodOffer, error) {
	var (
		offers []domain.GoodOffer
		errs   []error
	)

	for _, item := range items {
		ceiling, ok := ceilings[item.ID]
		if !ok {
			continue
		}
		for _, l := range listings[item.ID] {
			good, err := m.accept(l, ceiling)
			if err != nil {
				errs = append(errs, &IncomparableListing{Listing: l, Err: err})
				continue
			}
			if good {
				offers = append(offers, domain.GoodOffer{Item: item, Listing: l, Ceiling: ceiling})
			}
		}
	}

	return offers, errors.Join(errs...)
}

// accept compares same-currency prices as printed; rates are only consulted
// when the listing and the ceiling differ.
func (m *Matcher) accept(l domain.Listing, ceiling domain.Price) (bool, error) {
	price, limit := l.Price, ceiling
	if price.Currency() != limit.Currency() {
		var err error
		if price, err = m.normalize(price); err != nil {
			return false, err
		}
		if limit, err = m.normalize(limit); err != nil {
			return false, err
		}
	}
	within, err := price.LessOrEqual(limit)
	if err != nil {
		return false, err
	}
	return within && l.Media.MeetsMinimum(m.minMedia) && l.Sleeve.MeetsMinimum(m.minSleeve), nil
}

func (m *Matcher) normalize(p domain.Price) (domain.Price, error) {
	if m.reference == "" {
		return p, nil
	}
	return m.rates.Convert(p, m.reference)
}
