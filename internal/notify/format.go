package notify

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

const missingHint = "Set prices online as a note of the form 'max price: xxx', or restart with -i."

// OfferMessage renders the notification of one good offer. stats is the
// rendered marketplace history and may be empty.
func OfferMessage(o domain.GoodOffer, stats string) Message {
	rel := o.Item.Release

	var b strings.Builder
	fmt.Fprintf(&b, "media condition: %s, sleeve condition: %s; price %s (max-price: %s)",
		o.Listing.Media, o.Listing.Sleeve, o.Listing.Price, o.Ceiling)
	if stats != "" {
		fmt.Fprintf(&b, "\nmarketplace stats: %s", stats)
	}
	if tl := rel.TracklistString(); tl != "" {
		fmt.Fprintf(&b, "\ntracklist: %s", tl)
	}

	url := rel.URL
	if url == "" {
		url = o.Listing.URL
	}
	return Message{
		Title: fmt.Sprintf("Good offer found for %s!", offerTitle(o.Item)),
		Body:  b.String(),
		URL:   url,
	}
}

// MissingMessage renders the summary of items without a ceiling.
func MissingMessage(items []domain.WantlistItem) Message {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.String())
	}
	msg := Message{
		Title: "Found items without max price!",
		Body:  "Please set a max-price for the following items: " + strings.Join(names, ", "),
	}
	if len(items) > 0 {
		msg.URL = items[0].Release.URL
	}
	return msg
}

func offerTitle(it domain.WantlistItem) string {
	if it.Release.Title != "" {
		return it.Release.Title
	}
	return it.String()
}

// StatsText renders the statistics of a release for display, or a short
// placeholder when they cannot be fetched.
func StatsText(ctx context.Context, stats domain.StatsFetcher, item domain.WantlistItem) string {
	if stats == nil {
		return ""
	}
	id := item.ReleaseID
	if id == 0 {
		id = item.ID
	}
	s, err := stats.Stats(ctx, id, item.Release.URL)
	if err != nil {
		return "unavailable"
	}
	return s.String()
}

// WriteReport prints a human-readable run report.
func WriteReport(ctx context.Context, w io.Writer, report domain.RunReport, stats domain.StatsFetcher) {
	if len(report.Offers) == 0 {
		fmt.Fprintln(w, "no good offers found!")
	}

	for _, o := range report.Offers {
		rel := o.Item.Release
		fmt.Fprintln(w, "good offer found for:")
		fmt.Fprintf(w, "    %s : %s\n", rel.ArtistNames(), rel.Title)
		fmt.Fprintf(w, "    %-17s: %s\n", "with tracklist", rel.TracklistString())
		fmt.Fprintf(w, "    %-17s: %s\n", "media condition", o.Listing.Media)
		fmt.Fprintf(w, "    %-17s: %s\n", "sleeve condition", o.Listing.Sleeve)
		fmt.Fprintf(w, "    %-17s: %s\n", "price", o.Listing.Price)
		fmt.Fprintf(w, "    %-17s: %s\n", "price (w/o ship)", o.Listing.PriceNoShipping)
		if s := StatsText(ctx, stats, o.Item); s != "" {
			fmt.Fprintf(w, "    %-17s: %s\n", "min, med, max", s)
		}
		fmt.Fprintf(w, "    (threshold price : %s)\n", o.Ceiling)
		fmt.Fprintln(w, o.Listing.URL)
	}

	for _, f := range report.Failures {
		fmt.Fprintf(w, "could not check %s: %s\n", f.Item, f.Error)
	}
	if report.Incomparable > 0 {
		fmt.Fprintf(w, "%d listings were priced in a currency without exchange rate\n", report.Incomparable)
	}

	if len(report.Missing) > 0 {
		fmt.Fprintf(w, "  prices for %d items are missing:\n", len(report.Missing))
		for _, it := range report.Missing {
			fmt.Fprintf(w, "    %s\n", it)
		}
		fmt.Fprintf(w, "  %s\n", missingHint)
	}
}
