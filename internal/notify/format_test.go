package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

func mustPrice(t *testing.T, s string) domain.Price {
	t.Helper()
	p, err := domain.ParsePrice(s)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func sampleOffer(t *testing.T) domain.GoodOffer {
	return domain.GoodOffer{
		Item: domain.WantlistItem{
			ID: 1, ReleaseID: 1,
			Release: domain.Release{
				Title:     "Business as Usual",
				Artists:   []string{"Men At Work"},
				Tracklist: []domain.Track{{Position: "A1", Title: "Who Can It Be Now?"}},
				URL:       "https://web.test/release/1",
			},
		},
		Listing: domain.Listing{
			Media:           domain.ConditionVeryGoodPlus,
			Sleeve:          domain.ConditionVeryGood,
			Price:           mustPrice(t, "€25.00"),
			PriceNoShipping: mustPrice(t, "€20.00"),
			URL:             "https://web.test/sell/item/9",
			ItemID:          1,
		},
		Ceiling: mustPrice(t, "€30.00"),
	}
}

type staticStats struct{ s domain.Stats }

func (f staticStats) Stats(context.Context, int64, string) (domain.Stats, error) { return f.s, nil }

func TestOfferMessage(t *testing.T) {
	msg := OfferMessage(sampleOffer(t), "never sold")
	if msg.Title != "Good offer found for Business as Usual!" {
		t.Errorf("title = %q", msg.Title)
	}
	for _, want := range []string{
		"media condition: VG+, sleeve condition: VG; price €25.00 (max-price: €30.00)",
		"marketplace stats: never sold",
		"tracklist: A1 Who Can It Be Now?",
	} {
		if !strings.Contains(msg.Body, want) {
			t.Errorf("body %q missing %q", msg.Body, want)
		}
	}
	if msg.URL != "https://web.test/release/1" {
		t.Errorf("url = %q", msg.URL)
	}
}

func TestMissingMessage(t *testing.T) {
	msg := MissingMessage([]domain.WantlistItem{
		{ID: 1, Release: domain.Release{Title: "One", Artists: []string{"A"}, URL: "u1"}},
		{ID: 2},
	})
	if msg.Body != "Please set a max-price for the following items: A - One, wantlist item 2" {
		t.Errorf("body = %q", msg.Body)
	}
	if msg.URL != "u1" {
		t.Errorf("url = %q", msg.URL)
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	report := domain.RunReport{
		Offers:  []domain.GoodOffer{sampleOffer(t)},
		Missing: []domain.WantlistItem{{ID: 7}},
	}
	WriteReport(context.Background(), &buf, report, staticStats{domain.NeverSold()})

	out := buf.String()
	for _, want := range []string{
		"good offer found for:",
		"Men At Work : Business as Usual",
		"min, med, max",
		"(threshold price : €30.00)",
		"https://web.test/sell/item/9",
		"prices for 1 items are missing",
		"max price: xxx",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteReportNoOffers(t *testing.T) {
	var buf bytes.Buffer
	WriteReport(context.Background(), &buf, domain.RunReport{}, nil)
	if !strings.Contains(buf.String(), "no good offers found!") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestReportNotifier(t *testing.T) {
	s := &recordingSender{name: "rec"}
	rn := NewReportNotifier(NewNotifier([]Sender{s}, nil, discardLogger()), staticStats{domain.NeverSold()}, discardLogger())

	report := domain.RunReport{
		Offers:  []domain.GoodOffer{sampleOffer(t), sampleOffer(t)},
		Missing: []domain.WantlistItem{{ID: 3}},
	}
	if err := rn.NotifyReport(context.Background(), report); err != nil {
		t.Fatalf("NotifyReport: %v", err)
	}
	if len(s.msgs) != 3 {
		t.Fatalf("messages = %d; want 2 offers + 1 summary", len(s.msgs))
	}
	if s.msgs[2].Title != "Found items without max price!" {
		t.Errorf("last title = %q", s.msgs[2].Title)
	}
}
