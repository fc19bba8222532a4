package discogs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func statsPage(values ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><section id="release-stats"><ul>`)
	b.WriteString(`<li><h4 class="label">Avg Rating:</h4><span>4.5 / 5</span></li>`)
	for _, v := range values {
		fmt.Fprintf(&b, `<li><h4>Price:</h4><span>%s</span><span class="hidden">ignored</span></li>`, v)
	}
	b.WriteString(`</ul></section></body></html>`)
	return b.String()
}

func TestParseStats(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		want    string
		wantErr error
	}{
		{"sold", statsPage("€10.00", "€15.50", "€40.00"), "min=€10.00 med=€15.50 max=€40.00", nil},
		{"never", statsPage("Never", "Never", "Never"), "never sold", nil},
		{"pending", statsPage("--", "--", "--"), "", ErrStatsPending},
	}
	for _, tt := range tests {
		got, err := parseStats(strings.NewReader(tt.page))
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%s: error = %v; want %v", tt.name, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("%s: stats = %q; want %q", tt.name, got, tt.want)
		}
	}
}

func TestParseStatsMissingSection(t *testing.T) {
	if _, err := parseStats(strings.NewReader(`<html><body></body></html>`)); err == nil {
		t.Error("expected an error without release-stats")
	}
}

type fixedResolver struct {
	to    string
	calls int
}

func (f *fixedResolver) ResolveURL(context.Context, string) (string, error) {
	f.calls++
	return f.to, nil
}

func TestStatsRetriesOnRedirectedURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/release/3":
			fmt.Fprint(w, statsPage("--", "--", "--"))
		case "/release/3-Band-First":
			fmt.Fprint(w, statsPage("€1.00", "€2.00", "€3.00"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	res := &fixedResolver{to: srv.URL + "/release/3-Band-First"}
	s := NewStatsScraper(srv.URL, "", 0, res, discardLogger())

	got, err := s.Stats(context.Background(), 3, "")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if got.String() != "min=€1.00 med=€2.00 max=€3.00" {
		t.Errorf("Stats = %q", got)
	}
	if res.calls != 1 {
		t.Errorf("resolver called %d times; want 1", res.calls)
	}
}

func TestStatsPendingWithoutResolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, statsPage("--", "--", "--"))
	}))
	defer srv.Close()

	s := NewStatsScraper(srv.URL, "", 0, nil, discardLogger())
	if _, err := s.Stats(context.Background(), 3, ""); !errors.Is(err, ErrStatsPending) {
		t.Errorf("error = %v; want ErrStatsPending", err)
	}
}
