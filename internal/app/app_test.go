package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alanyoungcy/wantlistbot/internal/config"
)

const wantsJSON = `{"pagination":{"page":1,"pages":1},"wants":[
  {"id":99,"notes":"max price: €30","basic_information":{"id":99,"title":"First","artists":[{"name":"Band"}]}},
  {"id":100,"notes":"","basic_information":{"id":100,"title":"Second","artists":[{"name":"Band"}]}}
]}`

const offersHTML = `<html><body><table>
<tr class="shortcut_navigable" data-release-id="99">
  <td><a class="item_description_title" href="/sell/item/1001">Band - First</a>
  <p class="item_condition">
    <span class="condition-label-desktop">Media:</span>
    <span>Very Good Plus (VG+)<span class="has-tooltip">?</span></span>
    <span class="condition-label-desktop">Sleeve:</span>
    <span class="item_sleeve_condition">Very Good (VG)</span>
  </p></td>
  <td><span class="price">€20.00</span>
      <span class="converted_price">€25.50 total</span></td>
</tr>
<tr class="shortcut_navigable" data-release-id="99">
  <td><a class="item_description_title" href="/sell/item/1002">Band - First</a>
  <p class="item_condition"><span>Mint (M)<span class="has-tooltip">?</span></span></p></td>
  <td><span class="price">€28.00</span>
      <span class="converted_price">€31.00 total</span></td>
</tr>
</table></body></html>`

func fakeDiscogs(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/digger/wants", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Discogs token=tok" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, wantsJSON)
	})
	mux.HandleFunc("GET /sell/release/99", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, offersHTML)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestOnceModeReportsOffersAndMissing(t *testing.T) {
	srv := fakeDiscogs(t)

	cfg := config.Defaults()
	cfg.Discogs.Token = "tok"
	cfg.Discogs.Username = "digger"
	cfg.Discogs.APIURL = srv.URL
	cfg.Discogs.WebURL = srv.URL
	cfg.Scrape.StatsEnabled = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	var out bytes.Buffer
	a := New(&cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.out = &out
	defer a.Close()

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"good offer found for:",
		"Band : First",
		"€25.50",
		"(threshold price : €30.00)",
		srv.URL + "/sell/item/1001",
		"prices for 1 items are missing:",
		"Band - Second",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report does not contain %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "/sell/item/1002") {
		t.Errorf("offer above the ceiling was reported:\n%s", got)
	}
}

func TestRunRejectsUnknownMode(t *testing.T) {
	cfg := config.Defaults()
	cfg.Discogs.Token = "tok"
	cfg.Mode = "trade"

	a := New(&cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer a.Close()
	if err := a.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "unsupported mode") {
		t.Errorf("Run = %v; want unsupported mode error", err)
	}
}

func TestWireFailsWithoutToken(t *testing.T) {
	cfg := config.Defaults()
	if _, _, err := Wire(context.Background(), &cfg, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Error("Wire without a token succeeded")
	}
}
