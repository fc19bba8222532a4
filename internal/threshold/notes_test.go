package threshold

import (
	"errors"
	"testing"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

func TestParseNotes(t *testing.T) {
	tests := []struct {
		notes string
		want  string
	}{
		{"max price: €42.50", "€42.50"},
		{"max price:€30", "€30.00"},
		{"Max Price: $1,200.00", "$1200.00"},
		{"€15", "€15.00"},
		{"bought once: max price: €9.99", "€9.99"},
	}
	for _, tt := range tests {
		got, err := ParseNotes(tt.notes)
		if err != nil {
			t.Errorf("ParseNotes(%q): %v", tt.notes, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseNotes(%q) = %s; want %s", tt.notes, got, tt.want)
		}
	}
}

func TestParseNotesWithoutCeiling(t *testing.T) {
	if _, err := ParseNotes(""); !errors.Is(err, ErrNoCeiling) {
		t.Errorf("ParseNotes(\"\") error = %v; want ErrNoCeiling", err)
	}
	if _, err := ParseNotes("   "); !errors.Is(err, ErrNoCeiling) {
		t.Errorf("ParseNotes(blank) error = %v; want ErrNoCeiling", err)
	}
	for _, notes := range []string{"gift for Sam", "max price: ask me", "max price:"} {
		if _, err := ParseNotes(notes); !errors.Is(err, domain.ErrFormat) {
			t.Errorf("ParseNotes(%q) error = %v; want ErrFormat", notes, err)
		}
	}
}

func TestFormatNotesRoundTrip(t *testing.T) {
	for _, raw := range []string{"€42.50", "€42.5", "$7", "£0.99"} {
		p, err := domain.ParsePrice(raw)
		if err != nil {
			t.Fatalf("ParsePrice(%q): %v", raw, err)
		}
		notes := FormatNotes(p)
		back, err := ParseNotes(notes)
		if err != nil {
			t.Fatalf("ParseNotes(%q): %v", notes, err)
		}
		if !back.Equal(p) {
			t.Errorf("round trip %q -> %q -> %s", raw, notes, back)
		}
		if FormatNotes(back) != notes {
			t.Errorf("FormatNotes is not stable for %q", notes)
		}
	}

	p, _ := domain.ParsePrice("€42.5")
	if got := FormatNotes(p); got != "max price: €42.50" {
		t.Errorf("FormatNotes = %q; want %q", got, "max price: €42.50")
	}
}
