package threshold

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

type staticStats struct{}

func (staticStats) Stats(context.Context, int64, string) (domain.Stats, error) {
	return domain.NeverSold(), nil
}

func TestTerminalPrompterRetriesUntilNumber(t *testing.T) {
	in := strings.NewReader("\nabc\n24.90\n")
	var out bytes.Buffer
	p := NewTerminalPrompter(in, &out, staticStats{}, nil, discardLogger())

	group := []domain.WantlistItem{{
		ID:        1,
		ReleaseID: 1,
		Release: domain.Release{
			Title:     "Down Under",
			Artists:   []string{"Men At Work"},
			Tracklist: []domain.Track{{Position: "A", Title: "Down Under"}},
		},
	}}

	v, err := p.PromptCeiling(context.Background(), group)
	if err != nil {
		t.Fatalf("PromptCeiling: %v", err)
	}
	if v.String() != "24.9" {
		t.Errorf("value = %s; want 24.9", v)
	}

	printed := out.String()
	for _, want := range []string{"Men At Work", "A Down Under", "never sold", `"abc" is not a price`} {
		if !strings.Contains(printed, want) {
			t.Errorf("output %q does not contain %q", printed, want)
		}
	}
}

func TestTerminalPrompterEOF(t *testing.T) {
	p := NewTerminalPrompter(strings.NewReader("\n"), &bytes.Buffer{}, nil, nil, discardLogger())
	if _, err := p.PromptCeiling(context.Background(), []domain.WantlistItem{{ID: 1}}); err == nil {
		t.Error("expected an error at end of input")
	}
}

func TestTerminalPrompterLastLineWithoutNewline(t *testing.T) {
	p := NewTerminalPrompter(strings.NewReader("12"), &bytes.Buffer{}, nil, nil, discardLogger())
	v, err := p.PromptCeiling(context.Background(), []domain.WantlistItem{{ID: 1}})
	if err != nil || v.String() != "12" {
		t.Errorf("PromptCeiling = (%s, %v); want 12", v, err)
	}
}
