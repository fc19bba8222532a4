package threshold

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// TerminalPrompter asks for a ceiling on a terminal. Before asking it shows
// the artists and tracklist of the group and the sale statistics of each
// pressing, which gives the user a feeling for a good price.
type TerminalPrompter struct {
	in       *bufio.Reader
	out      io.Writer
	stats    domain.StatsFetcher
	releases domain.ReleaseLookup
	logger   *slog.Logger
}

// NewTerminalPrompter creates a prompter reading from in and writing to out.
// stats and releases are optional.
func NewTerminalPrompter(in io.Reader, out io.Writer, stats domain.StatsFetcher, releases domain.ReleaseLookup, logger *slog.Logger) *TerminalPrompter {
	return &TerminalPrompter{
		in:       bufio.NewReader(in),
		out:      out,
		stats:    stats,
		releases: releases,
		logger:   logger.With(slog.String("component", "prompter")),
	}
}

// PromptCeiling prints the group context and reads lines until one holds a
// non-negative number.
func (p *TerminalPrompter) PromptCeiling(ctx context.Context, group []domain.WantlistItem) (decimal.Decimal, error) {
	if len(group) == 0 {
		return decimal.Decimal{}, errors.New("threshold: empty group")
	}

	fmt.Fprintln(p.out, p.describe(ctx, group))

	for {
		if err := ctx.Err(); err != nil {
			return decimal.Decimal{}, err
		}
		fmt.Fprint(p.out, "enter price threshold: ")

		line, err := p.in.ReadString('\n')
		text := strings.TrimSpace(line)
		if text != "" {
			v, parseErr := decimal.NewFromString(strings.ReplaceAll(text, ",", ""))
			if parseErr == nil && !v.IsNegative() {
				return v, nil
			}
			fmt.Fprintf(p.out, "%q is not a price, try again\n", text)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return decimal.Decimal{}, fmt.Errorf("threshold: no ceiling entered: %w", io.ErrUnexpectedEOF)
			}
			return decimal.Decimal{}, fmt.Errorf("threshold: read input: %w", err)
		}
	}
}

func (p *TerminalPrompter) describe(ctx context.Context, group []domain.WantlistItem) string {
	release := group[0].Release
	if len(release.Tracklist) == 0 && p.releases != nil {
		full, err := p.releases.Release(ctx, group[0].ReleaseID)
		if err != nil {
			p.logger.WarnContext(ctx, "release lookup failed",
				slog.Int64("release_id", group[0].ReleaseID),
				slog.String("error", err.Error()),
			)
		} else {
			release = full
		}
	}

	stats := make([]string, 0, len(group))
	if p.stats != nil {
		for _, item := range group {
			s, err := p.stats.Stats(ctx, item.ReleaseID, item.Release.URL)
			if err != nil {
				stats = append(stats, "unknown")
				continue
			}
			stats = append(stats, s.String())
		}
	}

	return fmt.Sprintf("%s : %s : [%s]", release.ArtistNames(), release.TracklistString(), strings.Join(stats, ", "))
}
