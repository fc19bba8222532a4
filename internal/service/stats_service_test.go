package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

type countingFetcher struct {
	calls int
	stats domain.Stats
	err   error
}

func (f *countingFetcher) Stats(context.Context, int64, string) (domain.Stats, error) {
	f.calls++
	return f.stats, f.err
}

type mapCache struct {
	m       map[int64]domain.Stats
	readErr error
}

func (c *mapCache) GetStats(_ context.Context, id int64) (domain.Stats, error) {
	if c.readErr != nil {
		return domain.Stats{}, c.readErr
	}
	s, ok := c.m[id]
	if !ok {
		return domain.Stats{}, domain.ErrNotFound
	}
	return s, nil
}

func (c *mapCache) SetStats(_ context.Context, id int64, s domain.Stats) error {
	c.m[id] = s
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStatsServiceCachesFetches(t *testing.T) {
	f := &countingFetcher{stats: domain.NeverSold()}
	c := &mapCache{m: map[int64]domain.Stats{}}
	s := NewStatsService(c, f, discardLogger())

	for i := 0; i < 3; i++ {
		got, err := s.Stats(context.Background(), 42, "https://example.test/release/42")
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		if !got.NeverSold {
			t.Errorf("Stats = %v; want never sold", got)
		}
	}
	if f.calls != 1 {
		t.Errorf("fetcher called %d times; want 1", f.calls)
	}
}

func TestStatsServiceCacheFailureFallsBack(t *testing.T) {
	f := &countingFetcher{stats: domain.NeverSold()}
	c := &mapCache{m: map[int64]domain.Stats{}, readErr: errors.New("redis down")}
	s := NewStatsService(c, f, discardLogger())

	if _, err := s.Stats(context.Background(), 1, ""); err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if f.calls != 1 {
		t.Errorf("fetcher called %d times; want 1", f.calls)
	}
}

func TestStatsServiceFetchError(t *testing.T) {
	boom := errors.New("timeout")
	s := NewStatsService(nil, &countingFetcher{err: boom}, discardLogger())
	if _, err := s.Stats(context.Background(), 1, ""); !errors.Is(err, boom) {
		t.Errorf("error = %v; want %v", err, boom)
	}
}
