package domain

import (
	"context"
	"time"
)

// WantlistSource enumerates the user's want-list in API order.
type WantlistSource interface {
	Wantlist(ctx context.Context) ([]WantlistItem, error)
}

// NotesWriter persists the free-text notes of one want-list entry.
type NotesWriter interface {
	SetNotes(ctx context.Context, item WantlistItem, notes string) error
}

// ReleaseLookup fetches the display payload of a release.
type ReleaseLookup interface {
	Release(ctx context.Context, releaseID int64) (Release, error)
}

// ListOpts provides pagination and filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// RunSummary is the persisted row of one finished pass.
type RunSummary struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Items        int       `json:"items"`
	Offers       int       `json:"offers"`
	Missing      int       `json:"missing"`
	Failures     int       `json:"failures"`
	Dropped      int       `json:"dropped"`
	Incomparable int       `json:"incomparable"`
}

// RunStore persists the history of checker passes.
type RunStore interface {
	Insert(ctx context.Context, report RunReport) error
	ListRecent(ctx context.Context, limit int) ([]RunSummary, error)
}

// AuditEntry is a single audit log row.
type AuditEntry struct {
	ID        int64          `json:"id"`
	Event     string         `json:"event"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// AuditStore persists an append-only audit log.
type AuditStore interface {
	Log(ctx context.Context, event string, detail map[string]any) error
	List(ctx context.Context, opts ListOpts) ([]AuditEntry, error)
}
