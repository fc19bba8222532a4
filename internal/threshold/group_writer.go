package threshold

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

const (
	groupLockTTL  = 30 * time.Second
	lockRetryWait = 100 * time.Millisecond
)

// NotesGroupWriter writes a ceiling into the notes of every item of a group
// while holding the group's lock, so concurrent resolutions of siblings do
// not lose updates.
type NotesGroupWriter struct {
	notes  domain.NotesWriter
	locks  domain.LockManager
	audit  domain.AuditStore
	logger *slog.Logger
}

// NewNotesGroupWriter creates a NotesGroupWriter. audit may be nil.
func NewNotesGroupWriter(notes domain.NotesWriter, locks domain.LockManager, audit domain.AuditStore, logger *slog.Logger) *NotesGroupWriter {
	return &NotesGroupWriter{
		notes:  notes,
		locks:  locks,
		audit:  audit,
		logger: logger.With(slog.String("component", "notes_writer")),
	}
}

// WriteGroupCeiling stores FormatNotes(ceiling) on every item of group.
func (w *NotesGroupWriter) WriteGroupCeiling(ctx context.Context, group []domain.WantlistItem, ceiling domain.Price) error {
	if len(group) == 0 {
		return nil
	}
	groupID := group[0].GroupID()

	unlock, err := w.acquire(ctx, "notes:group:"+strconv.FormatInt(groupID, 10))
	if err != nil {
		return err
	}
	defer unlock()

	notes := FormatNotes(ceiling)
	ids := make([]int64, 0, len(group))
	for _, item := range group {
		if err := w.notes.SetNotes(ctx, item, notes); err != nil {
			return fmt.Errorf("threshold: set notes of item %d: %w", item.ID, err)
		}
		ids = append(ids, item.ID)
		w.logger.DebugContext(ctx, "notes written",
			slog.Int64("item_id", item.ID),
			slog.String("notes", notes),
		)
	}

	if w.audit != nil {
		if err := w.audit.Log(ctx, "notes.ceiling_written", map[string]any{
			"group_id": groupID,
			"item_ids": ids,
			"ceiling":  ceiling.String(),
		}); err != nil {
			w.logger.WarnContext(ctx, "audit log failed", slog.String("error", err.Error()))
		}
	}
	return nil
}

// acquire waits for the lock until ctx is done.
func (w *NotesGroupWriter) acquire(ctx context.Context, key string) (func(), error) {
	for {
		unlock, err := w.locks.Acquire(ctx, key, groupLockTTL)
		if err == nil {
			return unlock, nil
		}
		if !errors.Is(err, domain.ErrLockHeld) {
			return nil, fmt.Errorf("threshold: lock %s: %w", key, err)
		}

		timer := time.NewTimer(lockRetryWait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("threshold: lock %s: %w", key, ctx.Err())
		case <-timer.C:
		}
	}
}
