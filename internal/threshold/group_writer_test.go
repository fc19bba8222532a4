package threshold

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

type fakeNotesWriter struct {
	mu    sync.Mutex
	notes map[int64]string
	fail  int64
}

func (f *fakeNotesWriter) SetNotes(_ context.Context, item domain.WantlistItem, notes string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item.ID == f.fail {
		return errors.New("write refused")
	}
	if f.notes == nil {
		f.notes = make(map[int64]string)
	}
	f.notes[item.ID] = notes
	return nil
}

type chanLock struct {
	mu    sync.Mutex
	held  map[string]bool
	tries int
}

func (l *chanLock) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tries++
	if l.held == nil {
		l.held = make(map[string]bool)
	}
	if l.held[key] {
		return nil, domain.ErrLockHeld
	}
	l.held[key] = true
	return func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}, nil
}

type recordingAudit struct {
	events []string
}

func (r *recordingAudit) Log(_ context.Context, event string, _ map[string]any) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordingAudit) List(context.Context, domain.ListOpts) ([]domain.AuditEntry, error) {
	return nil, nil
}

func TestWriteGroupCeilingWritesEveryItem(t *testing.T) {
	notes := &fakeNotesWriter{}
	audit := &recordingAudit{}
	w := NewNotesGroupWriter(notes, &chanLock{}, audit, discardLogger())

	ceiling, _ := domain.ParsePrice("€20")
	group := threeSiblings("")
	if err := w.WriteGroupCeiling(context.Background(), group, ceiling); err != nil {
		t.Fatalf("WriteGroupCeiling: %v", err)
	}
	for _, it := range group {
		if notes.notes[it.ID] != "max price: €20.00" {
			t.Errorf("notes of item %d = %q", it.ID, notes.notes[it.ID])
		}
	}
	if len(audit.events) != 1 || audit.events[0] != "notes.ceiling_written" {
		t.Errorf("audit events = %v", audit.events)
	}
}

func TestWriteGroupCeilingPropagatesFailure(t *testing.T) {
	w := NewNotesGroupWriter(&fakeNotesWriter{fail: 2}, &chanLock{}, nil, discardLogger())
	ceiling, _ := domain.ParsePrice("€20")
	if err := w.WriteGroupCeiling(context.Background(), threeSiblings(""), ceiling); err == nil {
		t.Error("expected an error when one item cannot be written")
	}
}

func TestWriteGroupCeilingWaitsForLock(t *testing.T) {
	locks := &chanLock{}
	unlock, _ := locks.Acquire(context.Background(), "notes:group:500", time.Second)

	w := NewNotesGroupWriter(&fakeNotesWriter{}, locks, nil, discardLogger())
	ceiling, _ := domain.ParsePrice("€20")

	go func() {
		time.Sleep(150 * time.Millisecond)
		unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.WriteGroupCeiling(ctx, threeSiblings(""), ceiling); err != nil {
		t.Fatalf("WriteGroupCeiling: %v", err)
	}
	if locks.tries < 3 {
		t.Errorf("lock tried %d times; want retries while held", locks.tries)
	}
}

func TestWriteGroupCeilingHonoursContext(t *testing.T) {
	locks := &chanLock{}
	_, _ = locks.Acquire(context.Background(), "notes:group:500", time.Second)

	w := NewNotesGroupWriter(&fakeNotesWriter{}, locks, nil, discardLogger())
	ceiling, _ := domain.ParsePrice("€20")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := w.WriteGroupCeiling(ctx, threeSiblings(""), ceiling); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v; want deadline exceeded", err)
	}
}
