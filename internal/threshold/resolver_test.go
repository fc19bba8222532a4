package threshold

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type groupWrite struct {
	ids     []int64
	ceiling string
}

type fakeGroupWriter struct {
	writes []groupWrite
	err    error
}

func (f *fakeGroupWriter) WriteGroupCeiling(_ context.Context, group []domain.WantlistItem, ceiling domain.Price) error {
	if f.err != nil {
		return f.err
	}
	w := groupWrite{ceiling: ceiling.String()}
	for _, it := range group {
		w.ids = append(w.ids, it.ID)
	}
	f.writes = append(f.writes, w)
	return nil
}

type fakePrompter struct {
	value  decimal.Decimal
	calls  int
	groups [][]domain.WantlistItem
}

func (f *fakePrompter) PromptCeiling(_ context.Context, group []domain.WantlistItem) (decimal.Decimal, error) {
	f.calls++
	f.groups = append(f.groups, group)
	return f.value, nil
}

func threeSiblings(bNotes string) []domain.WantlistItem {
	return []domain.WantlistItem{
		{ID: 1, ReleaseID: 1, MasterID: 500},
		{ID: 2, ReleaseID: 2, MasterID: 500, Notes: bNotes},
		{ID: 3, ReleaseID: 3, MasterID: 500},
	}
}

func TestResolveInheritsFromSibling(t *testing.T) {
	r := NewResolver(nil, nil, Options{}, discardLogger())

	res, err := r.Resolve(context.Background(), threeSiblings("max price: €30.00"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for _, id := range []int64{1, 2, 3} {
		got, ok := res.Ceilings[id]
		if !ok || got.String() != "€30.00" {
			t.Errorf("ceiling of item %d = (%s, %v); want €30.00", id, got, ok)
		}
	}
	if len(res.Missing) != 0 {
		t.Errorf("Missing = %v; want none", res.Missing)
	}
}

func TestResolveAllMissingWhenNonInteractive(t *testing.T) {
	r := NewResolver(nil, nil, Options{}, discardLogger())

	res, err := r.Resolve(context.Background(), threeSiblings(""))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(res.Ceilings) != 0 {
		t.Errorf("Ceilings = %v; want none", res.Ceilings)
	}
	if len(res.Missing) != 3 {
		t.Fatalf("Missing has %d items; want 3", len(res.Missing))
	}
	for i, it := range res.Missing {
		if it.ID != int64(i+1) {
			t.Errorf("Missing[%d].ID = %d; want %d", i, it.ID, i+1)
		}
	}
}

func TestResolveTakesMaximumSibling(t *testing.T) {
	items := []domain.WantlistItem{
		{ID: 1, MasterID: 9, Notes: "max price: €12.00"},
		{ID: 2, MasterID: 9},
		{ID: 3, MasterID: 9, Notes: "max price: €25.00"},
		{ID: 4, MasterID: 9, Notes: "not a price"},
	}
	r := NewResolver(nil, nil, Options{}, discardLogger())
	res, err := r.Resolve(context.Background(), items)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := map[int64]string{1: "€12.00", 2: "€25.00", 3: "€25.00", 4: "€25.00"}
	for id, w := range want {
		if got := res.Ceilings[id]; got.String() != w {
			t.Errorf("ceiling of item %d = %s; want %s", id, got, w)
		}
	}
}

func TestResolveOwnNotesWin(t *testing.T) {
	items := []domain.WantlistItem{
		{ID: 1, MasterID: 9, Notes: "max price: €5.00"},
		{ID: 2, MasterID: 9, Notes: "max price: €50.00"},
	}
	r := NewResolver(nil, nil, Options{}, discardLogger())
	res, _ := r.Resolve(context.Background(), items)
	if got := res.Ceilings[1]; got.String() != "€5.00" {
		t.Errorf("ceiling of item 1 = %s; want own €5.00", got)
	}
}

func TestResolveMixedCurrencySiblingsFallThrough(t *testing.T) {
	items := []domain.WantlistItem{
		{ID: 1, MasterID: 9, Notes: "max price: €5.00"},
		{ID: 2, MasterID: 9, Notes: "max price: $50.00"},
		{ID: 3, MasterID: 9},
	}
	r := NewResolver(nil, nil, Options{}, discardLogger())
	res, err := r.Resolve(context.Background(), items)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, ok := res.Ceilings[3]; ok {
		t.Error("item 3 should not inherit from incomparable siblings")
	}
	if len(res.Missing) != 1 || res.Missing[0].ID != 3 {
		t.Errorf("Missing = %v; want item 3", res.Missing)
	}
}

func TestResolveGroupsAreIndependent(t *testing.T) {
	items := []domain.WantlistItem{
		{ID: 1, MasterID: 9, Notes: "max price: €5.00"},
		{ID: 2, MasterID: 10},
		{ID: 3},
	}
	r := NewResolver(nil, nil, Options{}, discardLogger())
	res, _ := r.Resolve(context.Background(), items)
	if len(res.Ceilings) != 1 || len(res.Missing) != 2 {
		t.Errorf("got %d ceilings, %d missing; want 1 and 2", len(res.Ceilings), len(res.Missing))
	}
}

func TestResolveInteractivePromptsOncePerGroup(t *testing.T) {
	writer := &fakeGroupWriter{}
	prompter := &fakePrompter{value: decimal.RequireFromString("17.5")}
	r := NewResolver(writer, prompter, Options{Interactive: true, Currency: "€"}, discardLogger())

	items := append(threeSiblings(""), domain.WantlistItem{ID: 4, Notes: "max price: €3.00"})
	res, err := r.Resolve(context.Background(), items)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if prompter.calls != 1 {
		t.Errorf("prompter called %d times; want 1", prompter.calls)
	}
	if len(writer.writes) != 1 {
		t.Fatalf("group writes = %d; want 1", len(writer.writes))
	}
	w := writer.writes[0]
	if w.ceiling != "€17.50" || len(w.ids) != 3 {
		t.Errorf("write = %+v; want €17.50 to items 1,2,3", w)
	}
	for _, id := range []int64{1, 2, 3} {
		if got := res.Ceilings[id]; got.String() != "€17.50" {
			t.Errorf("ceiling of item %d = %s; want €17.50", id, got)
		}
	}
	for _, it := range res.Items[:3] {
		if it.Notes != "max price: €17.50" {
			t.Errorf("notes of item %d = %q; want updated", it.ID, it.Notes)
		}
	}
	if len(res.Missing) != 0 {
		t.Errorf("Missing = %v; want none", res.Missing)
	}
}

func TestResolveInteractiveWriteFailure(t *testing.T) {
	writer := &fakeGroupWriter{err: errors.New("boom")}
	prompter := &fakePrompter{value: decimal.NewFromInt(3)}
	r := NewResolver(writer, prompter, Options{Interactive: true}, discardLogger())

	if _, err := r.Resolve(context.Background(), threeSiblings("")); err == nil {
		t.Error("Resolve should fail when the group write fails")
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	items := threeSiblings("")
	r := NewResolver(&fakeGroupWriter{}, &fakePrompter{value: decimal.NewFromInt(1)}, Options{Interactive: true}, discardLogger())
	if _, err := r.Resolve(context.Background(), items); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for _, it := range items {
		if it.Notes != "" {
			t.Errorf("input item %d was mutated: %q", it.ID, it.Notes)
		}
	}
}
