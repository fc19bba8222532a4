package threshold

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// Prompter asks the user for the ceiling of a master-release group.
type Prompter interface {
	PromptCeiling(ctx context.Context, group []domain.WantlistItem) (decimal.Decimal, error)
}

// GroupWriter persists one ceiling into the notes of every item of a group.
// It is the only place where resolution writes state.
type GroupWriter interface {
	WriteGroupCeiling(ctx context.Context, group []domain.WantlistItem, ceiling domain.Price) error
}

// Options tunes a Resolver.
type Options struct {
	// Interactive enables prompting for groups without any ceiling.
	Interactive bool
	// Currency is the currency prefix of prompted ceilings.
	Currency string
}

// Resolution is the ceiling decision for every want-list item: each item id
// is either a key of Ceilings or an element of Missing.
type Resolution struct {
	Ceilings map[int64]domain.Price
	Missing  []domain.WantlistItem
	// Items is the want-list with notes as they stand after resolution.
	Items []domain.WantlistItem
}

// Resolver applies the ceiling policy: own notes, then the most permissive
// sibling of the same master release, then an interactive prompt, otherwise
// the item is reported missing.
type Resolver struct {
	writer   GroupWriter
	prompter Prompter
	opts     Options
	logger   *slog.Logger
}

// NewResolver creates a Resolver. writer and prompter may be nil when
// opts.Interactive is false.
func NewResolver(writer GroupWriter, prompter Prompter, opts Options, logger *slog.Logger) *Resolver {
	if opts.Currency == "" {
		opts.Currency = "€"
	}
	return &Resolver{
		writer:   writer,
		prompter: prompter,
		opts:     opts,
		logger:   logger.With(slog.String("component", "threshold_resolver")),
	}
}

// Resolve decides a ceiling for every item, in want-list order.
func (r *Resolver) Resolve(ctx context.Context, items []domain.WantlistItem) (Resolution, error) {
	items = slices.Clone(items)

	groups := make(map[int64][]int)
	for i, it := range items {
		groups[it.GroupID()] = append(groups[it.GroupID()], i)
	}

	res := Resolution{
		Ceilings: make(map[int64]domain.Price, len(items)),
		Items:    items,
	}

	for i := range items {
		item := items[i]

		own, err := ParseNotes(item.Notes)
		if err == nil {
			res.Ceilings[item.ID] = own
			continue
		}
		if !errors.Is(err, ErrNoCeiling) {
			r.logger.DebugContext(ctx, "notes do not hold a ceiling",
				slog.Int64("item_id", item.ID),
				slog.String("notes", item.Notes),
			)
		}

		if inherited, ok := r.inherit(ctx, items, groups[item.GroupID()]); ok {
			res.Ceilings[item.ID] = inherited
			continue
		}

		if r.opts.Interactive && r.prompter != nil && r.writer != nil {
			ceiling, err := r.prompt(ctx, items, groups[item.GroupID()])
			if err != nil {
				return Resolution{}, err
			}
			res.Ceilings[item.ID] = ceiling
			continue
		}

		res.Missing = append(res.Missing, item)
	}

	r.logger.InfoContext(ctx, "ceilings resolved",
		slog.Int("items", len(items)),
		slog.Int("resolved", len(res.Ceilings)),
		slog.Int("missing", len(res.Missing)),
	)
	return res, nil
}

// inherit returns the highest parsable ceiling among the group members.
func (r *Resolver) inherit(ctx context.Context, items []domain.WantlistItem, members []int) (domain.Price, bool) {
	var found []domain.Price
	for _, idx := range members {
		if p, err := ParseNotes(items[idx].Notes); err == nil {
			found = append(found, p)
		}
	}

	best, ok, err := domain.MaxPrice(found)
	if err != nil {
		r.logger.WarnContext(ctx, "sibling ceilings use different currencies",
			slog.Int64("group_id", items[members[0]].GroupID()),
			slog.String("error", err.Error()),
		)
		return domain.Price{}, false
	}
	return best, ok
}

// prompt asks for a ceiling, writes it to every group member and updates the
// in-memory notes so the remaining siblings resolve from their own notes.
func (r *Resolver) prompt(ctx context.Context, items []domain.WantlistItem, members []int) (domain.Price, error) {
	group := make([]domain.WantlistItem, 0, len(members))
	for _, idx := range members {
		group = append(group, items[idx])
	}
	groupID := group[0].GroupID()

	value, err := r.prompter.PromptCeiling(ctx, group)
	if err != nil {
		return domain.Price{}, fmt.Errorf("threshold: prompt group %d: %w", groupID, err)
	}
	ceiling := domain.NewPrice(r.opts.Currency, value.Round(2))

	if err := r.writer.WriteGroupCeiling(ctx, group, ceiling); err != nil {
		return domain.Price{}, fmt.Errorf("threshold: write group %d: %w", groupID, err)
	}

	notes := FormatNotes(ceiling)
	for _, idx := range members {
		items[idx].Notes = notes
	}

	r.logger.InfoContext(ctx, "ceiling stored for group",
		slog.Int64("group_id", groupID),
		slog.Int("items", len(group)),
		slog.String("ceiling", ceiling.String()),
	)
	return ParseNotes(notes)
}
