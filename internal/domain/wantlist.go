package domain

import (
	"strconv"
	"strings"
)

// Track is one entry of a release tracklist.
type Track struct {
	Position string `json:"position"`
	Title    string `json:"title"`
	Duration string `json:"duration,omitempty"`
}

func (t Track) String() string {
	if t.Position == "" {
		return t.Title
	}
	return t.Position + " " + t.Title
}

// Release is the display payload of a want-list entry. It is used for output
// only and never takes part in matching.
type Release struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Artists   []string `json:"artists"`
	Tracklist []Track  `json:"tracklist,omitempty"`
	URL       string   `json:"url"`
}

// ArtistNames joins the artist names for display.
func (r Release) ArtistNames() string {
	return strings.Join(r.Artists, ", ")
}

// TracklistString renders the tracklist on one line.
func (r Release) TracklistString() string {
	parts := make([]string, 0, len(r.Tracklist))
	for _, t := range r.Tracklist {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, "; ")
}

// WantlistItem is a user's saved intent to buy a release pressing. Notes is
// the only state that survives between runs; it stores the price ceiling.
type WantlistItem struct {
	ID        int64   `json:"id"`
	ReleaseID int64   `json:"release_id"`
	MasterID  int64   `json:"master_id,omitempty"`
	Notes     string  `json:"notes"`
	Release   Release `json:"release"`
}

// GroupID returns the master-release id, or the item's own id when the
// release belongs to no master.
func (w WantlistItem) GroupID() int64 {
	if w.MasterID != 0 {
		return w.MasterID
	}
	return w.ID
}

func (w WantlistItem) String() string {
	if w.Release.Title == "" {
		return "wantlist item " + strconv.FormatInt(w.ID, 10)
	}
	if artists := w.Release.ArtistNames(); artists != "" {
		return artists + " - " + w.Release.Title
	}
	return w.Release.Title
}
