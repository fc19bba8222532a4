// Package threshold derives the price ceiling of every want-list item from
// the notes field, inheriting across master-release groups and optionally
// prompting the user for missing values.
package threshold

import (
	"errors"
	"strings"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// NotesLabel is the label written in front of a ceiling.
const NotesLabel = "max price"

// ErrNoCeiling is returned by ParseNotes for empty notes.
var ErrNoCeiling = errors.New("threshold: notes carry no ceiling")

// ParseNotes extracts the ceiling from notes of the form "max price: €42.50".
// The price is whatever follows the last colon.
func ParseNotes(notes string) (domain.Price, error) {
	if strings.TrimSpace(notes) == "" {
		return domain.Price{}, ErrNoCeiling
	}
	text := notes
	if i := strings.LastIndex(notes, ":"); i >= 0 {
		text = notes[i+1:]
	}
	return domain.ParsePrice(text)
}

// FormatNotes renders a ceiling in the notes format read by ParseNotes.
func FormatNotes(ceiling domain.Price) string {
	return NotesLabel + ": " + ceiling.String()
}
