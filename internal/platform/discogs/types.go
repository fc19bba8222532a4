package discogs

import (
	"strings"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// --------------------------------------------------------------------------
// API DTOs
// --------------------------------------------------------------------------

// APIPagination is the pagination envelope of list endpoints.
type APIPagination struct {
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
	Items   int `json:"items"`
}

// APIArtist is an artist credit.
type APIArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// APITrack is a tracklist entry.
type APITrack struct {
	Position string `json:"position"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
	Type     string `json:"type_"`
}

// APIBasicInformation is the release summary embedded in want-list entries.
type APIBasicInformation struct {
	ID          int64       `json:"id"`
	MasterID    int64       `json:"master_id"`
	Title       string      `json:"title"`
	Year        int         `json:"year"`
	Artists     []APIArtist `json:"artists"`
	ResourceURL string      `json:"resource_url"`
}

// APIWant is one want-list entry.
type APIWant struct {
	ID               int64               `json:"id"`
	Notes            string              `json:"notes"`
	Rating           int                 `json:"rating"`
	BasicInformation APIBasicInformation `json:"basic_information"`
}

// APIWantlistPage is one page of GET /users/{username}/wants.
type APIWantlistPage struct {
	Pagination APIPagination `json:"pagination"`
	Wants      []APIWant     `json:"wants"`
}

// APIRelease is the payload of GET /releases/{id}.
type APIRelease struct {
	ID        int64       `json:"id"`
	MasterID  int64       `json:"master_id"`
	Title     string      `json:"title"`
	Artists   []APIArtist `json:"artists"`
	Tracklist []APITrack  `json:"tracklist"`
	URI       string      `json:"uri"`
}

// APIIdentity is the payload of GET /oauth/identity.
type APIIdentity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// --------------------------------------------------------------------------
// Conversions
// --------------------------------------------------------------------------

// ToDomainItem converts a want-list entry. webURL is the site root used to
// build the release page link.
func (w *APIWant) ToDomainItem(webURL string) domain.WantlistItem {
	info := w.BasicInformation
	id := w.ID
	if id == 0 {
		id = info.ID
	}
	return domain.WantlistItem{
		ID:        id,
		ReleaseID: info.ID,
		MasterID:  info.MasterID,
		Notes:     w.Notes,
		Release: domain.Release{
			ID:      info.ID,
			Title:   info.Title,
			Artists: artistNames(info.Artists),
			URL:     releaseURL(webURL, info.ID),
		},
	}
}

// ToDomainRelease converts a release payload. Headings and index tracks are
// skipped.
func (r *APIRelease) ToDomainRelease(webURL string) domain.Release {
	tracks := make([]domain.Track, 0, len(r.Tracklist))
	for _, t := range r.Tracklist {
		if t.Type != "" && t.Type != "track" {
			continue
		}
		tracks = append(tracks, domain.Track{Position: t.Position, Title: t.Title, Duration: t.Duration})
	}
	url := r.URI
	if url == "" {
		url = releaseURL(webURL, r.ID)
	}
	return domain.Release{
		ID:        r.ID,
		Title:     r.Title,
		Artists:   artistNames(r.Artists),
		Tracklist: tracks,
		URL:       url,
	}
}

func artistNames(artists []APIArtist) []string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, strings.TrimSpace(a.Name))
	}
	return names
}

func releaseURL(webURL string, id int64) string {
	return strings.TrimRight(webURL, "/") + "/release/" + itoa(id)
}
