package domain

import "time"

// ScrapeFailure records a want-list item excluded from a pass because its
// marketplace pages could not be fetched.
type ScrapeFailure struct {
	Item  WantlistItem `json:"item"`
	Error string       `json:"error"`
}

// RunReport is the outcome of one checker pass.
type RunReport struct {
	ID           string          `json:"id"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   time.Time       `json:"finished_at"`
	Items        int             `json:"items"`
	Offers       []GoodOffer     `json:"offers"`
	Missing      []WantlistItem  `json:"missing"`
	Failures     []ScrapeFailure `json:"failures,omitempty"`
	Dropped      int             `json:"dropped"`
	Incomparable int             `json:"incomparable"`
}

// Summary condenses the report into its persisted form.
func (r RunReport) Summary() RunSummary {
	return RunSummary{
		ID:           r.ID,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		Items:        r.Items,
		Offers:       len(r.Offers),
		Missing:      len(r.Missing),
		Failures:     len(r.Failures),
		Dropped:      r.Dropped,
		Incomparable: r.Incomparable,
	}
}
