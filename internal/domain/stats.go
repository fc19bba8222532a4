package domain

import "fmt"

// Stats holds the historical minimum, median and maximum sale prices of a
// release. A release that was never sold carries the NeverSold sentinel.
type Stats struct {
	Min       Price `json:"min"`
	Median    Price `json:"median"`
	Max       Price `json:"max"`
	NeverSold bool  `json:"never_sold,omitempty"`
}

// NewStats builds a Stats triple.
func NewStats(min, median, max Price) Stats {
	return Stats{Min: min, Median: median, Max: max}
}

// NeverSold returns the sentinel for releases without sales history.
func NeverSold() Stats {
	return Stats{NeverSold: true}
}

// IsNeverSold reports whether s is the NeverSold sentinel.
func (s Stats) IsNeverSold() bool { return s.NeverSold }

func (s Stats) String() string {
	if s.IsNeverSold() {
		return "never sold"
	}
	return fmt.Sprintf("min=%s med=%s max=%s", s.Min, s.Median, s.Max)
}
