package capture

import (
	"strings"

	"seatmap-scraper/config"
)

// Candidate is what a response URL may contain, before its body is decoded
type Candidate int

const (
	CandidateAvailability Candidate = iota + 1
	CandidateSeatmap
)

func (c Candidate) String() string {
	switch c {
	case CandidateAvailability:
		return "availability"
	case CandidateSeatmap:
		return "seatmap"
	}
	return "ignored"
}

// Classifier matches response URLs against the configured path substrings
type Classifier struct {
	availability string
	seatmap      string
}

// NewClassifier creates a Classifier; an empty substring disables that rule
func NewClassifier(cfg config.PipelineConfig) *Classifier {
	return &Classifier{
		availability: strings.ToLower(cfg.AvailabilityMatch),
		seatmap:      strings.ToLower(cfg.SeatmapMatch),
	}
}

// Classify returns every candidate the URL matches, availability first.
// The rules are independent: a URL containing both substrings yields both.
// An empty result means the response is ignored.
func (c *Classifier) Classify(url string) []Candidate {
	lower := strings.ToLower(url)
	var out []Candidate
	if c.availability != "" && strings.Contains(lower, c.availability) {
		out = append(out, CandidateAvailability)
	}
	if c.seatmap != "" && strings.Contains(lower, c.seatmap) {
		out = append(out, CandidateSeatmap)
	}
	return out
}
