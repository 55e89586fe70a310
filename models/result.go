package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// EventInfo is the event metadata carried by an availability payload
type EventInfo struct {
	EventID   *string `json:"event_id"`
	EventName *string `json:"event_name"`
	Venue     *string `json:"venue"`
	Date      *string `json:"date"`
}

// Availability is the parsed form of one availability capture
type Availability struct {
	SourceURL  string          `json:"source_url"`
	SeatmapIDs []string        `json:"seatmap_ids"`
	EventInfo  EventInfo       `json:"event_info"`
	RawData    json.RawMessage `json:"raw_data,omitempty"`
}

// PriceRange counts available seats sharing one price token
type PriceRange struct {
	Price *Price `json:"price"`
	Count int    `json:"count"`
}

// SectionCount is the number of available seats in one section
type SectionCount struct {
	Name  string
	Count int
}

// SectionCounts keeps sections in first-seen order and encodes as a JSON object
type SectionCounts []SectionCount

func (s SectionCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sc := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(sc.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		count, _ := json.Marshal(sc.Count)
		buf.Write(count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Summary holds aggregate statistics recomputed from a seat collection
type Summary struct {
	TotalSeats       int           `json:"total_seats"`
	AvailableSeats   int           `json:"available_seats"`
	UnavailableSeats int           `json:"unavailable_seats"`
	PriceRanges      []PriceRange  `json:"price_ranges"`
	Sections         SectionCounts `json:"sections"`
}

// Result is what one scrape session hands to the persistence layer
type Result struct {
	Availability []Availability `json:"availability"`
	Seats        []Seat         `json:"seats"`
	Summary      Summary        `json:"summary"`
}

// Run wraps a result with the metadata of the session that produced it
type Run struct {
	ID           string          `json:"id"`
	EventURL     string          `json:"event_url"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   time.Time       `json:"finished_at"`
	Captures     []CaptureRecord `json:"-"`
	DistinctURLs int             `json:"distinct_urls"`
	Result       *Result         `json:"result"`
}

// EventKey identifies the event a run belongs to, preferring the id from availability data
func (r *Run) EventKey() string {
	if r.Result != nil {
		for _, a := range r.Result.Availability {
			if a.EventInfo.EventID != nil && *a.EventInfo.EventID != "" {
				return *a.EventInfo.EventID
			}
		}
	}
	return r.ID
}
