package capture

import (
	"strings"

	"seatmap-scraper/models"
	"seatmap-scraper/utils"
)

// Decoder turns classified responses into capture records
type Decoder struct {
	logger *utils.Logger
}

// NewDecoder creates a new Decoder
func NewDecoder(logger *utils.Logger) *Decoder {
	return &Decoder{logger: logger}
}

// Decode builds the record for one candidate. The boolean is false when the
// body could not be decoded and the response was dropped.
func (d *Decoder) Decode(c Candidate, resp Response) (models.CaptureRecord, bool) {
	switch c {
	case CandidateAvailability:
		data, err := resp.JSONBody()
		if err != nil {
			d.logger.Debug("Dropping availability response %s: %v", resp.URL(), err)
			return models.CaptureRecord{}, false
		}
		return models.NewAvailabilityCapture(resp.URL(), data), true

	case CandidateSeatmap:
		if data, err := resp.JSONBody(); err == nil {
			return models.NewSeatmapJSONCapture(resp.URL(), data), true
		}
		text, err := resp.TextBody()
		if err != nil {
			d.logger.Debug("Dropping seatmap response %s: %v", resp.URL(), err)
			return models.CaptureRecord{}, false
		}
		if !strings.HasPrefix(strings.TrimSpace(text), "<") {
			d.logger.Debug("Dropping seatmap response %s: neither JSON nor XML", resp.URL())
			return models.CaptureRecord{}, false
		}
		return models.NewSeatmapXMLCapture(resp.URL(), text), true
	}
	return models.CaptureRecord{}, false
}
