package capture

import (
	"fmt"

	"seatmap-scraper/config"
	"seatmap-scraper/utils"
)

// Interceptor is the per-response handler: classify, decode, append
type Interceptor struct {
	classifier *Classifier
	decoder    *Decoder
	buffer     *Buffer
	tracker    *utils.URLTracker
	logger     *utils.Logger
}

// NewInterceptor wires a handler that appends into buffer
func NewInterceptor(cfg config.PipelineConfig, buffer *Buffer, logger *utils.Logger) *Interceptor {
	logger.Debug("Intercepting %q and %q responses for %s", cfg.AvailabilityMatch, cfg.SeatmapMatch, cfg.EventURL)
	return &Interceptor{
		classifier: NewClassifier(cfg),
		decoder:    NewDecoder(logger),
		buffer:     buffer,
		tracker:    utils.NewURLTracker(),
		logger:     logger,
	}
}

// Wants reports whether a response at url is worth fetching a body for
func (i *Interceptor) Wants(url string) bool {
	return len(i.classifier.Classify(url)) > 0
}

// Handle processes one response and returns how many records it appended.
// Undecodable bodies are dropped without error; only buffer misuse is returned.
func (i *Interceptor) Handle(resp Response) (int, error) {
	if i.buffer == nil {
		return 0, ErrNilBuffer
	}
	appended := 0
	for _, c := range i.classifier.Classify(resp.URL()) {
		rec, ok := i.decoder.Decode(c, resp)
		if !ok {
			continue
		}
		if err := i.buffer.Append(rec); err != nil {
			return appended, fmt.Errorf("failed to buffer %s capture: %w", rec.Kind(), err)
		}
		appended++
		i.logger.Info("Captured %s: %s", rec.Kind(), rec.SourceURL())
	}
	if appended > 0 && !i.tracker.Add(resp.URL()) {
		i.logger.Debug("Response re-delivered: %s", resp.URL())
	}
	return appended, nil
}

// DistinctURLs is the number of distinct URLs that produced at least one record
func (i *Interceptor) DistinctURLs() int {
	return i.tracker.Count()
}
