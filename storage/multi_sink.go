package storage

import (
	"context"
	"errors"
	"fmt"

	"seatmap-scraper/models"
	"seatmap-scraper/utils"
)

// MultiSink saves a run to every configured sink. A failing sink is logged
// and does not keep the others from running.
type MultiSink struct {
	sinks  []ResultSink
	logger *utils.Logger
}

// NewMultiSink creates a new MultiSink
func NewMultiSink(logger *utils.Logger, sinks ...ResultSink) *MultiSink {
	return &MultiSink{sinks: sinks, logger: logger}
}

// Add appends a sink
func (m *MultiSink) Add(s ResultSink) {
	m.sinks = append(m.sinks, s)
}

// Len returns the number of sinks
func (m *MultiSink) Len() int {
	return len(m.sinks)
}

func (m *MultiSink) Name() string { return "multi" }

// Save returns the joined errors of all failing sinks
func (m *MultiSink) Save(ctx context.Context, run *models.Run) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Save(ctx, run); err != nil {
			m.logger.Error("Sink %s failed: %v", s.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
