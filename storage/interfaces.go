package storage

import (
	"context"

	"seatmap-scraper/models"
)

// ResultSink persists the outcome of one scrape run
type ResultSink interface {
	Name() string
	Save(ctx context.Context, run *models.Run) error
	Close() error
}
