package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"seatmap-scraper/models"
	"seatmap-scraper/utils"
)

// CaptureDumpWriter stores frozen capture records as JSON lines so a session can be replayed offline
type CaptureDumpWriter struct {
	filePath string
	logger   *utils.Logger
}

// NewCaptureDumpWriter creates a new CaptureDumpWriter
func NewCaptureDumpWriter(filePath string, logger *utils.Logger) *CaptureDumpWriter {
	return &CaptureDumpWriter{filePath: filePath, logger: logger}
}

// WriteCaptures writes one record per line, in arrival order
func (w *CaptureDumpWriter) WriteCaptures(records []models.CaptureRecord) error {
	if err := os.MkdirAll(filepath.Dir(w.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(w.filePath)
	if err != nil {
		return fmt.Errorf("failed to create dump file: %w", err)
	}
	defer file.Close()

	buf := bufio.NewWriter(file)
	enc := json.NewEncoder(buf)
	written := 0
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			w.logger.Error("Failed to dump capture %s: %v", rec.SourceURL(), err)
			continue
		}
		written++
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush dump file: %w", err)
	}

	w.logger.Info("Captures written to: %s (%d records)", w.filePath, written)
	return nil
}
