package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"seatmap-scraper/models"
	"seatmap-scraper/utils"
)

// JSONWriter writes results.json and summary.json into a directory
type JSONWriter struct {
	dir    string
	logger *utils.Logger
}

// NewJSONWriter creates a new JSONWriter
func NewJSONWriter(dir string, logger *utils.Logger) *JSONWriter {
	return &JSONWriter{dir: dir, logger: logger}
}

func (w *JSONWriter) Name() string { return "json" }

// Save writes the full result and, separately, its summary
func (w *JSONWriter) Save(_ context.Context, run *models.Run) error {
	if run.Result == nil {
		return fmt.Errorf("run %s has no result", run.ID)
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	resultsPath := filepath.Join(w.dir, "results.json")
	if err := writeJSON(resultsPath, run.Result); err != nil {
		return err
	}
	w.logger.Info("Results saved: %s", resultsPath)

	summaryPath := filepath.Join(w.dir, "summary.json")
	if err := writeJSON(summaryPath, run.Result.Summary); err != nil {
		return err
	}
	w.logger.Info("Summary saved: %s", summaryPath)
	return nil
}

func (w *JSONWriter) Close() error { return nil }

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
