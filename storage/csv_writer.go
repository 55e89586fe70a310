package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"seatmap-scraper/models"
	"seatmap-scraper/utils"
)

// CSVWriter handles writing canonical seats to a CSV file
type CSVWriter struct {
	filePath string
	logger   *utils.Logger
}

// NewCSVWriter creates a new CSVWriter
func NewCSVWriter(filePath string, logger *utils.Logger) *CSVWriter {
	return &CSVWriter{filePath: filePath, logger: logger}
}

func (w *CSVWriter) Name() string { return "csv" }

// Save writes every seat of the run, one row per seat
func (w *CSVWriter) Save(_ context.Context, run *models.Run) error {
	if run.Result == nil {
		return fmt.Errorf("run %s has no result", run.ID)
	}
	return w.WriteSeats(run.Result.Seats)
}

// WriteSeats writes a slice of seats to the CSV file
func (w *CSVWriter) WriteSeats(seats []models.Seat) error {
	// Ensure output directory exists
	dir := filepath.Dir(w.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(w.filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{"id", "section", "row", "seat_number", "price", "status", "available"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, s := range seats {
		row := []string{
			models.Deref(s.ID, ""),
			models.Deref(s.Section, ""),
			models.Deref(s.Row, ""),
			models.Deref(s.SeatNumber, ""),
			s.Price.String(),
			s.Status,
			strconv.FormatBool(s.Available),
		}
		if err := writer.Write(row); err != nil {
			w.logger.Error("Failed to write CSV row for seat '%s': %v", models.Deref(s.ID, "?"), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	w.logger.Info("Seats written to: %s (%d rows)", w.filePath, len(seats))
	return nil
}

func (w *CSVWriter) Close() error { return nil }
