package cmd

import (
	"context"
	"os"

	"seatmap-scraper/models"
	"seatmap-scraper/services"
	"seatmap-scraper/storage"
)

// finish persists the run when asked to and prints its report
func finish(ctx context.Context, run *models.Run, save bool) error {
	var saveErr error
	if save {
		sinks := storage.OpenSinks(ctx, cfg, logger)
		defer sinks.Close()
		saveErr = sinks.Save(ctx, run)
	}

	services.PrintReport(os.Stdout, run)
	if save && saveErr == nil {
		logger.Info("Full results saved to: %s/", cfg.OutputDir)
	}
	return saveErr
}
