package cmd

import (
	"fmt"
	"path/filepath"

	"seatmap-scraper/scraper/tickets"
	"seatmap-scraper/storage"

	"github.com/spf13/cobra"
)

var (
	eventURL   string
	showWindow bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Open the event page and capture seat availability",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if eventURL != "" {
			cfg.EventURL = eventURL
		}
		if showWindow {
			cfg.Headless = false
		}

		logger.Info("Target event: %s", cfg.EventURL)
		logger.Info("Headless mode: %v | capture window: %v | interactions: %d",
			cfg.Headless, cfg.CaptureWindow, cfg.MaxInteractions)

		scraper := tickets.NewTicketScraper(cfg, logger)
		run, err := scraper.Scrape(ctx)
		if err != nil {
			logger.Error("Scrape failed: %v", err)
			return err
		}

		// Non-fatal: the dump only exists for offline replay
		dump := storage.NewCaptureDumpWriter(filepath.Join(cfg.OutputDir, "captures.jsonl"), logger)
		if err := dump.WriteCaptures(run.Captures); err != nil {
			logger.Error("Failed to write capture dump: %v", err)
		}

		if err := finish(ctx, run, true); err != nil {
			return fmt.Errorf("scrape finished with errors: %w", err)
		}
		return nil
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&eventURL, "url", "", "event page URL (overrides EVENT_URL)")
	scrapeCmd.Flags().BoolVar(&showWindow, "show", false, "run the browser with a visible window")
}
