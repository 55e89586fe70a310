package cmd

import (
	"fmt"
	"os"
	"time"

	"seatmap-scraper/capture"
	"seatmap-scraper/models"
	"seatmap-scraper/services"
	"seatmap-scraper/utils"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var saveParsed bool

var parseCmd = &cobra.Command{
	Use:   "parse <captures.jsonl>...",
	Short: "Replay capture dumps through the normalizer offline",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		run := &models.Run{
			ID:        uuid.NewString(),
			EventURL:  cfg.EventURL,
			StartedAt: time.Now(),
		}

		for _, path := range args {
			records, err := readDumpFile(path)
			if err != nil {
				return err
			}
			logger.Info("Loaded %d captures from %s", len(records), path)
			run.Captures = append(run.Captures, records...)
		}

		tracker := utils.NewURLTracker()
		for _, rec := range run.Captures {
			tracker.Add(rec.SourceURL())
		}
		run.DistinctURLs = tracker.Count()
		run.Result = services.NewNormalizer(logger).Normalize(run.Captures)
		run.FinishedAt = time.Now()

		return finish(cmd.Context(), run, saveParsed)
	},
}

func init() {
	parseCmd.Flags().BoolVar(&saveParsed, "save", false, "persist the result to the configured sinks")
}

func readDumpFile(path string) ([]models.CaptureRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump: %w", err)
	}
	defer f.Close()
	return capture.ReadDump(f, logger)
}
