package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"seatmap-scraper/config"
	"seatmap-scraper/utils"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	outputDir  string

	cfg    *config.Config
	logger *utils.Logger
)

var rootCmd = &cobra.Command{
	Use:   "seatmap-scraper",
	Short: "Capture and summarize ticket seat availability",
	Long: `Opens an event page in a browser, captures its availability and seatmap
API responses, and reduces them to one list of seats with a summary.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.LogLevel = logLevel
		}
		if outputDir != "" {
			c.OutputDir = outputDir
		}
		cfg = c
		logger = utils.NewLogger(c.LogLevel)
		return nil
	},
}

// Execute runs the CLI and exits non-zero on failure, 130 on interrupt
func Execute() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "seatmap.json5", "configuration file (json5)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "output directory")
	rootCmd.AddCommand(scrapeCmd, parseCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if errors.Is(ctx.Err(), context.Canceled) {
		if logger != nil {
			logger.Info("Scrape interrupted by user")
		}
		os.Exit(130)
	}
	if err != nil {
		os.Exit(1)
	}
}
