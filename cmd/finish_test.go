package cmd

import (
	"bytes"
	"context"
	"testing"

	"seatmap-scraper/config"
	"seatmap-scraper/models"
	"seatmap-scraper/utils"

	"github.com/stretchr/testify/require"
)

func setupFinish(t *testing.T) *bytes.Buffer {
	t.Helper()
	prevCfg, prevLogger := cfg, logger
	t.Cleanup(func() { cfg, logger = prevCfg, prevLogger })

	var logs bytes.Buffer
	cfg = config.Defaults()
	cfg.OutputDir = t.TempDir()
	logger = utils.NewLoggerTo(&logs, "info")
	return &logs
}

func TestFinishReportsSavedOutput(t *testing.T) {
	logs := setupFinish(t)

	run := &models.Run{ID: "run-1", Result: &models.Result{}}
	require.NoError(t, finish(context.Background(), run, true))
	require.Contains(t, logs.String(), "Full results saved to")
}

func TestFinishDoesNotClaimFailedSave(t *testing.T) {
	logs := setupFinish(t)

	run := &models.Run{ID: "run-1"}
	require.Error(t, finish(context.Background(), run, true))
	require.NotContains(t, logs.String(), "Full results saved to")
}

func TestFinishWithoutSave(t *testing.T) {
	logs := setupFinish(t)

	require.NoError(t, finish(context.Background(), &models.Run{ID: "run-1"}, false))
	require.NotContains(t, logs.String(), "Full results saved to")
}
