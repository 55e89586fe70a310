package capture

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"seatmap-scraper/models"
	"seatmap-scraper/utils"
)

const maxDumpLine = 64 << 20

// ReadDump reads capture records written one JSON object per line.
// Malformed lines are skipped; only read errors are returned.
func ReadDump(r io.Reader, logger *utils.Logger) ([]models.CaptureRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxDumpLine)

	var records []models.CaptureRecord
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec models.CaptureRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			logger.Warn("Skipping dump line %d: %v", lineNo, err)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("failed to read capture dump: %w", err)
	}
	return records, nil
}
