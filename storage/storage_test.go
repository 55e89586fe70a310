package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"seatmap-scraper/capture"
	"seatmap-scraper/config"
	"seatmap-scraper/models"
	"seatmap-scraper/utils"

	"github.com/stretchr/testify/require"
)

func testRun() *models.Run {
	return &models.Run{
		ID:         "run-1",
		EventURL:   "https://tickets.example/event/1",
		StartedAt:  time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 4, 1, 18, 1, 0, 0, time.UTC),
		Result: &models.Result{
			Availability: []models.Availability{{
				SeatmapIDs: []string{"sm-1"},
				EventInfo:  models.EventInfo{EventID: models.Str("9573829")},
			}},
			Seats: []models.Seat{
				{ID: models.Str("s1"), Section: models.Str("A"), Row: models.Str("1"), SeatNumber: models.Str("4"), Price: models.NewStringPrice("63.54"), Status: "available", Available: true},
				{ID: models.Str("s2"), Status: models.StatusUnknown},
			},
			Summary: models.Summary{
				TotalSeats:       2,
				AvailableSeats:   1,
				UnavailableSeats: 1,
				PriceRanges:      []models.PriceRange{{Price: models.NewStringPrice("63.54"), Count: 1}},
				Sections:         models.SectionCounts{{Name: "A", Count: 1}},
			},
		},
	}
}

func TestJSONWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := NewJSONWriter(dir, utils.NewNopLogger())
	require.NoError(t, w.Save(context.Background(), testRun()))

	summary, err := os.ReadFile(filepath.Join(dir, "summary.json"))
	require.NoError(t, err)
	require.JSONEq(t, `{"total_seats":2,"available_seats":1,"unavailable_seats":1,"price_ranges":[{"price":"63.54","count":1}],"sections":{"A":1}}`, string(summary))

	results, err := os.ReadFile(filepath.Join(dir, "results.json"))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(results, &decoded))
	require.Contains(t, decoded, "availability")
	require.Contains(t, decoded, "seats")
	require.Contains(t, decoded, "summary")
	require.Len(t, decoded["seats"], 2)
}

func TestJSONWriterRequiresResult(t *testing.T) {
	w := NewJSONWriter(t.TempDir(), utils.NewNopLogger())
	require.Error(t, w.Save(context.Background(), &models.Run{ID: "empty"}))
}

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "seats.csv")
	w := NewCSVWriter(path, utils.NewNopLogger())
	require.NoError(t, w.Save(context.Background(), testRun()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"id", "section", "row", "seat_number", "price", "status", "available"},
		{"s1", "A", "1", "4", "63.54", "available", "true"},
		{"s2", "", "", "", "", "unknown", "false"},
	}, rows)
}

func TestCaptureDumpRoundTrip(t *testing.T) {
	records := []models.CaptureRecord{
		models.NewAvailabilityCapture("https://x/availability", map[string]any{"seatMapId": json.Number("7")}),
		models.NewSeatmapXMLCapture("https://x/seatmap", `<m><seat id="1" status="available"/></m>`),
		models.NewSeatmapJSONCapture("https://x/seatmap", map[string]any{"seats": []any{map[string]any{"price": json.Number("10.50")}}}),
	}

	path := filepath.Join(t.TempDir(), "captures.jsonl")
	require.NoError(t, NewCaptureDumpWriter(path, utils.NewNopLogger()).WriteCaptures(records))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	back, err := capture.ReadDump(f, utils.NewNopLogger())
	require.NoError(t, err)
	require.Len(t, back, 3)

	for i := range records {
		require.Equal(t, records[i].Kind(), back[i].Kind())
		require.Equal(t, records[i].SourceURL(), back[i].SourceURL())
		require.Equal(t, records[i].Text(), back[i].Text())
	}
	require.Equal(t, records[2].Data(), back[2].Data())
}

type fakeSink struct {
	name   string
	err    error
	saved  int
	closed bool
}

func (f *fakeSink) Name() string { return f.name }
func (f *fakeSink) Save(context.Context, *models.Run) error {
	f.saved++
	return f.err
}
func (f *fakeSink) Close() error {
	f.closed = true
	return nil
}

func TestOpenSinksWithoutServices(t *testing.T) {
	cfg := config.Defaults()
	cfg.OutputDir = t.TempDir()

	sinks := OpenSinks(context.Background(), cfg, utils.NewNopLogger())
	t.Cleanup(func() { _ = sinks.Close() })
	require.Equal(t, 2, sinks.Len())
	require.NoError(t, sinks.Save(context.Background(), testRun()))
	require.FileExists(t, filepath.Join(cfg.OutputDir, "results.json"))
	require.FileExists(t, filepath.Join(cfg.OutputDir, "seats.csv"))
}

func TestMultiSinkContinuesPastFailures(t *testing.T) {
	boom := errors.New("boom")
	a := &fakeSink{name: "a", err: boom}
	b := &fakeSink{name: "b"}
	m := NewMultiSink(utils.NewNopLogger(), a)
	m.Add(b)
	require.Equal(t, 2, m.Len())

	err := m.Save(context.Background(), testRun())
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "a: boom")
	require.Equal(t, 1, a.saved)
	require.Equal(t, 1, b.saved)

	require.NoError(t, m.Close())
	require.True(t, a.closed)
	require.True(t, b.closed)
}

func TestScrapeCompletedEvent(t *testing.T) {
	ev := NewScrapeCompletedEvent(testRun())
	require.Equal(t, "run-1", ev.RunID)
	require.Equal(t, "9573829", ev.Event)
	require.Equal(t, "2026-04-01T18:01:00Z", ev.FinishedAt)
	require.Equal(t, 2, ev.Summary.TotalSeats)

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	require.Contains(t, string(b), `"sections":{"A":1}`)
}

func TestRedisKeys(t *testing.T) {
	require.Equal(t, "seatmap:9573829:latest", LatestKey("9573829"))
	require.Equal(t, "seatmap:9573829:summary", SummaryKey("9573829"))
}
