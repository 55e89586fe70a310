package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"seatmap-scraper/models"
	"seatmap-scraper/utils"

	_ "github.com/lib/pq"
)

// PostgresWriter handles storing scrape runs and their seats in PostgreSQL
type PostgresWriter struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresWriter creates a new PostgresWriter and pings the DB
func NewPostgresWriter(ctx context.Context, connStr string, maxRetries int, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	err = utils.RetryWithBackoff(ctx, maxRetries, time.Second, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	}, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger.Info("Connected to PostgreSQL successfully")
	return &PostgresWriter{db: db, logger: logger}, nil
}

func (w *PostgresWriter) Name() string { return "postgres" }

// CreateTables creates the scrape_runs and seats tables if they don't exist, with indexes
func (w *PostgresWriter) CreateTables(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS scrape_runs (
		id                TEXT PRIMARY KEY,
		event_key         TEXT        NOT NULL,
		event_url         TEXT        NOT NULL,
		started_at        TIMESTAMPTZ NOT NULL,
		finished_at       TIMESTAMPTZ NOT NULL,
		captures          INTEGER     NOT NULL DEFAULT 0,
		total_seats       INTEGER     NOT NULL DEFAULT 0,
		available_seats   INTEGER     NOT NULL DEFAULT 0,
		unavailable_seats INTEGER     NOT NULL DEFAULT 0,
		summary           JSONB       NOT NULL
	);

	CREATE TABLE IF NOT EXISTS seats (
		id          SERIAL PRIMARY KEY,
		run_id      TEXT    NOT NULL REFERENCES scrape_runs (id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		seat_id     TEXT,
		section     TEXT,
		row_label   TEXT,
		seat_number TEXT,
		price       TEXT,
		price_token JSONB,
		status      TEXT    NOT NULL,
		available   BOOLEAN NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scrape_runs_event ON scrape_runs (event_key, finished_at);
	CREATE INDEX IF NOT EXISTS idx_seats_run         ON seats (run_id);
	CREATE INDEX IF NOT EXISTS idx_seats_section     ON seats (section);
	CREATE INDEX IF NOT EXISTS idx_seats_available   ON seats (available);
	`
	if _, err := w.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	w.logger.Info("Tables 'scrape_runs' and 'seats' are ready")
	return nil
}

// Save inserts the run and all of its seats in a single transaction
func (w *PostgresWriter) Save(ctx context.Context, run *models.Run) (err error) {
	if run.Result == nil {
		return fmt.Errorf("run %s has no result", run.ID)
	}
	summary, err := json.Marshal(run.Result.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scrape_runs (id, event_key, event_url, started_at, finished_at, captures,
			total_seats, available_seats, unavailable_seats, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		run.ID, run.EventKey(), run.EventURL, run.StartedAt, run.FinishedAt, len(run.Captures),
		run.Result.Summary.TotalSeats, run.Result.Summary.AvailableSeats, run.Result.Summary.UnavailableSeats,
		string(summary),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO seats (run_id, position, seat_id, section, row_label, seat_number, price, price_token, status, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, s := range run.Result.Seats {
		var price, token *string
		if s.Price != nil {
			price, token = models.Str(s.Price.String()), models.Str(s.Price.Key())
		}
		if _, err = stmt.ExecContext(ctx, run.ID, i, s.ID, s.Section, s.Row, s.SeatNumber, price, token, s.Status, s.Available); err != nil {
			return fmt.Errorf("failed to insert seat %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.logger.Info("Inserted run %s with %d seats into PostgreSQL", run.ID, len(run.Result.Seats))
	return nil
}

// Close closes the database connection
func (w *PostgresWriter) Close() error {
	if w.db != nil {
		return w.db.Close()
	}
	return nil
}
