// Package catalog records batch runs and their per-flight outcomes in
// sqlite, so operators can audit what a given run did without trawling
// logs. The catalog is an audit trail only; pipeline behavior never
// depends on it.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	_ "github.com/mattn/go-sqlite3"
)

// Run kinds recorded by the two commands.
const (
	RunTracks = "tracks"
	RunFrames = "frames"
)

// Per-flight outcome statuses.
const (
	StatusProcessed   = "processed"
	StatusSkipped     = "skipped"      // track artifact already existed
	StatusBadFilename = "bad_filename" // no date/time derivable from the name
	StatusNoData      = "no_data"      // zero valid rows after cleaning
	StatusIOError     = "io_error"
	StatusRendered    = "rendered"
	StatusNoFrames    = "no_frames" // no scan rendered successfully
	StatusNoMatches   = "no_matches"
	StatusNoTrack     = "no_track" // flight directory without a track artifact
)

// FlightRecord is one per-flight outcome row.
type FlightRecord struct {
	FlightID string
	Status   string
	Points   int
	Frames   int
}

// Option configures a Store.
type Option func(*Store)

// WithClock swaps the time source; tests inject a fake for deterministic
// run timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// Store is a sqlite-backed run catalog. The connection opens lazily on
// first use and Close is idempotent.
type Store struct {
	dbPath string
	clock  clockwork.Clock

	db       *sql.DB
	openOnce sync.Once
	openErr  error

	closeOnce sync.Once
	closeErr  error
}

func New(dbPath string, opts ...Option) *Store {
	s := &Store{
		dbPath: dbPath,
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) getDB() (*sql.DB, error) {
	s.openOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL", s.dbPath))
		if err != nil {
			s.openErr = fmt.Errorf("opening catalog: %w", err)
			return
		}
		if _, err = db.Exec(initSchemaSQL); err != nil {
			_ = db.Close()
			s.openErr = fmt.Errorf("initializing catalog schema: %w", err)
			return
		}
		s.db = db
	})
	return s.db, s.openErr
}

// BeginRun records the start of a batch run and returns its identifier.
func (s *Store) BeginRun(ctx context.Context, kind string) (int64, error) {
	db, err := s.getDB()
	if err != nil {
		return 0, err
	}

	result, err := db.ExecContext(ctx, insertRunSQL, kind, s.clock.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting run ID: %w", err)
	}
	return runID, nil
}

// FinishRun stamps the run's completion time.
func (s *Store) FinishRun(ctx context.Context, runID int64) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, finishRunSQL, s.clock.Now().UTC(), runID); err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

// RecordFlight appends one per-flight outcome to a run.
func (s *Store) RecordFlight(ctx context.Context, runID int64, rec FlightRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, insertFlightSQL, runID, rec.FlightID, rec.Status, rec.Points, rec.Frames); err != nil {
		return fmt.Errorf("recording flight %s: %w", rec.FlightID, err)
	}
	return nil
}

// Flights returns a run's outcomes ordered by flight identifier.
func (s *Store) Flights(ctx context.Context, runID int64) ([]FlightRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectFlightsSQL, runID)
	if err != nil {
		return nil, fmt.Errorf("querying flights: %w", err)
	}
	defer rows.Close()

	var records []FlightRecord
	for rows.Next() {
		var rec FlightRecord
		if err := rows.Scan(&rec.FlightID, &rec.Status, &rec.Points, &rec.Frames); err != nil {
			return nil, fmt.Errorf("scanning flight: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating flights: %w", err)
	}
	return records, nil
}

func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.db != nil {
			s.closeErr = s.db.Close()
			s.db = nil
		}
	})
	return s.closeErr
}
