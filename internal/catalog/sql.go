package catalog

const initSchemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    kind        TEXT NOT NULL,
    started_at  DATETIME NOT NULL,
    finished_at DATETIME
);

CREATE TABLE IF NOT EXISTS flights (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id    INTEGER NOT NULL REFERENCES runs(id),
    flight_id TEXT NOT NULL,
    status    TEXT NOT NULL,
    points    INTEGER NOT NULL DEFAULT 0,
    frames    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_flights_run ON flights(run_id);
CREATE INDEX IF NOT EXISTS idx_flights_flight ON flights(flight_id);
`

const (
	insertRunSQL = `INSERT INTO runs (kind, started_at) VALUES (?, ?)`

	finishRunSQL = `UPDATE runs SET finished_at = ? WHERE id = ?`

	insertFlightSQL = `
        INSERT INTO flights (run_id, flight_id, status, points, frames)
        VALUES (?, ?, ?, ?, ?)`

	selectFlightsSQL = `
        SELECT flight_id, status, points, frames
        FROM flights
        WHERE run_id = ?
        ORDER BY flight_id`
)
