package releaselog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kilianp07/crossroad/core/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS releases (
        run_id TEXT,
        vehicle_id TEXT,
        step INTEGER,
        route TEXT,
        lane INTEGER,
        delay_s REAL,
        ts INTEGER,
        PRIMARY KEY(run_id, vehicle_id)
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append inserts the records in a single transaction.
func (s *SQLiteStore) Append(ctx context.Context, recs ...Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO releases (run_id, vehicle_id, step, route, lane, delay_s, ts)
        VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, r.RunID, r.VehicleID, r.Step, string(r.Route), r.Lane, r.DelaySeconds, r.Timestamp.UnixNano()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert %s: %w", r.VehicleID, err)
		}
	}
	return tx.Commit()
}

// Query returns records matching q ordered by step.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Record, error) {
	var args []any
	query := `SELECT run_id, vehicle_id, step, route, lane, delay_s, ts FROM releases WHERE delay_s >= ?`
	args = append(args, q.MinDelay)
	if q.RunID != "" {
		query += ` AND run_id = ?`
		args = append(args, q.RunID)
	}
	if q.VehicleID != "" {
		query += ` AND vehicle_id = ?`
		args = append(args, q.VehicleID)
	}
	if q.Route != "" {
		query += ` AND route = ?`
		args = append(args, string(q.Route))
	}
	query += ` ORDER BY step, vehicle_id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Record
	for rows.Next() {
		var r Record
		var route string
		var ts int64
		if err := rows.Scan(&r.RunID, &r.VehicleID, &r.Step, &route, &r.Lane, &r.DelaySeconds, &ts); err != nil {
			return nil, err
		}
		r.Route = model.Route(route)
		r.Timestamp = time.Unix(0, ts).UTC()
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
