package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xaenox/moodlog/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteStorage is a single-file alternative to Postgres for small
// deployments. It uses the pure-Go driver so no cgo is required.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// SQLite allows a single writer; serialize access through one
	// connection instead of failing inserts with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &SQLiteStorage{db: db}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS query_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TIMESTAMP NOT NULL,
			input_text TEXT NOT NULL,
			model_label TEXT,
			model_score REAL
		);
		CREATE INDEX IF NOT EXISTS idx_query_logs_timestamp ON query_logs (timestamp DESC);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}
	return nil
}

func (s *SQLiteStorage) CreateQueryLog(ctx context.Context, log *models.QueryLog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %v", err)
	}
	defer tx.Rollback()

	// The timestamp is assigned here, at insert time, never by the caller.
	ts := time.Now().UTC()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO query_logs (timestamp, input_text, model_label, model_score) VALUES (?, ?, ?, ?)`,
		ts, log.InputText, log.ModelLabel, log.ModelScore)
	if err != nil {
		return fmt.Errorf("error creating query log: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading inserted id: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing query log: %v", err)
	}

	log.ID = id
	log.Timestamp = ts
	return nil
}

func (s *SQLiteStorage) ListRecent(ctx context.Context, limit int) ([]models.QueryLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, input_text, model_label, model_score
		 FROM query_logs ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying logs: %v", err)
	}
	defer rows.Close()

	var logs []models.QueryLog
	for rows.Next() {
		var log models.QueryLog
		var label sql.NullString
		var score sql.NullFloat64
		if err := rows.Scan(&log.ID, &log.Timestamp, &log.InputText, &label, &score); err != nil {
			return nil, fmt.Errorf("error scanning query log: %v", err)
		}
		log.ModelLabel = label.String
		log.ModelScore = score.Float64
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating query logs: %v", err)
	}

	return logs, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
