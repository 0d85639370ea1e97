package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/xaenox/moodlog/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	Path        string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &PostgresStorage{db: db}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

// CreateQueryLog inserts one row inside its own transaction. The row is
// committed before success is reported; any failure rolls the insert back.
func (s *PostgresStorage) CreateQueryLog(ctx context.Context, log *models.QueryLog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %v", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO query_logs (input_text, model_label, model_score)
		VALUES ($1, $2, $3)
		RETURNING id, timestamp`

	err = tx.QueryRowContext(ctx, query, log.InputText, log.ModelLabel, log.ModelScore).
		Scan(&log.ID, &log.Timestamp)
	if err != nil {
		return fmt.Errorf("error creating query log: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing query log: %v", err)
	}

	return nil
}

func (s *PostgresStorage) ListRecent(ctx context.Context, limit int) ([]models.QueryLog, error) {
	query := `
		SELECT id, timestamp, input_text, model_label, model_score
		FROM query_logs
		ORDER BY timestamp DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying logs: %v", err)
	}
	defer rows.Close()

	var logs []models.QueryLog
	for rows.Next() {
		var log models.QueryLog
		var label sql.NullString
		var score sql.NullFloat64
		err := rows.Scan(&log.ID, &log.Timestamp, &log.InputText, &label, &score)
		if err != nil {
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

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
