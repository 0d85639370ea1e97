package storage

import (
	"context"

	"github.com/xaenox/moodlog/internal/models"
)

// Storage persists query logs. The log is append-only: rows are inserted
// once and never updated or deleted.
type Storage interface {
	// CreateQueryLog inserts a new row and fills in the store-assigned
	// ID and Timestamp on the passed record. The insert is committed
	// before CreateQueryLog returns nil; on error nothing is persisted.
	CreateQueryLog(ctx context.Context, log *models.QueryLog) error

	// ListRecent returns up to limit rows ordered by timestamp descending.
	ListRecent(ctx context.Context, limit int) ([]models.QueryLog, error)

	Close() error
}
