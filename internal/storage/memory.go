package storage

import (
	"context"
	"sync"
	"time"

	"github.com/xaenox/moodlog/internal/models"
)

// MemoryStorage keeps query logs in memory. Used for tests and for running
// without a database (use_in_memory config).
type MemoryStorage struct {
	mu     sync.RWMutex
	logs   []models.QueryLog
	nextID int64

	// failNext makes the next insert fail, for rollback tests.
	failNext error
	// failNextList makes the next read fail, for degraded-read tests.
	failNextList error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{nextID: 1}
}

func (s *MemoryStorage) CreateQueryLog(ctx context.Context, log *models.QueryLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failNext; err != nil {
		s.failNext = nil
		return err
	}

	log.ID = s.nextID
	s.nextID++

	ts := time.Now().UTC()
	// Timestamps must be non-decreasing with insert order even when the
	// clock reads the same instant twice.
	if n := len(s.logs); n > 0 && ts.Before(s.logs[n-1].Timestamp) {
		ts = s.logs[n-1].Timestamp
	}
	log.Timestamp = ts

	s.logs = append(s.logs, *log)
	return nil
}

func (s *MemoryStorage) ListRecent(ctx context.Context, limit int) ([]models.QueryLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failNextList; err != nil {
		s.failNextList = nil
		return nil, err
	}

	n := len(s.logs)
	if limit > n {
		limit = n
	}

	out := make([]models.QueryLog, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.logs[i])
	}
	return out, nil
}

// Count returns the number of stored rows.
func (s *MemoryStorage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs)
}

// FailNext makes the next CreateQueryLog call return err without persisting.
func (s *MemoryStorage) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// FailNextList makes the next ListRecent call return err.
func (s *MemoryStorage) FailNextList(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNextList = err
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
