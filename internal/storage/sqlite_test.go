package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xaenox/moodlog/internal/models"
)

func newTestSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStorage_CreateAndList(t *testing.T) {
	store := newTestSQLite(t)

	log := &models.QueryLog{
		InputText:  "This is terrible",
		ModelLabel: models.LabelNegative,
		ModelScore: 0.91,
	}
	if err := store.CreateQueryLog(context.Background(), log); err != nil {
		t.Fatalf("CreateQueryLog() error = %v", err)
	}
	if log.ID == 0 {
		t.Error("ID should be assigned on insert")
	}
	if log.Timestamp.IsZero() {
		t.Error("Timestamp should be assigned on insert")
	}

	got, err := store.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListRecent() returned %d rows, want 1", len(got))
	}
	if got[0].InputText != "This is terrible" {
		t.Errorf("InputText = %q, want %q", got[0].InputText, "This is terrible")
	}
	if got[0].ModelLabel != models.LabelNegative {
		t.Errorf("ModelLabel = %q, want %q", got[0].ModelLabel, models.LabelNegative)
	}
}

func TestSQLiteStorage_ListRecentOrder(t *testing.T) {
	store := newTestSQLite(t)

	for _, text := range []string{"a", "b", "c", "d"} {
		log := &models.QueryLog{InputText: text, ModelLabel: models.LabelPositive, ModelScore: 0.8}
		if err := store.CreateQueryLog(context.Background(), log); err != nil {
			t.Fatalf("CreateQueryLog() error = %v", err)
		}
	}

	got, err := store.ListRecent(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListRecent() returned %d rows, want 2", len(got))
	}
	// Newest first, id breaking ties for same-instant inserts
	if got[0].InputText != "d" || got[1].InputText != "c" {
		t.Errorf("ListRecent() order = [%s, %s], want [d, c]", got[0].InputText, got[1].InputText)
	}
}

func TestSQLiteStorage_EmptyList(t *testing.T) {
	store := newTestSQLite(t)

	got, err := store.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListRecent() on empty table returned %d rows", len(got))
	}
}
