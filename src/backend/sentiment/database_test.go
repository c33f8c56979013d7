package sentiment

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// newTestDB creates a temporary SQLite history store for testing.
// The database file is automatically cleaned up when the test finishes.
func newTestDB(t *testing.T, maxEntries int) *SQLiteHistoryStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewSQLiteHistoryStore(context.Background(), SQLiteConfig{Path: dbPath, MaxEntries: maxEntries})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newEntry(session, text, label string, confidence float64) Entry {
	return Entry{
		ID:         uuid.NewString(),
		SessionID:  session,
		Text:       text,
		Label:      label,
		Confidence: confidence,
	}
}

// --- NewSQLiteHistoryStore tests ---

func TestNewSQLiteHistoryStore_DefaultPath(t *testing.T) {
	tmpDir := t.TempDir()
	// Change to tmpDir so the default "sentimento.db" lands there
	origDir, _ := os.Getwd()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origDir) }()

	db, err := NewSQLiteHistoryStore(context.Background(), SQLiteConfig{})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(tmpDir, "sentimento.db")); os.IsNotExist(err) {
		t.Error("expected default sentimento.db to be created")
	}
}

func TestNewSQLiteHistoryStore_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sub", "dir", "test.db")
	db, err := NewSQLiteHistoryStore(context.Background(), SQLiteConfig{Path: dbPath})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected database file to be created in nested directory")
	}
}

// --- shared HistoryStore behaviour ---

func historyStores(t *testing.T, maxEntries int) map[string]HistoryStore {
	return map[string]HistoryStore{
		"memory": NewMemoryHistoryStore(maxEntries, nil),
		"sqlite": newTestDB(t, maxEntries),
	}
}

func TestHistoryStore_AppendListOrder(t *testing.T) {
	ctx := context.Background()
	for name, store := range historyStores(t, 10) {
		t.Run(name, func(t *testing.T) {
			texts := []string{"primeiro", "segundo", "terceiro"}
			for _, text := range texts {
				if err := store.Append(ctx, newEntry("s1", text, "Neutro", 0.5)); err != nil {
					t.Fatalf("append failed: %v", err)
				}
			}
			if err := store.Append(ctx, newEntry("s2", "outra sessão", "Positivo", 0.9)); err != nil {
				t.Fatalf("append failed: %v", err)
			}

			entries, err := store.List(ctx, "s1", 0, 0)
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if len(entries) != len(texts) {
				t.Fatalf("expected %d entries, got %d", len(texts), len(entries))
			}
			for i, text := range texts {
				if entries[i].Text != text {
					t.Errorf("entry %d: expected %q, got %q", i, text, entries[i].Text)
				}
				if entries[i].CreatedAt.IsZero() {
					t.Errorf("entry %d: expected created_at to be set", i)
				}
			}

			count, err := store.Count(ctx, "s2")
			if err != nil {
				t.Fatal(err)
			}
			if count != 1 {
				t.Errorf("expected 1 entry in s2, got %d", count)
			}
		})
	}
}

func TestHistoryStore_Pagination(t *testing.T) {
	ctx := context.Background()
	for name, store := range historyStores(t, 10) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				if err := store.Append(ctx, newEntry("s", string(rune('a'+i)), "Neutro", 0.4)); err != nil {
					t.Fatal(err)
				}
			}

			entries, err := store.List(ctx, "s", 2, 1)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 2 || entries[0].Text != "b" || entries[1].Text != "c" {
				t.Errorf("unexpected page: %+v", entries)
			}

			entries, err = store.List(ctx, "s", 10, 10)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 0 {
				t.Errorf("expected empty page past the end, got %d entries", len(entries))
			}
		})
	}
}

func TestHistoryStore_BoundedPerSession(t *testing.T) {
	ctx := context.Background()
	for name, store := range historyStores(t, 3) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				if err := store.Append(ctx, newEntry("s", string(rune('a'+i)), "Neutro", 0.4)); err != nil {
					t.Fatal(err)
				}
			}

			entries, err := store.List(ctx, "s", 0, 0)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 3 {
				t.Fatalf("expected 3 entries, got %d", len(entries))
			}
			if entries[0].Text != "c" || entries[2].Text != "e" {
				t.Errorf("expected oldest entries to be dropped, got %+v", entries)
			}
		})
	}
}

func TestHistoryStore_Clear(t *testing.T) {
	ctx := context.Background()
	for name, store := range historyStores(t, 10) {
		t.Run(name, func(t *testing.T) {
			_ = store.Append(ctx, newEntry("s1", "um", "Neutro", 0.4))
			_ = store.Append(ctx, newEntry("s2", "dois", "Neutro", 0.4))

			if err := store.Clear(ctx, "s1"); err != nil {
				t.Fatalf("clear failed: %v", err)
			}
			if n, _ := store.Count(ctx, "s1"); n != 0 {
				t.Errorf("expected s1 to be empty, got %d", n)
			}
			if n, _ := store.Count(ctx, "s2"); n != 1 {
				t.Errorf("expected s2 to be untouched, got %d", n)
			}
		})
	}
}

func TestHistoryStore_CleanupOlderThan(t *testing.T) {
	ctx := context.Background()
	for name, store := range historyStores(t, 10) {
		t.Run(name, func(t *testing.T) {
			old := newEntry("s", "antigo", "Negativo", 0.8)
			old.CreatedAt = time.Now().Add(-48 * time.Hour)
			recent := newEntry("s", "recente", "Positivo", 0.7)
			recent.CreatedAt = time.Now()

			_ = store.Append(ctx, old)
			_ = store.Append(ctx, recent)

			deleted, err := store.CleanupOlderThan(ctx, 24*time.Hour)
			if err != nil {
				t.Fatalf("cleanup failed: %v", err)
			}
			if deleted != 1 {
				t.Errorf("expected 1 deleted entry, got %d", deleted)
			}
			entries, _ := store.List(ctx, "s", 0, 0)
			if len(entries) != 1 || entries[0].Text != "recente" {
				t.Errorf("expected only the recent entry to remain, got %+v", entries)
			}
		})
	}
}

func TestHistoryStore_TruncatesLargeText(t *testing.T) {
	ctx := context.Background()
	for name, store := range historyStores(t, 10) {
		t.Run(name, func(t *testing.T) {
			large := strings.Repeat("ç", MaxTextSize) // two bytes per rune
			if err := store.Append(ctx, newEntry("s", large, "Neutro", 0.4)); err != nil {
				t.Fatal(err)
			}
			entries, _ := store.List(ctx, "s", 0, 0)
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}
			if len(entries[0].Text) > MaxTextSize {
				t.Errorf("expected text to be at most %d bytes, got %d", MaxTextSize, len(entries[0].Text))
			}
			if !strings.HasPrefix(large, entries[0].Text) {
				t.Error("expected truncated text to be a prefix of the original")
			}
		})
	}
}

func TestSQLiteHistoryStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "persist.db")

	db, err := NewSQLiteHistoryStore(ctx, SQLiteConfig{Path: dbPath})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Append(ctx, newEntry("s", "o PIB subiu", "Positivo", 0.93)); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = NewSQLiteHistoryStore(ctx, SQLiteConfig{Path: dbPath})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	entries, err := db.List(ctx, "s", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Label != "Positivo" || entries[0].Confidence != 0.93 {
		t.Errorf("unexpected entries after reopen: %+v", entries)
	}
}

func TestTruncateText(t *testing.T) {
	if got := truncateText("curto"); got != "curto" {
		t.Errorf("expected short text unchanged, got %q", got)
	}
	// One ASCII byte shifts every two-byte rune off the boundary
	text := "a" + strings.Repeat("é", MaxTextSize)
	got := truncateText(text)
	if len(got) != MaxTextSize-1 {
		t.Errorf("expected cut before the split rune (%d bytes), got %d", MaxTextSize-1, len(got))
	}
}
