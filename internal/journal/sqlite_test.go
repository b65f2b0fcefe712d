package journal_test

import (
	"path/filepath"
	"testing"
	"time"

	"nymedit/internal/config"
	"nymedit/internal/journal"
	"nymedit/internal/record"
)

func newJournal(t *testing.T) *journal.SQLiteJournal {
	t.Helper()
	j, err := journal.NewSQLiteJournal(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteJournal() error = %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestSQLiteJournal_LastWrite(t *testing.T) {
	t.Run("zero time before any write", func(t *testing.T) {
		j := newJournal(t)

		at, err := j.LastWrite("ingrid", record.KindConcept)
		if err != nil {
			t.Fatalf("LastWrite() error = %v", err)
		}
		if !at.IsZero() {
			t.Errorf("LastWrite() = %v, want zero time", at)
		}
	})

	t.Run("round-trips a write timestamp", func(t *testing.T) {
		j := newJournal(t)
		at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

		if err := j.RecordWrite("ingrid", record.KindConcept, at); err != nil {
			t.Fatalf("RecordWrite() error = %v", err)
		}
		got, err := j.LastWrite("ingrid", record.KindConcept)
		if err != nil {
			t.Fatalf("LastWrite() error = %v", err)
		}
		if !got.Equal(at) {
			t.Errorf("LastWrite() = %v, want %v", got, at)
		}
	})

	t.Run("later writes advance the timestamp", func(t *testing.T) {
		j := newJournal(t)
		first := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
		second := first.Add(time.Hour)

		if err := j.RecordWrite("ingrid", record.KindConcept, first); err != nil {
			t.Fatalf("RecordWrite() error = %v", err)
		}
		if err := j.RecordWrite("ingrid", record.KindConcept, second); err != nil {
			t.Fatalf("RecordWrite() error = %v", err)
		}

		got, err := j.LastWrite("ingrid", record.KindConcept)
		if err != nil {
			t.Fatalf("LastWrite() error = %v", err)
		}
		if !got.Equal(second) {
			t.Errorf("LastWrite() = %v, want %v", got, second)
		}
	})

	t.Run("kinds and users are independent", func(t *testing.T) {
		j := newJournal(t)
		at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

		if err := j.RecordWrite("ingrid", record.KindConcept, at); err != nil {
			t.Fatalf("RecordWrite() error = %v", err)
		}

		got, err := j.LastWrite("ingrid", record.KindVariant)
		if err != nil {
			t.Fatalf("LastWrite() error = %v", err)
		}
		if !got.IsZero() {
			t.Errorf("LastWrite(other kind) = %v, want zero", got)
		}

		got, err = j.LastWrite("marta", record.KindConcept)
		if err != nil {
			t.Fatalf("LastWrite() error = %v", err)
		}
		if !got.IsZero() {
			t.Errorf("LastWrite(other user) = %v, want zero", got)
		}
	})
}

func TestSQLiteJournal_SessionRows(t *testing.T) {
	j := newJournal(t)
	at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	if err := j.RecordLogin("ingrid", at); err != nil {
		t.Fatalf("RecordLogin() error = %v", err)
	}
	if err := j.RecordPublish("ingrid", at.Add(time.Hour)); err != nil {
		t.Fatalf("RecordPublish() error = %v", err)
	}
}

func TestSQLiteJournal_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	j, err := journal.NewSQLiteJournal(path)
	if err != nil {
		t.Fatalf("NewSQLiteJournal() error = %v", err)
	}
	if err := j.RecordWrite("ingrid", record.KindConcept, at); err != nil {
		t.Fatalf("RecordWrite() error = %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Reopening runs the schema version check against the already-migrated
	// database and must come back clean with the data intact.
	j, err = journal.NewSQLiteJournal(path)
	if err != nil {
		t.Fatalf("NewSQLiteJournal() reopen error = %v", err)
	}
	defer j.Close()

	got, err := j.LastWrite("ingrid", record.KindConcept)
	if err != nil {
		t.Fatalf("LastWrite() error = %v", err)
	}
	if !got.Equal(at) {
		t.Errorf("LastWrite() after reopen = %v, want %v", got, at)
	}
}

func TestNewJournalFromConfig(t *testing.T) {
	t.Run("sqlite creates the data directory", func(t *testing.T) {
		dataDir := filepath.Join(t.TempDir(), "nested", "journal")
		j, err := journal.NewJournalFromConfig(config.JournalConfig{Type: "sqlite", DataDir: dataDir})
		if err != nil {
			t.Fatalf("NewJournalFromConfig() error = %v", err)
		}
		defer j.Close()

		at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
		if err := j.RecordWrite("ingrid", record.KindBibliography, at); err != nil {
			t.Fatalf("RecordWrite() error = %v", err)
		}
	})

	t.Run("sqlite requires a data directory", func(t *testing.T) {
		if _, err := journal.NewJournalFromConfig(config.JournalConfig{Type: "sqlite"}); err == nil {
			t.Error("NewJournalFromConfig() error = nil, want missing data_dir error")
		}
	})

	t.Run("memory needs no directory", func(t *testing.T) {
		j, err := journal.NewJournalFromConfig(config.JournalConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewJournalFromConfig() error = %v", err)
		}
		j.Close()
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		if _, err := journal.NewJournalFromConfig(config.JournalConfig{Type: "postgres"}); err == nil {
			t.Error("NewJournalFromConfig() error = nil, want unknown type error")
		}
	})
}
