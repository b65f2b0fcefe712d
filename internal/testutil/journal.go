package testutil

import (
	"sync"
	"time"

	"nymedit/internal/record"
)

// MemoryJournal is an in-memory record.Journal for tests that don't need
// SQLite.
type MemoryJournal struct {
	mu         sync.Mutex
	Logins     []string
	Publishes  []string
	Writes     []string
	lastWrites map[string]time.Time
}

// NewMemoryJournal creates an empty MemoryJournal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{lastWrites: make(map[string]time.Time)}
}

func (j *MemoryJournal) RecordLogin(username string, _ time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Logins = append(j.Logins, username)
	return nil
}

func (j *MemoryJournal) RecordWrite(username string, kind record.Kind, at time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Writes = append(j.Writes, username+"/"+string(kind))
	j.lastWrites[username+"/"+string(kind)] = at
	return nil
}

func (j *MemoryJournal) RecordPublish(username string, _ time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Publishes = append(j.Publishes, username)
	return nil
}

func (j *MemoryJournal) LastWrite(username string, kind record.Kind) (time.Time, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastWrites[username+"/"+string(kind)], nil
}

func (j *MemoryJournal) Close() error { return nil }
