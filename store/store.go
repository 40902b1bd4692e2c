// Package store owns the canonical in-memory user map and its on-disk JSON
// mirror. All mutation goes through Put/Mutate; saves are serialized through a
// single-consumer queue so the file is always one whole snapshot.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/daybreakhq/wakeup/models"
	"github.com/daybreakhq/wakeup/utils"
)

// Store is the user record store. Construct with New, call Load once at
// startup, and Close on shutdown to flush the pending save.
type Store struct {
	path string

	mu      sync.Mutex
	records map[string]*models.UserRecord

	// saveCh is the one-slot save queue: a pending request coalesces any
	// number of further requests until the worker picks it up.
	saveCh     chan struct{}
	done       chan struct{}
	workerDone chan struct{}
	once       sync.Once
}

// LeaderboardEntry is one row of the streak leaderboard.
type LeaderboardEntry struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Streak      int    `json:"streak"`
}

// New creates a Store persisting to path and starts its save worker.
func New(path string) *Store {
	s := &Store{
		path:       path,
		records:    make(map[string]*models.UserRecord),
		saveCh:     make(chan struct{}, 1),
		done:       make(chan struct{}),
		workerDone: make(chan struct{}),
	}
	go s.saveWorker()
	return s
}

// Load reads the durable file into memory. A missing file is a cold start and
// an unparseable one is discarded with a warning; neither fails startup, the
// store just begins empty.
func (s *Store) Load() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			warnf("could not read %s, starting fresh: %v", s.path, err)
		}
		return
	}

	loaded := make(map[string]*models.UserRecord)
	if err := json.Unmarshal(raw, &loaded); err != nil {
		warnf("could not parse %s, starting fresh: %v", s.path, err)
		return
	}

	s.mu.Lock()
	s.records = loaded
	s.mu.Unlock()
	infof("loaded %d user records from %s", len(loaded), s.path)
}

// Get returns a copy of the record, or false if the user never registered.
func (s *Store) Get(userID string) (*models.UserRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Put inserts or replaces the record for userID and enqueues a save.
func (s *Store) Put(userID string, rec *models.UserRecord) {
	s.mu.Lock()
	s.records[userID] = rec.Clone()
	s.mu.Unlock()
	s.requestSave()
}

// Mutate applies fn to the record under the store lock and enqueues a save.
// It reports false, without calling fn, when the user is not registered.
func (s *Store) Mutate(userID string, fn func(*models.UserRecord)) bool {
	s.mu.Lock()
	rec, ok := s.records[userID]
	if ok {
		fn(rec)
	}
	s.mu.Unlock()
	if ok {
		s.requestSave()
	}
	return ok
}

// Top returns up to n users with an active streak, highest first.
func (s *Store) Top(n int) []LeaderboardEntry {
	s.mu.Lock()
	entries := make([]LeaderboardEntry, 0, len(s.records))
	for id, rec := range s.records {
		if rec.Streak > 0 {
			entries = append(entries, LeaderboardEntry{UserID: id, DisplayName: rec.DisplayName, Streak: rec.Streak})
		}
	}
	s.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Streak != entries[j].Streak {
			return entries[i].Streak > entries[j].Streak
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Len returns the number of registered users.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Close stops the save worker, waits for any in-flight write to finish, and
// flushes state to disk one final time. Only one writer ever touches the file.
func (s *Store) Close() {
	s.once.Do(func() {
		close(s.done)
		<-s.workerDone
		s.saveOnce()
	})
}

// requestSave enqueues a save unless one is already pending. Bursts of
// mutations coalesce into a single snapshot write.
func (s *Store) requestSave() {
	select {
	case s.saveCh <- struct{}{}:
	default:
	}
}

func (s *Store) saveWorker() {
	defer close(s.workerDone)
	for {
		select {
		case <-s.saveCh:
			s.saveOnce()
		case <-s.done:
			return
		}
	}
}

// saveOnce writes the full current state. The write goes to a temp file in
// the same directory followed by a rename, so a crash mid-write leaves the
// previous snapshot intact. Failures are logged; in-memory state stays
// authoritative until the next attempt.
func (s *Store) saveOnce() {
	s.mu.Lock()
	raw, err := json.MarshalIndent(s.records, "", "  ")
	s.mu.Unlock()
	if err != nil {
		errorf("marshal user records: %v", err)
		return
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		errorf("write %s: %v", s.path, err)
		return
	}
	_, werr := tmp.Write(raw)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(tmp.Name())
		errorf("write %s: %v", s.path, errors.Join(werr, cerr))
		return
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		errorf("replace %s: %v", s.path, err)
	}
}

// Logging goes through the shared zap sugar when initialized; tests run
// without it.

func infof(format string, args ...interface{}) {
	if utils.Sugar != nil {
		utils.Sugar.Infof(format, args...)
	}
}

func warnf(format string, args ...interface{}) {
	if utils.Sugar != nil {
		utils.Sugar.Warnf(format, args...)
	}
}

func errorf(format string, args ...interface{}) {
	if utils.Sugar != nil {
		utils.Sugar.Errorf(format, args...)
	}
}
