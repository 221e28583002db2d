package store

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

type data struct {
	ID               string `json:"id"`
	FirstTimeRun     bool   `json:"first-time-run"`
	InstalledVersion string `json:"installed-version,omitempty"`
}

// Store is the small per-install state file kept next to the logs.
type Store struct {
	path string

	lock  sync.Mutex
	store data
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) GetID() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.store.ID == "" {
		s.initStore()
	}
	return s.store.ID
}

// GetFirstTimeRun reports whether the first run has already been handled.
func (s *Store) GetFirstTimeRun() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.store.ID == "" {
		s.initStore()
	}
	return s.store.FirstTimeRun
}

func (s *Store) SetFirstTimeRun(val bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.store.ID == "" {
		s.initStore()
	}
	if s.store.FirstTimeRun == val {
		return
	}
	s.store.FirstTimeRun = val
	s.writeStore()
}

func (s *Store) GetInstalledVersion() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.store.ID == "" {
		s.initStore()
	}
	return s.store.InstalledVersion
}

func (s *Store) SetInstalledVersion(version string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.store.ID == "" {
		s.initStore()
	}
	if s.store.InstalledVersion == version {
		return
	}
	s.store.InstalledVersion = version
	s.writeStore()
}

func (s *Store) initStore() {
	storeFile, err := os.Open(s.path)
	if err == nil {
		defer storeFile.Close()
		if err = json.NewDecoder(storeFile).Decode(&s.store); err == nil && s.store.ID != "" {
			slog.Debug("loaded existing store", "path", s.path, "id", s.store.ID)
			return
		}
		// Decoding failed, file is likely corrupt
		slog.Warn("failed to decode store file, creating a new one", "path", s.path, "error", err)
		s.store = data{}
	} else if !errors.Is(err, os.ErrNotExist) {
		slog.Warn("unexpected error opening store, creating a new one", "path", s.path, "error", err)
	}

	slog.Debug("initializing new store")
	s.store.ID = uuid.NewString()
	s.writeStore()
}

func (s *Store) writeStore() {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("failed to create dir", "path", dir, "error", err)
		return
	}

	payload, err := json.Marshal(s.store)
	if err != nil {
		slog.Error("failed to marshal store", "error", err)
		return
	}
	fp, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		slog.Error("failed to write store", "path", s.path, "error", err)
		return
	}
	defer fp.Close()
	if n, err := fp.Write(payload); err != nil || n != len(payload) {
		slog.Error("failed to write store payload", "path", s.path, "bytes_written", n, "payload_length", len(payload), "error", err)
		return
	}

	slog.Debug("wrote store", "path", s.path)
}
