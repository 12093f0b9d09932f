// Package memory provides a volatile in-memory storage backend, primarily
// for testing and ephemeral namespaces.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ink-feather-org/neat-fs/pkg/vfs/backend"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/fspath"
)

// record is a single stored entry.
type record struct {
	// fileType is the entry's type.
	fileType backend.FileType
	// data holds file contents for file records.
	data []byte
	// destination holds the link target for symbolic link records.
	destination string
	// meta is the entry's metadata.
	meta backend.FileMeta
}

// Store is an in-memory implementation of the backend contract. Entries are
// stored flat, keyed by absolute path. A Store is safe for concurrent usage.
type Store struct {
	// lock guards the record map and the write generation.
	lock sync.RWMutex
	// records maps absolute paths to their entries.
	records map[string]*record
	// writeGeneration identifies the most recent bulk application. Mutexes
	// created by the store compare it across acquisitions to detect foreign
	// writes.
	writeGeneration uuid.UUID
	// semaphore provides the store's mutual exclusion slot.
	semaphore chan struct{}
}

// NewStore creates a new in-memory store containing only an empty root
// directory.
func NewStore() *Store {
	return &Store{
		records: map[string]*record{
			"/": {fileType: backend.Directory},
		},
		semaphore: make(chan struct{}, 1),
	}
}

// ReadFile implements backend.Store.ReadFile.
func (s *Store) ReadFile(_ context.Context, path string) ([]byte, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	entry := s.records[path]
	if entry == nil {
		return nil, errors.Errorf("no entry at %s", path)
	} else if entry.fileType != backend.File {
		return nil, errors.Errorf("entry at %s is not a file", path)
	}
	result := make([]byte, len(entry.data))
	copy(result, entry.data)
	return result, nil
}

// ReadDir implements backend.Store.ReadDir.
func (s *Store) ReadDir(_ context.Context, path string) ([]backend.FileEntry, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	entry := s.records[path]
	if entry == nil {
		return nil, errors.Errorf("no entry at %s", path)
	} else if entry.fileType != backend.Directory {
		return nil, errors.Errorf("entry at %s is not a directory", path)
	}
	var result []backend.FileEntry
	for candidate, record := range s.records {
		if candidate != "/" && fspath.Dir(candidate) == path {
			result = append(result, backend.FileEntry{
				Filename:    fspath.Base(candidate),
				FilePath:    candidate,
				FileType:    record.fileType,
				Destination: record.destination,
				Meta:        record.meta,
			})
		}
	}
	return result, nil
}

// Linfo implements backend.Store.Linfo.
func (s *Store) Linfo(_ context.Context, path string) (*backend.FileEntry, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	entry := s.records[path]
	if entry == nil {
		return nil, nil
	}
	return &backend.FileEntry{
		Filename:    fspath.Base(path),
		FilePath:    path,
		FileType:    entry.fileType,
		Destination: entry.destination,
		Meta:        entry.meta,
	}, nil
}

// Bulk implements backend.Store.Bulk.
func (s *Store) Bulk(_ context.Context, payload *backend.BulkPayload) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	// Deletions come first and are recursive.
	for _, path := range payload.ToDelete {
		prefix := path + "/"
		for candidate := range s.records {
			if candidate == path || strings.HasPrefix(candidate, prefix) {
				delete(s.records, candidate)
			}
		}
	}

	// Directory creations arrive in top-down order.
	for _, path := range payload.FoldersToCreate {
		s.records[path] = &record{fileType: backend.Directory}
	}

	// File writes overwrite any existing file.
	for _, write := range payload.FilesToWrite {
		s.records[write.Path] = &record{fileType: backend.File, data: write.Data}
	}

	// Symbolic link creations require the path to be vacant.
	for _, link := range payload.SymlinksToCreate {
		if s.records[link.Path] != nil {
			return errors.Errorf("entry already exists at %s", link.Path)
		}
		s.records[link.Path] = &record{fileType: backend.Symlink, destination: link.Destination}
	}

	// Metadata updates come last.
	for _, update := range payload.MetaUpdates {
		if entry := s.records[update.Path]; entry != nil {
			entry.meta = update.Meta
		}
	}

	// Stamp the write generation so that mutexes can detect this write.
	s.writeGeneration = uuid.New()

	// Success.
	return nil
}

// CreateMutex implements backend.Store.CreateMutex.
func (s *Store) CreateMutex() backend.Mutex {
	return &storeMutex{store: s}
}

// currentWriteGeneration returns the store's current write generation.
func (s *Store) currentWriteGeneration() uuid.UUID {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.writeGeneration
}

// storeMutex implements backend.Mutex for Store. Staleness is detected by
// comparing the store's write generation against the generation observed at
// the mutex's last release.
type storeMutex struct {
	// store is the mutex's store.
	store *Store
	// everHeld indicates whether or not the mutex has ever been held. A
	// first acquisition is never stale.
	everHeld bool
	// observedGeneration is the store's write generation at the time of the
	// mutex's last release.
	observedGeneration uuid.UUID
}

// Acquire implements backend.Mutex.Acquire.
func (m *storeMutex) Acquire(ctx context.Context) (bool, error) {
	select {
	case m.store.semaphore <- struct{}{}:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	stale := m.everHeld && m.store.currentWriteGeneration() != m.observedGeneration
	m.everHeld = true
	return stale, nil
}

// Release implements backend.Mutex.Release.
func (m *storeMutex) Release() {
	m.observedGeneration = m.store.currentWriteGeneration()
	<-m.store.semaphore
}
