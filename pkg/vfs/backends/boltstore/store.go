// Package boltstore provides a persistent storage backend on top of a
// BoltDB file.
package boltstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/boltdb/bolt"
	"github.com/golang/groupcache/lru"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ink-feather-org/neat-fs/pkg/logging"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/backend"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/fspath"
)

var (
	// entriesBucket is the bucket holding entry records keyed by absolute
	// path.
	entriesBucket = []byte("entries")
	// contentsBucket is the bucket holding file contents keyed by absolute
	// path.
	contentsBucket = []byte("contents")
)

// contentCacheEntries is the maximum number of file contents retained by the
// read cache.
const contentCacheEntries = 64

// encodeEntry serializes an entry record: a type byte, the modification time
// in big-endian, and the symbolic link destination (if any).
func encodeEntry(fileType backend.FileType, meta backend.FileMeta, destination string) []byte {
	result := make([]byte, 9+len(destination))
	result[0] = byte(fileType)
	binary.BigEndian.PutUint64(result[1:9], uint64(meta.MTime))
	copy(result[9:], destination)
	return result
}

// decodeEntry deserializes an entry record produced by encodeEntry.
func decodeEntry(path string, value []byte) (*backend.FileEntry, error) {
	if len(value) < 9 {
		return nil, errors.Errorf("truncated entry record at %s", path)
	}
	return &backend.FileEntry{
		Filename:    fspath.Base(path),
		FilePath:    path,
		FileType:    backend.FileType(value[0]),
		Destination: string(value[9:]),
		Meta:        backend.FileMeta{MTime: int64(binary.BigEndian.Uint64(value[1:9]))},
	}, nil
}

// Store is a BoltDB-backed implementation of the backend contract. Bulk
// payloads are applied in a single writable transaction, so a failed
// application leaves the database untouched. Recently read file contents are
// retained in an LRU cache that is dropped on any write. A Store is safe for
// concurrent usage.
type Store struct {
	// db is the underlying database.
	db *bolt.DB
	// logger is the store's logger.
	logger *logging.Logger
	// cacheLock guards the content cache.
	cacheLock sync.Mutex
	// contentCache is the LRU read cache of file contents.
	contentCache *lru.Cache
	// generationLock guards the write generation.
	generationLock sync.RWMutex
	// writeGeneration identifies the most recent bulk application.
	writeGeneration uuid.UUID
	// semaphore provides the store's mutual exclusion slot.
	semaphore chan struct{}
}

// NewStore opens (creating if necessary) a BoltDB-backed store at the
// specified database path. The root directory is established on first open.
func NewStore(path string, logger *logging.Logger) (*Store, error) {
	// Open the database. The timeout guards against hanging on a database
	// file locked by another process.
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open database at %s", path)
	}

	// Ensure the buckets and the root entry exist.
	err = db.Update(func(tx *bolt.Tx) error {
		entries, err := tx.CreateBucketIfNotExists(entriesBucket)
		if err != nil {
			return errors.Wrap(err, "unable to create entries bucket")
		}
		if _, err := tx.CreateBucketIfNotExists(contentsBucket); err != nil {
			return errors.Wrap(err, "unable to create contents bucket")
		}
		if entries.Get([]byte("/")) == nil {
			root := encodeEntry(backend.Directory, backend.FileMeta{}, "")
			if err := entries.Put([]byte("/"), root); err != nil {
				return errors.Wrap(err, "unable to create root entry")
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	// Create the store.
	return &Store{
		db:           db,
		logger:       logger,
		contentCache: lru.New(contentCacheEntries),
		semaphore:    make(chan struct{}, 1),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// cachedContents performs a content cache lookup.
func (s *Store) cachedContents(path string) ([]byte, bool) {
	s.cacheLock.Lock()
	defer s.cacheLock.Unlock()
	if value, ok := s.contentCache.Get(path); ok {
		return value.([]byte), true
	}
	return nil, false
}

// cacheContents records file contents in the content cache.
func (s *Store) cacheContents(path string, data []byte) {
	s.cacheLock.Lock()
	defer s.cacheLock.Unlock()
	s.contentCache.Add(path, data)
}

// dropContentCache empties the content cache. It is invoked on every bulk
// application, since deletions and overwrites may invalidate arbitrary
// cached contents.
func (s *Store) dropContentCache() {
	s.cacheLock.Lock()
	defer s.cacheLock.Unlock()
	s.contentCache.Clear()
}

// ReadFile implements backend.Store.ReadFile.
func (s *Store) ReadFile(_ context.Context, path string) ([]byte, error) {
	// Serve from the read cache when possible.
	if data, ok := s.cachedContents(path); ok {
		result := make([]byte, len(data))
		copy(result, data)
		return result, nil
	}

	// Otherwise hit the database.
	var result []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(contentsBucket).Get([]byte(path))
		if value == nil {
			return errors.Errorf("no file contents at %s", path)
		}
		result = make([]byte, len(value))
		copy(result, value)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Populate the read cache with its own copy.
	cached := make([]byte, len(result))
	copy(cached, result)
	s.cacheContents(path, cached)

	// Done.
	return result, nil
}

// ReadDir implements backend.Store.ReadDir.
func (s *Store) ReadDir(_ context.Context, path string) ([]backend.FileEntry, error) {
	var result []backend.FileEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		entries := tx.Bucket(entriesBucket)

		// Verify that the path is a directory.
		value := entries.Get([]byte(path))
		if value == nil {
			return errors.Errorf("no entry at %s", path)
		}
		entry, err := decodeEntry(path, value)
		if err != nil {
			return err
		} else if entry.FileType != backend.Directory {
			return errors.Errorf("entry at %s is not a directory", path)
		}

		// Scan for direct children. Keys are ordered byte-wise, so all
		// descendants are contiguous beneath the prefix; indirect
		// descendants are filtered out by the separator check.
		prefix := []byte(path + "/")
		if path == "/" {
			prefix = []byte("/")
		}
		cursor := entries.Cursor()
		for key, value := cursor.Seek(prefix); key != nil && bytes.HasPrefix(key, prefix); key, value = cursor.Next() {
			rest := key[len(prefix):]
			if len(rest) == 0 || bytes.IndexByte(rest, '/') != -1 {
				continue
			}
			child, err := decodeEntry(string(key), value)
			if err != nil {
				return err
			}
			result = append(result, *child)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Linfo implements backend.Store.Linfo.
func (s *Store) Linfo(_ context.Context, path string) (*backend.FileEntry, error) {
	var result *backend.FileEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(entriesBucket).Get([]byte(path))
		if value == nil {
			return nil
		}
		entry, err := decodeEntry(path, value)
		if err != nil {
			return err
		}
		result = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Bulk implements backend.Store.Bulk.
func (s *Store) Bulk(_ context.Context, payload *backend.BulkPayload) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		entries := tx.Bucket(entriesBucket)
		contents := tx.Bucket(contentsBucket)

		// Deletions come first and are recursive. Keys are collected before
		// deletion to keep the cursor stable.
		for _, path := range payload.ToDelete {
			doomed := [][]byte{[]byte(path)}
			prefix := []byte(path + "/")
			cursor := entries.Cursor()
			for key, _ := cursor.Seek(prefix); key != nil && bytes.HasPrefix(key, prefix); key, _ = cursor.Next() {
				doomed = append(doomed, append([]byte(nil), key...))
			}
			for _, key := range doomed {
				if err := entries.Delete(key); err != nil {
					return errors.Wrapf(err, "unable to delete entry %s", key)
				}
				if err := contents.Delete(key); err != nil {
					return errors.Wrapf(err, "unable to delete contents %s", key)
				}
			}
		}

		// Directory creations arrive in top-down order.
		for _, path := range payload.FoldersToCreate {
			record := encodeEntry(backend.Directory, backend.FileMeta{}, "")
			if err := entries.Put([]byte(path), record); err != nil {
				return errors.Wrapf(err, "unable to create directory %s", path)
			}
		}

		// File writes overwrite any existing file.
		for _, write := range payload.FilesToWrite {
			record := encodeEntry(backend.File, backend.FileMeta{}, "")
			if err := entries.Put([]byte(write.Path), record); err != nil {
				return errors.Wrapf(err, "unable to create file %s", write.Path)
			}
			if err := contents.Put([]byte(write.Path), write.Data); err != nil {
				return errors.Wrapf(err, "unable to write contents %s", write.Path)
			}
		}

		// Symbolic link creations require the path to be vacant.
		for _, link := range payload.SymlinksToCreate {
			if entries.Get([]byte(link.Path)) != nil {
				return errors.Errorf("entry already exists at %s", link.Path)
			}
			record := encodeEntry(backend.Symlink, backend.FileMeta{}, link.Destination)
			if err := entries.Put([]byte(link.Path), record); err != nil {
				return errors.Wrapf(err, "unable to create symlink %s", link.Path)
			}
		}

		// Metadata updates come last.
		for _, update := range payload.MetaUpdates {
			value := entries.Get([]byte(update.Path))
			if value == nil {
				continue
			}
			entry, err := decodeEntry(update.Path, value)
			if err != nil {
				return err
			}
			record := encodeEntry(entry.FileType, update.Meta, entry.Destination)
			if err := entries.Put([]byte(update.Path), record); err != nil {
				return errors.Wrapf(err, "unable to update metadata %s", update.Path)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debugf(
		"bulk applied: %d deletions, %d directories, %d files, %d symlinks, %d metadata updates",
		len(payload.ToDelete), len(payload.FoldersToCreate), len(payload.FilesToWrite),
		len(payload.SymlinksToCreate), len(payload.MetaUpdates),
	)

	// The write may have invalidated arbitrary cached contents.
	s.dropContentCache()

	// Stamp the write generation so that mutexes can detect this write.
	s.generationLock.Lock()
	s.writeGeneration = uuid.New()
	s.generationLock.Unlock()

	// Success.
	return nil
}

// CreateMutex implements backend.Store.CreateMutex.
func (s *Store) CreateMutex() backend.Mutex {
	return &storeMutex{store: s}
}

// currentWriteGeneration returns the store's current write generation.
func (s *Store) currentWriteGeneration() uuid.UUID {
	s.generationLock.RLock()
	defer s.generationLock.RUnlock()
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
