// Package backend defines the contract between the virtual filesystem's
// caching layer and its persistent storage backends.
package backend

import (
	"context"
)

// FileType represents the type of an entry as stored by a backend.
type FileType uint8

const (
	// File represents a regular file.
	File FileType = iota
	// Directory represents a directory.
	Directory
	// Symlink represents a symbolic link.
	Symlink
)

// String provides a human-readable representation of a file type.
func (t FileType) String() string {
	switch t {
	case File:
		return "file"
	case Directory:
		return "directory"
	case Symlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// FileMeta holds the metadata tracked for every entry. It is a value type, so
// assignment performs the defensive copy that the storage contract requires
// at the cache/backend boundary.
type FileMeta struct {
	// MTime is the entry's modification time in milliseconds since the Unix
	// epoch, UTC.
	MTime int64
}

// FileEntry describes a single entry in a backend listing or stat result.
type FileEntry struct {
	// Filename is the entry's name within its parent directory.
	Filename string
	// FilePath is the entry's absolute path.
	FilePath string
	// FileType is the entry's type.
	FileType FileType
	// Destination is the symbolic link target, exactly as stored and without
	// any resolution applied. It is only populated for symbolic links.
	Destination string
	// Meta is the entry's metadata.
	Meta FileMeta
}

// BasicFileEntry describes an entry after symbolic link resolution. Its file
// type is always File or Directory.
type BasicFileEntry struct {
	// Filename is the entry's name within its parent directory.
	Filename string
	// FilePath is the entry's absolute path.
	FilePath string
	// FileType is the entry's type, restricted to File or Directory.
	FileType FileType
	// Meta is the entry's metadata.
	Meta FileMeta
}

// FileWrite pairs a path with the full contents to be written there.
type FileWrite struct {
	// Path is the absolute path of the file.
	Path string
	// Data is the file's complete new contents.
	Data []byte
}

// SymlinkCreate pairs a path with the symbolic link target to be recorded
// there.
type SymlinkCreate struct {
	// Path is the absolute path of the symbolic link.
	Path string
	// Destination is the link target, stored verbatim.
	Destination string
}

// MetaUpdate pairs a path with replacement metadata.
type MetaUpdate struct {
	// Path is the absolute path of the entry.
	Path string
	// Meta is the entry's new metadata. The backend takes ownership of the
	// value on hand-off.
	Meta FileMeta
}

// BulkPayload is the single mutation unit accepted by a backend. The caller
// guarantees the ordering constraints that backends are entitled to rely on:
// deletions are processed first and are recursive, with no descendant of a
// deleted path appearing elsewhere in the payload; directory creations are
// ordered top-down, with every parent preceding its children; file and
// symbolic link creations may assume their parent directory exists by the
// time they're processed; and metadata updates are applied last.
type BulkPayload struct {
	// ToDelete lists the absolute paths to remove, subtrees included.
	ToDelete []string
	// FoldersToCreate lists the absolute paths of directories to create, in
	// top-down order.
	FoldersToCreate []string
	// FilesToWrite lists the files to create or overwrite.
	FilesToWrite []FileWrite
	// SymlinksToCreate lists the symbolic links to create. Creating a
	// symbolic link where one already exists is an error.
	SymlinksToCreate []SymlinkCreate
	// MetaUpdates lists the metadata replacements to apply.
	MetaUpdates []MetaUpdate
}

// Empty indicates whether or not the payload contains no mutations at all.
func (p *BulkPayload) Empty() bool {
	return len(p.ToDelete) == 0 &&
		len(p.FoldersToCreate) == 0 &&
		len(p.FilesToWrite) == 0 &&
		len(p.SymlinksToCreate) == 0 &&
		len(p.MetaUpdates) == 0
}

// Store is the interface that storage backends must implement. All methods
// must be safe for concurrent invocation, though the caching layer serializes
// access to any single store through the mutex provided by CreateMutex.
type Store interface {
	// ReadFile returns the current contents of the file at the specified
	// absolute path.
	ReadFile(ctx context.Context, path string) ([]byte, error)
	// ReadDir returns the entries directly beneath the specified absolute
	// path. The order of the result is unspecified.
	ReadDir(ctx context.Context, path string) ([]FileEntry, error)
	// Linfo returns the entry for the specified absolute path itself, without
	// following symbolic links. It returns a nil entry (and a nil error) if
	// the path does not exist.
	Linfo(ctx context.Context, path string) (*FileEntry, error)
	// Bulk applies a mutation payload in the payload's contractual order.
	Bulk(ctx context.Context, payload *BulkPayload) error
	// CreateMutex creates a process-local mutual exclusion primitive scoped
	// to this store instance.
	CreateMutex() Mutex
}

// Mutex is a process-local mutual exclusion primitive scoped to a single
// store. It coordinates multiple cache instances sharing one store and
// reports whether the store may have been modified by another holder since
// the mutex was last released.
type Mutex interface {
	// Acquire blocks until the mutex is held or the context is cancelled. On
	// success, it indicates whether another holder may have modified the
	// store since this mutex last released it.
	Acquire(ctx context.Context) (bool, error)
	// Release releases the mutex. It must only be called while the mutex is
	// held.
	Release()
}
