package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/ink-feather-org/neat-fs/pkg/vfs/backend"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/fserror"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/fspath"
)

// NodeType represents the state of an entry as tracked by the cache. It
// extends the backend's file types with variants that indicate a pending
// mutation.
type NodeType uint8

const (
	// TypeNonexistent indicates that the entry does not exist.
	TypeNonexistent NodeType = iota
	// TypeDirectory indicates a directory with no pending creation.
	TypeDirectory
	// TypeDirectoryNew indicates a directory whose creation is pending.
	TypeDirectoryNew
	// TypeFile indicates a file with no pending write.
	TypeFile
	// TypeFileDirty indicates a file whose contents are pending a write.
	TypeFileDirty
	// TypeSymlink indicates a symbolic link with no pending creation.
	TypeSymlink
	// TypeSymlinkDirty indicates a symbolic link whose creation is pending.
	TypeSymlinkDirty
)

// String provides a human-readable representation of a node type.
func (t NodeType) String() string {
	switch t {
	case TypeNonexistent:
		return "nonexistent"
	case TypeDirectory:
		return "directory"
	case TypeDirectoryNew:
		return "directory-new"
	case TypeFile:
		return "file"
	case TypeFileDirty:
		return "file-dirty"
	case TypeSymlink:
		return "symlink"
	case TypeSymlinkDirty:
		return "symlink-dirty"
	default:
		return "unknown"
	}
}

// IsDirectory indicates whether or not the node type is a directory variant.
func (t NodeType) IsDirectory() bool {
	return t == TypeDirectory || t == TypeDirectoryNew
}

// IsFile indicates whether or not the node type is a file variant.
func (t NodeType) IsFile() bool {
	return t == TypeFile || t == TypeFileDirty
}

// IsSymlink indicates whether or not the node type is a symbolic link
// variant.
func (t NodeType) IsSymlink() bool {
	return t == TypeSymlink || t == TypeSymlinkDirty
}

// FileType converts the node type to the corresponding backend file type. It
// returns false for TypeNonexistent.
func (t NodeType) FileType() (backend.FileType, bool) {
	switch {
	case t.IsDirectory():
		return backend.Directory, true
	case t.IsFile():
		return backend.File, true
	case t.IsSymlink():
		return backend.Symlink, true
	default:
		return 0, false
	}
}

// nodeTypeForEntry converts a backend file type to the corresponding clean
// node type.
func nodeTypeForEntry(t backend.FileType) NodeType {
	switch t {
	case backend.Directory:
		return TypeDirectory
	case backend.Symlink:
		return TypeSymlink
	default:
		return TypeFile
	}
}

// Node is a single node of the cache's shadow tree. It tracks both the type
// the entry had in the backend when first observed (its old type) and the
// type it has after any pending mutations (its new type), so that the commit
// engine can diff the two on flush.
//
// At most one of the node's data, children, and destination fields is
// populated, as determined by its new type. A nil children slice means the
// directory's contents haven't been fetched from the backend yet; an empty
// non-nil slice means the directory is known to be empty.
//
// Nodes are not safe for concurrent access. The owning cache relies on its
// caller to serialize operations.
type Node struct {
	// cache is the owning cache, which provides backend and clock access.
	cache *FileCache
	// filename is the node's name within its parent. It is empty for the
	// root node only.
	filename string
	// filePath is the node's absolute path.
	filePath string
	// parent points at the node's parent. It is nil for the root node and is
	// cleared when the tree is dismantled.
	parent *Node
	// oldType is the entry's type in the backend at the time the node was
	// created. It never holds a pending-mutation variant and is immutable for
	// the node's lifetime.
	oldType NodeType
	// newType is the entry's type after any pending mutations.
	newType NodeType
	// data holds the file's cached contents for file variants, if fetched or
	// pending.
	data []byte
	// children holds the directory's child nodes for directory variants,
	// once fetched.
	children []*Node
	// destination holds the symbolic link target, as stored, for symbolic
	// link variants.
	destination string
	// meta is the entry's metadata.
	meta backend.FileMeta
	// metaDirty indicates that the metadata has changed since the last
	// flush and needs to be written back.
	metaDirty bool
}

// Filename returns the node's name within its parent.
func (n *Node) Filename() string {
	return n.filename
}

// Path returns the node's absolute path.
func (n *Node) Path() string {
	return n.filePath
}

// Type returns the node's type, including any pending mutation state.
func (n *Node) Type() NodeType {
	return n.newType
}

// OldType returns the entry's type in the backend at the time the node was
// created.
func (n *Node) OldType() NodeType {
	return n.oldType
}

// Exists indicates whether or not the entry exists, taking pending mutations
// into account.
func (n *Node) Exists() bool {
	return n.newType != TypeNonexistent
}

// Destination returns the symbolic link target for symbolic link nodes. It
// returns an empty string for all other node types.
func (n *Node) Destination() string {
	return n.destination
}

// Meta returns a copy of the node's metadata.
func (n *Node) Meta() backend.FileMeta {
	return n.meta
}

// touch stamps the node's modification time with the current time and flags
// the metadata for write-back.
func (n *Node) touch() {
	n.meta.MTime = n.cache.clock.Now().UnixMilli()
	n.metaDirty = true
}

// touchParent stamps the parent's modification time, if the node has a
// parent.
func (n *Node) touchParent() {
	if n.parent != nil {
		n.parent.touch()
	}
}

// MkDir records a pending directory creation at this node. The entry must not
// currently exist.
func (n *Node) MkDir() error {
	// Verify that the entry doesn't exist.
	if n.Exists() {
		return fserror.New(fserror.EEXIST, n.filePath)
	}

	// Record the creation. The new directory is known to be empty, so its
	// child list is initialized as fetched.
	n.newType = TypeDirectoryNew
	n.data = nil
	n.destination = ""
	n.children = make([]*Node, 0)
	n.touch()
	n.touchParent()

	// Success.
	return nil
}

// MkLnk records a pending symbolic link creation at this node. The
// destination is recorded verbatim, without resolution. The entry must not
// currently exist.
func (n *Node) MkLnk(destination string) error {
	// Verify that the entry doesn't exist.
	if n.Exists() {
		return fserror.New(fserror.EEXIST, n.filePath)
	}

	// Record the creation.
	n.newType = TypeSymlinkDirty
	n.data = nil
	n.children = nil
	n.destination = destination
	n.touch()
	n.touchParent()

	// Success.
	return nil
}

// WriteFile records pending file contents at this node, creating the file if
// it doesn't exist. The entry must either not exist or be a file. The node
// takes ownership of the provided data.
func (n *Node) WriteFile(data []byte) error {
	// Verify that the entry is writable as a file.
	if n.Exists() && !n.newType.IsFile() {
		if n.newType.IsDirectory() {
			return fserror.New(fserror.EISDIR, n.filePath)
		}
		return fserror.New(fserror.ENOTFILE, n.filePath)
	}

	// A nil slice would read as "not cached", so pending empty contents are
	// represented by an empty non-nil slice.
	if data == nil {
		data = make([]byte, 0)
	}

	// The parent's modification time only changes when an entry appears
	// beneath it, not when an existing file is overwritten.
	created := !n.Exists()

	// Record the write.
	n.newType = TypeFileDirty
	n.data = data
	n.children = nil
	n.destination = ""
	n.touch()
	if created {
		n.touchParent()
	}

	// Success.
	return nil
}

// Delete records a pending deletion of this node. The entry must currently
// exist.
func (n *Node) Delete() error {
	// Verify that the entry exists.
	if !n.Exists() {
		return fserror.New(fserror.ENOENT, n.filePath)
	}

	// Record the deletion, dropping any cached state.
	n.newType = TypeNonexistent
	n.data = nil
	n.children = nil
	n.destination = ""
	n.touchParent()

	// Success.
	return nil
}

// ReadFile returns the node's file contents, fetching them from the backend
// if they aren't cached. The entry must exist and be a file. The returned
// slice is the cache's own copy and must not be modified by the caller.
func (n *Node) ReadFile(ctx context.Context) ([]byte, error) {
	// Verify that the entry is readable as a file.
	if !n.Exists() {
		return nil, fserror.New(fserror.ENOENT, n.filePath)
	} else if n.newType.IsDirectory() {
		return nil, fserror.New(fserror.EISDIR, n.filePath)
	} else if n.newType.IsSymlink() {
		return nil, fserror.New(fserror.ENOTFILE, n.filePath)
	}

	// Fetch the contents on a cache miss. A pending write always has its
	// contents populated, so a miss can only occur for clean files.
	if n.data == nil {
		data, err := n.cache.store.ReadFile(ctx, n.filePath)
		if err != nil {
			return nil, fmt.Errorf("unable to read file from backend: %w", err)
		}
		n.data = data
	}

	// Done.
	return n.data, nil
}

// Children returns the node's child nodes, fetching the directory listing
// from the backend on first access. The entry must exist and be a directory.
func (n *Node) Children(ctx context.Context) ([]*Node, error) {
	// Verify that the entry is listable as a directory.
	if !n.Exists() {
		return nil, fserror.New(fserror.ENOENT, n.filePath)
	} else if !n.newType.IsDirectory() {
		return nil, fserror.New(fserror.ENOTDIR, n.filePath)
	}

	// Fetch the listing on first access.
	if n.children == nil {
		entries, err := n.cache.store.ReadDir(ctx, n.filePath)
		if err != nil {
			return nil, fmt.Errorf("unable to read directory from backend: %w", err)
		}
		children := make([]*Node, 0, len(entries))
		for _, entry := range entries {
			entryType := nodeTypeForEntry(entry.FileType)
			children = append(children, &Node{
				cache:       n.cache,
				filename:    entry.Filename,
				filePath:    fspath.Join(n.filePath, entry.Filename),
				parent:      n,
				oldType:     entryType,
				newType:     entryType,
				destination: entry.Destination,
				meta:        entry.Meta,
			})
		}
		n.children = children
	}

	// Done.
	return n.children, nil
}

// Child returns the named child node, fetching the directory listing from the
// backend if necessary. If the named child doesn't exist, a placeholder node
// in the nonexistent state is created and returned, allowing a subsequent
// creation operation to record that the entry is new to the backend.
func (n *Node) Child(ctx context.Context, name string) (*Node, error) {
	// Grab the child list.
	children, err := n.Children(ctx)
	if err != nil {
		return nil, err
	}

	// Look for an existing child.
	for _, child := range children {
		if child.filename == name {
			return child, nil
		}
	}

	// Manufacture a placeholder for the missing entry. It participates
	// normally in subsequent mutations.
	child := &Node{
		cache:    n.cache,
		filename: name,
		filePath: fspath.Join(n.filePath, name),
		parent:   n,
		oldType:  TypeNonexistent,
		newType:  TypeNonexistent,
	}
	n.children = append(n.children, child)

	// Done.
	return child, nil
}

// CheckInvariants verifies the node's structural invariants, recursing into
// any fetched children. It is primarily a testing facility.
func (n *Node) CheckInvariants() error {
	// Verify the payload population rules.
	populated := 0
	if n.data != nil {
		populated++
	}
	if n.children != nil {
		populated++
	}
	if n.destination != "" {
		populated++
	}
	if populated > 1 {
		return fmt.Errorf("multiple payloads populated at %s", n.filePath)
	}
	if n.data != nil && !n.newType.IsFile() {
		return fmt.Errorf("data populated on non-file at %s", n.filePath)
	}
	if n.children != nil && !n.newType.IsDirectory() {
		return fmt.Errorf("children populated on non-directory at %s", n.filePath)
	}
	if n.destination != "" && !n.newType.IsSymlink() {
		return fmt.Errorf("destination populated on non-symlink at %s", n.filePath)
	}

	// Verify that the old type isn't a pending-mutation variant.
	switch n.oldType {
	case TypeNonexistent, TypeDirectory, TypeFile, TypeSymlink:
	default:
		return fmt.Errorf("pending-mutation old type at %s", n.filePath)
	}

	// Verify naming and linkage invariants, distinguishing the root.
	if n.parent == nil {
		if n.filename != "" || n.filePath != "/" {
			return fmt.Errorf("malformed root node at %s", n.filePath)
		}
		if !n.newType.IsDirectory() {
			return fmt.Errorf("non-directory root node")
		}
	} else {
		if n.filename == "" || strings.IndexByte(n.filename, '/') != -1 {
			return fmt.Errorf("invalid filename at %s", n.filePath)
		}
		if n.filePath != fspath.Join(n.parent.filePath, n.filename) {
			return fmt.Errorf("path/parent mismatch at %s", n.filePath)
		}
	}

	// Verify child name uniqueness and recurse.
	names := make(map[string]bool, len(n.children))
	for _, child := range n.children {
		if names[child.filename] {
			return fmt.Errorf("duplicate child name %q under %s", child.filename, n.filePath)
		}
		names[child.filename] = true
		if child.parent != n {
			return fmt.Errorf("broken parent link at %s", child.filePath)
		}
		if err := child.CheckInvariants(); err != nil {
			return err
		}
	}

	// Success.
	return nil
}
