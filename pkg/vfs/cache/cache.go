// Package cache implements the virtual filesystem's shadow tree: a lazily
// populated in-memory mirror of a backend's directory tree, annotated with
// pending-edit state, together with the commit engine that diffs that state
// against the backend and flushes it as a single bulk transaction.
package cache

import (
	"context"
	"fmt"

	"github.com/ink-feather-org/neat-fs/pkg/logging"
	"github.com/ink-feather-org/neat-fs/pkg/timeutil"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/backend"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/fserror"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/fspath"
)

// maximumSymlinkHops is the maximum number of symbolic links that will be
// followed during resolution before the chain is treated as a loop.
const maximumSymlinkHops = 64

// FileCache is the shadow tree: a root-anchored tree of nodes mirroring (a
// lazily fetched subset of) the backend's namespace, carrying pending edits
// until they're flushed by Commit.
//
// A cache instance is not safe for concurrent access; its owner must
// serialize operations against it. The cache holds the backend mutex from the
// first operation after a commit until the next commit completes, making it
// the exclusive writer of the backend's state within that span.
type FileCache struct {
	// store is the backend being mirrored.
	store backend.Store
	// mutex is the backend's mutual exclusion primitive.
	mutex backend.Mutex
	// clock is the time source used for modification time stamping.
	clock timeutil.Clock
	// logger is the cache's logger.
	logger *logging.Logger
	// onPossibleUnknownChanges, if non-nil, is invoked when mutex
	// acquisition reports that another holder may have modified the backend.
	onPossibleUnknownChanges func()
	// root is the root node of the shadow tree, or nil if no root has been
	// materialized since the last commit.
	root *Node
	// held indicates whether or not the backend mutex is currently held.
	held bool
}

// NewFileCache creates a new cache over the specified store. The
// onPossibleUnknownChanges callback may be nil; if provided, it is invoked
// whenever the backend mutex reports that a foreign holder may have modified
// the store.
func NewFileCache(store backend.Store, clock timeutil.Clock, logger *logging.Logger, onPossibleUnknownChanges func()) *FileCache {
	return &FileCache{
		store:                    store,
		mutex:                    store.CreateMutex(),
		clock:                    clock,
		logger:                   logger,
		onPossibleUnknownChanges: onPossibleUnknownChanges,
	}
}

// Begin ensures that the backend mutex is held, acquiring it if necessary.
// Operations must call it before navigating the shadow tree. If acquisition
// reports that another holder may have modified the backend, the unknown
// changes callback is invoked; the existing shadow tree nevertheless remains
// valid until the next commit.
func (c *FileCache) Begin(ctx context.Context) error {
	// If the mutex is already held, there's nothing to do. Reads performed
	// between commits share a single acquisition.
	if c.held {
		return nil
	}

	// Acquire the mutex.
	stale, err := c.mutex.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("unable to acquire backend mutex: %w", err)
	}
	c.held = true

	// Surface any foreign modification signal.
	if stale {
		c.logger.Warnf("backend possibly modified by another holder")
		if c.onPossibleUnknownChanges != nil {
			c.onPossibleUnknownChanges()
		}
	}

	// Success.
	return nil
}

// Root returns the root node of the shadow tree, materializing it from the
// backend on first access after a commit.
func (c *FileCache) Root(ctx context.Context) (*Node, error) {
	// If the root already exists, we're done.
	if c.root != nil {
		return c.root, nil
	}

	// Stat the backend root. A backend without a root directory yields a
	// pending root creation, so that the first commit establishes it.
	entry, err := c.store.Linfo(ctx, "/")
	if err != nil {
		return nil, fmt.Errorf("unable to stat backend root: %w", err)
	}
	root := &Node{
		cache:    c,
		filePath: "/",
	}
	if entry != nil {
		root.oldType = TypeDirectory
		root.newType = TypeDirectory
		root.meta = entry.Meta
	} else {
		root.oldType = TypeNonexistent
		root.newType = TypeDirectoryNew
		root.children = make([]*Node, 0)
		root.touch()
	}
	c.root = root

	// Done.
	return c.root, nil
}

// Lookup resolves an absolute normalized path to its shadow tree node,
// fetching directory listings from the backend as needed. Symbolic links are
// not followed. Interior components must exist and be directories; the final
// component is returned without any existence or type check, so callers that
// require existence must check the resulting node's state.
func (c *FileCache) Lookup(ctx context.Context, path string) (*Node, error) {
	// Start at the root.
	node, err := c.Root(ctx)
	if err != nil {
		return nil, err
	}

	// Walk the components. The leading root marker is skipped.
	components := fspath.Split(path)[1:]
	for i, component := range components {
		// Interior components must be traversable.
		if i > 0 {
			if !node.Exists() {
				return nil, fserror.New(fserror.ENOENT, node.Path())
			} else if !node.Type().IsDirectory() {
				return nil, fserror.New(fserror.ENOTDIR, node.Path())
			}
		}

		// Descend.
		node, err = node.Child(ctx, component)
		if err != nil {
			return nil, err
		}
	}

	// Done.
	return node, nil
}

// ResolveSymlink follows the symbolic link chain starting at the specified
// node until a non-link node is reached. Relative link destinations are
// resolved against the link's parent directory. Chains longer than the
// maximum hop count fail with ELOOP.
func (c *FileCache) ResolveSymlink(ctx context.Context, node *Node) (*Node, error) {
	for hops := 0; node.Type().IsSymlink(); hops++ {
		if hops >= maximumSymlinkHops {
			return nil, fserror.New(fserror.ELOOP, node.Path())
		}
		target := node.Destination()
		if fspath.IsAbsolute(target) {
			target = fspath.Normalize(target)
		} else {
			target = fspath.Join(fspath.Dir(node.Path()), target)
		}
		next, err := c.Lookup(ctx, target)
		if err != nil {
			return nil, err
		}
		node = next
	}
	return node, nil
}

// Materialized indicates whether or not a shadow tree root currently exists.
// A commit is only meaningful when it does.
func (c *FileCache) Materialized() bool {
	return c.root != nil
}

// feedTheGC dismantles the shadow tree top-down, clearing parent and child
// links so that every node becomes individually reclaimable regardless of any
// outside references still pointing into the tree.
func (c *FileCache) feedTheGC() {
	pending := []*Node{c.root}
	for len(pending) > 0 {
		node := pending[0]
		pending = pending[1:]
		if node == nil {
			continue
		}
		pending = append(pending, node.children...)
		node.parent = nil
		node.children = nil
	}
	c.root = nil
}
