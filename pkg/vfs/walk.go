package vfs

import (
	"context"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ink-feather-org/neat-fs/pkg/vfs/backend"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/cache"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/fserror"
)

// DiskUsage returns the recursive sum of file sizes beneath a path. Symbolic
// links are followed for the path argument itself but not during traversal;
// symbolic link entries contribute nothing to the sum.
func (f *FileSystem) DiskUsage(ctx context.Context, path string) (uint64, error) {
	path = f.resolvePath(path)
	var result uint64
	err := f.run(ctx, func(ctx context.Context) error {
		node, err := f.cache.Lookup(ctx, path)
		if err != nil {
			return err
		}
		node, err = f.cache.ResolveSymlink(ctx, node)
		if err != nil {
			return err
		}
		if !node.Exists() {
			return fserror.New(fserror.ENOENT, path)
		}
		result, err = f.diskUsage(ctx, node)
		return err
	})
	return result, err
}

// diskUsage sums file sizes across a subtree breadth-first. It must be
// invoked under the operation lock.
func (f *FileSystem) diskUsage(ctx context.Context, node *cache.Node) (uint64, error) {
	var total uint64
	pending := []*cache.Node{node}
	for len(pending) > 0 {
		node := pending[0]
		pending = pending[1:]
		switch {
		case node.Type().IsFile():
			data, err := node.ReadFile(ctx)
			if err != nil {
				return 0, err
			}
			total += uint64(len(data))
		case node.Type().IsDirectory():
			children, err := node.Children(ctx)
			if err != nil {
				return 0, err
			}
			for _, child := range children {
				if child.Exists() {
					pending = append(pending, child)
				}
			}
		}
	}
	return total, nil
}

// ForEach performs a breadth-first traversal starting at a path, invoking the
// callback for every entry encountered (the starting entry included) until
// the callback returns false or the traversal is exhausted. Traversal doesn't
// follow symbolic links. The callback runs outside the filesystem's operation
// serialization, so it may itself invoke filesystem operations.
func (f *FileSystem) ForEach(ctx context.Context, path string, callback func(*backend.FileEntry) bool) error {
	entry, err := f.Linfo(ctx, path)
	if err != nil {
		return err
	}
	if entry == nil {
		return fserror.New(fserror.ENOENT, f.resolvePath(path))
	}
	pending := []*backend.FileEntry{entry}
	for len(pending) > 0 {
		entry := pending[0]
		pending = pending[1:]
		if !callback(entry) {
			return nil
		}
		if entry.FileType != backend.Directory {
			continue
		}
		childPaths, err := f.ReadDir(ctx, entry.FilePath, true)
		if err != nil {
			return err
		}
		for _, childPath := range childPaths {
			child, err := f.Linfo(ctx, childPath)
			if err != nil {
				return err
			}
			// The callback may have raced a deletion in here; skip entries
			// that vanished between the listing and the stat.
			if child != nil {
				pending = append(pending, child)
			}
		}
	}
	return nil
}

// Glob returns the absolute paths of all entries matching a doublestar
// pattern. Relative patterns are resolved against the working directory
// before matching. Traversal doesn't follow symbolic links.
func (f *FileSystem) Glob(ctx context.Context, pattern string) ([]string, error) {
	pattern = f.resolvePath(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}
	var result []string
	err := f.run(ctx, func(ctx context.Context) error {
		root, err := f.cache.Root(ctx)
		if err != nil {
			return err
		}
		pending := []*cache.Node{root}
		for len(pending) > 0 {
			node := pending[0]
			pending = pending[1:]
			if matched, err := doublestar.Match(pattern, node.Path()); err != nil {
				return err
			} else if matched {
				result = append(result, node.Path())
			}
			if !node.Type().IsDirectory() {
				continue
			}
			children, err := node.Children(ctx)
			if err != nil {
				return err
			}
			for _, child := range children {
				if child.Exists() {
					pending = append(pending, child)
				}
			}
		}
		return nil
	})
	return result, err
}

// Wipe removes every entry beneath the filesystem root.
func (f *FileSystem) Wipe(ctx context.Context) error {
	return f.run(ctx, func(ctx context.Context) error {
		root, err := f.cache.Root(ctx)
		if err != nil {
			return err
		}
		children, err := root.Children(ctx)
		if err != nil {
			return err
		}
		for _, child := range children {
			if !child.Exists() {
				continue
			}
			if err := child.Delete(); err != nil {
				return err
			}
			f.listeners.notifyFileDeleted(child.Path())
		}
		return nil
	})
}
