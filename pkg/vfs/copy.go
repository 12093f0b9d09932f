package vfs

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ink-feather-org/neat-fs/pkg/vfs/backend"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/cache"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/fserror"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/fspath"
)

// Copy recursively copies an entry to a new path. Copying onto the source
// itself or to a path nested inside the source is rejected. File copies
// overwrite an existing file at the target; directory copies merge into an
// existing directory at the target.
func (f *FileSystem) Copy(ctx context.Context, source, target string) error {
	source = f.resolvePath(source)
	target = f.resolvePath(target)
	if targetWithinSource(source, target) {
		return errors.Errorf("unable to copy %s into itself (%s)", source, target)
	}
	return f.run(ctx, func(ctx context.Context) error {
		node, err := f.cache.Lookup(ctx, source)
		if err != nil {
			return err
		}
		if !node.Exists() {
			return fserror.New(fserror.ENOENT, source)
		}
		return f.copyNode(ctx, node, target)
	})
}

// Move moves an entry to a new path: a recursive copy of the source to the
// target, followed by removal of the source. The same nesting restriction as
// Copy applies.
func (f *FileSystem) Move(ctx context.Context, source, target string) error {
	source = f.resolvePath(source)
	target = f.resolvePath(target)
	if targetWithinSource(source, target) {
		return errors.Errorf("unable to move %s into itself (%s)", source, target)
	}
	return f.run(ctx, func(ctx context.Context) error {
		node, err := f.cache.Lookup(ctx, source)
		if err != nil {
			return err
		}
		if !node.Exists() {
			return fserror.New(fserror.ENOENT, source)
		}
		if err := f.copyNode(ctx, node, target); err != nil {
			return err
		}
		if err := node.Delete(); err != nil {
			return err
		}
		f.listeners.notifyFileDeleted(source)
		return nil
	})
}

// targetWithinSource indicates whether or not the target path equals the
// source path or is nested anywhere beneath it.
func targetWithinSource(source, target string) bool {
	relative := fspath.Relative(source, target)
	if relative == "" {
		return true
	}
	return fspath.Split(relative)[1] != ".."
}

// copyNode recursively copies a single node's subtree to a target path. It
// must be invoked under the operation lock.
func (f *FileSystem) copyNode(ctx context.Context, node *cache.Node, target string) error {
	switch {
	case node.Type().IsFile():
		data, err := node.ReadFile(ctx)
		if err != nil {
			return err
		}
		targetNode, err := f.cache.Lookup(ctx, target)
		if err != nil {
			return err
		}
		contents := make([]byte, len(data))
		copy(contents, data)
		created := !targetNode.Exists()
		if err := targetNode.WriteFile(contents); err != nil {
			return err
		}
		if created {
			f.listeners.notifyFileCreated(target, backend.File)
		} else {
			f.listeners.notifyFileContentsChanged(target, backend.File)
		}
		return nil
	case node.Type().IsSymlink():
		targetNode, err := f.cache.Lookup(ctx, target)
		if err != nil {
			return err
		}
		if err := targetNode.MkLnk(node.Destination()); err != nil {
			return err
		}
		f.listeners.notifyFileCreated(target, backend.Symlink)
		return nil
	default:
		targetNode, err := f.cache.Lookup(ctx, target)
		if err != nil {
			return err
		}
		if !targetNode.Exists() {
			if err := targetNode.MkDir(); err != nil {
				return err
			}
			f.listeners.notifyFileCreated(target, backend.Directory)
		} else if !targetNode.Type().IsDirectory() {
			return fserror.New(fserror.ENOTDIR, target)
		}
		children, err := node.Children(ctx)
		if err != nil {
			return err
		}
		for _, child := range children {
			if !child.Exists() {
				continue
			}
			if err := f.copyNode(ctx, child, fspath.Join(target, child.Filename())); err != nil {
				return err
			}
		}
		return nil
	}
}
