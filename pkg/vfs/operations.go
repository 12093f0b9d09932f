package vfs

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ink-feather-org/neat-fs/pkg/vfs/backend"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/cache"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/fserror"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/fspath"
)

// MkDir creates a directory. Without the recursive flag, the parent must
// already exist and the target must not. With it, every missing ancestor is
// created and an already-existing target directory is accepted.
func (f *FileSystem) MkDir(ctx context.Context, path string, recursive bool) error {
	path = f.resolvePath(path)
	return f.run(ctx, func(ctx context.Context) error {
		if !recursive {
			node, err := f.cache.Lookup(ctx, path)
			if err != nil {
				return err
			}
			if err := node.MkDir(); err != nil {
				return err
			}
			f.listeners.notifyFileCreated(path, backend.Directory)
			return nil
		}

		// Recursive creation walks from the root, creating whatever's
		// missing along the way.
		node, err := f.cache.Root(ctx)
		if err != nil {
			return err
		}
		for _, component := range fspath.Split(path)[1:] {
			node, err = node.Child(ctx, component)
			if err != nil {
				return err
			}
			if !node.Exists() {
				if err := node.MkDir(); err != nil {
					return err
				}
				f.listeners.notifyFileCreated(node.Path(), backend.Directory)
			} else if !node.Type().IsDirectory() {
				return fserror.New(fserror.ENOTDIR, node.Path())
			}
		}
		return nil
	})
}

// MkLnk creates a symbolic link. The destination is stored verbatim, without
// resolution or validation. The parent must exist and the target must not.
func (f *FileSystem) MkLnk(ctx context.Context, path, destination string) error {
	path = f.resolvePath(path)
	return f.run(ctx, func(ctx context.Context) error {
		node, err := f.cache.Lookup(ctx, path)
		if err != nil {
			return err
		}
		if err := node.MkLnk(destination); err != nil {
			return err
		}
		f.listeners.notifyFileCreated(path, backend.Symlink)
		return nil
	})
}

// WriteFile creates or overwrites a file with the provided contents, taking
// ownership of the provided slice. Symbolic links are followed.
func (f *FileSystem) WriteFile(ctx context.Context, path string, data []byte) error {
	path = f.resolvePath(path)
	return f.run(ctx, func(ctx context.Context) error {
		node, err := f.cache.Lookup(ctx, path)
		if err != nil {
			return err
		}
		node, err = f.cache.ResolveSymlink(ctx, node)
		if err != nil {
			return err
		}
		created := !node.Exists()
		if err := node.WriteFile(data); err != nil {
			return err
		}
		if created {
			f.listeners.notifyFileCreated(node.Path(), backend.File)
		} else {
			f.listeners.notifyFileContentsChanged(node.Path(), backend.File)
		}
		return nil
	})
}

// WriteFileString creates or overwrites a file with the UTF-8 encoding of the
// provided string.
func (f *FileSystem) WriteFileString(ctx context.Context, path, contents string) error {
	return f.WriteFile(ctx, path, []byte(contents))
}

// ReadFile returns a file's contents. Symbolic links are followed. The
// returned slice is the caller's to keep.
func (f *FileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	path = f.resolvePath(path)
	var result []byte
	err := f.run(ctx, func(ctx context.Context) error {
		node, err := f.cache.Lookup(ctx, path)
		if err != nil {
			return err
		}
		node, err = f.cache.ResolveSymlink(ctx, node)
		if err != nil {
			return err
		}
		data, err := node.ReadFile(ctx)
		if err != nil {
			return err
		}
		result = make([]byte, len(data))
		copy(result, data)
		return nil
	})
	return result, err
}

// ReadLink returns a symbolic link's destination, exactly as stored.
// Symbolic links are not followed; the target itself must be a link.
func (f *FileSystem) ReadLink(ctx context.Context, path string) (string, error) {
	path = f.resolvePath(path)
	var result string
	err := f.run(ctx, func(ctx context.Context) error {
		node, err := f.cache.Lookup(ctx, path)
		if err != nil {
			return err
		}
		if !node.Exists() {
			return fserror.New(fserror.ENOENT, path)
		} else if !node.Type().IsSymlink() {
			return fserror.New(fserror.ENOTLNK, path)
		}
		result = node.Destination()
		return nil
	})
	return result, err
}

// ReadDir returns the names of the entries in a directory, or their full
// paths if requested. Symbolic links are followed. The order of the result is
// unspecified.
func (f *FileSystem) ReadDir(ctx context.Context, path string, fullPaths bool) ([]string, error) {
	path = f.resolvePath(path)
	var result []string
	err := f.run(ctx, func(ctx context.Context) error {
		children, err := f.lookupChildren(ctx, path)
		if err != nil {
			return err
		}
		result = make([]string, 0, len(children))
		for _, child := range children {
			if !child.Exists() {
				continue
			}
			if fullPaths {
				result = append(result, child.Path())
			} else {
				result = append(result, child.Filename())
			}
		}
		return nil
	})
	return result, err
}

// lookupChildren resolves a path (following symbolic links) to a directory
// and returns its children. It must be invoked under the operation lock.
func (f *FileSystem) lookupChildren(ctx context.Context, path string) ([]*cache.Node, error) {
	node, err := f.cache.Lookup(ctx, path)
	if err != nil {
		return nil, err
	}
	node, err = f.cache.ResolveSymlink(ctx, node)
	if err != nil {
		return nil, err
	}
	return node.Children(ctx)
}

// Remove removes a file, symbolic link, or directory. Removing a directory
// requires the folder flag; removing a non-empty directory additionally
// requires the recursive flag, in which case the entire subtree is removed.
// Symbolic links are not followed: removing a link removes the link itself.
func (f *FileSystem) Remove(ctx context.Context, path string, recursive, folder bool) error {
	path = f.resolvePath(path)
	if path == "/" {
		return errors.New("unable to remove the filesystem root")
	}
	return f.run(ctx, func(ctx context.Context) error {
		node, err := f.cache.Lookup(ctx, path)
		if err != nil {
			return err
		}
		if !node.Exists() {
			return fserror.New(fserror.ENOENT, path)
		}
		if node.Type().IsDirectory() {
			if !folder {
				return fserror.New(fserror.EISDIR, path)
			}
			if !recursive {
				children, err := node.Children(ctx)
				if err != nil {
					return err
				}
				for _, child := range children {
					if child.Exists() {
						return fserror.New(fserror.ENOTEMPTY, path)
					}
				}
			}
		} else if folder {
			return fserror.New(fserror.ENOTDIR, path)
		}
		if err := node.Delete(); err != nil {
			return err
		}
		f.listeners.notifyFileDeleted(path)
		return nil
	})
}

// Linfo returns the entry for a path itself, without following symbolic
// links. It returns a nil entry (and a nil error) if the path doesn't exist.
func (f *FileSystem) Linfo(ctx context.Context, path string) (*backend.FileEntry, error) {
	path = f.resolvePath(path)
	var result *backend.FileEntry
	err := f.run(ctx, func(ctx context.Context) error {
		node, err := f.cache.Lookup(ctx, path)
		if err != nil {
			return err
		}
		if node.Exists() {
			result = nodeEntry(node)
		}
		return nil
	})
	return result, err
}

// Info returns the entry for a path with symbolic links followed, so its
// file type is always a file or a directory. A missing path is an error.
func (f *FileSystem) Info(ctx context.Context, path string) (*backend.BasicFileEntry, error) {
	path = f.resolvePath(path)
	var result *backend.BasicFileEntry
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
		fileType, _ := node.Type().FileType()
		result = &backend.BasicFileEntry{
			Filename: node.Filename(),
			FilePath: node.Path(),
			FileType: fileType,
			Meta:     node.Meta(),
		}
		return nil
	})
	return result, err
}

// nodeEntry converts an existing node to a backend file entry.
func nodeEntry(node *cache.Node) *backend.FileEntry {
	fileType, _ := node.Type().FileType()
	return &backend.FileEntry{
		Filename:    node.Filename(),
		FilePath:    node.Path(),
		FileType:    fileType,
		Destination: node.Destination(),
		Meta:        node.Meta(),
	}
}
