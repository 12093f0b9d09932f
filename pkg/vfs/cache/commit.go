package cache

import (
	"context"
	"fmt"

	"github.com/ink-feather-org/neat-fs/pkg/vfs/backend"
)

// Commit diffs the shadow tree's pending state against the backend, flushes
// the resulting mutation set through the backend's bulk entry point, releases
// the backend mutex, and dismantles the shadow tree. If no root has been
// materialized since the last commit, it only releases the backend mutex (if
// held).
//
// The mutex is released and the tree dismantled even if the bulk application
// fails, so the next operation starts fresh against the backend.
func (c *FileCache) Commit(ctx context.Context) error {
	// Without a materialized root there's nothing to flush, but Begin may
	// still have acquired the mutex (for example if materialization failed).
	if c.root == nil {
		if c.held {
			c.mutex.Release()
			c.held = false
		}
		return nil
	}

	// However the flush plays out, the cache ends the commit empty-handed:
	// the mutex is released and the tree is dropped.
	defer func() {
		if c.held {
			c.mutex.Release()
			c.held = false
		}
		c.feedTheGC()
	}()

	// Assemble the payload.
	payload, err := c.assemblePayload(ctx)
	if err != nil {
		return fmt.Errorf("unable to assemble commit payload: %w", err)
	}

	// Skip the backend round trip entirely if there's nothing to apply.
	if payload.Empty() {
		c.logger.Debugf("commit: no pending mutations")
		return nil
	}

	// Apply.
	c.logger.Debugf(
		"commit: %d deletions, %d directories, %d files, %d symlinks, %d metadata updates",
		len(payload.ToDelete), len(payload.FoldersToCreate), len(payload.FilesToWrite),
		len(payload.SymlinksToCreate), len(payload.MetaUpdates),
	)
	if err := c.store.Bulk(ctx, payload); err != nil {
		return fmt.Errorf("unable to apply bulk mutation: %w", err)
	}

	// Success.
	return nil
}

// assemblePayload walks the shadow tree breadth-first and builds the bulk
// mutation payload. The breadth-first order, with children enqueued behind
// their parent, yields the top-down directory creation order that the backend
// contract requires. Deleted subtrees are not descended into: the backend
// deletes recursively, and deletion drops a node's children anyway.
func (c *FileCache) assemblePayload(ctx context.Context) (*backend.BulkPayload, error) {
	payload := &backend.BulkPayload{}
	pending := []*Node{c.root}
	for len(pending) > 0 {
		node := pending[0]
		pending = pending[1:]
		switch node.newType {
		case TypeNonexistent:
			// Only entries the backend has ever seen need a deletion.
			if node.oldType != TypeNonexistent {
				payload.ToDelete = append(payload.ToDelete, node.filePath)
			}
		case TypeDirectoryNew:
			// A pending directory that displaces an older entry of any type
			// removes it first. This also covers replacement of an older
			// directory, where the recreate is redundant but harmless.
			if node.oldType != TypeNonexistent {
				payload.ToDelete = append(payload.ToDelete, node.filePath)
			}
			payload.FoldersToCreate = append(payload.FoldersToCreate, node.filePath)
			pending = append(pending, node.children...)
		case TypeFileDirty:
			// Overwriting an existing file needs no deletion; displacing an
			// entry of another type does.
			if node.oldType != TypeNonexistent && node.oldType != TypeFile {
				payload.ToDelete = append(payload.ToDelete, node.filePath)
			}
			data, err := node.ReadFile(ctx)
			if err != nil {
				return nil, err
			}
			payload.FilesToWrite = append(payload.FilesToWrite, backend.FileWrite{
				Path: node.filePath,
				Data: data,
			})
		case TypeSymlinkDirty:
			if node.oldType != TypeNonexistent {
				payload.ToDelete = append(payload.ToDelete, node.filePath)
			}
			payload.SymlinksToCreate = append(payload.SymlinksToCreate, backend.SymlinkCreate{
				Path:        node.filePath,
				Destination: node.destination,
			})
		case TypeDirectory:
			pending = append(pending, node.children...)
			if node.metaDirty {
				payload.MetaUpdates = append(payload.MetaUpdates, backend.MetaUpdate{
					Path: node.filePath,
					Meta: node.meta,
				})
			}
		case TypeFile, TypeSymlink:
			if node.metaDirty {
				payload.MetaUpdates = append(payload.MetaUpdates, backend.MetaUpdate{
					Path: node.filePath,
					Meta: node.meta,
				})
			}
		}
	}
	return payload, nil
}
