package vfs

import (
	"sync"

	"github.com/ink-feather-org/neat-fs/pkg/logging"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/backend"
)

// Listener receives change notifications from a filesystem. Callbacks are
// delivered synchronously from within the operation that caused them, before
// that operation completes; they must not invoke filesystem operations
// themselves.
type Listener interface {
	// FileCreated is invoked when an entry is created.
	FileCreated(path string, fileType backend.FileType)
	// FileContentsChanged is invoked when an existing file's contents are
	// replaced.
	FileContentsChanged(path string, fileType backend.FileType)
	// FileDeleted is invoked when an entry is deleted.
	FileDeleted(path string)
	// PossibleUnknownChanges is invoked when the backend may have been
	// modified by another party. The filesystem's cached state remains in
	// use; listeners that care must commit and discard the filesystem
	// themselves.
	PossibleUnknownChanges()
}

// listenerRegistry tracks registered listeners and dispatches notifications
// to them. It is safe for concurrent usage.
type listenerRegistry struct {
	// lock guards the listener slice.
	lock sync.Mutex
	// listeners is the current listener set.
	listeners []Listener
	// logger is used to report listener panics.
	logger *logging.Logger
}

// add registers a listener.
func (r *listenerRegistry) add(listener Listener) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.listeners = append(r.listeners, listener)
}

// remove unregisters a listener. It is a no-op if the listener isn't
// registered.
func (r *listenerRegistry) remove(listener Listener) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for i, candidate := range r.listeners {
		if candidate == listener {
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return
		}
	}
}

// snapshot returns a copy of the current listener set. Dispatch iterates the
// copy so that listeners may unregister (or register others) mid-dispatch.
func (r *listenerRegistry) snapshot() []Listener {
	r.lock.Lock()
	defer r.lock.Unlock()
	result := make([]Listener, len(r.listeners))
	copy(result, r.listeners)
	return result
}

// dispatch invokes the specified callback for every registered listener. A
// panicking listener is logged and skipped; it doesn't abort the dispatch or
// the operation driving it.
func (r *listenerRegistry) dispatch(callback func(Listener)) {
	for _, listener := range r.snapshot() {
		func() {
			defer func() {
				if recovered := recover(); recovered != nil {
					r.logger.Warnf("listener panicked: %v", recovered)
				}
			}()
			callback(listener)
		}()
	}
}

// notifyFileCreated dispatches a creation notification.
func (r *listenerRegistry) notifyFileCreated(path string, fileType backend.FileType) {
	r.dispatch(func(l Listener) { l.FileCreated(path, fileType) })
}

// notifyFileContentsChanged dispatches a contents-changed notification.
func (r *listenerRegistry) notifyFileContentsChanged(path string, fileType backend.FileType) {
	r.dispatch(func(l Listener) { l.FileContentsChanged(path, fileType) })
}

// notifyFileDeleted dispatches a deletion notification.
func (r *listenerRegistry) notifyFileDeleted(path string) {
	r.dispatch(func(l Listener) { l.FileDeleted(path) })
}

// notifyPossibleUnknownChanges dispatches an unknown-changes notification.
func (r *listenerRegistry) notifyPossibleUnknownChanges() {
	r.dispatch(func(l Listener) { l.PossibleUnknownChanges() })
}
