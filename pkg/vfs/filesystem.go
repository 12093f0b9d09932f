package vfs

import (
	"context"
	"sync"
	"time"

	"github.com/ink-feather-org/neat-fs/pkg/logging"
	"github.com/ink-feather-org/neat-fs/pkg/timeutil"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/backend"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/cache"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/fspath"
)

// FileSystem is the virtual filesystem facade. It validates and resolves
// paths, serializes operations against the underlying shadow tree, dispatches
// change notifications, and schedules automatic commits. A FileSystem is safe
// for concurrent usage; operations execute strictly sequentially in
// acquisition order.
type FileSystem struct {
	// configuration holds the filesystem's tunables.
	configuration *Configuration
	// clock is the time source for staleness measurement and modification
	// time stamping.
	clock timeutil.Clock
	// logger is the filesystem's logger.
	logger *logging.Logger
	// cache is the shadow tree.
	cache *cache.FileCache
	// listeners is the change notification registry.
	listeners listenerRegistry
	// scheduler drives the idle-commit timer.
	scheduler *commitScheduler
	// cwdLock guards the working directory.
	cwdLock sync.Mutex
	// cwd is the current working directory, always absolute and normalized.
	cwd string
	// operationsLock serializes operations. No two operations' shadow tree
	// mutations may interleave.
	operationsLock sync.Mutex
	// lastCommit is the time of the last commit (or of construction, before
	// any commit has run). It is guarded by operationsLock.
	lastCommit time.Time
}

// NewFileSystem creates a new filesystem over the specified store. The
// configuration may be nil, in which case defaults are used. The logger may
// be nil to disable logging.
func NewFileSystem(store backend.Store, configuration *Configuration, logger *logging.Logger) *FileSystem {
	return newFileSystem(store, configuration, timeutil.SystemClock, logger)
}

// newFileSystem creates a new filesystem with an explicit clock. It exists
// so that tests can drive staleness measurement and modification time
// stamping with a simulated clock.
func newFileSystem(store backend.Store, configuration *Configuration, clock timeutil.Clock, logger *logging.Logger) *FileSystem {
	fileSystem := &FileSystem{
		configuration: configuration,
		clock:         clock,
		logger:        logger,
		cwd:           "/",
		lastCommit:    clock.Now(),
	}
	fileSystem.listeners.logger = logger
	fileSystem.cache = cache.NewFileCache(
		store, clock, logger.Sublogger("cache"),
		fileSystem.listeners.notifyPossibleUnknownChanges,
	)
	fileSystem.scheduler = newCommitScheduler(fileSystem.commitOnIdle)
	return fileSystem
}

// AddListener registers a change notification listener.
func (f *FileSystem) AddListener(listener Listener) {
	f.listeners.add(listener)
}

// RemoveListener unregisters a change notification listener.
func (f *FileSystem) RemoveListener(listener Listener) {
	f.listeners.remove(listener)
}

// Chdir changes the filesystem's working directory. Relative paths are
// resolved against the previous working directory. No existence check is
// performed.
func (f *FileSystem) Chdir(path string) {
	f.cwdLock.Lock()
	defer f.cwdLock.Unlock()
	f.cwd = fspath.Resolve(f.cwd, path)
}

// Getwd returns the filesystem's working directory.
func (f *FileSystem) Getwd() string {
	f.cwdLock.Lock()
	defer f.cwdLock.Unlock()
	return f.cwd
}

// resolvePath resolves a path to an absolute normalized path against the
// working directory.
func (f *FileSystem) resolvePath(path string) string {
	f.cwdLock.Lock()
	defer f.cwdLock.Unlock()
	return fspath.Resolve(f.cwd, path)
}

// run executes an operation under the filesystem's serialization discipline:
// the operation lock is held for the operation's duration, any pending
// idle-commit deadline is cancelled on entry, the backend mutex is ensured
// before the operation touches the shadow tree, and the commit triggers are
// re-evaluated after the operation completes.
func (f *FileSystem) run(ctx context.Context, operation func(context.Context) error) error {
	// Serialize.
	f.operationsLock.Lock()
	defer f.operationsLock.Unlock()

	// Any pending idle commit is superseded by this operation.
	f.scheduler.Cancel()

	// Ensure the backend mutex is held, then perform the operation.
	err := f.cache.Begin(ctx)
	if err == nil {
		err = operation(ctx)
	}

	// Re-evaluate the commit triggers. Staleness takes precedence: if the
	// last commit is too far in the past, commit immediately (fire and
	// forget) rather than waiting out another idle window.
	if force, enabled := f.configuration.forceCommitAfter(); enabled && f.clock.Now().Sub(f.lastCommit) >= force {
		go func() {
			if err := f.Commit(context.Background()); err != nil {
				f.logger.Error(err)
			}
		}()
	} else if delay, enabled := f.configuration.commitDelay(); enabled {
		f.scheduler.Arm(delay)
	}

	// Done.
	return err
}

// commitOnIdle is the idle-trigger entry point invoked by the commit
// scheduler.
func (f *FileSystem) commitOnIdle() {
	if err := f.Commit(context.Background()); err != nil {
		f.logger.Error(err)
	}
}

// Commit flushes all pending mutations to the backend immediately,
// cancelling any pending idle-commit deadline. If nothing has touched the
// shadow tree since the last commit, it is a no-op.
func (f *FileSystem) Commit(ctx context.Context) error {
	// Serialize with operations.
	f.operationsLock.Lock()
	defer f.operationsLock.Unlock()

	// This commit supersedes any scheduled one.
	f.scheduler.Cancel()

	// Flush. The commit window restarts regardless of the outcome, since the
	// cache drops its state either way.
	err := f.cache.Commit(ctx)
	f.lastCommit = f.clock.Now()
	return err
}

// Close commits any pending mutations and shuts down the filesystem's
// background commit scheduling. The filesystem must not be used after Close.
func (f *FileSystem) Close(ctx context.Context) error {
	err := f.Commit(ctx)
	f.scheduler.Terminate()
	return err
}
