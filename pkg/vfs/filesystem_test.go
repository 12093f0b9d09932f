package vfs

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ink-feather-org/neat-fs/pkg/timeutil"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/backend"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/backends/memory"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/fserror"
)

// recordingStore wraps a store and records every bulk payload applied
// through it. It is safe for concurrent usage.
type recordingStore struct {
	backend.Store
	// lock guards the payload list.
	lock sync.Mutex
	// payloads are the recorded bulk payloads, in application order.
	payloads []*backend.BulkPayload
}

// Bulk implements backend.Store.Bulk, recording the payload.
func (s *recordingStore) Bulk(ctx context.Context, payload *backend.BulkPayload) error {
	s.lock.Lock()
	s.payloads = append(s.payloads, payload)
	s.lock.Unlock()
	return s.Store.Bulk(ctx, payload)
}

// payloadCount returns the number of recorded payloads.
func (s *recordingStore) payloadCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.payloads)
}

// lastPayload returns the most recently recorded payload, or nil.
func (s *recordingStore) lastPayload() *backend.BulkPayload {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.payloads) == 0 {
		return nil
	}
	return s.payloads[len(s.payloads)-1]
}

// milliseconds converts a literal to a configuration field value.
func milliseconds(value int64) *int64 {
	return &value
}

// manualCommitsOnly is a configuration with both automatic commit triggers
// disabled.
func manualCommitsOnly() *Configuration {
	return &Configuration{
		CommitDelayMilliseconds:      milliseconds(-1),
		ForceCommitAfterMilliseconds: milliseconds(-1),
	}
}

// newTestFileSystem creates a filesystem over a recording in-memory store
// with a simulated clock.
func newTestFileSystem(configuration *Configuration) (*FileSystem, *recordingStore) {
	store := &recordingStore{Store: memory.NewStore()}
	clock := timeutil.NewSimulatedClock(time.UnixMilli(1000))
	return newFileSystem(store, configuration, clock, nil), store
}

// eventRecorder is a Listener that records every notification it receives.
type eventRecorder struct {
	// lock guards all fields.
	lock sync.Mutex
	// created records creation notification paths.
	created []string
	// changed records contents-changed notification paths.
	changed []string
	// deleted records deletion notification paths.
	deleted []string
	// unknown counts unknown-changes notifications.
	unknown int
}

func (r *eventRecorder) FileCreated(path string, _ backend.FileType) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.created = append(r.created, path)
}

func (r *eventRecorder) FileContentsChanged(path string, _ backend.FileType) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.changed = append(r.changed, path)
}

func (r *eventRecorder) FileDeleted(path string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.deleted = append(r.deleted, path)
}

func (r *eventRecorder) PossibleUnknownChanges() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.unknown++
}

// TestWriteReadRoundTrip verifies that written contents read back identically
// without any commit.
func TestWriteReadRoundTrip(t *testing.T) {
	fileSystem, store := newTestFileSystem(manualCommitsOnly())
	defer fileSystem.Close(context.Background())
	ctx := context.Background()

	contents := []byte("the quick brown fox")
	if err := fileSystem.WriteFile(ctx, "/f", contents); err != nil {
		t.Fatalf("unable to write: %v", err)
	}
	read, err := fileSystem.ReadFile(ctx, "/f")
	if err != nil {
		t.Fatalf("unable to read: %v", err)
	}
	if !bytes.Equal(read, contents) {
		t.Errorf("read back %q, expected %q", read, contents)
	}
	if store.payloadCount() != 0 {
		t.Error("round trip hit the backend")
	}
}

// TestMkDirSemantics verifies directory creation in both modes.
func TestMkDirSemantics(t *testing.T) {
	fileSystem, _ := newTestFileSystem(manualCommitsOnly())
	defer fileSystem.Close(context.Background())
	ctx := context.Background()

	// Non-recursive creation requires an existing parent.
	if err := fileSystem.MkDir(ctx, "/a/b", false); !fserror.Is(err, fserror.ENOENT) {
		t.Errorf("expected ENOENT for missing parent, got %v", err)
	}

	// Recursive creation fills in the ancestry and tolerates an existing
	// target directory.
	if err := fileSystem.MkDir(ctx, "/a/b/c", true); err != nil {
		t.Fatalf("unable to create recursively: %v", err)
	}
	if err := fileSystem.MkDir(ctx, "/a/b/c", true); err != nil {
		t.Errorf("recursive creation of existing directory failed: %v", err)
	}

	// Non-recursive creation of an existing directory is an error.
	if err := fileSystem.MkDir(ctx, "/a/b/c", false); !fserror.Is(err, fserror.EEXIST) {
		t.Errorf("expected EEXIST, got %v", err)
	}

	// A file along the way blocks recursive creation.
	if err := fileSystem.WriteFile(ctx, "/a/file", []byte("x")); err != nil {
		t.Fatalf("unable to write file: %v", err)
	}
	if err := fileSystem.MkDir(ctx, "/a/file/sub", true); !fserror.Is(err, fserror.ENOTDIR) {
		t.Errorf("expected ENOTDIR, got %v", err)
	}
}

// TestSymlinkOperations verifies link creation, reading, and following.
func TestSymlinkOperations(t *testing.T) {
	fileSystem, _ := newTestFileSystem(manualCommitsOnly())
	defer fileSystem.Close(context.Background())
	ctx := context.Background()

	if err := fileSystem.WriteFile(ctx, "/target", []byte("payload")); err != nil {
		t.Fatalf("unable to write target: %v", err)
	}
	if err := fileSystem.MkLnk(ctx, "/link", "/target"); err != nil {
		t.Fatalf("unable to create link: %v", err)
	}

	// The destination is stored verbatim.
	if destination, err := fileSystem.ReadLink(ctx, "/link"); err != nil {
		t.Fatalf("unable to read link: %v", err)
	} else if destination != "/target" {
		t.Errorf("read destination %q, expected %q", destination, "/target")
	}

	// Reads follow the link.
	if read, err := fileSystem.ReadFile(ctx, "/link"); err != nil {
		t.Fatalf("unable to read through link: %v", err)
	} else if !bytes.Equal(read, []byte("payload")) {
		t.Errorf("read %q through link, expected %q", read, "payload")
	}

	// ReadLink rejects non-links.
	if _, err := fileSystem.ReadLink(ctx, "/target"); !fserror.Is(err, fserror.ENOTLNK) {
		t.Errorf("expected ENOTLNK, got %v", err)
	}

	// Re-creating an existing link is an error.
	if err := fileSystem.MkLnk(ctx, "/link", "/elsewhere"); !fserror.Is(err, fserror.EEXIST) {
		t.Errorf("expected EEXIST, got %v", err)
	}

	// Info follows the link and restricts the reported type.
	if entry, err := fileSystem.Info(ctx, "/link"); err != nil {
		t.Fatalf("unable to stat through link: %v", err)
	} else if entry.FileType != backend.File || entry.FilePath != "/target" {
		t.Errorf("Info through link = %+v", entry)
	}

	// Linfo doesn't follow the link.
	if entry, err := fileSystem.Linfo(ctx, "/link"); err != nil {
		t.Fatalf("unable to lstat link: %v", err)
	} else if entry.FileType != backend.Symlink || entry.Destination != "/target" {
		t.Errorf("Linfo of link = %+v", entry)
	}
}

// TestSymlinkLoop verifies that reading through a symbolic link loop fails
// with ELOOP.
func TestSymlinkLoop(t *testing.T) {
	fileSystem, _ := newTestFileSystem(manualCommitsOnly())
	defer fileSystem.Close(context.Background())
	ctx := context.Background()

	if err := fileSystem.MkLnk(ctx, "/a", "/b"); err != nil {
		t.Fatalf("unable to create /a: %v", err)
	}
	if err := fileSystem.MkLnk(ctx, "/b", "/a"); err != nil {
		t.Fatalf("unable to create /b: %v", err)
	}
	if _, err := fileSystem.ReadFile(ctx, "/a"); !fserror.Is(err, fserror.ELOOP) {
		t.Errorf("expected ELOOP, got %v", err)
	}
}

// TestReadDir verifies directory listing, including that pure reads fire no
// notifications.
func TestReadDir(t *testing.T) {
	fileSystem, store := newTestFileSystem(manualCommitsOnly())
	defer fileSystem.Close(context.Background())
	ctx := context.Background()

	// Seed the backend directly so the listing is a pure read.
	if err := store.Store.Bulk(ctx, &backend.BulkPayload{
		FoldersToCreate: []string{"/d", "/d/c"},
		FilesToWrite: []backend.FileWrite{
			{Path: "/d/a", Data: []byte("1")},
			{Path: "/d/b", Data: []byte("2")},
		},
	}); err != nil {
		t.Fatalf("unable to seed store: %v", err)
	}

	recorder := &eventRecorder{}
	fileSystem.AddListener(recorder)

	names, err := fileSystem.ReadDir(ctx, "/d", false)
	if err != nil {
		t.Fatalf("unable to list: %v", err)
	}
	sort.Strings(names)
	if len(names) != 3 || names[0] != "a" || names[1] != "b" || names[2] != "c" {
		t.Errorf("listed %v, expected [a b c]", names)
	}

	paths, err := fileSystem.ReadDir(ctx, "/d", true)
	if err != nil {
		t.Fatalf("unable to list paths: %v", err)
	}
	sort.Strings(paths)
	if len(paths) != 3 || paths[0] != "/d/a" {
		t.Errorf("listed %v, expected full paths", paths)
	}

	if len(recorder.created) != 0 || len(recorder.changed) != 0 || len(recorder.deleted) != 0 {
		t.Error("pure read fired change notifications")
	}
}

// TestRemoveSemantics verifies removal flag handling and the single-deletion
// commit shape for recursive directory removal.
func TestRemoveSemantics(t *testing.T) {
	fileSystem, store := newTestFileSystem(manualCommitsOnly())
	defer fileSystem.Close(context.Background())
	ctx := context.Background()

	// Seed a non-empty directory into the backend.
	if err := store.Store.Bulk(ctx, &backend.BulkPayload{
		FoldersToCreate: []string{"/d", "/d/sub"},
		FilesToWrite:    []backend.FileWrite{{Path: "/d/f", Data: []byte("x")}},
	}); err != nil {
		t.Fatalf("unable to seed store: %v", err)
	}

	// Directories require the folder flag.
	if err := fileSystem.Remove(ctx, "/d", false, false); !fserror.Is(err, fserror.EISDIR) {
		t.Errorf("expected EISDIR, got %v", err)
	}

	// Non-recursive removal of a non-empty directory fails.
	if err := fileSystem.Remove(ctx, "/d", false, true); !fserror.Is(err, fserror.ENOTEMPTY) {
		t.Errorf("expected ENOTEMPTY, got %v", err)
	}

	// The folder flag rejects non-directories.
	if err := fileSystem.Remove(ctx, "/d/f", false, true); !fserror.Is(err, fserror.ENOTDIR) {
		t.Errorf("expected ENOTDIR, got %v", err)
	}

	// Recursive removal succeeds and commits as a single deletion: the
	// backend deletes subtrees itself.
	if err := fileSystem.Remove(ctx, "/d", true, true); err != nil {
		t.Fatalf("unable to remove recursively: %v", err)
	}
	if err := fileSystem.Commit(ctx); err != nil {
		t.Fatalf("unable to commit: %v", err)
	}
	payload := store.lastPayload()
	if payload == nil {
		t.Fatal("no payload recorded")
	}
	if len(payload.ToDelete) != 1 || payload.ToDelete[0] != "/d" {
		t.Errorf("deletions = %v, expected [/d]", payload.ToDelete)
	}

	// Removing a missing entry fails.
	if err := fileSystem.Remove(ctx, "/missing", false, false); !fserror.Is(err, fserror.ENOENT) {
		t.Errorf("expected ENOENT, got %v", err)
	}
}

// TestLinfoAbsent verifies that stat-ing a missing path is an absence, not an
// error.
func TestLinfoAbsent(t *testing.T) {
	fileSystem, _ := newTestFileSystem(manualCommitsOnly())
	defer fileSystem.Close(context.Background())

	entry, err := fileSystem.Linfo(context.Background(), "/missing")
	if err != nil {
		t.Fatalf("Linfo of missing path failed: %v", err)
	}
	if entry != nil {
		t.Errorf("Linfo of missing path = %+v, expected nil", entry)
	}
}

// TestDiskUsage verifies recursive size accounting, with symbolic links
// contributing nothing.
func TestDiskUsage(t *testing.T) {
	fileSystem, _ := newTestFileSystem(manualCommitsOnly())
	defer fileSystem.Close(context.Background())
	ctx := context.Background()

	if err := fileSystem.MkDir(ctx, "/d/sub", true); err != nil {
		t.Fatalf("unable to create directories: %v", err)
	}
	if err := fileSystem.WriteFile(ctx, "/d/a", make([]byte, 100)); err != nil {
		t.Fatalf("unable to write /d/a: %v", err)
	}
	if err := fileSystem.WriteFile(ctx, "/d/sub/b", make([]byte, 23)); err != nil {
		t.Fatalf("unable to write /d/sub/b: %v", err)
	}
	if err := fileSystem.MkLnk(ctx, "/d/link", "/d/a"); err != nil {
		t.Fatalf("unable to create link: %v", err)
	}

	if total, err := fileSystem.DiskUsage(ctx, "/d"); err != nil {
		t.Fatalf("unable to compute usage: %v", err)
	} else if total != 123 {
		t.Errorf("usage = %d, expected 123", total)
	}

	// Usage of a single file is its size.
	if total, err := fileSystem.DiskUsage(ctx, "/d/sub/b"); err != nil {
		t.Fatalf("unable to compute file usage: %v", err)
	} else if total != 23 {
		t.Errorf("file usage = %d, expected 23", total)
	}
}

// TestCopy verifies recursive copying and nested-target rejection.
func TestCopy(t *testing.T) {
	fileSystem, _ := newTestFileSystem(manualCommitsOnly())
	defer fileSystem.Close(context.Background())
	ctx := context.Background()

	if err := fileSystem.MkDir(ctx, "/src/sub", true); err != nil {
		t.Fatalf("unable to create source: %v", err)
	}
	if err := fileSystem.WriteFile(ctx, "/src/f", []byte("data")); err != nil {
		t.Fatalf("unable to write source file: %v", err)
	}
	if err := fileSystem.MkLnk(ctx, "/src/sub/l", "../f"); err != nil {
		t.Fatalf("unable to create source link: %v", err)
	}

	// Copying into the source (or onto itself) is rejected.
	if err := fileSystem.Copy(ctx, "/src", "/src"); err == nil {
		t.Error("copy onto itself succeeded")
	}
	if err := fileSystem.Copy(ctx, "/src", "/src/sub/copy"); err == nil {
		t.Error("copy into itself succeeded")
	}

	// A valid recursive copy reproduces the subtree.
	if err := fileSystem.Copy(ctx, "/src", "/dst"); err != nil {
		t.Fatalf("unable to copy: %v", err)
	}
	if read, err := fileSystem.ReadFile(ctx, "/dst/f"); err != nil {
		t.Fatalf("unable to read copied file: %v", err)
	} else if !bytes.Equal(read, []byte("data")) {
		t.Errorf("copied contents = %q, expected %q", read, "data")
	}
	if destination, err := fileSystem.ReadLink(ctx, "/dst/sub/l"); err != nil {
		t.Fatalf("unable to read copied link: %v", err)
	} else if destination != "../f" {
		t.Errorf("copied link destination = %q, expected %q", destination, "../f")
	}

	// The source is untouched.
	if read, err := fileSystem.ReadFile(ctx, "/src/f"); err != nil || !bytes.Equal(read, []byte("data")) {
		t.Errorf("source damaged by copy: %q, %v", read, err)
	}

	// Copying a missing source fails.
	if err := fileSystem.Copy(ctx, "/missing", "/elsewhere"); !fserror.Is(err, fserror.ENOENT) {
		t.Errorf("expected ENOENT, got %v", err)
	}
}

// TestMove verifies that a move reproduces the source at the target and
// removes the source.
func TestMove(t *testing.T) {
	fileSystem, _ := newTestFileSystem(manualCommitsOnly())
	defer fileSystem.Close(context.Background())
	ctx := context.Background()

	if err := fileSystem.MkDir(ctx, "/src", false); err != nil {
		t.Fatalf("unable to create source: %v", err)
	}
	if err := fileSystem.WriteFile(ctx, "/src/f", []byte("data")); err != nil {
		t.Fatalf("unable to write source file: %v", err)
	}

	if err := fileSystem.Move(ctx, "/src", "/dst"); err != nil {
		t.Fatalf("unable to move: %v", err)
	}
	if read, err := fileSystem.ReadFile(ctx, "/dst/f"); err != nil || !bytes.Equal(read, []byte("data")) {
		t.Errorf("moved contents = %q, %v", read, err)
	}
	if entry, err := fileSystem.Linfo(ctx, "/src"); err != nil {
		t.Fatalf("unable to stat old source: %v", err)
	} else if entry != nil {
		t.Error("source still present after move")
	}
}

// TestForEach verifies breadth-first traversal and early termination,
// including that the callback can re-enter the filesystem.
func TestForEach(t *testing.T) {
	fileSystem, _ := newTestFileSystem(manualCommitsOnly())
	defer fileSystem.Close(context.Background())
	ctx := context.Background()

	if err := fileSystem.MkDir(ctx, "/d/sub", true); err != nil {
		t.Fatalf("unable to create directories: %v", err)
	}
	if err := fileSystem.WriteFile(ctx, "/d/f", []byte("x")); err != nil {
		t.Fatalf("unable to write file: %v", err)
	}

	// A full traversal visits everything, and the callback can issue
	// filesystem operations without deadlocking.
	var visited []string
	err := fileSystem.ForEach(ctx, "/d", func(entry *backend.FileEntry) bool {
		visited = append(visited, entry.FilePath)
		if _, err := fileSystem.Linfo(ctx, entry.FilePath); err != nil {
			t.Errorf("re-entrant operation failed: %v", err)
		}
		return true
	})
	if err != nil {
		t.Fatalf("traversal failed: %v", err)
	}
	sort.Strings(visited)
	if len(visited) != 3 || visited[0] != "/d" || visited[1] != "/d/f" || visited[2] != "/d/sub" {
		t.Errorf("visited %v", visited)
	}

	// Returning false stops the traversal immediately.
	count := 0
	err = fileSystem.ForEach(ctx, "/d", func(*backend.FileEntry) bool {
		count++
		return false
	})
	if err != nil {
		t.Fatalf("traversal failed: %v", err)
	}
	if count != 1 {
		t.Errorf("callback invoked %d times after termination, expected 1", count)
	}
}

// TestGlob verifies pattern matching over the namespace.
func TestGlob(t *testing.T) {
	fileSystem, _ := newTestFileSystem(manualCommitsOnly())
	defer fileSystem.Close(context.Background())
	ctx := context.Background()

	if err := fileSystem.MkDir(ctx, "/a/b", true); err != nil {
		t.Fatalf("unable to create directories: %v", err)
	}
	for _, path := range []string{"/a/x.txt", "/a/b/y.txt", "/a/b/z.log"} {
		if err := fileSystem.WriteFile(ctx, path, []byte("x")); err != nil {
			t.Fatalf("unable to write %s: %v", path, err)
		}
	}

	matches, err := fileSystem.Glob(ctx, "/a/**/*.txt")
	if err != nil {
		t.Fatalf("unable to glob: %v", err)
	}
	sort.Strings(matches)
	if len(matches) != 2 || matches[0] != "/a/b/y.txt" || matches[1] != "/a/x.txt" {
		t.Errorf("matches = %v", matches)
	}

	matches, err = fileSystem.Glob(ctx, "/a/b/*")
	if err != nil {
		t.Fatalf("unable to glob: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("matches = %v, expected two entries under /a/b", matches)
	}
}

// TestWipe verifies that a wipe removes every entry beneath the root.
func TestWipe(t *testing.T) {
	fileSystem, store := newTestFileSystem(manualCommitsOnly())
	defer fileSystem.Close(context.Background())
	ctx := context.Background()

	if err := fileSystem.MkDir(ctx, "/d", false); err != nil {
		t.Fatalf("unable to create directory: %v", err)
	}
	if err := fileSystem.WriteFile(ctx, "/f", []byte("x")); err != nil {
		t.Fatalf("unable to write file: %v", err)
	}
	if err := fileSystem.Wipe(ctx); err != nil {
		t.Fatalf("unable to wipe: %v", err)
	}
	names, err := fileSystem.ReadDir(ctx, "/", false)
	if err != nil {
		t.Fatalf("unable to list root: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("entries remain after wipe: %v", names)
	}

	// The root itself survives the commit.
	if err := fileSystem.Commit(ctx); err != nil {
		t.Fatalf("unable to commit: %v", err)
	}
	if entry, err := store.Linfo(ctx, "/"); err != nil || entry == nil {
		t.Errorf("root missing after wipe commit: %v", err)
	}
}

// TestListenerDispatch verifies notification delivery, panic isolation, and
// mid-dispatch unregistration.
func TestListenerDispatch(t *testing.T) {
	fileSystem, _ := newTestFileSystem(manualCommitsOnly())
	defer fileSystem.Close(context.Background())
	ctx := context.Background()

	recorder := &eventRecorder{}
	fileSystem.AddListener(panickingListener{})
	fileSystem.AddListener(recorder)

	if err := fileSystem.WriteFile(ctx, "/f", []byte("a")); err != nil {
		t.Fatalf("write failed despite panicking listener: %v", err)
	}
	if err := fileSystem.WriteFile(ctx, "/f", []byte("b")); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	if err := fileSystem.Remove(ctx, "/f", false, false); err != nil {
		t.Fatalf("removal failed: %v", err)
	}

	if len(recorder.created) != 1 || recorder.created[0] != "/f" {
		t.Errorf("created notifications = %v", recorder.created)
	}
	if len(recorder.changed) != 1 || recorder.changed[0] != "/f" {
		t.Errorf("changed notifications = %v", recorder.changed)
	}
	if len(recorder.deleted) != 1 || recorder.deleted[0] != "/f" {
		t.Errorf("deleted notifications = %v", recorder.deleted)
	}

	// An unregistered listener receives nothing further.
	fileSystem.RemoveListener(recorder)
	if err := fileSystem.WriteFile(ctx, "/g", []byte("x")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if len(recorder.created) != 1 {
		t.Error("unregistered listener still notified")
	}
}

// panickingListener panics on every notification.
type panickingListener struct{}

func (panickingListener) FileCreated(string, backend.FileType) { panic("created") }
func (panickingListener) FileContentsChanged(string, backend.FileType) {
	panic("changed")
}
func (panickingListener) FileDeleted(string)      { panic("deleted") }
func (panickingListener) PossibleUnknownChanges() { panic("unknown") }

// TestWorkingDirectory verifies relative path resolution against the working
// directory.
func TestWorkingDirectory(t *testing.T) {
	fileSystem, _ := newTestFileSystem(manualCommitsOnly())
	defer fileSystem.Close(context.Background())
	ctx := context.Background()

	if fileSystem.Getwd() != "/" {
		t.Errorf("initial working directory = %q", fileSystem.Getwd())
	}
	if err := fileSystem.MkDir(ctx, "/d/sub", true); err != nil {
		t.Fatalf("unable to create directories: %v", err)
	}
	fileSystem.Chdir("d")
	if fileSystem.Getwd() != "/d" {
		t.Errorf("working directory = %q, expected /d", fileSystem.Getwd())
	}
	if err := fileSystem.WriteFile(ctx, "sub/f", []byte("x")); err != nil {
		t.Fatalf("unable to write via relative path: %v", err)
	}
	if _, err := fileSystem.ReadFile(ctx, "/d/sub/f"); err != nil {
		t.Errorf("relative write landed in the wrong place: %v", err)
	}
	fileSystem.Chdir("..")
	if fileSystem.Getwd() != "/" {
		t.Errorf("working directory = %q, expected /", fileSystem.Getwd())
	}
}

// TestUnknownChangesNotification verifies that a foreign backend write
// between commits surfaces as an unknown-changes notification.
func TestUnknownChangesNotification(t *testing.T) {
	fileSystem, store := newTestFileSystem(manualCommitsOnly())
	defer fileSystem.Close(context.Background())
	ctx := context.Background()

	recorder := &eventRecorder{}
	fileSystem.AddListener(recorder)

	// Establish a mutex span and end it with a commit.
	if err := fileSystem.WriteFile(ctx, "/f", []byte("x")); err != nil {
		t.Fatalf("unable to write: %v", err)
	}
	if err := fileSystem.Commit(ctx); err != nil {
		t.Fatalf("unable to commit: %v", err)
	}

	// Simulate a foreign writer touching the backend directly.
	if err := store.Store.Bulk(ctx, &backend.BulkPayload{
		FilesToWrite: []backend.FileWrite{{Path: "/foreign", Data: []byte("y")}},
	}); err != nil {
		t.Fatalf("unable to perform foreign write: %v", err)
	}

	// The next operation's acquisition must surface the staleness.
	if _, err := fileSystem.ReadFile(ctx, "/f"); err != nil {
		t.Fatalf("unable to read after foreign write: %v", err)
	}
	recorder.lock.Lock()
	unknown := recorder.unknown
	recorder.lock.Unlock()
	if unknown != 1 {
		t.Errorf("unknown-changes notifications = %d, expected 1", unknown)
	}
}
