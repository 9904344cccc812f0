// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package sync

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dircopy/dircopy/pkg/ids"
	"github.com/dircopy/dircopy/pkg/mfs"
)

func newTestResolver() *ids.StaticResolver {
	return ids.NewStaticResolver(
		map[string]ids.StaticUser{
			"deploy": {Uid: 1000, Gid: 1000},
		},
		map[string]int{
			"deploy": 1000,
			"web":    33,
		},
	)
}

func readTestFile(t *testing.T, fileSystem *mfs.MemoryFileSystem, name string) string {
	t.Helper()
	f, err := fileSystem.Open(context.Background(), name)
	require.NoError(t, err)
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return string(b)
}

func TestSynchronizeCreatesTree(t *testing.T) {
	ctx := context.Background()
	m := mfs.NewMemoryFileSystem(0, 0)
	require.NoError(t, m.MkdirAll(ctx, "/src/a", 0o755))
	writeTestFile(t, m, "/src/a/f.txt", "hi", 0o644)

	result, err := Synchronize(ctx, &SynchronizeInput{
		Source:                "/src",
		SourceFileSystem:      m,
		Destination:           "/dst",
		DestinationFileSystem: m,
		Owner:                 "deploy",
		Mode:                  "0640",
		Chdir:                 true,
		Resolver:              newTestResolver(),
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.False(t, result.Failed())

	created, updated, deleted, unchanged, failed := result.Counts()
	assert.Equal(t, 2, created)
	assert.Equal(t, 0, updated)
	assert.Equal(t, 0, deleted)
	assert.Equal(t, 0, unchanged)
	assert.Equal(t, 0, failed)

	assert.Equal(t, "hi", readTestFile(t, m, "/dst/a/f.txt"))

	// the 0640 file mode derives a 0750 directory mode
	dirInfo, err := m.Lstat(ctx, "/dst/a")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), dirInfo.Mode().Perm())
	assert.Equal(t, 1000, dirInfo.Uid())
	assert.Equal(t, 1000, dirInfo.Gid())

	fileInfo, err := m.Lstat(ctx, "/dst/a/f.txt")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), fileInfo.Mode().Perm())
	assert.Equal(t, 1000, fileInfo.Uid())
	assert.Equal(t, 1000, fileInfo.Gid())

	// the destination root itself was created with the directory mode
	rootInfo, err := m.Lstat(ctx, "/dst")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), rootInfo.Mode().Perm())
	assert.Equal(t, 1000, rootInfo.Uid())
}

func TestSynchronizeIdempotent(t *testing.T) {
	ctx := context.Background()
	m := mfs.NewMemoryFileSystem(0, 0)
	require.NoError(t, m.MkdirAll(ctx, "/src/a/b", 0o755))
	writeTestFile(t, m, "/src/a/b/deep.txt", "deep", 0o644)
	writeTestFile(t, m, "/src/top.txt", "top", 0o644)
	require.NoError(t, m.Symlink(ctx, "top.txt", "/src/link"))

	input := &SynchronizeInput{
		Source:                "/src",
		SourceFileSystem:      m,
		Destination:           "/dst",
		DestinationFileSystem: m,
		Owner:                 "deploy",
		Mode:                  "0640",
		Chdir:                 true,
		Identical:             true,
		Resolver:              newTestResolver(),
	}

	first, err := Synchronize(ctx, input)
	require.NoError(t, err)
	assert.True(t, first.Changed)
	assert.False(t, first.Failed())

	second, err := Synchronize(ctx, input)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.False(t, second.Failed())

	created, updated, deleted, unchanged, failed := second.Counts()
	assert.Equal(t, 0, created)
	assert.Equal(t, 0, updated)
	assert.Equal(t, 0, deleted)
	assert.Equal(t, 0, failed)
	assert.Equal(t, len(second.Entries), unchanged)
	for _, entry := range second.Entries {
		assert.Equal(t, ActionSkip, entry.Action, entry.Path)
	}
}

func TestSynchronizeIdenticalDeletesStale(t *testing.T) {
	ctx := context.Background()
	m := mfs.NewMemoryFileSystem(0, 0)
	require.NoError(t, m.MkdirAll(ctx, "/src", 0o755))
	writeTestFile(t, m, "/src/keep.txt", "keep", 0o644)
	require.NoError(t, m.MkdirAll(ctx, "/dst/old", 0o755))
	writeTestFile(t, m, "/dst/old/x.txt", "x", 0o644)
	writeTestFile(t, m, "/dst/stale.txt", "stale", 0o644)

	result, err := Synchronize(ctx, &SynchronizeInput{
		Source:                "/src",
		SourceFileSystem:      m,
		Destination:           "/dst",
		DestinationFileSystem: m,
		Identical:             true,
		Resolver:              newTestResolver(),
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.False(t, result.Failed())

	_, err = m.Lstat(ctx, "/dst/stale.txt")
	assert.True(t, m.IsNotExist(err))
	// a stale directory is removed after its children
	_, err = m.Lstat(ctx, "/dst/old")
	assert.True(t, m.IsNotExist(err))
	assert.Equal(t, "keep", readTestFile(t, m, "/dst/keep.txt"))

	_, _, deleted, _, _ := result.Counts()
	assert.Equal(t, 3, deleted)
}

func TestSynchronizeWithoutIdenticalKeepsStale(t *testing.T) {
	ctx := context.Background()
	m := mfs.NewMemoryFileSystem(0, 0)
	require.NoError(t, m.MkdirAll(ctx, "/src", 0o755))
	writeTestFile(t, m, "/src/keep.txt", "keep", 0o644)
	require.NoError(t, m.MkdirAll(ctx, "/dst", 0o755))
	writeTestFile(t, m, "/dst/stale.txt", "stale", 0o644)

	result, err := Synchronize(ctx, &SynchronizeInput{
		Source:                "/src",
		SourceFileSystem:      m,
		Destination:           "/dst",
		DestinationFileSystem: m,
		Resolver:              newTestResolver(),
	})
	require.NoError(t, err)
	assert.False(t, result.Failed())

	assert.Equal(t, "stale", readTestFile(t, m, "/dst/stale.txt"))
	_, _, deleted, _, _ := result.Counts()
	assert.Equal(t, 0, deleted)
}

func TestSynchronizeUpdatesContent(t *testing.T) {
	ctx := context.Background()
	m := mfs.NewMemoryFileSystem(0, 0)
	require.NoError(t, m.MkdirAll(ctx, "/src", 0o755))
	require.NoError(t, m.MkdirAll(ctx, "/dst", 0o755))
	writeTestFile(t, m, "/src/f.txt", "hello", 0o644)
	writeTestFile(t, m, "/dst/f.txt", "hella", 0o644)

	result, err := Synchronize(ctx, &SynchronizeInput{
		Source:                "/src",
		SourceFileSystem:      m,
		Destination:           "/dst",
		DestinationFileSystem: m,
		Resolver:              newTestResolver(),
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.False(t, result.Failed())
	assert.Equal(t, "hello", readTestFile(t, m, "/dst/f.txt"))

	require.Len(t, result.Entries, 1)
	assert.Equal(t, ActionUpdate, result.Entries[0].Action)
	assert.Equal(t, "content differs", result.Entries[0].Reason)
	assert.Equal(t, OutcomeApplied, result.Entries[0].Outcome)
}

func TestSynchronizeSymlinkRetarget(t *testing.T) {
	ctx := context.Background()
	m := mfs.NewMemoryFileSystem(0, 0)
	require.NoError(t, m.MkdirAll(ctx, "/src", 0o755))
	writeTestFile(t, m, "/src/a.txt", "a", 0o644)
	require.NoError(t, m.Symlink(ctx, "a.txt", "/src/current"))
	require.NoError(t, m.MkdirAll(ctx, "/dst", 0o755))
	writeTestFile(t, m, "/dst/a.txt", "a", 0o644)
	require.NoError(t, m.Symlink(ctx, "b.txt", "/dst/current"))

	result, err := Synchronize(ctx, &SynchronizeInput{
		Source:                "/src",
		SourceFileSystem:      m,
		Destination:           "/dst",
		DestinationFileSystem: m,
		Resolver:              newTestResolver(),
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.False(t, result.Failed())

	target, err := m.Readlink(ctx, "/dst/current")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", target)
}

func TestSynchronizeReplacesFileWithDirectory(t *testing.T) {
	ctx := context.Background()
	m := mfs.NewMemoryFileSystem(0, 0)
	require.NoError(t, m.MkdirAll(ctx, "/src/conf", 0o755))
	writeTestFile(t, m, "/src/conf/app.ini", "k=v", 0o644)
	require.NoError(t, m.MkdirAll(ctx, "/dst", 0o755))
	writeTestFile(t, m, "/dst/conf", "not a directory", 0o644)

	result, err := Synchronize(ctx, &SynchronizeInput{
		Source:                "/src",
		SourceFileSystem:      m,
		Destination:           "/dst",
		DestinationFileSystem: m,
		Resolver:              newTestResolver(),
	})
	require.NoError(t, err)
	assert.False(t, result.Failed())
	assert.Equal(t, "k=v", readTestFile(t, m, "/dst/conf/app.ini"))
}

func TestSynchronizePartialFailure(t *testing.T) {
	ctx := context.Background()
	m := mfs.NewMemoryFileSystem(0, 0)
	require.NoError(t, m.MkdirAll(ctx, "/src", 0o755))
	writeTestFile(t, m, "/src/bad.txt", "bad", 0o644)
	writeTestFile(t, m, "/src/good.txt", "good", 0o644)
	m.DenyRead("/src/bad.txt")

	result, err := Synchronize(ctx, &SynchronizeInput{
		Source:                "/src",
		SourceFileSystem:      m,
		Destination:           "/dst",
		DestinationFileSystem: m,
		Resolver:              newTestResolver(),
	})
	require.NoError(t, err)
	assert.True(t, result.Failed())
	// the failure does not stop the other path
	assert.True(t, result.Changed)
	assert.Equal(t, "good", readTestFile(t, m, "/dst/good.txt"))

	created, _, _, _, failed := result.Counts()
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, failed)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "bad.txt", result.Errors[0].Path)
	assert.Equal(t, ErrorKindAccess, result.Errors[0].Kind)
}

func TestSynchronizeDestinationUnreachable(t *testing.T) {
	ctx := context.Background()
	m := mfs.NewMemoryFileSystem(0, 0)
	require.NoError(t, m.MkdirAll(ctx, "/src", 0o755))

	_, err := Synchronize(ctx, &SynchronizeInput{
		Source:                "/src",
		SourceFileSystem:      m,
		Destination:           "/missing/parent/dst",
		DestinationFileSystem: m,
		Resolver:              newTestResolver(),
	})
	require.Error(t, err)
	unreachable := &DestinationUnreachableError{}
	assert.True(t, errors.As(err, &unreachable))
	assert.Equal(t, "/missing/parent/dst", unreachable.Destination)
}

func TestSynchronizeSourceMissing(t *testing.T) {
	ctx := context.Background()
	m := mfs.NewMemoryFileSystem(0, 0)
	_, err := Synchronize(ctx, &SynchronizeInput{
		Source:                "/missing",
		SourceFileSystem:      m,
		Destination:           "/dst",
		DestinationFileSystem: m,
		Resolver:              newTestResolver(),
	})
	assert.Error(t, err)
}

func TestSynchronizeUnknownOwner(t *testing.T) {
	ctx := context.Background()
	m := mfs.NewMemoryFileSystem(0, 0)
	require.NoError(t, m.MkdirAll(ctx, "/src", 0o755))

	_, err := Synchronize(ctx, &SynchronizeInput{
		Source:                "/src",
		SourceFileSystem:      m,
		Destination:           "/dst",
		DestinationFileSystem: m,
		Owner:                 "nobody-here",
		Resolver:              newTestResolver(),
	})
	require.Error(t, err)
	ownershipError := &ids.OwnershipError{}
	assert.True(t, errors.As(err, &ownershipError))
}

func TestSynchronizeReconcilesExistingDestinationRoot(t *testing.T) {
	ctx := context.Background()
	m := mfs.NewMemoryFileSystem(0, 0)
	require.NoError(t, m.MkdirAll(ctx, "/src", 0o755))
	require.NoError(t, m.Mkdir(ctx, "/dst", 0o700))

	input := &SynchronizeInput{
		Source:                "/src",
		SourceFileSystem:      m,
		Destination:           "/dst",
		DestinationFileSystem: m,
		Owner:                 "deploy",
		Mode:                  "0640",
		Chdir:                 true,
		Resolver:              newTestResolver(),
	}

	result, err := Synchronize(ctx, input)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.False(t, result.Failed())

	// the pre-existing root's attributes are brought in line with the
	// requested mode and ownership
	info, err := m.Lstat(ctx, "/dst")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())
	assert.Equal(t, 1000, info.Uid())
	assert.Equal(t, 1000, info.Gid())

	second, err := Synchronize(ctx, input)
	require.NoError(t, err)
	assert.False(t, second.Changed)
}

func TestCollectProblems(t *testing.T) {
	sourceProblems := []SyncError{
		{Path: "locked", Kind: ErrorKindAccess, Message: "permission denied"},
	}
	destinationProblems := []SyncError{
		{Path: "pipe", Kind: ErrorKindUnsupported, Message: "unsupported entry type p"},
		{Path: "vault", Kind: ErrorKindAccess, Message: "permission denied"},
	}

	// an unsupported destination entry is only a problem when deletion
	// might have to remove it
	problems := collectProblems(false, sourceProblems, destinationProblems)
	require.Len(t, problems, 2)
	assert.Equal(t, "locked", problems[0].Path)
	assert.Equal(t, "vault", problems[1].Path)

	problems = collectProblems(true, sourceProblems, destinationProblems)
	require.Len(t, problems, 3)
	assert.Equal(t, "pipe", problems[1].Path)
}

func TestSynchronizeModeDrift(t *testing.T) {
	ctx := context.Background()
	m := mfs.NewMemoryFileSystem(0, 0)
	require.NoError(t, m.MkdirAll(ctx, "/src", 0o755))
	writeTestFile(t, m, "/src/f.txt", "hi", 0o644)

	input := &SynchronizeInput{
		Source:                "/src",
		SourceFileSystem:      m,
		Destination:           "/dst",
		DestinationFileSystem: m,
		Mode:                  "0640",
		Resolver:              newTestResolver(),
	}

	_, err := Synchronize(ctx, input)
	require.NoError(t, err)

	require.NoError(t, m.Chmod(ctx, "/dst/f.txt", 0o666))

	result, err := Synchronize(ctx, input)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, ActionUpdate, result.Entries[0].Action)
	assert.Equal(t, "mode differs", result.Entries[0].Reason)

	info, err := m.Lstat(ctx, "/dst/f.txt")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestSynchronizeParallel(t *testing.T) {
	ctx := context.Background()
	m := mfs.NewMemoryFileSystem(0, 0)
	require.NoError(t, m.MkdirAll(ctx, "/src/a", 0o755))
	require.NoError(t, m.MkdirAll(ctx, "/src/b", 0o755))
	for _, name := range []string{"/src/a/1.txt", "/src/a/2.txt", "/src/b/3.txt", "/src/b/4.txt", "/src/5.txt"} {
		writeTestFile(t, m, name, name, 0o644)
	}

	result, err := Synchronize(ctx, &SynchronizeInput{
		Source:                "/src",
		SourceFileSystem:      m,
		Destination:           "/dst",
		DestinationFileSystem: m,
		MaxThreads:            4,
		Resolver:              newTestResolver(),
	})
	require.NoError(t, err)
	assert.False(t, result.Failed())

	created, _, _, _, _ := result.Counts()
	assert.Equal(t, 7, created)
	assert.Equal(t, "/src/b/4.txt", readTestFile(t, m, "/dst/b/4.txt"))

	// result order follows walk order regardless of scheduling
	paths := make([]string, 0, len(result.Entries))
	for _, entry := range result.Entries {
		paths = append(paths, entry.Path)
	}
	assert.Equal(t, []string{"5.txt", "a", "a/1.txt", "a/2.txt", "b", "b/3.txt", "b/4.txt"}, paths)
}

func TestSynchronizeVerboseDetail(t *testing.T) {
	ctx := context.Background()
	m := mfs.NewMemoryFileSystem(0, 0)
	require.NoError(t, m.MkdirAll(ctx, "/src", 0o755))
	writeTestFile(t, m, "/src/f.txt", "hi", 0o644)

	result, err := Synchronize(ctx, &SynchronizeInput{
		Source:                "/src",
		SourceFileSystem:      m,
		Destination:           "/dst",
		DestinationFileSystem: m,
		Owner:                 "deploy",
		Group:                 "web",
		Mode:                  "0640",
		Verbose:               true,
		Resolver:              newTestResolver(),
	})
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "file mode=0640 uid=1000 gid=33", result.Entries[0].Detail)
}
