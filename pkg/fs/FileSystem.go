// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package fs

import (
	"context"
	"os"
	"time"
)

// FileSystem is the set of filesystem primitives consumed by the
// synchronization engine.  Paths are relative to the filesystem root.
// Stat follows symbolic links; Lstat does not.
type FileSystem interface {
	Chmod(ctx context.Context, name string, mode os.FileMode) error
	Chown(ctx context.Context, name string, uid int, gid int) error
	Chtimes(ctx context.Context, name string, atime time.Time, mtime time.Time) error
	Dir(name string) string
	IsNotExist(err error) bool
	IsPermission(err error) bool
	Join(names ...string) string
	Lstat(ctx context.Context, name string) (FileInfo, error)
	Mkdir(ctx context.Context, name string, mode os.FileMode) error
	MkdirAll(ctx context.Context, name string, mode os.FileMode) error
	Open(ctx context.Context, name string) (File, error)
	OpenFile(ctx context.Context, name string, flag int, perm os.FileMode) (File, error)
	ReadDir(ctx context.Context, name string) ([]FileInfo, error)
	Readlink(ctx context.Context, name string) (string, error)
	Remove(ctx context.Context, name string) error
	RemoveAll(ctx context.Context, name string) error
	Root() string
	Stat(ctx context.Context, name string) (FileInfo, error)
	Symlink(ctx context.Context, oldname string, newname string) error
}
