// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package lfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/dircopy/dircopy/pkg/fs"
)

// LocalFileSystem implements fs.FileSystem on the local operating system
// through afero.  Symbolic link operations use afero's optional interfaces
// where the backend provides them, except chown, which always goes through
// os.Lchown so that links are never followed.
type LocalFileSystem struct {
	fs   afero.Fs
	root string
}

func (l *LocalFileSystem) realPath(name string) string {
	if len(l.root) == 0 {
		return filepath.FromSlash(name)
	}
	return filepath.Join(l.root, filepath.FromSlash(name))
}

func (l *LocalFileSystem) entry(info os.FileInfo) fs.FileInfo {
	uid, gid := fileOwner(info)
	return fs.NewDirectoryEntry(info.Name(), info.Mode(), info.ModTime(), info.Size(), uid, gid)
}

func (l *LocalFileSystem) Chmod(ctx context.Context, name string, mode os.FileMode) error {
	return l.fs.Chmod(l.realPath(name), mode)
}

func (l *LocalFileSystem) Chown(ctx context.Context, name string, uid int, gid int) error {
	return os.Lchown(l.realPath(name), uid, gid)
}

func (l *LocalFileSystem) Chtimes(ctx context.Context, name string, atime time.Time, mtime time.Time) error {
	return l.fs.Chtimes(l.realPath(name), atime, mtime)
}

func (l *LocalFileSystem) Dir(name string) string {
	return filepath.Dir(name)
}

func (l *LocalFileSystem) IsNotExist(err error) bool {
	return os.IsNotExist(err)
}

func (l *LocalFileSystem) IsPermission(err error) bool {
	return os.IsPermission(err)
}

func (l *LocalFileSystem) Join(names ...string) string {
	return filepath.Join(names...)
}

func (l *LocalFileSystem) Lstat(ctx context.Context, name string) (fs.FileInfo, error) {
	if lstater, ok := l.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(l.realPath(name))
		if err != nil {
			return nil, err
		}
		return l.entry(info), nil
	}
	return l.Stat(ctx, name)
}

func (l *LocalFileSystem) Mkdir(ctx context.Context, name string, mode os.FileMode) error {
	return l.fs.Mkdir(l.realPath(name), mode)
}

func (l *LocalFileSystem) MkdirAll(ctx context.Context, name string, mode os.FileMode) error {
	return l.fs.MkdirAll(l.realPath(name), mode)
}

func (l *LocalFileSystem) Open(ctx context.Context, name string) (fs.File, error) {
	return l.fs.Open(l.realPath(name))
}

func (l *LocalFileSystem) OpenFile(ctx context.Context, name string, flag int, perm os.FileMode) (fs.File, error) {
	return l.fs.OpenFile(l.realPath(name), flag, perm)
}

func (l *LocalFileSystem) ReadDir(ctx context.Context, name string) ([]fs.FileInfo, error) {
	infos, err := afero.ReadDir(l.fs, l.realPath(name))
	if err != nil {
		return nil, err
	}
	entries := make([]fs.FileInfo, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, l.entry(info))
	}
	return entries, nil
}

func (l *LocalFileSystem) Readlink(ctx context.Context, name string) (string, error) {
	if reader, ok := l.fs.(afero.LinkReader); ok {
		return reader.ReadlinkIfPossible(l.realPath(name))
	}
	return "", fmt.Errorf("error reading link %q: %w", name, afero.ErrNoReadlink)
}

func (l *LocalFileSystem) Remove(ctx context.Context, name string) error {
	return l.fs.Remove(l.realPath(name))
}

func (l *LocalFileSystem) RemoveAll(ctx context.Context, name string) error {
	return l.fs.RemoveAll(l.realPath(name))
}

func (l *LocalFileSystem) Root() string {
	return l.root
}

func (l *LocalFileSystem) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	info, err := l.fs.Stat(l.realPath(name))
	if err != nil {
		return nil, err
	}
	return l.entry(info), nil
}

func (l *LocalFileSystem) Symlink(ctx context.Context, oldname string, newname string) error {
	if linker, ok := l.fs.(afero.Symlinker); ok {
		return linker.SymlinkIfPossible(oldname, l.realPath(newname))
	}
	return fmt.Errorf("error creating link %q: %w", newname, afero.ErrNoSymlink)
}

// NewLocalFileSystem returns a local filesystem.  An empty root means names
// are used as given; otherwise names are resolved relative to root.
func NewLocalFileSystem(root string) *LocalFileSystem {
	return &LocalFileSystem{
		fs:   afero.NewOsFs(),
		root: root,
	}
}
