// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package mfs

import (
	"context"
	"errors"
	"os"
	"path"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/dircopy/dircopy/pkg/fs"
)

// MemoryFileSystem implements fs.FileSystem in memory on top of
// afero.MemMapFs.  MemMapFs does not track ownership or symbolic links, so
// both are layered on: ownership in a map keyed by cleaned path, links as
// placeholder files carrying their target.  Safe for concurrent use.
type MemoryFileSystem struct {
	fs       afero.Fs
	mutex    sync.RWMutex
	owners   map[string][2]int
	links    map[string]string
	denied   map[string]bool
	ownerUID int
	ownerGID int
}

func clean(name string) string {
	return path.Clean("/" + name)
}

func (m *MemoryFileSystem) owner(name string) (int, int) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if o, ok := m.owners[clean(name)]; ok {
		return o[0], o[1]
	}
	return m.ownerUID, m.ownerGID
}

func (m *MemoryFileSystem) setOwner(name string, uid int, gid int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.owners[clean(name)] = [2]int{uid, gid}
}

func (m *MemoryFileSystem) target(name string) (string, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	target, ok := m.links[clean(name)]
	return target, ok
}

// DenyRead makes subsequent opens of name fail with a permission error.
// Used to exercise per-path failure handling.
func (m *MemoryFileSystem) DenyRead(name string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.denied[clean(name)] = true
}

func (m *MemoryFileSystem) Chmod(ctx context.Context, name string, mode os.FileMode) error {
	return m.fs.Chmod(name, mode)
}

func (m *MemoryFileSystem) Chown(ctx context.Context, name string, uid int, gid int) error {
	if _, err := m.Lstat(ctx, name); err != nil {
		return err
	}
	// negative ids leave the current value, matching chown(2)
	currentUID, currentGID := m.owner(name)
	if uid < 0 {
		uid = currentUID
	}
	if gid < 0 {
		gid = currentGID
	}
	m.setOwner(name, uid, gid)
	return nil
}

func (m *MemoryFileSystem) Chtimes(ctx context.Context, name string, atime time.Time, mtime time.Time) error {
	return m.fs.Chtimes(name, atime, mtime)
}

func (m *MemoryFileSystem) Dir(name string) string {
	return path.Dir(name)
}

func (m *MemoryFileSystem) IsNotExist(err error) bool {
	return os.IsNotExist(err)
}

func (m *MemoryFileSystem) IsPermission(err error) bool {
	return os.IsPermission(err)
}

func (m *MemoryFileSystem) Join(names ...string) string {
	return path.Join(names...)
}

func (m *MemoryFileSystem) Lstat(ctx context.Context, name string) (fs.FileInfo, error) {
	if target, ok := m.target(name); ok {
		uid, gid := m.owner(name)
		return fs.NewDirectoryEntry(path.Base(name), os.ModeSymlink|0o777, time.Time{}, int64(len(target)), uid, gid), nil
	}
	info, err := m.fs.Stat(name)
	if err != nil {
		return nil, err
	}
	uid, gid := m.owner(name)
	return fs.NewDirectoryEntry(info.Name(), info.Mode(), info.ModTime(), info.Size(), uid, gid), nil
}

func (m *MemoryFileSystem) Mkdir(ctx context.Context, name string, mode os.FileMode) error {
	if err := m.fs.Mkdir(name, mode); err != nil {
		return err
	}
	m.setOwner(name, m.ownerUID, m.ownerGID)
	return nil
}

func (m *MemoryFileSystem) MkdirAll(ctx context.Context, name string, mode os.FileMode) error {
	if err := m.fs.MkdirAll(name, mode); err != nil {
		return err
	}
	m.setOwner(name, m.ownerUID, m.ownerGID)
	return nil
}

func (m *MemoryFileSystem) Open(ctx context.Context, name string) (fs.File, error) {
	m.mutex.RLock()
	denied := m.denied[clean(name)]
	m.mutex.RUnlock()
	if denied {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	if target, ok := m.target(name); ok {
		return m.Open(ctx, m.resolve(name, target))
	}
	return m.fs.Open(name)
}

func (m *MemoryFileSystem) OpenFile(ctx context.Context, name string, flag int, perm os.FileMode) (fs.File, error) {
	f, err := m.fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	m.mutex.Lock()
	if _, ok := m.owners[clean(name)]; !ok {
		m.owners[clean(name)] = [2]int{m.ownerUID, m.ownerGID}
	}
	m.mutex.Unlock()
	return f, nil
}

func (m *MemoryFileSystem) ReadDir(ctx context.Context, name string) ([]fs.FileInfo, error) {
	infos, err := afero.ReadDir(m.fs, name)
	if err != nil {
		return nil, err
	}
	entries := make([]fs.FileInfo, 0, len(infos))
	for _, info := range infos {
		child := path.Join(name, info.Name())
		entry, err := m.Lstat(ctx, child)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (m *MemoryFileSystem) Readlink(ctx context.Context, name string) (string, error) {
	if target, ok := m.target(name); ok {
		return target, nil
	}
	return "", &os.PathError{Op: "readlink", Path: name, Err: errors.New("not a symlink")}
}

func (m *MemoryFileSystem) Remove(ctx context.Context, name string) error {
	if _, ok := m.target(name); !ok {
		if info, err := m.fs.Stat(name); err == nil && info.IsDir() {
			children, err := afero.ReadDir(m.fs, name)
			if err != nil {
				return err
			}
			if len(children) > 0 {
				return &os.PathError{Op: "remove", Path: name, Err: errors.New("directory not empty")}
			}
		}
	}
	if err := m.fs.Remove(name); err != nil {
		return err
	}
	m.mutex.Lock()
	delete(m.owners, clean(name))
	delete(m.links, clean(name))
	m.mutex.Unlock()
	return nil
}

func (m *MemoryFileSystem) RemoveAll(ctx context.Context, name string) error {
	if err := m.fs.RemoveAll(name); err != nil {
		return err
	}
	m.mutex.Lock()
	delete(m.owners, clean(name))
	delete(m.links, clean(name))
	m.mutex.Unlock()
	return nil
}

func (m *MemoryFileSystem) Root() string {
	return ""
}

func (m *MemoryFileSystem) resolve(name string, target string) string {
	if path.IsAbs(target) {
		return target
	}
	return path.Join(path.Dir(name), target)
}

func (m *MemoryFileSystem) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	if target, ok := m.target(name); ok {
		return m.Stat(ctx, m.resolve(name, target))
	}
	return m.Lstat(ctx, name)
}

func (m *MemoryFileSystem) Symlink(ctx context.Context, oldname string, newname string) error {
	f, err := m.fs.OpenFile(newname, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o777)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(oldname); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	m.mutex.Lock()
	m.links[clean(newname)] = oldname
	m.owners[clean(newname)] = [2]int{m.ownerUID, m.ownerGID}
	m.mutex.Unlock()
	return nil
}

// NewMemoryFileSystem returns an empty in-memory filesystem whose entries
// are created owned by uid/gid.
func NewMemoryFileSystem(uid int, gid int) *MemoryFileSystem {
	return &MemoryFileSystem{
		fs:       afero.NewMemMapFs(),
		owners:   map[string][2]int{},
		links:    map[string]string{},
		denied:   map[string]bool{},
		ownerUID: uid,
		ownerGID: gid,
	}
}
