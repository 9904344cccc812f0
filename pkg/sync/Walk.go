// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package sync

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/dircopy/dircopy/pkg/fs"
)

// Walk lists every entry below root as a preorder sequence: a directory
// always precedes its children, and entries within a directory appear in
// lexicographic order, so two walks of an unmodified tree are identical.
// A missing root yields an empty sequence.  An unreadable subtree or an
// unsupported entry (device, socket, fifo) is reported as a per-path error
// and the walk continues; only a failure at the root itself is returned as
// an error.
func Walk(ctx context.Context, fileSystem fs.FileSystem, root string) ([]PathEntry, []SyncError, error) {
	if _, err := fileSystem.Lstat(ctx, root); err != nil {
		if fileSystem.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("error stating root %q: %w", root, err)
	}
	entries := []PathEntry{}
	problems := []SyncError{}
	if err := walkDirectory(ctx, fileSystem, root, "", &entries, &problems); err != nil {
		return nil, nil, err
	}
	return entries, problems, nil
}

func walkDirectory(ctx context.Context, fileSystem fs.FileSystem, root string, relPath string, entries *[]PathEntry, problems *[]SyncError) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name := root
	if len(relPath) > 0 {
		name = fileSystem.Join(root, relPath)
	}

	infos, err := fileSystem.ReadDir(ctx, name)
	if err != nil {
		if len(relPath) == 0 {
			return fmt.Errorf("error reading root directory %q: %w", root, err)
		}
		*problems = append(*problems, SyncError{
			Path:    relPath,
			Kind:    errorKind(fileSystem, err),
			Message: fmt.Sprintf("error reading directory: %v", err),
		})
		return nil
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name() < infos[j].Name()
	})

	for _, info := range infos {
		childRel := path.Join(relPath, info.Name())
		mode := info.Mode()
		switch {
		case mode.IsDir():
			*entries = append(*entries, PathEntry{
				Path:    childRel,
				Kind:    KindDirectory,
				Size:    info.Size(),
				ModTime: info.ModTime(),
				Mode:    mode,
				UID:     info.Uid(),
				GID:     info.Gid(),
			})
			if err := walkDirectory(ctx, fileSystem, root, childRel, entries, problems); err != nil {
				return err
			}
		case mode&os.ModeSymlink != 0:
			target, err := fileSystem.Readlink(ctx, fileSystem.Join(root, childRel))
			if err != nil {
				*problems = append(*problems, SyncError{
					Path:    childRel,
					Kind:    errorKind(fileSystem, err),
					Message: fmt.Sprintf("error reading link: %v", err),
				})
				continue
			}
			*entries = append(*entries, PathEntry{
				Path:       childRel,
				Kind:       KindSymlink,
				Size:       info.Size(),
				ModTime:    info.ModTime(),
				Mode:       mode,
				UID:        info.Uid(),
				GID:        info.Gid(),
				LinkTarget: target,
			})
		case mode.IsRegular():
			*entries = append(*entries, PathEntry{
				Path:    childRel,
				Kind:    KindFile,
				Size:    info.Size(),
				ModTime: info.ModTime(),
				Mode:    mode,
				UID:     info.Uid(),
				GID:     info.Gid(),
			})
		default:
			*problems = append(*problems, SyncError{
				Path:    childRel,
				Kind:    ErrorKindUnsupported,
				Message: fmt.Sprintf("unsupported entry type %v", mode&os.ModeType),
			})
		}
	}

	return nil
}
