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
	"io"
	"os"
	"strings"
	"time"

	"github.com/dircopy/dircopy/pkg/attr"
	"github.com/dircopy/dircopy/pkg/fs"
)

type executor struct {
	source          fs.FileSystem
	sourceRoot      string
	destination     fs.FileSystem
	destinationRoot string
	policy          *attr.Policy
	verbose         bool
}

func (e *executor) sourceName(relPath string) string {
	return e.source.Join(e.sourceRoot, relPath)
}

func (e *executor) destinationName(relPath string) string {
	return e.destination.Join(e.destinationRoot, relPath)
}

// desiredPerm is the permission bits an entry should end up with: the
// requested mode when one was given, otherwise the source entry's own bits.
func (e *executor) desiredPerm(source *PathEntry) os.FileMode {
	if requested := e.policy.Mode(source.Kind == KindDirectory); requested != nil {
		return requested.Perm()
	}
	return source.Mode.Perm()
}

func (e *executor) fail(p *plan, err error) {
	p.done = true
	p.outcome = OutcomeFailed
	p.err = &SyncError{
		Path:    p.path,
		Kind:    errorKind(e.destination, err),
		Message: err.Error(),
	}
}

func (e *executor) succeed(p *plan, entry *PathEntry) {
	p.done = true
	p.outcome = OutcomeApplied
	if e.verbose && entry != nil {
		p.detail = e.detail(entry)
	}
}

// detail summarizes the attribute values applied to an entry.
func (e *executor) detail(entry *PathEntry) string {
	parts := []string{entry.Kind.String()}
	if entry.Kind != KindSymlink {
		parts = append(parts, fmt.Sprintf("mode=%04o", uint32(e.desiredPerm(entry))))
	}
	if e.policy.UID >= 0 {
		parts = append(parts, fmt.Sprintf("uid=%d", e.policy.UID))
	}
	if e.policy.GID >= 0 {
		parts = append(parts, fmt.Sprintf("gid=%d", e.policy.GID))
	}
	return strings.Join(parts, " ")
}

func (e *executor) apply(ctx context.Context, p *plan) {
	switch p.decision.Action {
	case ActionCreate:
		e.create(ctx, p)
	case ActionUpdate:
		e.update(ctx, p)
	}
}

func (e *executor) create(ctx context.Context, p *plan) {
	entry := p.source
	destinationName := e.destinationName(p.path)
	switch entry.Kind {
	case KindDirectory:
		if err := e.destination.Mkdir(ctx, destinationName, e.desiredPerm(entry)); err != nil {
			e.fail(p, fmt.Errorf("error creating directory %q: %w", p.path, err))
			return
		}
	case KindSymlink:
		if err := e.destination.Symlink(ctx, entry.LinkTarget, destinationName); err != nil {
			e.fail(p, fmt.Errorf("error creating link %q: %w", p.path, err))
			return
		}
	case KindFile:
		if err := e.copyFile(ctx, p.path, entry); err != nil {
			e.fail(p, err)
			return
		}
	}
	if err := e.applyAttributes(ctx, p.path, entry); err != nil {
		e.fail(p, err)
		return
	}
	e.succeed(p, entry)
}

func (e *executor) update(ctx context.Context, p *plan) {
	entry := p.source
	destinationName := e.destinationName(p.path)

	// A kind change replaces the destination entry wholesale.
	if entry.Kind != p.destination.Kind {
		var err error
		if p.destination.Kind == KindDirectory {
			err = e.destination.RemoveAll(ctx, destinationName)
		} else {
			err = e.destination.Remove(ctx, destinationName)
		}
		if err != nil && !e.destination.IsNotExist(err) {
			e.fail(p, fmt.Errorf("error replacing %q: %w", p.path, err))
			return
		}
		e.create(ctx, p)
		return
	}

	switch entry.Kind {
	case KindSymlink:
		if entry.LinkTarget != p.destination.LinkTarget {
			if err := e.destination.Remove(ctx, destinationName); err != nil && !e.destination.IsNotExist(err) {
				e.fail(p, fmt.Errorf("error removing link %q: %w", p.path, err))
				return
			}
			if err := e.destination.Symlink(ctx, entry.LinkTarget, destinationName); err != nil {
				e.fail(p, fmt.Errorf("error creating link %q: %w", p.path, err))
				return
			}
		}
	case KindFile:
		if p.decision.CopyContent {
			if err := e.copyFile(ctx, p.path, entry); err != nil {
				e.fail(p, err)
				return
			}
		}
	}

	// Attributes are re-applied unconditionally: they may have drifted
	// even when content did not.
	if err := e.applyAttributes(ctx, p.path, entry); err != nil {
		e.fail(p, err)
		return
	}
	e.succeed(p, entry)
}

func (e *executor) delete(ctx context.Context, p *plan) {
	destinationName := e.destinationName(p.path)
	if err := e.destination.Remove(ctx, destinationName); err != nil {
		// A path that vanished between walk and delete is already
		// satisfied.
		if e.destination.IsNotExist(err) {
			p.done = true
			p.outcome = OutcomeUnchanged
			return
		}
		e.fail(p, fmt.Errorf("error removing %q: %w", p.path, err))
		return
	}
	p.done = true
	p.outcome = OutcomeApplied
}

func (e *executor) copyFile(ctx context.Context, relPath string, entry *PathEntry) error {
	sourceName := e.sourceName(relPath)
	destinationName := e.destinationName(relPath)

	sourceFile, err := e.source.Open(ctx, sourceName)
	if err != nil {
		return fmt.Errorf("error opening source file %q: %w", relPath, err)
	}

	destinationFile, err := e.destination.OpenFile(ctx, destinationName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, e.desiredPerm(entry))
	if err != nil {
		_ = sourceFile.Close() // silently close source file
		return fmt.Errorf("error creating destination file %q: %w", relPath, err)
	}

	if _, err := io.Copy(destinationFile, sourceFile); err != nil {
		_ = sourceFile.Close()      // silently close source file
		_ = destinationFile.Close() // silently close destination file
		return fmt.Errorf("error copying %q: %w", relPath, err)
	}

	if err := sourceFile.Close(); err != nil {
		_ = destinationFile.Close() // silently close destination file
		return fmt.Errorf("error closing source file %q after copying: %w", relPath, err)
	}

	if err := destinationFile.Close(); err != nil {
		return fmt.Errorf("error closing destination file %q after copying: %w", relPath, err)
	}

	// Preserve the source modification time so the size+mtime fast path
	// recognizes the copy on the next run.
	if err := e.destination.Chtimes(ctx, destinationName, time.Now(), entry.ModTime); err != nil {
		return fmt.Errorf("error changing timestamps of %q after copying: %w", relPath, err)
	}

	return nil
}

func (e *executor) applyAttributes(ctx context.Context, relPath string, entry *PathEntry) error {
	destinationName := e.destinationName(relPath)
	if entry.Kind != KindSymlink {
		if err := e.destination.Chmod(ctx, destinationName, e.desiredPerm(entry)); err != nil {
			return fmt.Errorf("error setting mode of %q: %w", relPath, err)
		}
	}
	if e.policy.HasOwnership() {
		if err := e.destination.Chown(ctx, destinationName, e.policy.UID, e.policy.GID); err != nil {
			return fmt.Errorf("error setting ownership of %q: %w", relPath, err)
		}
	}
	return nil
}
