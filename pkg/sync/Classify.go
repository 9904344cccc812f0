// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package sync

import (
	"bytes"
	"context"
	"time"

	"github.com/dircopy/dircopy/pkg/attr"
	"github.com/dircopy/dircopy/pkg/fs"
)

// Decision is the classification of one relative path: the action to take,
// a short reason for the verbose report, and whether file content must be
// copied (an update may fix attributes without touching content).
type Decision struct {
	Action      Action
	Reason      string
	CopyContent bool
}

// Classifier decides the action for each relative path.  The comparison is
// between the desired state of an entry (the source entry with the policy's
// ownership and mode resolved onto it) and the destination entry, so that a
// Skip means a true no-op and a second run over a synchronized tree changes
// nothing.
type Classifier struct {
	Source             fs.FileSystem
	SourceRoot         string
	Destination        fs.FileSystem
	DestinationRoot    string
	Policy             *attr.Policy
	Identical          bool
	ChecksumLimit      int64
	TimestampPrecision time.Duration
}

// Classify decides the action for one path.  Either entry may be nil, but
// not both.
func (c *Classifier) Classify(ctx context.Context, source *PathEntry, destination *PathEntry) Decision {
	if source == nil && destination == nil {
		return Decision{Action: ActionSkip}
	}

	if source != nil && destination == nil {
		return Decision{Action: ActionCreate, Reason: "missing from destination", CopyContent: source.Kind == KindFile}
	}

	if source == nil {
		if c.Identical {
			return Decision{Action: ActionDelete, Reason: "not in source"}
		}
		return Decision{Action: ActionSkip, Reason: "not in source"}
	}

	if source.Kind != destination.Kind {
		return Decision{Action: ActionUpdate, Reason: "kind differs", CopyContent: source.Kind == KindFile}
	}

	switch source.Kind {
	case KindSymlink:
		if source.LinkTarget != destination.LinkTarget {
			return Decision{Action: ActionUpdate, Reason: "link target differs"}
		}
		if c.ownershipDiffers(destination) {
			return Decision{Action: ActionUpdate, Reason: "ownership differs"}
		}
	case KindDirectory:
		if c.modeDiffers(source, destination) {
			return Decision{Action: ActionUpdate, Reason: "mode differs"}
		}
		if c.ownershipDiffers(destination) {
			return Decision{Action: ActionUpdate, Reason: "ownership differs"}
		}
	case KindFile:
		if source.Size != destination.Size {
			return Decision{Action: ActionUpdate, Reason: "size differs", CopyContent: true}
		}
		if !c.contentEqual(ctx, source, destination) {
			return Decision{Action: ActionUpdate, Reason: "content differs", CopyContent: true}
		}
		if c.modeDiffers(source, destination) {
			return Decision{Action: ActionUpdate, Reason: "mode differs"}
		}
		if c.ownershipDiffers(destination) {
			return Decision{Action: ActionUpdate, Reason: "ownership differs"}
		}
	}

	return Decision{Action: ActionSkip}
}

// desiredMode is the permission bits an entry should end up with: the
// requested mode when one was given, otherwise the source entry's own bits.
func (c *Classifier) desiredMode(source *PathEntry) uint32 {
	if requested := c.Policy.Mode(source.Kind == KindDirectory); requested != nil {
		return uint32(requested.Perm())
	}
	return uint32(source.Mode.Perm())
}

func (c *Classifier) modeDiffers(source *PathEntry, destination *PathEntry) bool {
	return c.desiredMode(source) != uint32(destination.Mode.Perm())
}

// ownershipDiffers compares requested ownership against the destination.
// When the destination backend cannot report ownership (-1), the attribute
// is assumed correct.
func (c *Classifier) ownershipDiffers(destination *PathEntry) bool {
	if c.Policy.UID >= 0 && destination.UID >= 0 && c.Policy.UID != destination.UID {
		return true
	}
	if c.Policy.GID >= 0 && destination.GID >= 0 && c.Policy.GID != destination.GID {
		return true
	}
	return false
}

// contentEqual compares same-size files.  Files up to ChecksumLimit are
// hashed on both sides; larger files fall back to the size+mtime heuristic.
// The copy path preserves source modification times, so the fast path stays
// stable across runs.  A read failure counts as a difference so the copy
// surfaces the error.
func (c *Classifier) contentEqual(ctx context.Context, source *PathEntry, destination *PathEntry) bool {
	if source.Size > c.ChecksumLimit {
		return fs.EqualTimestamp(source.ModTime, destination.ModTime, c.TimestampPrecision)
	}
	sourceSum, err := Checksum(ctx, c.Source, c.Source.Join(c.SourceRoot, source.Path))
	if err != nil {
		return false
	}
	destinationSum, err := Checksum(ctx, c.Destination, c.Destination.Join(c.DestinationRoot, destination.Path))
	if err != nil {
		return false
	}
	return bytes.Equal(sourceSum, destinationSum)
}
