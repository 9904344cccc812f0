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
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dircopy/dircopy/pkg/attr"
	"github.com/dircopy/dircopy/pkg/fs"
	"github.com/dircopy/dircopy/pkg/ids"
)

const (
	DefaultMaxThreads         = 1
	DefaultChecksumLimit      = 1_048_576 // 1 MiB
	DefaultTimestampPrecision = time.Second
)

type plan struct {
	path        string
	source      *PathEntry
	destination *PathEntry
	decision    Decision
	outcome     Outcome
	detail      string
	err         *SyncError
	done        bool
}

// Synchronize makes the destination tree match the source tree: missing
// entries are created, diverging entries are updated, and, when Identical
// is set, destination-only entries are deleted.  Per-path failures are
// recorded in the result and synchronization continues; only structural
// precondition failures (unreachable destination, unreadable source root,
// unresolvable owner or group) abort the call.  Running twice over an
// undisturbed tree reports no change on the second run.
func Synchronize(ctx context.Context, input *SynchronizeInput) (*SyncResult, error) {
	if input.SourceFileSystem == nil || input.DestinationFileSystem == nil {
		return nil, errors.New("source and destination filesystems are required")
	}

	maxThreads := input.MaxThreads
	if maxThreads <= 0 {
		maxThreads = DefaultMaxThreads
	}
	checksumLimit := input.ChecksumLimit
	if checksumLimit <= 0 {
		checksumLimit = DefaultChecksumLimit
	}
	precision := input.TimestampPrecision
	if precision <= 0 {
		precision = DefaultTimestampPrecision
	}
	resolver := input.Resolver
	if resolver == nil {
		resolver = ids.NewSystemResolver()
	}

	if input.Logger != nil {
		_ = input.Logger.Log("Synchronizing", map[string]interface{}{
			"src":       input.Source,
			"dst":       input.Destination,
			"identical": input.Identical,
			"threads":   maxThreads,
		})
	}

	policy, err := attr.Resolve(attr.Spec{
		Owner: input.Owner,
		Group: input.Group,
		Mode:  input.Mode,
		Chdir: input.Chdir,
	}, resolver)
	if err != nil {
		return nil, err
	}

	sourceFileSystem := input.SourceFileSystem
	destinationFileSystem := input.DestinationFileSystem

	sourceInfo, err := sourceFileSystem.Stat(ctx, input.Source)
	if err != nil {
		if sourceFileSystem.IsNotExist(err) {
			return nil, fmt.Errorf("source does not exist %q: %w", input.Source, err)
		}
		return nil, fmt.Errorf("error stating source %q: %w", input.Source, err)
	}
	if !sourceInfo.IsDir() {
		return nil, fmt.Errorf("source %q is not a directory", input.Source)
	}

	e := &executor{
		source:          sourceFileSystem,
		sourceRoot:      input.Source,
		destination:     destinationFileSystem,
		destinationRoot: input.Destination,
		policy:          policy,
		verbose:         input.Verbose,
	}

	destinationChanged := false
	destinationInfo, err := destinationFileSystem.Stat(ctx, input.Destination)
	if err != nil {
		if !destinationFileSystem.IsNotExist(err) {
			return nil, fmt.Errorf("error stating destination %q: %w", input.Destination, err)
		}
		// Only the destination root itself is created; a missing parent is
		// a precondition failure.
		parent := destinationFileSystem.Dir(input.Destination)
		if _, err := destinationFileSystem.Stat(ctx, parent); err != nil {
			if destinationFileSystem.IsNotExist(err) {
				return nil, &DestinationUnreachableError{Destination: input.Destination, Parent: parent}
			}
			return nil, fmt.Errorf("error stating destination parent %q: %w", parent, err)
		}
		mode := sourceInfo.Mode().Perm()
		if policy.DirMode != nil {
			mode = policy.DirMode.Perm()
		}
		if err := destinationFileSystem.Mkdir(ctx, input.Destination, mode); err != nil {
			return nil, fmt.Errorf("error creating destination %q: %w", input.Destination, err)
		}
		if err := destinationFileSystem.Chmod(ctx, input.Destination, mode); err != nil {
			return nil, fmt.Errorf("error setting mode of destination %q: %w", input.Destination, err)
		}
		if policy.HasOwnership() {
			if err := destinationFileSystem.Chown(ctx, input.Destination, policy.UID, policy.GID); err != nil {
				return nil, fmt.Errorf("error setting ownership of destination %q: %w", input.Destination, err)
			}
		}
		destinationChanged = true
	} else if !destinationInfo.IsDir() {
		return nil, fmt.Errorf("destination %q is not a directory", input.Destination)
	} else {
		// The walks only cover entries below the roots, so an existing
		// destination root's attributes are reconciled here.
		if policy.DirMode != nil && destinationInfo.Mode().Perm() != policy.DirMode.Perm() {
			if err := destinationFileSystem.Chmod(ctx, input.Destination, policy.DirMode.Perm()); err != nil {
				return nil, fmt.Errorf("error setting mode of destination %q: %w", input.Destination, err)
			}
			destinationChanged = true
		}
		if ownershipDiffers(policy, destinationInfo) {
			if err := destinationFileSystem.Chown(ctx, input.Destination, policy.UID, policy.GID); err != nil {
				return nil, fmt.Errorf("error setting ownership of destination %q: %w", input.Destination, err)
			}
			destinationChanged = true
		}
	}

	sourceEntries, sourceProblems, err := Walk(ctx, sourceFileSystem, input.Source)
	if err != nil {
		return nil, fmt.Errorf("error walking source %q: %w", input.Source, err)
	}
	destinationEntries, destinationProblems, err := Walk(ctx, destinationFileSystem, input.Destination)
	if err != nil {
		return nil, fmt.Errorf("error walking destination %q: %w", input.Destination, err)
	}

	classifier := &Classifier{
		Source:             sourceFileSystem,
		SourceRoot:         input.Source,
		Destination:        destinationFileSystem,
		DestinationRoot:    input.Destination,
		Policy:             policy,
		Identical:          input.Identical,
		ChecksumLimit:      checksumLimit,
		TimestampPrecision: precision,
	}
	plans := buildPlans(ctx, classifier, sourceEntries, destinationEntries)

	e.runForward(ctx, plans, maxThreads)
	e.runDeletes(ctx, plans, maxThreads)

	if ctx.Err() != nil {
		for _, p := range plans {
			if p.done || p.decision.Action == ActionSkip {
				continue
			}
			p.outcome = OutcomeFailed
			p.err = &SyncError{
				Path:    p.path,
				Kind:    ErrorKindCancelled,
				Message: "synchronization cancelled before this path was reached",
			}
		}
	}

	result := &SyncResult{
		Changed: destinationChanged,
		Entries: make([]SyncEntry, 0, len(plans)),
		Errors:  collectProblems(input.Identical, sourceProblems, destinationProblems),
	}
	for _, p := range plans {
		if p.outcome == OutcomeApplied {
			result.Changed = true
		}
		result.Entries = append(result.Entries, SyncEntry{
			Path:    p.path,
			Action:  p.decision.Action,
			Outcome: p.outcome,
			Reason:  p.decision.Reason,
			Detail:  p.detail,
		})
		if p.err != nil {
			result.Errors = append(result.Errors, *p.err)
		}
	}

	if input.Logger != nil {
		created, updated, deleted, unchanged, failed := result.Counts()
		_ = input.Logger.Log("Done synchronizing", map[string]interface{}{
			"src":       input.Source,
			"dst":       input.Destination,
			"changed":   result.Changed,
			"created":   created,
			"updated":   updated,
			"deleted":   deleted,
			"unchanged": unchanged,
			"failed":    failed,
		})
	}

	return result, nil
}

// ownershipDiffers compares requested ownership against an existing entry.
// Ownership the backend cannot report (-1) is assumed correct.
func ownershipDiffers(policy *attr.Policy, info fs.FileInfo) bool {
	if policy.UID >= 0 && info.Uid() >= 0 && policy.UID != info.Uid() {
		return true
	}
	if policy.GID >= 0 && info.Gid() >= 0 && policy.GID != info.Gid() {
		return true
	}
	return false
}

// collectProblems merges walk problems from both sides.  An unsupported
// destination entry only matters when deletion might have to remove it, so
// without Identical those are not recorded.
func collectProblems(identical bool, sourceProblems []SyncError, destinationProblems []SyncError) []SyncError {
	problems := append([]SyncError{}, sourceProblems...)
	for _, problem := range destinationProblems {
		if !identical && problem.Kind == ErrorKindUnsupported {
			continue
		}
		problems = append(problems, problem)
	}
	return problems
}

// buildPlans merge-joins the two walk sequences by relative path and
// classifies every path in the union.  Both sequences are already in
// segment-wise lexicographic order, so the join is linear.
func buildPlans(ctx context.Context, classifier *Classifier, sourceEntries []PathEntry, destinationEntries []PathEntry) []*plan {
	plans := make([]*plan, 0, len(sourceEntries)+len(destinationEntries))
	i, j := 0, 0
	for i < len(sourceEntries) || j < len(destinationEntries) {
		switch {
		case j >= len(destinationEntries) || (i < len(sourceEntries) && pathLess(sourceEntries[i].Path, destinationEntries[j].Path)):
			s := &sourceEntries[i]
			plans = append(plans, &plan{path: s.Path, source: s})
			i++
		case i >= len(sourceEntries) || pathLess(destinationEntries[j].Path, sourceEntries[i].Path):
			d := &destinationEntries[j]
			plans = append(plans, &plan{path: d.Path, destination: d})
			j++
		default:
			s := &sourceEntries[i]
			d := &destinationEntries[j]
			plans = append(plans, &plan{path: s.Path, source: s, destination: d})
			i++
			j++
		}
	}
	for _, p := range plans {
		p.decision = classifier.Classify(ctx, p.source, p.destination)
		p.outcome = OutcomeUnchanged
	}
	return plans
}

// runForward executes creates and updates in waves by depth, so a directory
// exists before any of its children are touched.  Paths within a wave are
// independent and run on a bounded worker pool.
func (e *executor) runForward(ctx context.Context, plans []*plan, maxThreads int) {
	maxDepth := 0
	byDepth := map[int][]*plan{}
	for _, p := range plans {
		if p.decision.Action != ActionCreate && p.decision.Action != ActionUpdate {
			continue
		}
		depth := pathDepth(p.path)
		byDepth[depth] = append(byDepth[depth], p)
		if depth > maxDepth {
			maxDepth = depth
		}
	}
	for depth := 1; depth <= maxDepth; depth++ {
		if ctx.Err() != nil {
			return
		}
		var g errgroup.Group
		g.SetLimit(maxThreads)
		for _, p := range byDepth[depth] {
			p := p
			g.Go(func() error {
				e.apply(ctx, p)
				return nil
			})
		}
		_ = g.Wait()
	}
}

// runDeletes executes deletes in waves by descending depth, so a directory
// is only removed after its children.
func (e *executor) runDeletes(ctx context.Context, plans []*plan, maxThreads int) {
	maxDepth := 0
	byDepth := map[int][]*plan{}
	for _, p := range plans {
		if p.decision.Action != ActionDelete {
			continue
		}
		depth := pathDepth(p.path)
		byDepth[depth] = append(byDepth[depth], p)
		if depth > maxDepth {
			maxDepth = depth
		}
	}
	for depth := maxDepth; depth >= 1; depth-- {
		if ctx.Err() != nil {
			return
		}
		var g errgroup.Group
		g.SetLimit(maxThreads)
		for _, p := range byDepth[depth] {
			p := p
			g.Go(func() error {
				e.delete(ctx, p)
				return nil
			})
		}
		_ = g.Wait()
	}
}
