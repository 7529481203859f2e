// Package hierarchy implements HierarchyValidator (spec §4.8): a pure
// function of (intended child type, proposed parent id) over the
// work-item repository, plus the depth-bounded ancestry walk used to
// reject cycles when re-parenting an existing item.
package hierarchy

import (
	"context"
	"fmt"

	"github.com/boardwire/boardwire/internal/storage"
	"github.com/boardwire/boardwire/internal/types"
)

// Result is the outcome of validating a proposed parent assignment.
type Result string

const (
	OK               Result = "OK"
	WrongParentType  Result = "WrongParentType"
	ParentDeleted    Result = "ParentDeleted"
	ParentNotFound   Result = "ParentNotFound"
)

// maxAncestryDepth bounds the ancestor walk used for cycle detection;
// boardwire's work-item trees are at most three levels deep by design
// (epic -> story -> task), so this is a generous safety margin, not a
// tuned limit.
const maxAncestryDepth = 64

// Validator checks proposed parent/child assignments against the
// hierarchy invariants in spec §3: epics have no parent; a story's
// parent (if any) is an epic; a task's parent (if any) is a story; an
// item is never its own ancestor.
type Validator struct {
	workItems storage.WorkItems
}

// New builds a Validator over the WorkItems repository.
func New(workItems storage.WorkItems) *Validator {
	return &Validator{workItems: workItems}
}

// ValidateParent checks that parentID is an acceptable parent for a work
// item of type childType, within projectID. An empty parentID is only
// valid for epics and orphan stories/tasks, and is the caller's
// responsibility to allow — ValidateParent is only called when parentID
// is non-empty.
func (v *Validator) ValidateParent(ctx context.Context, ex storage.Executor, childType types.ItemType, projectID, parentID string) (Result, *types.WorkItem, error) {
	if childType == types.ItemTypeEpic {
		return WrongParentType, nil, nil
	}
	parent, err := v.workItems.FindByID(ctx, ex, parentID)
	if err != nil {
		if err == storage.ErrNotFound {
			return ParentNotFound, nil, nil
		}
		return "", nil, err
	}
	if parent.ProjectID != projectID {
		return ParentNotFound, nil, nil
	}
	if parent.IsDeleted() {
		return ParentDeleted, nil, nil
	}

	switch childType {
	case types.ItemTypeStory:
		if parent.ItemType != types.ItemTypeEpic {
			return WrongParentType, nil, nil
		}
	case types.ItemTypeTask:
		if parent.ItemType != types.ItemTypeStory {
			return WrongParentType, nil, nil
		}
	default:
		return "", nil, fmt.Errorf("hierarchy: unrecognised item type %q", childType)
	}
	return OK, parent, nil
}

// IsDescendant follows parent pointers upward starting at parentID,
// looking for itemID.
// It answers "would setting itemID's parent to parentID create a cycle",
// i.e. is itemID already an ancestor of parentID.
func (v *Validator) IsDescendant(ctx context.Context, ex storage.Executor, itemID, parentID string) (bool, error) {
	current := parentID
	for depth := 0; depth < maxAncestryDepth; depth++ {
		if current == "" {
			return false, nil
		}
		if current == itemID {
			return true, nil
		}
		node, err := v.workItems.FindByID(ctx, ex, current)
		if err != nil {
			if err == storage.ErrNotFound {
				return false, nil
			}
			return false, err
		}
		if node.ParentID == nil {
			return false, nil
		}
		current = *node.ParentID
	}
	return false, fmt.Errorf("hierarchy: ancestry walk exceeded max depth %d", maxAncestryDepth)
}
