package hierarchy

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/boardwire/boardwire/internal/storage/sqlite"
	"github.com/boardwire/boardwire/internal/testutil"
	"github.com/boardwire/boardwire/internal/types"
)

func setupTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	dir := testutil.TempDirInMemory(t)
	s, err := sqlite.Open(context.Background(), filepath.Join(dir, "hierarchy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newWorkItem(id string, itemType types.ItemType, parentID *string, projectID string, number int64) *types.WorkItem {
	now := time.Now().UTC()
	return &types.WorkItem{
		ID:         id,
		ItemType:   itemType,
		ParentID:   parentID,
		ProjectID:  projectID,
		Title:      "Item " + id,
		Status:     types.StatusBacklog,
		Priority:   types.PriorityMedium,
		ItemNumber: number,
		Version:    1,
		Audit:      types.Audit{CreatedAt: now, UpdatedAt: now, CreatedBy: "u1", UpdatedBy: "u1"},
	}
}

func strPtr(s string) *string { return &s }

func TestValidateParentEpicHasNoParent(t *testing.T) {
	s := setupTestStore(t)
	v := New(s.WorkItems())

	result, _, err := v.ValidateParent(context.Background(), s.DB(), types.ItemTypeEpic, "proj-1", "does-not-matter")
	require.NoError(t, err)
	require.Equal(t, WrongParentType, result)
}

func TestValidateParentStoryRequiresEpicParent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	epic := newWorkItem("epic-1", types.ItemTypeEpic, nil, "proj-1", 1)
	require.NoError(t, s.WorkItems().Create(ctx, s.DB(), epic))
	task := newWorkItem("task-1", types.ItemTypeTask, nil, "proj-1", 2)
	require.NoError(t, s.WorkItems().Create(ctx, s.DB(), task))

	v := New(s.WorkItems())

	result, parent, err := v.ValidateParent(ctx, s.DB(), types.ItemTypeStory, "proj-1", epic.ID)
	require.NoError(t, err)
	require.Equal(t, OK, result)
	require.Equal(t, epic.ID, parent.ID)

	result, _, err = v.ValidateParent(ctx, s.DB(), types.ItemTypeStory, "proj-1", task.ID)
	require.NoError(t, err)
	require.Equal(t, WrongParentType, result)
}

func TestValidateParentRejectsCrossProjectParent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	epic := newWorkItem("epic-1", types.ItemTypeEpic, nil, "proj-1", 1)
	require.NoError(t, s.WorkItems().Create(ctx, s.DB(), epic))

	v := New(s.WorkItems())
	result, _, err := v.ValidateParent(ctx, s.DB(), types.ItemTypeStory, "proj-2", epic.ID)
	require.NoError(t, err)
	require.Equal(t, ParentNotFound, result)
}

func TestValidateParentRejectsDeletedParent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	epic := newWorkItem("epic-1", types.ItemTypeEpic, nil, "proj-1", 1)
	require.NoError(t, s.WorkItems().Create(ctx, s.DB(), epic))
	require.NoError(t, s.WorkItems().SoftDelete(ctx, s.DB(), epic.ID, "u1", time.Now().UnixMilli()))

	v := New(s.WorkItems())
	result, _, err := v.ValidateParent(ctx, s.DB(), types.ItemTypeStory, "proj-1", epic.ID)
	require.NoError(t, err)
	require.Equal(t, ParentDeleted, result)
}

func TestIsDescendantDetectsCycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	epic := newWorkItem("epic-1", types.ItemTypeEpic, nil, "proj-1", 1)
	require.NoError(t, s.WorkItems().Create(ctx, s.DB(), epic))
	story := newWorkItem("story-1", types.ItemTypeStory, strPtr(epic.ID), "proj-1", 2)
	require.NoError(t, s.WorkItems().Create(ctx, s.DB(), story))

	v := New(s.WorkItems())

	isDescendant, err := v.IsDescendant(ctx, s.DB(), epic.ID, story.ID)
	require.NoError(t, err)
	require.True(t, isDescendant, "epic is an ancestor of story, so reparenting epic under story would cycle")

	isDescendant, err = v.IsDescendant(ctx, s.DB(), story.ID, epic.ID)
	require.NoError(t, err)
	require.False(t, isDescendant)
}
