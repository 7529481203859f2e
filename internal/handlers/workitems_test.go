package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boardwire/boardwire/internal/wire"
	"github.com/boardwire/boardwire/internal/wireerr"
)

func createTestProject(t *testing.T, h *Handlers) wire.ProjectDTO {
	t.Helper()
	reply, err := h.CreateProject(ctxAsUser("user-1"), &wire.CreateProjectRequest{Key: "BW", Title: "Boardwire"})
	require.NoError(t, err)
	return reply.(*wire.CreateProjectResponse).Project
}

func TestCreateWorkItemEpicRejectsParent(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)

	parentID := "00000000-0000-0000-0000-000000000001"
	_, err := h.CreateWorkItem(ctxAsUser("user-1"), &wire.CreateWorkItemRequest{
		ProjectID: proj.ID, ItemType: "epic", Title: "Epic", ParentID: &parentID,
	})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeValidation, werr.Code)
}

func TestCreateWorkItemHierarchyChain(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)

	epicReply, err := h.CreateWorkItem(ctxAsUser("user-1"), &wire.CreateWorkItemRequest{ProjectID: proj.ID, ItemType: "epic", Title: "Epic"})
	require.NoError(t, err)
	epic := epicReply.(*wire.CreateWorkItemResponse).WorkItem

	storyReply, err := h.CreateWorkItem(ctxAsUser("user-1"), &wire.CreateWorkItemRequest{ProjectID: proj.ID, ItemType: "story", Title: "Story", ParentID: &epic.ID})
	require.NoError(t, err)
	story := storyReply.(*wire.CreateWorkItemResponse).WorkItem
	require.Equal(t, epic.ID, *story.ParentID)

	_, err = h.CreateWorkItem(ctxAsUser("user-1"), &wire.CreateWorkItemRequest{ProjectID: proj.ID, ItemType: "task", Title: "Task", ParentID: &epic.ID})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeValidation, werr.Code, "a task's parent must be a story, not an epic")
}

func TestUpdateWorkItemReparentRejectsCycle(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)

	epicReply, err := h.CreateWorkItem(ctxAsUser("user-1"), &wire.CreateWorkItemRequest{ProjectID: proj.ID, ItemType: "epic", Title: "Epic"})
	require.NoError(t, err)
	epic := epicReply.(*wire.CreateWorkItemResponse).WorkItem

	storyReply, err := h.CreateWorkItem(ctxAsUser("user-1"), &wire.CreateWorkItemRequest{ProjectID: proj.ID, ItemType: "story", Title: "Story", ParentID: &epic.ID})
	require.NoError(t, err)
	story := storyReply.(*wire.CreateWorkItemResponse).WorkItem

	_, err = h.UpdateWorkItem(ctxAsUser("user-1"), &wire.UpdateWorkItemRequest{
		ID: epic.ID, ExpectedVersion: epic.Version, ParentID: &story.ID,
	})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeValidation, werr.Code)
}

func TestUpdateWorkItemStatusChangeIsTracked(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)

	epicReply, err := h.CreateWorkItem(ctxAsUser("user-1"), &wire.CreateWorkItemRequest{ProjectID: proj.ID, ItemType: "epic", Title: "Epic"})
	require.NoError(t, err)
	epic := epicReply.(*wire.CreateWorkItemResponse).WorkItem

	newStatus := "in_progress"
	reply, err := h.UpdateWorkItem(ctxAsUser("user-1"), &wire.UpdateWorkItemRequest{
		ID: epic.ID, ExpectedVersion: epic.Version, Status: &newStatus,
	})
	require.NoError(t, err)
	updated := reply.(*wire.UpdateWorkItemResponse)
	require.Equal(t, "in_progress", updated.WorkItem.Status)
	require.Len(t, updated.Changes, 1)
	require.Equal(t, "status", updated.Changes[0].FieldName)
}

func TestGetWorkItemNotFound(t *testing.T) {
	h := newTestHandlers(t)

	_, err := h.GetWorkItem(ctxAsUser("user-1"), &wire.GetWorkItemRequest{ID: "00000000-0000-0000-0000-000000000099"})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeNotFound, werr.Code)
}
