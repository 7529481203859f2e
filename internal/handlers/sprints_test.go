package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/boardwire/boardwire/internal/wire"
	"github.com/boardwire/boardwire/internal/wireerr"
)

func TestCreateSprintThenList(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)

	start := time.Now().UnixMilli()
	end := time.Now().Add(14 * 24 * time.Hour).UnixMilli()
	reply, err := h.CreateSprint(ctxAsUser("user-1"), &wire.CreateSprintRequest{ProjectID: proj.ID, Name: "Sprint 1", StartAt: start, EndAt: end})
	require.NoError(t, err)
	sprint := reply.(*wire.CreateSprintResponse).Sprint
	require.Equal(t, "planned", sprint.Status)

	list, err := h.GetSprints(ctxAsUser("user-1"), &wire.GetSprintsRequest{ProjectID: proj.ID})
	require.NoError(t, err)
	require.Len(t, list.(*wire.GetSprintsList).Sprints, 1)
}

func TestCreateSprintRejectsInvertedWindow(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)

	start := time.Now().UnixMilli()
	end := time.Now().Add(-time.Hour).UnixMilli()
	_, err := h.CreateSprint(ctxAsUser("user-1"), &wire.CreateSprintRequest{ProjectID: proj.ID, Name: "Sprint 1", StartAt: start, EndAt: end})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeValidation, werr.Code)
}

func TestUpdateSprintStatusTransition(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)
	start := time.Now().UnixMilli()
	end := time.Now().Add(14 * 24 * time.Hour).UnixMilli()
	created, err := h.CreateSprint(ctxAsUser("user-1"), &wire.CreateSprintRequest{ProjectID: proj.ID, Name: "Sprint 1", StartAt: start, EndAt: end})
	require.NoError(t, err)
	sprint := created.(*wire.CreateSprintResponse).Sprint

	active := "active"
	reply, err := h.UpdateSprint(ctxAsUser("user-1"), &wire.UpdateSprintRequest{ID: sprint.ID, ExpectedVersion: sprint.Version, Status: &active})
	require.NoError(t, err)
	updated := reply.(*wire.UpdateSprintResponse)
	require.Equal(t, "active", updated.Sprint.Status)
	require.Len(t, updated.Changes, 1)
}

func TestDeleteSprintBlockedWhileWorkItemsAssigned(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)
	start := time.Now().UnixMilli()
	end := time.Now().Add(14 * 24 * time.Hour).UnixMilli()
	created, err := h.CreateSprint(ctxAsUser("user-1"), &wire.CreateSprintRequest{ProjectID: proj.ID, Name: "Sprint 1", StartAt: start, EndAt: end})
	require.NoError(t, err)
	sprint := created.(*wire.CreateSprintResponse).Sprint

	itemReply, err := h.CreateWorkItem(ctxAsUser("user-1"), &wire.CreateWorkItemRequest{ProjectID: proj.ID, ItemType: "epic", Title: "Epic", SprintID: &sprint.ID})
	require.NoError(t, err)
	_ = itemReply

	_, err = h.DeleteSprint(ctxAsUser("user-1"), &wire.DeleteSprintRequest{ID: sprint.ID})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeDeleteBlocked, werr.Code)
}

func TestDeleteSprintSucceedsWhenEmpty(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)
	start := time.Now().UnixMilli()
	end := time.Now().Add(14 * 24 * time.Hour).UnixMilli()
	created, err := h.CreateSprint(ctxAsUser("user-1"), &wire.CreateSprintRequest{ProjectID: proj.ID, Name: "Sprint 1", StartAt: start, EndAt: end})
	require.NoError(t, err)
	sprint := created.(*wire.CreateSprintResponse).Sprint

	reply, err := h.DeleteSprint(ctxAsUser("user-1"), &wire.DeleteSprintRequest{ID: sprint.ID})
	require.NoError(t, err)
	require.Equal(t, sprint.ID, reply.(*wire.DeleteSprintResponse).ID)
}
