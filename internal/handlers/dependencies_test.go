package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boardwire/boardwire/internal/wire"
	"github.com/boardwire/boardwire/internal/wireerr"
)

func createTestWorkItem(t *testing.T, h *Handlers, projectID, title string) wire.WorkItemDTO {
	t.Helper()
	reply, err := h.CreateWorkItem(ctxAsUser("user-1"), &wire.CreateWorkItemRequest{ProjectID: projectID, ItemType: "epic", Title: title})
	require.NoError(t, err)
	return reply.(*wire.CreateWorkItemResponse).WorkItem
}

func TestCreateDependencyRejectsSelfReference(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)
	item := createTestWorkItem(t, h, proj.ID, "Item")

	_, err := h.CreateDependency(ctxAsUser("user-1"), &wire.CreateDependencyRequest{
		BlockingItemID: item.ID, BlockedItemID: item.ID, Type: "blocks",
	})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeValidation, werr.Code)
}

func TestCreateDependencyRejectsDuplicatePair(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)
	a := createTestWorkItem(t, h, proj.ID, "A")
	b := createTestWorkItem(t, h, proj.ID, "B")

	_, err := h.CreateDependency(ctxAsUser("user-1"), &wire.CreateDependencyRequest{BlockingItemID: a.ID, BlockedItemID: b.ID, Type: "blocks"})
	require.NoError(t, err)

	_, err = h.CreateDependency(ctxAsUser("user-1"), &wire.CreateDependencyRequest{BlockingItemID: a.ID, BlockedItemID: b.ID, Type: "blocks"})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeValidation, werr.Code)
}

func TestCreateDependencyRejectsReversedDuplicatePair(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)
	a := createTestWorkItem(t, h, proj.ID, "A")
	b := createTestWorkItem(t, h, proj.ID, "B")

	_, err := h.CreateDependency(ctxAsUser("user-1"), &wire.CreateDependencyRequest{BlockingItemID: a.ID, BlockedItemID: b.ID, Type: "relates_to"})
	require.NoError(t, err)

	_, err = h.CreateDependency(ctxAsUser("user-1"), &wire.CreateDependencyRequest{BlockingItemID: b.ID, BlockedItemID: a.ID, Type: "relates_to"})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeValidation, werr.Code, "A relates_to B and B relates_to A are the same unordered pair")
}

func TestCreateDependencyRejectsCycle(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)
	a := createTestWorkItem(t, h, proj.ID, "A")
	b := createTestWorkItem(t, h, proj.ID, "B")
	c := createTestWorkItem(t, h, proj.ID, "C")

	_, err := h.CreateDependency(ctxAsUser("user-1"), &wire.CreateDependencyRequest{BlockingItemID: a.ID, BlockedItemID: b.ID, Type: "blocks"})
	require.NoError(t, err)
	_, err = h.CreateDependency(ctxAsUser("user-1"), &wire.CreateDependencyRequest{BlockingItemID: b.ID, BlockedItemID: c.ID, Type: "blocks"})
	require.NoError(t, err)

	_, err = h.CreateDependency(ctxAsUser("user-1"), &wire.CreateDependencyRequest{BlockingItemID: c.ID, BlockedItemID: a.ID, Type: "blocks"})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeValidation, werr.Code, "c->a would close a->b->c->a into a cycle")
}

func TestCreateAndDeleteDependency(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)
	a := createTestWorkItem(t, h, proj.ID, "A")
	b := createTestWorkItem(t, h, proj.ID, "B")

	created, err := h.CreateDependency(ctxAsUser("user-1"), &wire.CreateDependencyRequest{BlockingItemID: a.ID, BlockedItemID: b.ID, Type: "blocks"})
	require.NoError(t, err)
	dep := created.(*wire.CreateDependencyResponse).Dependency

	list, err := h.GetDependencies(ctxAsUser("user-1"), &wire.GetDependenciesRequest{WorkItemID: a.ID})
	require.NoError(t, err)
	require.Len(t, list.(*wire.GetDependenciesList).Dependencies, 1)

	deleted, err := h.DeleteDependency(ctxAsUser("user-1"), &wire.DeleteDependencyRequest{ID: dep.ID})
	require.NoError(t, err)
	require.Equal(t, dep.ID, deleted.(*wire.DeleteDependencyResponse).ID)

	list, err = h.GetDependencies(ctxAsUser("user-1"), &wire.GetDependenciesRequest{WorkItemID: a.ID})
	require.NoError(t, err)
	require.Len(t, list.(*wire.GetDependenciesList).Dependencies, 0)
}
